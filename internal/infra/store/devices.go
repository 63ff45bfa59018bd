package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tuya-lights/internal/domain"
)

// DeviceFile persists the discovered lights as a YAML list, sparing the
// service a discovery round trip on every run.
type DeviceFile struct {
	path string
}

func NewDeviceFile(path string) *DeviceFile {
	return &DeviceFile{path: path}
}

type deviceDoc struct {
	Devices []domain.Light `yaml:"devices"`
}

// Load returns the saved lights in file order. A missing file surfaces
// as fs.ErrNotExist so callers can fall back to discovery.
func (f *DeviceFile) Load() ([]domain.Light, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading device file: %w", err)
	}

	var doc deviceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing device file: %w", err)
	}

	return doc.Devices, nil
}

func (f *DeviceFile) Save(lights []domain.Light) error {
	data, err := yaml.Marshal(deviceDoc{Devices: lights})
	if err != nil {
		return fmt.Errorf("encoding device file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing device file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing device file: %w", err)
	}
	return nil
}
