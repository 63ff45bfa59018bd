package application

import (
	"context"

	"tuya-lights/internal/domain"
)

// LightService is the slice of the cloud client the controller needs.
type LightService interface {
	Discover(ctx context.Context) ([]domain.Light, error)
	SetState(ctx context.Context, light domain.Light, on bool) error
	SetBrightness(ctx context.Context, light domain.Light, level uint8) error
	SetColor(ctx context.Context, light domain.Light, color domain.HSBColor) error
	SetColorTemperature(ctx context.Context, light domain.Light, kelvin int) error
	QueryState(ctx context.Context, light domain.Light) (domain.LightState, error)
}

// DeviceStore persists the known lights between runs.
type DeviceStore interface {
	Load() ([]domain.Light, error)
	Save(lights []domain.Light) error
}
