package store

import (
	"fmt"
	"os"
	"strings"
)

// TokenFile persists a session token as a plain file, so a run can pick
// up the previous session instead of logging in again.
type TokenFile struct {
	path string
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// Load returns the saved token. A missing file surfaces as
// fs.ErrNotExist so callers can fall back to a fresh login.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}

	return token, nil
}

// Save writes the token through a temp file and a rename, so a crash
// mid-write never leaves a truncated token behind.
func (f *TokenFile) Save(token string) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}
