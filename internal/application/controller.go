package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"tuya-lights/internal/domain"
)

type Controller struct {
	service LightService
	store   DeviceStore
	logger  *slog.Logger

	lights []domain.Light
}

func NewController(service LightService, store DeviceStore, logger *slog.Logger) *Controller {
	return &Controller{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Lights returns the known lights, reading the device file first and
// falling back to a discovery scan when there is none yet.
func (c *Controller) Lights(ctx context.Context) ([]domain.Light, error) {
	if c.lights != nil {
		return c.lights, nil
	}

	lights, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading device list: %w", err)
		}
		return c.Refresh(ctx)
	}
	if len(lights) == 0 {
		return c.Refresh(ctx)
	}

	c.lights = lights
	return c.lights, nil
}

// Refresh runs a discovery scan and rewrites the device file with the
// result.
func (c *Controller) Refresh(ctx context.Context) ([]domain.Light, error) {
	c.logger.Info("discovering devices")

	lights, err := c.service.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering devices: %w", err)
	}

	if err := c.store.Save(lights); err != nil {
		return nil, fmt.Errorf("saving device list: %w", err)
	}

	c.logger.Info("discovery complete", "lights", len(lights))

	c.lights = lights
	return c.lights, nil
}

// FindLight matches a light by name, preferring an exact match over a
// substring one. Matching ignores case.
func (c *Controller) FindLight(ctx context.Context, name string) (domain.Light, error) {
	lights, err := c.Lights(ctx)
	if err != nil {
		return domain.Light{}, err
	}

	key := strings.ToLower(strings.TrimSpace(name))

	for _, l := range lights {
		if strings.ToLower(l.Name) == key {
			return l, nil
		}
	}
	for _, l := range lights {
		if strings.Contains(strings.ToLower(l.Name), key) {
			return l, nil
		}
	}

	return domain.Light{}, fmt.Errorf("light not found: %s", name)
}

func (c *Controller) TurnOn(ctx context.Context, name string) error {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return err
	}
	if err := c.service.SetState(ctx, light, true); err != nil {
		return fmt.Errorf("turning on %s: %w", light.Name, err)
	}
	c.logger.Info("light on", "name", light.Name)
	return nil
}

func (c *Controller) TurnOff(ctx context.Context, name string) error {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return err
	}
	if err := c.service.SetState(ctx, light, false); err != nil {
		return fmt.Errorf("turning off %s: %w", light.Name, err)
	}
	c.logger.Info("light off", "name", light.Name)
	return nil
}

func (c *Controller) SetBrightness(ctx context.Context, name string, level uint8) error {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return err
	}
	if err := c.service.SetBrightness(ctx, light, level); err != nil {
		return fmt.Errorf("setting brightness of %s: %w", light.Name, err)
	}
	c.logger.Info("brightness set", "name", light.Name, "level", level)
	return nil
}

func (c *Controller) SetColor(ctx context.Context, name string, color domain.HSBColor) error {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return err
	}
	if err := c.service.SetColor(ctx, light, color); err != nil {
		return fmt.Errorf("setting color of %s: %w", light.Name, err)
	}
	c.logger.Info("color set", "name", light.Name, "hue", color.Hue)
	return nil
}

func (c *Controller) SetColorTemperature(ctx context.Context, name string, kelvin int) error {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return err
	}
	if err := c.service.SetColorTemperature(ctx, light, kelvin); err != nil {
		return fmt.Errorf("setting color temperature of %s: %w", light.Name, err)
	}
	c.logger.Info("color temperature set", "name", light.Name, "kelvin", kelvin)
	return nil
}

func (c *Controller) State(ctx context.Context, name string) (domain.LightState, error) {
	light, err := c.FindLight(ctx, name)
	if err != nil {
		return domain.LightState{}, err
	}

	state, err := c.service.QueryState(ctx, light)
	if err != nil {
		return domain.LightState{}, fmt.Errorf("querying %s: %w", light.Name, err)
	}
	return state, nil
}
