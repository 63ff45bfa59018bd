package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tuya-lights/config"
	"tuya-lights/internal/application"
	"tuya-lights/internal/domain"
	"tuya-lights/internal/infra/store"
	"tuya-lights/internal/infra/tuya"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("interrupted")
		cancel()
	}()

	client, err := connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("connecting", "error", err)
		os.Exit(1)
	}

	controller := application.NewController(
		client,
		store.NewDeviceFile(cfg.Store.DevicesFile),
		logger,
	)

	if err := run(ctx, controller, flag.Args()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// connect reuses the saved session when there is one and logs in fresh
// otherwise, keeping the new token for the next run.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tuya.Client, error) {
	opts := []tuya.Option{tuya.WithRegion(cfg.Tuya.Region)}
	if cfg.Tuya.BaseURL != "" {
		opts = append(opts, tuya.WithBaseURL(cfg.Tuya.BaseURL))
	}

	tokens := store.NewTokenFile(cfg.Store.TokenFile)

	token, err := tokens.Load()
	if err == nil {
		logger.Debug("using saved session")
		return tuya.FromToken(token, opts...)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("ignoring unreadable token file", "error", err)
	}

	logger.Info("logging in", "user", cfg.Tuya.Username)
	client, err := tuya.Login(ctx, cfg.Tuya.Username, cfg.Tuya.Password, opts...)
	if err != nil {
		return nil, err
	}

	if err := tokens.Save(client.AccessToken()); err != nil {
		logger.Warn("could not save session", "error", err)
	}

	return client, nil
}

func run(ctx context.Context, controller *application.Controller, args []string) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "scan":
		lights, err := controller.Refresh(ctx)
		if err != nil {
			return err
		}
		for _, l := range lights {
			fmt.Printf("%s\t%s\n", l.ID, l.Name)
		}
		return nil

	case "on":
		if len(rest) != 1 {
			return errors.New("usage: on <light>")
		}
		return controller.TurnOn(ctx, rest[0])

	case "off":
		if len(rest) != 1 {
			return errors.New("usage: off <light>")
		}
		return controller.TurnOff(ctx, rest[0])

	case "brightness":
		if len(rest) != 2 {
			return errors.New("usage: brightness <light> <0-255>")
		}
		level, err := strconv.ParseUint(rest[1], 10, 8)
		if err != nil {
			return fmt.Errorf("parsing level: %w", err)
		}
		return controller.SetBrightness(ctx, rest[0], uint8(level))

	case "color":
		if len(rest) != 4 {
			return errors.New("usage: color <light> <hue> <saturation> <brightness>")
		}
		var hsb [3]int
		for i, arg := range rest[1:] {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("parsing color component: %w", err)
			}
			hsb[i] = v
		}
		return controller.SetColor(ctx, rest[0], domain.HSBColor{
			Hue:        hsb[0],
			Saturation: hsb[1],
			Brightness: hsb[2],
		})

	case "temperature":
		if len(rest) != 2 {
			return errors.New("usage: temperature <light> <kelvin>")
		}
		kelvin, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("parsing temperature: %w", err)
		}
		return controller.SetColorTemperature(ctx, rest[0], kelvin)

	case "state":
		if len(rest) != 1 {
			return errors.New("usage: state <light>")
		}
		state, err := controller.State(ctx, rest[0])
		if err != nil {
			return err
		}
		power := "off"
		if state.On() {
			power = "on"
		}
		fmt.Printf("power: %s\nonline: %t\nbrightness: %s\ncolor mode: %s\ncolor temp: %d\n",
			power, state.Online, state.Brightness, state.ColorMode, state.ColorTemp)
		return nil

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: lights [-config config.yaml] <command>

commands:
  scan                                           rescan and save the device list
  on <light>                                     turn a light on
  off <light>                                    turn a light off
  brightness <light> <0-255>                     set brightness
  color <light> <hue> <saturation> <brightness>  set color
  temperature <light> <kelvin>                   set white color temperature
  state <light>                                  show the current state
`)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
