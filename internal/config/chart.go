package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"carbonyx/internal/domain/emissions"
	"carbonyx/pkg/logger"
)

// ChartConfig is the on-disk shape of chart.yml.
//
//	chart:
//	  defaultColor: "rgba(0, 0, 0, 0.1)"
//	  series:
//	    electricity: {label: Electricity, color: "rgba(75, 192, 192, 0.2)"}
type ChartConfig struct {
	DefaultColor string                           `mapstructure:"defaultColor"`
	Series       map[string]emissions.SeriesStyle `mapstructure:"series"`
}

// Palette converts the config to the chart palette, on top of the built-in defaults.
func (c ChartConfig) Palette() emissions.Palette {
	p := emissions.DefaultPalette()
	if c.DefaultColor != "" {
		p.DefaultColor = c.DefaultColor
	}
	for k, s := range c.Series {
		p.Styles[k] = s
	}
	return p
}

// PaletteHolder keeps the current chart palette and reloads it when chart.yml changes.
type PaletteHolder struct {
	current atomic.Value // holds emissions.Palette
}

// NewPaletteHolder reads chart.yml from path, or from the working directory
// and /etc/carbonyx when path is empty. A missing file yields the defaults.
func NewPaletteHolder(path string) (*PaletteHolder, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("chart")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/carbonyx")
		v.AddConfigPath(".")
	}

	holder := &PaletteHolder{}
	holder.current.Store(emissions.DefaultPalette())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return holder, nil
		}
		return nil, fmt.Errorf("read chart config: %w", err)
	}

	palette, err := decodePalette(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(palette)

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePalette(v)
		if err != nil {
			logger.Default().Warnw("chart config reload failed", "file", e.Name, "error", err)
			return
		}
		holder.current.Store(updated)
		logger.Default().Infow("chart config reloaded", "file", e.Name)
	})
	v.WatchConfig()

	return holder, nil
}

// Get returns the current palette.
func (h *PaletteHolder) Get() emissions.Palette {
	return h.current.Load().(emissions.Palette)
}

func decodePalette(v *viper.Viper) (emissions.Palette, error) {
	var cfg ChartConfig
	if err := v.UnmarshalKey("chart", &cfg); err != nil {
		return emissions.Palette{}, fmt.Errorf("decode chart config: %w", err)
	}
	for k, s := range cfg.Series {
		if strings.TrimSpace(k) == "" {
			return emissions.Palette{}, errors.New("chart.series keys cannot be empty")
		}
		if s.Label == "" && s.Color == "" {
			return emissions.Palette{}, fmt.Errorf("chart.series.%s needs a label or a color", k)
		}
	}
	return cfg.Palette(), nil
}
