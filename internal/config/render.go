package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RenderConfig tunes the PDF layout without code changes: page margins and
// the font sizes of the main blocks.
type RenderConfig struct {
	PageSize string
	MarginMM float64

	TitleFontSize float64
	LabelFontSize float64
	BodyFontSize  float64
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		PageSize:      "A4",
		MarginMM:      15,
		TitleFontSize: 20,
		LabelFontSize: 12,
		BodyFontSize:  10,
	}
}

// RenderConfigHolder serves the current render configuration and hot-reloads
// it when the file changes.
type RenderConfigHolder struct {
	current atomic.Value // holds RenderConfig
}

func NewRenderConfigHolder() (*RenderConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("render")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/invoicekit")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRenderConfig()
	v.SetDefault("render.pageSize", defaults.PageSize)
	v.SetDefault("render.marginMm", defaults.MarginMM)
	v.SetDefault("render.titleFontSize", defaults.TitleFontSize)
	v.SetDefault("render.labelFontSize", defaults.LabelFontSize)
	v.SetDefault("render.bodyFontSize", defaults.BodyFontSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := readRenderConfig(v)
	if err := validateRenderConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RenderConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readRenderConfig(v)
		if err := validateRenderConfig(updated); err != nil {
			log.Printf("[render-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[render-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// readRenderConfig resolves the keys one by one so the env overrides
// registered via AutomaticEnv apply; UnmarshalKey would only see the file
// and default maps.
func readRenderConfig(v *viper.Viper) RenderConfig {
	return RenderConfig{
		PageSize:      v.GetString("render.pageSize"),
		MarginMM:      v.GetFloat64("render.marginMm"),
		TitleFontSize: v.GetFloat64("render.titleFontSize"),
		LabelFontSize: v.GetFloat64("render.labelFontSize"),
		BodyFontSize:  v.GetFloat64("render.bodyFontSize"),
	}
}

func (h *RenderConfigHolder) Get() RenderConfig {
	return h.current.Load().(RenderConfig)
}

func validateRenderConfig(cfg RenderConfig) error {
	switch strings.ToUpper(strings.TrimSpace(cfg.PageSize)) {
	case "A4", "LETTER", "LEGAL":
	default:
		return errors.New("render.pageSize must be A4, Letter, or Legal")
	}
	if cfg.MarginMM < 0 || cfg.MarginMM > 50 {
		return errors.New("render.marginMm out of range")
	}
	if cfg.TitleFontSize <= 0 || cfg.LabelFontSize <= 0 || cfg.BodyFontSize <= 0 {
		return errors.New("render font sizes must be positive")
	}
	return nil
}
