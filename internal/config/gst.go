package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TaxKindLabel maps free-text tax row label fragments to a GST component.
type TaxKindLabel struct {
	Kind     string   `mapstructure:"kind"`
	Patterns []string `mapstructure:"patterns"`
}

// GSTSettings tunes the GST hooks at runtime.
type GSTSettings struct {
	Doctype             string         `mapstructure:"doctype"`
	TaxKinds            []TaxKindLabel `mapstructure:"taxKinds"`
	CreditNoteLineRates bool           `mapstructure:"creditNoteLineRates"`
}

func DefaultGSTSettings() GSTSettings {
	return GSTSettings{
		Doctype: "Sales Invoice",
		TaxKinds: []TaxKindLabel{
			{Kind: "cgst", Patterns: []string{"cgst"}},
			{Kind: "sgst", Patterns: []string{"sgst", "utgst"}},
			{Kind: "igst", Patterns: []string{"igst"}},
		},
	}
}

type GSTSettingsHolder struct {
	current  atomic.Value // holds GSTSettings
	onReload atomic.Pointer[func(status string)]
}

// NewStaticGSTSettings returns a holder that never reloads.
func NewStaticGSTSettings(settings GSTSettings) *GSTSettingsHolder {
	holder := &GSTSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

// NewGSTSettingsHolder loads gst settings from GST_SETTINGS_FILE or the default
// search paths and reloads them when the file changes. Invalid updates are ignored.
func NewGSTSettingsHolder(cfg Config, log *zap.Logger) (*GSTSettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.gst")

	v := viper.New()
	if cfg.GSTSettingsFile != "" {
		v.SetConfigFile(cfg.GSTSettingsFile)
	} else {
		v.SetConfigName("gst")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/gsttally")
		v.AddConfigPath(".")
	}

	defaults := DefaultGSTSettings()
	v.SetDefault("gst.doctype", defaults.Doctype)
	v.SetDefault("gst.taxKinds", defaults.TaxKinds)
	v.SetDefault("gst.creditNoteLineRates", defaults.CreditNoteLineRates)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read gst settings: %w", err)
		}
		fileLoaded = false
	}

	settings, err := decodeGSTSettings(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticGSTSettings(settings)
	if !fileLoaded {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeGSTSettings(v)
		if err != nil {
			log.Warn("gst settings reload ignored", zap.String("file", e.Name), zap.Error(err))
			holder.notify("rejected")
			return
		}
		holder.current.Store(updated)
		holder.notify("applied")
		log.Info("gst settings reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *GSTSettingsHolder) Get() GSTSettings {
	if h == nil {
		return DefaultGSTSettings()
	}
	settings, ok := h.current.Load().(GSTSettings)
	if !ok {
		return DefaultGSTSettings()
	}
	return settings
}

// OnReload registers fn to be called with "applied" or "rejected" after each
// settings file change.
func (h *GSTSettingsHolder) OnReload(fn func(status string)) {
	if h == nil || fn == nil {
		return
	}
	h.onReload.Store(&fn)
}

func (h *GSTSettingsHolder) notify(status string) {
	if fn := h.onReload.Load(); fn != nil {
		(*fn)(status)
	}
}

func decodeGSTSettings(v *viper.Viper) (GSTSettings, error) {
	var settings GSTSettings
	if err := v.UnmarshalKey("gst", &settings); err != nil {
		return GSTSettings{}, fmt.Errorf("decode gst settings: %w", err)
	}
	settings.Doctype = strings.TrimSpace(settings.Doctype)
	if err := validateGSTSettings(settings); err != nil {
		return GSTSettings{}, err
	}
	return settings, nil
}

func validateGSTSettings(settings GSTSettings) error {
	if settings.Doctype == "" {
		return errors.New("gst.doctype cannot be empty")
	}
	if len(settings.TaxKinds) == 0 {
		return errors.New("gst.taxKinds cannot be empty")
	}
	for _, kind := range settings.TaxKinds {
		switch strings.ToLower(strings.TrimSpace(kind.Kind)) {
		case "cgst", "sgst", "igst":
		default:
			return fmt.Errorf("gst.taxKinds: unknown kind %q", kind.Kind)
		}
		if len(kind.Patterns) == 0 {
			return fmt.Errorf("gst.taxKinds: kind %q has no patterns", kind.Kind)
		}
	}
	return nil
}
