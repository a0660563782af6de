package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DonationConfig is the runtime donation policy. It is reloaded from
// donation.yml without a restart.
type DonationConfig struct {
	MinimumAmount int64         `mapstructure:"minimumAmount"`
	OrderIDPrefix string        `mapstructure:"orderIdPrefix"`
	Currency      string        `mapstructure:"currency"`
	IntentLockTTL time.Duration `mapstructure:"intentLockTTL"`
	ItemName      string        `mapstructure:"itemName"`
}

func DefaultDonationConfig() DonationConfig {
	return DonationConfig{
		MinimumAmount: 10000,
		OrderIDPrefix: "DONATION",
		Currency:      "IDR",
		IntentLockTTL: 10 * time.Second,
		ItemName:      "Donation",
	}
}

type DonationConfigHolder struct {
	current atomic.Value // holds DonationConfig
}

// NewStaticDonationConfigHolder returns a holder that never reloads.
func NewStaticDonationConfigHolder(cfg DonationConfig) *DonationConfigHolder {
	holder := &DonationConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDonationConfigHolder(log *zap.Logger) (*DonationConfigHolder, error) {
	return loadDonationConfig(log, "/etc/charity", ".")
}

func loadDonationConfig(log *zap.Logger, paths ...string) (*DonationConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("donation.config")

	v := viper.New()

	v.SetConfigName("donation")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("CHARITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDonationConfig()
	v.SetDefault("donation.minimumAmount", defaults.MinimumAmount)
	v.SetDefault("donation.orderIdPrefix", defaults.OrderIDPrefix)
	v.SetDefault("donation.currency", defaults.Currency)
	v.SetDefault("donation.intentLockTTL", defaults.IntentLockTTL)
	v.SetDefault("donation.itemName", defaults.ItemName)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := DefaultDonationConfig()
	if err := v.UnmarshalKey("donation", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeDonationConfig(cfg)
	if err := validateDonationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DonationConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultDonationConfig()
		if err := v.UnmarshalKey("donation", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		updated = normalizeDonationConfig(updated)
		if err := validateDonationConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DonationConfigHolder) Get() DonationConfig {
	if h == nil {
		return DefaultDonationConfig()
	}
	cfg, ok := h.current.Load().(DonationConfig)
	if !ok {
		return DefaultDonationConfig()
	}
	return cfg
}

func normalizeDonationConfig(cfg DonationConfig) DonationConfig {
	cfg.OrderIDPrefix = strings.ToUpper(strings.TrimSpace(cfg.OrderIDPrefix))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	cfg.ItemName = strings.TrimSpace(cfg.ItemName)
	return cfg
}

func validateDonationConfig(cfg DonationConfig) error {
	if cfg.MinimumAmount <= 0 {
		return errors.New("donation.minimumAmount must be positive")
	}
	if cfg.OrderIDPrefix == "" {
		return errors.New("donation.orderIdPrefix cannot be empty")
	}
	if cfg.Currency == "" {
		return errors.New("donation.currency cannot be empty")
	}
	if cfg.IntentLockTTL < 0 {
		return errors.New("donation.intentLockTTL cannot be negative")
	}
	return nil
}
