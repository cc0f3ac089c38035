package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingPolicy captures the billing constants applied to prorated upgrades.
// Currency is the code stamped on generated orders; DaysPerMonth is the fixed
// assumed month length used by the proration formula (calendar-unaware on
// purpose, this mirrors the pricing team's policy).
type BillingPolicy struct {
	Currency     string `mapstructure:"currency"`
	DaysPerMonth int    `mapstructure:"daysPerMonth"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		Currency:     "SAR",
		DaysPerMonth: 30,
	}
}

// BillingPolicyHolder exposes the current billing policy with hot reload.
type BillingPolicyHolder struct {
	current atomic.Value // holds BillingPolicy
}

func NewBillingPolicyHolder() (*BillingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/fatura")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FATURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingPolicy()
	v.SetDefault("billing.currency", defaults.Currency)
	v.SetDefault("billing.daysPerMonth", defaults.DaysPerMonth)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy BillingPolicy
	if err := v.UnmarshalKey("billing", &policy); err != nil {
		return nil, err
	}
	if err := validateBillingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingPolicy
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-policy] reload failed: %v", err)
			return
		}
		if err := validateBillingPolicy(updated); err != nil {
			log.Printf("[billing-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingPolicyHolder returns a holder pinned to the given policy.
// Used by tests and seeds that must not touch the filesystem.
func NewStaticBillingPolicyHolder(policy BillingPolicy) *BillingPolicyHolder {
	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *BillingPolicyHolder) Get() BillingPolicy {
	return h.current.Load().(BillingPolicy)
}

func validateBillingPolicy(policy BillingPolicy) error {
	if strings.TrimSpace(policy.Currency) == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if policy.DaysPerMonth <= 0 {
		return errors.New("billing.daysPerMonth must be positive")
	}
	return nil
}
