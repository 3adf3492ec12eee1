package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"backupauth/internal/ratelimit/models"
	dErrors "backupauth/pkg/domain-errors"
)

// Config holds rate limiting configuration.
type Config struct {
	// Per-account limits by descriptor
	AccountLimits map[models.Descriptor]Limit
}

// Limit defines rate limit parameters for a descriptor. A zero RequestsPerWindow
// disables the limit.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
	// Legacy reports refusals with the older HTTP status family.
	Legacy bool
}

func (l Limit) Disabled() bool {
	return l.RequestsPerWindow <= 0
}

func (l Limit) String() string {
	return fmt.Sprintf("%d/%s", l.RequestsPerWindow, l.Window)
}

// DefaultConfig returns the limits used when no override is configured.
func DefaultConfig() *Config {
	return &Config{
		AccountLimits: map[models.Descriptor]Limit{
			models.DescriptorSetBackupID:   {RequestsPerWindow: 10, Window: 24 * time.Hour},
			models.DescriptorRedeemReceipt: {RequestsPerWindow: 20, Window: time.Hour},
		},
	}
}

// GetAccountLimit returns the limit for a descriptor. Unknown descriptors are disabled.
func (c *Config) GetAccountLimit(descriptor models.Descriptor) Limit {
	if limit, ok := c.AccountLimits[descriptor]; ok {
		return limit
	}
	return Limit{}
}

// ApplyOverrides replaces the limit of every descriptor with a non-empty raw value.
// Raw values use the "count/duration" form parsed by ParseLimit.
func (c *Config) ApplyOverrides(overrides map[models.Descriptor]string) error {
	for descriptor, raw := range overrides {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if !descriptor.IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput, "unknown rate limit descriptor: "+descriptor.String())
		}
		limit, err := ParseLimit(raw)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid limit for "+descriptor.String())
		}
		if c.AccountLimits == nil {
			c.AccountLimits = make(map[models.Descriptor]Limit)
		}
		c.AccountLimits[descriptor] = limit
	}
	return nil
}

// ParseLimit parses "count/duration", for example "10/24h" or "0/1m". The duration uses
// time.ParseDuration syntax.
func ParseLimit(raw string) (Limit, error) {
	countPart, windowPart, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Limit{}, dErrors.New(dErrors.CodeInvalidInput, "limit must have the form count/duration")
	}
	count, err := strconv.Atoi(strings.TrimSpace(countPart))
	if err != nil || count < 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvalidInput, "limit count must be a non-negative integer")
	}
	window, err := time.ParseDuration(strings.TrimSpace(windowPart))
	if err != nil || window <= 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvalidInput, "limit window must be a positive duration")
	}
	return Limit{RequestsPerWindow: count, Window: window}, nil
}
