package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		BulkMaxOffers:       getEnvAsInt("BULK_MAX_OFFERS", 100),
		BulkSendsPerHour:    getEnvAsInt("BULK_SENDS_PER_HOUR", 5),
		BulkParallelism:     getEnvAsInt("BULK_PARALLELISM", 4),
		ApplyPerMinute:      getEnvAsInt("APPLY_PER_MINUTE", 3),
		DefaultCooldownDays: getEnvAsInt("DEFAULT_COOLDOWN_DAYS", 7),
	}
}

// Overlay replaces the fields present in the YAML file at path. Zero or negative
// values in the file are ignored.
func (p *PolicyConfig) Overlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}

	var file PolicyConfig
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	if file.BulkMaxOffers > 0 {
		p.BulkMaxOffers = file.BulkMaxOffers
	}
	if file.BulkSendsPerHour > 0 {
		p.BulkSendsPerHour = file.BulkSendsPerHour
	}
	if file.BulkParallelism > 0 {
		p.BulkParallelism = file.BulkParallelism
	}
	if file.ApplyPerMinute > 0 {
		p.ApplyPerMinute = file.ApplyPerMinute
	}
	if file.DefaultCooldownDays > 0 {
		p.DefaultCooldownDays = file.DefaultCooldownDays
	}
	return nil
}
