package application

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines delinquency sweep configuration.
type Config struct {
	// GraceInstallments is how many installments a credit may fall behind
	// before the sweep marks it defaulted.
	GraceInstallments int            `yaml:"grace_installments"`
	Tenants           []string       `yaml:"tenants"`
	Schedule          ScheduleConfig `yaml:"schedule"`
	WebhookURL        string         `yaml:"webhook_url"`
	DryRun            bool           `yaml:"dry_run"`
}

// ScheduleConfig defines the cron schedule of the sweep.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		GraceInstallments: getenvIntDefault("SWEEP_GRACE_INSTALLMENTS", 2),
		WebhookURL:        os.Getenv("SWEEP_WEBHOOK_URL"),
	}

	if path := os.Getenv("SWEEP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = getenvDefault("SWEEP_CRON", "0 3 * * *")
	}
	if len(cfg.Tenants) == 0 {
		cfg.Tenants = splitCSV(os.Getenv("SWEEP_TENANTS"))
	}
	if cfg.GraceInstallments < 0 {
		return cfg, errors.New("sweep: negative grace_installments")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
