package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	validSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}
	validFormats    = []string{"text", "json"}
)

func isValidPoolConfig(c *PoolConfig) error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

func isValidWorkloadConfig(c *WorkloadConfig) error {
	if c.Tasks < 0 {
		return fmt.Errorf("tasks must not be negative, got %d", c.Tasks)
	}
	if c.TaskDuration < 0 {
		return fmt.Errorf("task-duration must not be negative, got %v", c.TaskDuration)
	}
	if c.Submitters <= 0 {
		return fmt.Errorf("submitters must be positive, got %d", c.Submitters)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	}
	if c.Rate > 0 && c.Burst <= 0 {
		return fmt.Errorf("burst must be positive when rate is set, got %d", c.Burst)
	}
	if c.PanicEvery < 0 {
		return fmt.Errorf("panic-every must not be negative, got %d", c.PanicEvery)
	}
	return nil
}

func isValidLoggingConfig(c *LoggingConfig) error {
	if !slices.Contains(validSeverities, strings.ToUpper(c.Severity)) {
		return fmt.Errorf("invalid log severity %q, want one of %v", c.Severity, validSeverities)
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("invalid log format %q, want one of %v", c.Format, validFormats)
	}
	if c.FilePath != "" && c.MaxSizeMB <= 0 {
		return fmt.Errorf("max-size-mb must be positive, got %d", c.MaxSizeMB)
	}
	if c.MaxBackups < 0 {
		return fmt.Errorf("max-backups must not be negative, got %d", c.MaxBackups)
	}
	return nil
}

func isValidMetricsConfig(c *MetricsConfig) error {
	if c.Enabled && c.Namespace == "" {
		return errors.New("metrics namespace must not be empty")
	}
	return nil
}

// Validate reports every invalid section of c.
func Validate(c *Config) error {
	var errs []error
	if err := isValidPoolConfig(&c.Pool); err != nil {
		errs = append(errs, fmt.Errorf("error parsing pool config: %w", err))
	}
	if err := isValidWorkloadConfig(&c.Workload); err != nil {
		errs = append(errs, fmt.Errorf("error parsing workload config: %w", err))
	}
	if err := isValidLoggingConfig(&c.Logging); err != nil {
		errs = append(errs, fmt.Errorf("error parsing logging config: %w", err))
	}
	if err := isValidMetricsConfig(&c.Metrics); err != nil {
		errs = append(errs, fmt.Errorf("error parsing metrics config: %w", err))
	}
	return errors.Join(errs...)
}
