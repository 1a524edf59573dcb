// Package config holds the configuration of the threadpool command line tool.
//
// Values are resolved by viper in the usual order: explicitly set flags, then
// THREADPOOL_* environment variables, then the YAML config file, then the
// flag defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "THREADPOOL"

type Config struct {
	Pool     PoolConfig     `yaml:"pool"`
	Workload WorkloadConfig `yaml:"workload"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type PoolConfig struct {
	Name         string `yaml:"name"`
	Workers      int    `yaml:"workers"`
	LockOSThread bool   `yaml:"lock-os-thread"`
	CPUAffinity  bool   `yaml:"cpu-affinity"`
}

// WorkloadConfig describes the synthetic tasks submitted by the run command.
type WorkloadConfig struct {
	Tasks int `yaml:"tasks"`
	// TaskDuration is how long each task keeps its worker busy.
	TaskDuration time.Duration `yaml:"task-duration"`
	Submitters   int           `yaml:"submitters"`
	// Rate caps submissions per second across all submitters. Zero means unlimited.
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
	// PanicEvery makes every n-th task panic. Zero disables it.
	PanicEvery int  `yaml:"panic-every"`
	Progress   bool `yaml:"progress"`
}

type LoggingConfig struct {
	Severity string `yaml:"severity"`
	Format   string `yaml:"format"`
	// FilePath sends logs to a rotated file instead of stderr.
	FilePath   string `yaml:"file-path"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	// Enabled prints a Prometheus text dump after the run.
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			Name:         "threadpool",
			Workers:      runtime.NumCPU(),
			LockOSThread: true,
		},
		Workload: WorkloadConfig{
			Tasks:        64,
			TaskDuration: 50 * time.Millisecond,
			Submitters:   1,
			Burst:        1,
			Progress:     true,
		},
		Logging: LoggingConfig{
			Severity:   "INFO",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Namespace: "threadpool",
		},
	}
}

// flagBinding ties a command line flag to its viper key.
type flagBinding struct {
	flag string
	key  string
}

var bindings = []flagBinding{
	{"name", "pool.name"},
	{"workers", "pool.workers"},
	{"lock-os-thread", "pool.lock-os-thread"},
	{"cpu-affinity", "pool.cpu-affinity"},
	{"tasks", "workload.tasks"},
	{"task-duration", "workload.task-duration"},
	{"submitters", "workload.submitters"},
	{"rate", "workload.rate"},
	{"burst", "workload.burst"},
	{"panic-every", "workload.panic-every"},
	{"progress", "workload.progress"},
	{"log-severity", "logging.severity"},
	{"log-format", "logging.format"},
	{"log-file", "logging.file-path"},
	{"log-max-size-mb", "logging.max-size-mb"},
	{"log-max-backups", "logging.max-backups"},
	{"log-compress", "logging.compress"},
	{"metrics", "metrics.enabled"},
	{"metrics-namespace", "metrics.namespace"},
}

// BindFlags registers every configuration flag on flagSet and binds it to v.
func BindFlags(flagSet *pflag.FlagSet, v *viper.Viper) error {
	d := Default()

	flagSet.String("name", d.Pool.Name, "Pool name attached to every log record.")
	flagSet.IntP("workers", "w", d.Pool.Workers, "Number of workers in the pool.")
	flagSet.Bool("lock-os-thread", d.Pool.LockOSThread, "Wire each worker to its own OS thread.")
	flagSet.Bool("cpu-affinity", d.Pool.CPUAffinity, "Pin worker i to CPU i modulo the CPU count.")

	flagSet.IntP("tasks", "n", d.Workload.Tasks, "Number of tasks to submit.")
	flagSet.Duration("task-duration", d.Workload.TaskDuration, "How long each task keeps its worker busy.")
	flagSet.Int("submitters", d.Workload.Submitters, "Number of goroutines submitting tasks concurrently.")
	flagSet.Float64("rate", d.Workload.Rate, "Maximum submissions per second, 0 for unlimited.")
	flagSet.Int("burst", d.Workload.Burst, "Submission burst allowed by the rate limiter.")
	flagSet.Int("panic-every", d.Workload.PanicEvery, "Make every n-th task panic, 0 to disable.")
	flagSet.Bool("progress", d.Workload.Progress, "Show a progress bar while tasks complete.")

	flagSet.String("log-severity", d.Logging.Severity, "Log severity: TRACE, DEBUG, INFO, WARNING, ERROR or OFF.")
	flagSet.String("log-format", d.Logging.Format, "Log format: text or json.")
	flagSet.String("log-file", d.Logging.FilePath, "Write logs to this rotated file instead of stderr.")
	flagSet.Int("log-max-size-mb", d.Logging.MaxSizeMB, "Maximum log file size before rotation.")
	flagSet.Int("log-max-backups", d.Logging.MaxBackups, "Number of rotated log files to keep.")
	flagSet.Bool("log-compress", d.Logging.Compress, "Gzip rotated log files.")

	flagSet.Bool("metrics", d.Metrics.Enabled, "Print Prometheus metrics after the run.")
	flagSet.String("metrics-namespace", d.Metrics.Namespace, "Namespace of the exported metrics.")

	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flagSet.Lookup(b.flag)); err != nil {
			return fmt.Errorf("bind flag %q: %w", b.flag, err)
		}
	}
	return nil
}

// DecodeHook is used by Load while building the Config from viper values.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load resolves the configuration from v, the environment and, when file is
// non-empty, the YAML file at that path. The result is validated.
func Load(v *viper.Viper, file string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	cfg := Default()
	err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("error while unmarshaling the config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// YAML renders c the way it would be written in a config file.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
