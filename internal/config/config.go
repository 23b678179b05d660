package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
)

type Config struct {
	Port             string
	HTTPTimeout      time.Duration
	FetchRetries     int
	DataDir          string
	Sources          map[string]string // dataset name -> URL or path
	ShiftDates       bool
	DefaultRangeDays int
	Location         *time.Location

	LogLevel      slog.Level
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// FromEnv reads the configuration from the environment. When CONFIG_FILE is
// set, that YAML file provides values the environment does not override.
func FromEnv() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("fetch_retries", 0)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("ads_csv", "platform_metrics.csv")
	v.SetDefault("analytics_csv", "google_analytics.csv")
	v.SetDefault("summary_csv", "summary.csv")
	v.SetDefault("shift_dates", false)
	v.SetDefault("default_range_days", 30)
	v.SetDefault("timezone", "UTC")
}

func fromViper(v *viper.Viper) (Config, error) {
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	days := v.GetInt("default_range_days")
	if days <= 0 {
		days = 30
	}
	to := time.Duration(v.GetInt("http_timeout_seconds")) * time.Second
	if to <= 0 {
		to = 15 * time.Second
	}
	retries := v.GetInt("fetch_retries")
	if retries < 0 {
		retries = 0
	}
	return Config{
		Port:         v.GetString("port"),
		HTTPTimeout:  to,
		FetchRetries: retries,
		DataDir:      v.GetString("data_dir"),
		Sources: map[string]string{
			dataset.Ads:       v.GetString("ads_csv"),
			dataset.Analytics: v.GetString("analytics_csv"),
			dataset.Summary:   v.GetString("summary_csv"),
		},
		ShiftDates:       v.GetBool("shift_dates"),
		DefaultRangeDays: days,
		Location:         loc,
		LogLevel:         parseLevel(v.GetString("log_level")),
		LogFile:          v.GetString("log_file"),
		LogMaxSizeMB:     v.GetInt("log_max_size_mb"),
		LogMaxBackups:    v.GetInt("log_max_backups"),
		LogMaxAgeDays:    v.GetInt("log_max_age_days"),
	}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Source resolves where a dataset is read from: URLs are returned as is,
// relative paths are joined to DataDir. Empty when the dataset has no source.
func (c Config) Source(name string) string {
	src := strings.TrimSpace(c.Sources[name])
	if src == "" || isURL(src) || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(c.DataDir, src)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// LogWriter is stdout, teed into a rotating file when LOG_FILE is set.
func (c Config) LogWriter() io.Writer {
	if c.LogFile == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAgeDays,
		Compress:   true,
	})
}

func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(c.LogWriter(), &slog.HandlerOptions{Level: c.LogLevel}))
}
