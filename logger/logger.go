// Package logger owns the process-wide logrus loggers. Loggers are created
// lazily by name and share one configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/caarlos0/env"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level, format and destination of every logger.
type Config struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`   // text | json
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"` // stdout | file | both
	Path       string `env:"LOG_PATH" envDefault:"logs"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"28"` // days
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "text", Output: "stdout", Path: "logs", MaxSize: 100, MaxBackups: 5, MaxAge: 28, Compress: true}
}

// ConfigFromEnv parses LOG_* variables.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse log env: %w", err)
	}
	return cfg, nil
}

var (
	mu      sync.Mutex
	loggers = make(map[string]*logrus.Logger)
	config  *Config
)

// Init installs cfg and drops previously created loggers so the next
// GetLogger call picks the new settings up.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	config = cfg
	loggers = make(map[string]*logrus.Logger)
	return nil
}

// GetLogger returns the named logger, creating it on first use.
func GetLogger(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = DefaultConfig()
	}
	if l, ok := loggers[name]; ok {
		return l
	}
	l := createLogger(name, config)
	loggers[name] = l
	return l
}

// L is the application logger.
func L() *logrus.Logger { return GetLogger("app") }

// Access is the HTTP access logger.
func Access() *logrus.Logger { return GetLogger("access") }

func createLogger(name string, cfg *Config) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				s := strings.Split(f.Function, ".")
				return s[len(s)-1], fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
			},
		})
	}

	var writers []io.Writer
	if cfg.Output == "file" || cfg.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, name+".log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if cfg.Output != "file" {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))
	l.SetReportCaller(name != "access")
	return l
}
