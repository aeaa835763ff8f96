// Package config holds the service settings shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPort      = 8080
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	EnvPort         = "PORT"
	EnvStudentsPath = "STUDENTS_FILE"
	EnvResultsPath  = "QUIZ_RESULTS_FILE"
)

var (
	ErrMissingStudentsPath = errors.New("students file path is required")
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
)

type Config struct {
	Port         int
	StudentsPath string
	// ResultsPath may be empty; quiz results are then kept in memory only.
	ResultsPath string
	LogLevel    string
	LogFormat   string
}

// FromEnv returns defaults overlaid with any environment settings. Flags
// registered on top of it take precedence.
func FromEnv() Config {
	cfg := Config{
		Port:         DefaultPort,
		StudentsPath: strings.TrimSpace(os.Getenv(EnvStudentsPath)),
		ResultsPath:  strings.TrimSpace(os.Getenv(EnvResultsPath)),
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			cfg.Port = port
		}
	}
	return cfg
}

// ApplyArgs fills settings from positional `[port] [students] [results]`
// arguments, in that order.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) > 0 {
		port, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, args[0])
		}
		c.Port = port
	}
	if len(args) > 1 {
		c.StudentsPath = strings.TrimSpace(args[1])
	}
	if len(args) > 2 {
		c.ResultsPath = strings.TrimSpace(args[2])
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if strings.TrimSpace(c.StudentsPath) == "" {
		return ErrMissingStudentsPath
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := formatter(c.LogFormat); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
