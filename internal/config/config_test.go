package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvStudentsPath, " students.csv ")
	t.Setenv(EnvResultsPath, "results.csv")

	cfg := FromEnv()

	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, "students.csv", cfg.StudentsPath)
	assert.Equal(t, "results.csv", cfg.ResultsPath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	t.Setenv(EnvStudentsPath, "")
	t.Setenv(EnvResultsPath, "")

	cfg := FromEnv()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Empty(t, cfg.StudentsPath)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingStudentsPath)
}

func TestApplyArgs(t *testing.T) {
	cfg := Config{Port: DefaultPort, LogLevel: "info"}

	require.NoError(t, cfg.ApplyArgs([]string{"8003", "studenter.csv", "quiz-res.csv"}))
	assert.Equal(t, 8003, cfg.Port)
	assert.Equal(t, "studenter.csv", cfg.StudentsPath)
	assert.Equal(t, "quiz-res.csv", cfg.ResultsPath)
	assert.Equal(t, ":8003", cfg.Addr())

	partial := Config{Port: DefaultPort, ResultsPath: "keep.csv"}
	require.NoError(t, partial.ApplyArgs([]string{"8000", "s.csv"}))
	assert.Equal(t, "keep.csv", partial.ResultsPath)

	assert.ErrorIs(t, cfg.ApplyArgs([]string{"eighty"}), ErrInvalidPort)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, StudentsPath: "s.csv", LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, valid.Validate())

	badPort := valid
	badPort.Port = 70000
	assert.ErrorIs(t, badPort.Validate(), ErrInvalidPort)

	badLevel := valid
	badLevel.LogLevel = "loud"
	assert.Error(t, badLevel.Validate())

	badFormat := valid
	badFormat.LogFormat = "xml"
	assert.Error(t, badFormat.Validate())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("student_id", 7).Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(7), entry["student_id"])
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "chatty", "text")
	assert.Error(t, err)
}
