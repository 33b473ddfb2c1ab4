package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ffarham/web-server/pkg/config"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(true, &buf)

	levels := []struct {
		log   func(string)
		msg   string
		level string
	}{
		{func(m string) { logger.Debug().Msg(m) }, "debug message", `"level":"debug"`},
		{func(m string) { logger.Info().Msg(m) }, "info message", `"level":"info"`},
		{func(m string) { logger.Warn().Msg(m) }, "warn message", `"level":"warn"`},
		{func(m string) { logger.Error().Msg(m) }, "error message", `"level":"error"`},
	}

	for _, l := range levels {
		l.log(l.msg)
		output := buf.String()
		buf.Reset()

		if !strings.Contains(output, l.msg) {
			t.Errorf("Log should contain '%s', got: %s", l.msg, output)
		}
		if !strings.Contains(output, l.level) {
			t.Errorf("Log should have %s, got: %s", l.level, output)
		}
	}
}

func TestDebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(false, &buf)

	logger.Debug().Msg("debug message")
	if strings.Contains(buf.String(), "debug message") {
		t.Errorf("Debug log should not be visible when debug is disabled, got: %s", buf.String())
	}
	buf.Reset()

	logger.Info().Msg("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("Info log should be visible when debug is disabled, got: %s", buf.String())
	}
}

func TestContextualLogging(t *testing.T) {
	var buf bytes.Buffer
	globalLogger = NewLogger(true, &buf)
	defer func() { globalLogger = NewLogger(false, os.Stderr) }()

	componentLogger := WithComponent("listener")
	componentLogger.Info().Int("worker", 3).Msg("accepted connection")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v", err)
	}

	if component, ok := logEntry["component"].(string); !ok || component != "listener" {
		t.Errorf("Expected component field to be 'listener', got: %v", logEntry["component"])
	}
	if worker, ok := logEntry["worker"].(float64); !ok || int(worker) != 3 {
		t.Errorf("Expected worker field to be 3, got: %v", logEntry["worker"])
	}
	if _, ok := logEntry["time"].(string); !ok {
		t.Errorf("Log entry should contain a timestamp field")
	}
}

func TestHelperFunctions(t *testing.T) {
	var buf bytes.Buffer
	globalLogger = NewLogger(true, &buf)
	defer func() { globalLogger = NewLogger(false, os.Stderr) }()

	Debug("debug helper message")
	Info("info helper message")
	Error("error helper message")

	output := buf.String()
	for _, msg := range []string{"debug helper message", "info helper message", "error helper message"} {
		if !strings.Contains(output, msg) {
			t.Errorf("Helper output should contain '%s', got: %s", msg, output)
		}
	}
	buf.Reset()

	InfoWith("server listening", map[string]interface{}{
		"address": "0.0.0.0:80",
		"workers": 100,
		"timeout": 2 * time.Second,
	})

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v", err)
	}
	if logEntry["address"] != "0.0.0.0:80" {
		t.Errorf("Expected address field, got: %v", logEntry["address"])
	}
	if workers, ok := logEntry["workers"].(float64); !ok || int(workers) != 100 {
		t.Errorf("Expected workers field to be 100, got: %v", logEntry["workers"])
	}
	buf.Reset()

	ErrorWith("bind failed", map[string]interface{}{
		"error": errors.New("address already in use"),
	})
	if !strings.Contains(buf.String(), "address already in use") {
		t.Errorf("Expected error text in output, got: %s", buf.String())
	}
}

func TestOutputToFile(t *testing.T) {
	cfg := config.LoadDefault()
	cfg.Logging.LogToFile = true
	cfg.Logging.LogFilePath = filepath.Join(t.TempDir(), "server.log")

	logger := NewLogger(true, Output(false, cfg))
	logger.Info().Msg("written to file")

	data, err := os.ReadFile(cfg.Logging.LogFilePath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected log file to contain message, got: %s", string(data))
	}
}

func TestOutputDefaultsToStderr(t *testing.T) {
	if Output(false, nil) != os.Stderr {
		t.Error("Expected stderr output without configuration")
	}
	if Output(true, config.LoadDefault()) != os.Stderr {
		t.Error("Expected stderr output when file logging is disabled")
	}
}
