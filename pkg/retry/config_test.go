package retry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/rs/zerolog"
)

func TestFromConfig(t *testing.T) {
	cfg := config.LoadDefault()
	cfg.Retry = config.RetryConfig{
		Enabled:         true,
		MaxRetries:      5,
		InitialDelay:    200,
		MaxDelay:        10000,
		BackoffFactor:   3.0,
		JitterFactor:    0.3,
		RetryableErrors: []string{"timeout", "connection refused"},
	}

	opts := FromConfig(cfg, zerolog.Nop())

	if opts.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got: %d", opts.MaxRetries)
	}
	if opts.InitialDelay != 200*time.Millisecond {
		t.Errorf("Expected InitialDelay=200ms, got: %v", opts.InitialDelay)
	}
	if opts.MaxDelay != 10*time.Second {
		t.Errorf("Expected MaxDelay=10s, got: %v", opts.MaxDelay)
	}
	if opts.BackoffFactor != 3.0 {
		t.Errorf("Expected BackoffFactor=3.0, got: %v", opts.BackoffFactor)
	}
	if opts.JitterFactor != 0.3 {
		t.Errorf("Expected JitterFactor=0.3, got: %v", opts.JitterFactor)
	}
	if len(opts.RetryableErrors) != 2 || opts.RetryableErrors[1] != "connection refused" {
		t.Errorf("Expected [timeout connection refused], got: %v", opts.RetryableErrors)
	}

	cfg.Retry.Enabled = false
	if disabled := FromConfig(cfg, zerolog.Nop()); disabled.MaxRetries != 0 {
		t.Errorf("Expected MaxRetries=0 when disabled, got: %d", disabled.MaxRetries)
	}
}

func TestFromConfigLogsRetries(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	cfg := config.LoadDefault()
	cfg.Retry.MaxRetries = 1
	cfg.Retry.InitialDelay = 1
	opts := FromConfig(cfg, logger)

	_, _ = Do(context.Background(), func() (int, error) {
		return 0, errors.New("connection refused")
	}, opts)

	if !strings.Contains(buf.String(), `"message":"retrying"`) {
		t.Errorf("Expected retry attempt to be logged, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"message":"giving up"`) {
		t.Errorf("Expected final failure to be logged, got: %s", buf.String())
	}
}
