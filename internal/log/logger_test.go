// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"LAUNCHPAD_DEBUG", "LAUNCHPAD_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
			t.Setenv(key, "")
		}

		cfg := FromEnv()
		if cfg.Level != "info" {
			t.Errorf("expected level 'info', got %q", cfg.Level)
		}
		if cfg.AddSource {
			t.Error("expected add_source false")
		}
	})

	t.Run("debug flag wins over levels", func(t *testing.T) {
		t.Setenv("LAUNCHPAD_DEBUG", "1")
		t.Setenv("LOG_LEVEL", "error")

		cfg := FromEnv()
		if cfg.Level != "debug" {
			t.Errorf("expected level 'debug', got %q", cfg.Level)
		}
		if !cfg.AddSource {
			t.Error("expected add_source true")
		}
	})

	t.Run("launchpad level wins over generic level", func(t *testing.T) {
		t.Setenv("LAUNCHPAD_DEBUG", "")
		t.Setenv("LAUNCHPAD_LOG_LEVEL", "error")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := FromEnv()
		if cfg.Level != "error" {
			t.Errorf("expected level 'error', got %q", cfg.Level)
		}
	})

	t.Run("format from environment", func(t *testing.T) {
		t.Setenv("LAUNCHPAD_DEBUG", "")
		t.Setenv("LOG_FORMAT", "TEXT")

		cfg := FromEnv()
		if cfg.Format != FormatText {
			t.Errorf("expected text format, got %q", cfg.Format)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})
		logger.Info("hello", slog.String("k", "v"))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if entry["msg"] != "hello" {
			t.Errorf("expected msg 'hello', got %v", entry["msg"])
		}
		if entry["k"] != "v" {
			t.Errorf("expected k 'v', got %v", entry["k"])
		}
	})

	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})
		logger.Info("hello")

		if !strings.Contains(buf.String(), "msg=hello") {
			t.Errorf("expected text format, got %q", buf.String())
		}
	})

	t.Run("non-terminal writer defaults to json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&Config{Level: "info", Output: &buf})
		logger.Info("hello")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("default output is not JSON: %v", err)
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&Config{Level: "error", Format: FormatJSON, Output: &buf})
		logger.Debug("quiet")
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output below error, got %q", buf.String())
		}
	})

	t.Run("nil config", func(t *testing.T) {
		logger := New(nil)
		if logger == nil {
			t.Fatal("New(nil) returned nil")
		}
	})
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	WithComponent(logger, "launcher").Info("ping")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "launcher" {
		t.Errorf("expected component 'launcher', got %v", entry["component"])
	}
}

func TestWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	WithService(logger, "wallet").Info("ping")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry[ServiceKey] != "wallet" {
		t.Errorf("expected service 'wallet', got %v", entry[ServiceKey])
	}
}
