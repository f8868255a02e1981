// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Handlers(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(slog.LevelWarn) })
	SetLogLevel(slog.LevelInfo)

	var text bytes.Buffer
	newLogger(&text, true).Info("vault saved", "path", "notes.pdpw")
	if !strings.Contains(text.String(), "msg=\"vault saved\"") {
		t.Errorf("terminal output is not text: %q", text.String())
	}

	var structured bytes.Buffer
	newLogger(&structured, false).Info("vault saved", "path", "notes.pdpw")
	var record map[string]any
	if err := json.Unmarshal(structured.Bytes(), &record); err != nil {
		t.Fatalf("piped output is not JSON: %v (%q)", err, structured.String())
	}
	if record["path"] != "notes.pdpw" {
		t.Errorf("record = %v", record)
	}
}

func TestSetLogLevel_AppliesToExistingLoggers(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(slog.LevelWarn) })

	var output bytes.Buffer
	logger := newLogger(&output, false)

	SetLogLevel(slog.LevelWarn)
	logger.Info("hidden")
	if output.Len() != 0 {
		t.Errorf("info record logged at warn level: %q", output.String())
	}

	SetLogLevel(slog.LevelDebug)
	logger.Debug("shown")
	if !strings.Contains(output.String(), "shown") {
		t.Errorf("debug record missing after SetLogLevel: %q", output.String())
	}
}
