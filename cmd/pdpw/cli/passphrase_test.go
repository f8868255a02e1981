// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pdpw/pdpw/lib/secret"
)

func TestReadKeystrokes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "enter", input: "hunter2\r", want: "hunter2"},
		{name: "newline", input: "hunter2\nignored", want: "hunter2"},
		{name: "backspace", input: "huntex\x7fr2\r", want: "hunter2"},
		{name: "ctrl-h", input: "hunterX\x082\r", want: "hunter2"},
		{name: "backspace on empty", input: "\x7f\x7fab\r", want: "ab"},
		{name: "backspace removes whole rune", input: "passé\x7fe\r", want: "passe"},
		{name: "backspace removes wide rune", input: "k密\x7fey\r", want: "key"},
		{name: "kill line", input: "wrong\x15right\r", want: "right"},
		{name: "end of input", input: "hunter2", want: "hunter2"},
		{name: "ctrl-d ends entry", input: "hunter2\x04more", want: "hunter2"},
		{name: "empty line", input: "\r", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buffer, err := readKeystrokes(strings.NewReader(test.input), secret.Default())
			if err != nil {
				t.Fatalf("readKeystrokes() error: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != test.want {
				t.Errorf("passphrase = %q, want %q", buffer.String(), test.want)
			}
		})
	}
}

func TestReadKeystrokes_OneByteAtATime(t *testing.T) {
	buffer, err := readKeystrokes(iotest.OneByteReader(strings.NewReader("abc\x7fd\r")), secret.Default())
	if err != nil {
		t.Fatalf("readKeystrokes() error: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "abd" {
		t.Errorf("passphrase = %q, want %q", buffer.String(), "abd")
	}
}

func TestReadKeystrokes_Errors(t *testing.T) {
	tests := []struct {
		name     string
		reader   io.Reader
		category ErrorCategory
		sentinel error
	}{
		{name: "interrupt", reader: strings.NewReader("hunt\x03er2\r"), sentinel: ErrInterrupted},
		{name: "empty input", reader: strings.NewReader(""), category: CategoryValidation},
		{name: "ctrl-d on empty line", reader: strings.NewReader("\x04"), category: CategoryValidation},
		{name: "read failure", reader: iotest.ErrReader(errors.New("device gone")), category: CategoryInternal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buffer, err := readKeystrokes(test.reader, secret.Default())
			if err == nil {
				buffer.Close()
				t.Fatal("expected error")
			}
			if test.sentinel != nil {
				if !errors.Is(err, test.sentinel) {
					t.Errorf("error = %v, want %v", err, test.sentinel)
				}
				return
			}
			var toolError *ToolError
			if !errors.As(err, &toolError) || toolError.Category != test.category {
				t.Errorf("error = %v, want category %q", err, test.category)
			}
		})
	}
}

func TestReadPassphrase_NotATerminal(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var prompt bytes.Buffer
	_, err = ReadPassphrase(file, &prompt, "Passphrase: ", secret.Default())
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Fatalf("error = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "--passphrase-file") {
		t.Errorf("error %q should mention --passphrase-file", err)
	}
	if prompt.Len() != 0 {
		t.Errorf("prompt printed without a terminal: %q", prompt.String())
	}
}

func TestConfirmPassphrase(t *testing.T) {
	newBuffer := func(value string) *secret.Buffer {
		buffer, err := secret.NewFromBytes([]byte(value))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { buffer.Close() })
		return buffer
	}

	if err := confirmPassphrase(newBuffer("hunter2"), newBuffer("hunter2")); err != nil {
		t.Errorf("matching passphrases rejected: %v", err)
	}
	err := confirmPassphrase(newBuffer("hunter2"), newBuffer("hunter3"))
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Errorf("error = %v, want mismatch", err)
	}
	if err := confirmPassphrase(newBuffer("hunter2"), newBuffer("hunter22")); err == nil {
		t.Error("prefix accepted as a match")
	}
}
