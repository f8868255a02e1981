// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadFromPath_File(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "plain value",
			content:  "hunter2",
			expected: "hunter2",
		},
		{
			name:     "trailing newline",
			content:  "hunter2\n",
			expected: "hunter2",
		},
		{
			name:     "trailing whitespace",
			content:  "hunter2  \n",
			expected: "hunter2",
		},
		{
			name:     "leading whitespace",
			content:  "  hunter2",
			expected: "hunter2",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			result, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath() error: %v", err)
			}
			defer result.Close()
			if result.String() != test.expected {
				t.Errorf("ReadFromPath() = %q, want %q", result.String(), test.expected)
			}
		})
	}
}

func TestReadFromPath_FileNotFound(t *testing.T) {
	_, err := ReadFromPath("/nonexistent/path/to/secret")
	if err == nil {
		t.Error("ReadFromPath() with nonexistent file should return error")
	}
}

func TestReadFromPath_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte(""), 0600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	_, err := ReadFromPath(path)
	if err == nil {
		t.Error("ReadFromPath() with empty file should return error")
	}
}

func TestReadFromPath_WhitespaceOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitespace")
	if err := os.WriteFile(path, []byte("  \n\t "), 0600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	_, err := ReadFromPath(path)
	if err == nil {
		t.Error("ReadFromPath() with whitespace-only file should return error")
	}
}

func TestNewFromReader(t *testing.T) {
	content := "user: bob\npass: xyz123"

	tests := []struct {
		name  string
		limit int
	}{
		{name: "exact limit", limit: len(content)},
		{name: "generous limit", limit: 4096},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buffer, err := NewFromReader(strings.NewReader(content), test.limit)
			if err != nil {
				t.Fatalf("NewFromReader() error: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != content {
				t.Errorf("NewFromReader() = %q, want %q", buffer.String(), content)
			}
		})
	}
}

func TestNewFromReader_ShortReads(t *testing.T) {
	content := "one byte at a time"
	buffer, err := NewFromReader(iotest.OneByteReader(strings.NewReader(content)), 64)
	if err != nil {
		t.Fatalf("NewFromReader() error: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != content {
		t.Errorf("NewFromReader() = %q, want %q", buffer.String(), content)
	}
}

func TestNewFromReader_TooLarge(t *testing.T) {
	_, err := NewFromReader(strings.NewReader("0123456789"), 9)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("NewFromReader() error = %v, want ErrTooLarge", err)
	}
}

func TestNewFromReader_ReadError(t *testing.T) {
	failure := errors.New("device unplugged")
	_, err := NewFromReader(iotest.ErrReader(failure), 64)
	if !errors.Is(err, failure) {
		t.Errorf("NewFromReader() error = %v, want wrapped %v", err, failure)
	}
}

func TestNewFromReader_Empty(t *testing.T) {
	buffer, err := NewFromReader(strings.NewReader(""), 64)
	if err != nil {
		t.Fatalf("NewFromReader() error: %v", err)
	}
	defer buffer.Close()
	if buffer.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buffer.Len())
	}
}

func TestAllocator_ReadTrimmed(t *testing.T) {
	buffer, err := Default().ReadTrimmed(strings.NewReader("  hunter2\r\n"))
	if err != nil {
		t.Fatalf("ReadTrimmed() error: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "hunter2" {
		t.Errorf("ReadTrimmed() = %q, want %q", buffer.String(), "hunter2")
	}

	if _, err := Default().ReadTrimmed(strings.NewReader("\n\t\n")); err == nil {
		t.Error("ReadTrimmed() of whitespace should return error")
	}
}
