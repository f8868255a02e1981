// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/pdpw/pdpw/lib/secret"
)

// ErrInterrupted is returned when Ctrl-C is pressed at a prompt.
var ErrInterrupted = errors.New("interrupted")

// Control bytes the prompt interprets in raw mode.
const (
	keyInterrupt = 0x03 // Ctrl-C
	keyEndOfFile = 0x04 // Ctrl-D
	keyBackspace = 0x08 // Ctrl-H
	keyKillLine  = 0x15 // Ctrl-U
	keyDelete    = 0x7f
)

// ReadPassphrase prints label to prompt and reads a passphrase from the
// terminal input with echo disabled. Input that is not a terminal is a
// validation error: scripts use --passphrase-file instead.
//
// The terminal is put in raw mode and read one byte at a time, each
// byte appended straight to the returned buffer. term.ReadPassword is
// not used because it accumulates the line in a heap slice.
func ReadPassphrase(input *os.File, prompt io.Writer, label string, allocator secret.Allocator) (*secret.Buffer, error) {
	fd := int(input.Fd())
	if !term.IsTerminal(fd) {
		return nil, Validation("no terminal available for passphrase prompt").
			WithHint("Use --passphrase-file (\"-\" reads standard input).")
	}

	fmt.Fprint(prompt, label)
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, Internal("set terminal raw mode: %w", err)
	}
	buffer, err := readKeystrokes(input, allocator)
	term.Restore(fd, state)
	fmt.Fprint(prompt, "\n")
	return buffer, err
}

// ReadNewPassphrase prompts twice and fails unless both entries match.
// Used when a passphrase is being chosen rather than checked.
func ReadNewPassphrase(input *os.File, prompt io.Writer, allocator secret.Allocator) (*secret.Buffer, error) {
	first, err := ReadPassphrase(input, prompt, "New passphrase: ", allocator)
	if err != nil {
		return nil, err
	}
	second, err := ReadPassphrase(input, prompt, "Confirm passphrase: ", allocator)
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()

	if err := confirmPassphrase(first, second); err != nil {
		first.Close()
		return nil, err
	}
	return first, nil
}

func confirmPassphrase(first, second *secret.Buffer) error {
	if !first.Equal(second.Bytes()) {
		return Validation("passphrases do not match")
	}
	return nil
}

// readKeystrokes reads raw-mode input until Enter. Backspace removes
// the last character, Ctrl-U clears the line, Ctrl-C aborts. Ctrl-D or
// end of input on an empty line is an error; on a non-empty line it
// ends entry like Enter.
func readKeystrokes(r io.Reader, allocator secret.Allocator) (*secret.Buffer, error) {
	buffer, err := allocator.New(0)
	if err != nil {
		return nil, Internal("allocating passphrase buffer: %w", err)
	}

	var key [1]byte
	for {
		n, err := r.Read(key[:])
		if n == 1 {
			switch key[0] {
			case '\r', '\n':
				return buffer, nil
			case keyInterrupt:
				buffer.Close()
				return nil, ErrInterrupted
			case keyEndOfFile:
				err = io.EOF
			case keyBackspace, keyDelete:
				dropLastRune(buffer)
			case keyKillLine:
				buffer.Truncate(0)
			default:
				// Append zeros key after copying it.
				if appendErr := buffer.Append(key[:]); appendErr != nil {
					buffer.Close()
					return nil, Internal("storing passphrase: %w", appendErr)
				}
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if buffer.Len() > 0 {
				return buffer, nil
			}
			buffer.Close()
			return nil, Validation("no passphrase entered")
		}
		buffer.Close()
		return nil, Internal("reading passphrase: %w", err)
	}
}

// dropLastRune removes the final UTF-8 sequence, not just its last byte.
func dropLastRune(buffer *secret.Buffer) {
	data := buffer.Bytes()
	if len(data) == 0 {
		return
	}
	start := len(data) - 1
	for start > 0 && !utf8.RuneStart(data[start]) {
		start--
	}
	buffer.Truncate(start)
}
