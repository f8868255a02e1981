// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"strings"
	"testing"
)

func validEnvelope() *Envelope {
	return &Envelope{
		Version:    FormatVersion,
		KDF:        KDFParams{Salt: bytes.Repeat([]byte{0x11}, saltSize), WorkFactor: 1},
		Nonce:      bytes.Repeat([]byte{0x22}, nonceSize),
		Ciphertext: []byte("ciphertext"),
		Tag:        bytes.Repeat([]byte{0x33}, tagSize),
	}
}

func TestEnvelope_EncodeDecode(t *testing.T) {
	original := validEnvelope()
	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PDPW")) {
		t.Fatalf("encoded envelope starts with %q", data[:4])
	}
	// Array of five fields immediately after the magic.
	if data[len(magic)] != 0x85 {
		t.Errorf("first CBOR byte = %#x, want 0x85", data[len(magic)])
	}

	decoded, err := DecodeEnvelope(data, 4)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if decoded.Version != original.Version ||
		decoded.KDF.WorkFactor != original.KDF.WorkFactor ||
		!bytes.Equal(decoded.KDF.Salt, original.KDF.Salt) ||
		!bytes.Equal(decoded.Nonce, original.Nonce) ||
		!bytes.Equal(decoded.Ciphertext, original.Ciphertext) ||
		!bytes.Equal(decoded.Tag, original.Tag) {
		t.Errorf("DecodeEnvelope() = %+v, want %+v", decoded, original)
	}
}

func TestEnvelope_EncodeDeterministic(t *testing.T) {
	first, err := validEnvelope().Encode()
	if err != nil {
		t.Fatal(err)
	}
	second, err := validEnvelope().Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("equal envelopes encoded differently")
	}
}

func TestEnvelope_AssociatedDataCoversHeader(t *testing.T) {
	base, err := validEnvelope().associatedData()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		modify  func(*Envelope)
		changes bool
	}{
		{name: "version", modify: func(e *Envelope) { e.Version++ }, changes: true},
		{name: "salt", modify: func(e *Envelope) { e.KDF.Salt[3] ^= 1 }, changes: true},
		{name: "work factor", modify: func(e *Envelope) { e.KDF.WorkFactor++ }, changes: true},
		{name: "nonce", modify: func(e *Envelope) { e.Nonce[0] ^= 1 }, changes: true},
		{name: "ciphertext", modify: func(e *Envelope) { e.Ciphertext = []byte("other") }},
		{name: "tag", modify: func(e *Envelope) { e.Tag[0] ^= 1 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			envelope := validEnvelope()
			test.modify(envelope)
			associatedData, err := envelope.associatedData()
			if err != nil {
				t.Fatal(err)
			}
			if changed := !bytes.Equal(associatedData, base); changed != test.changes {
				t.Errorf("associated data changed = %v, want %v", changed, test.changes)
			}
		})
	}
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	encode := func(modify func(*Envelope)) []byte {
		envelope := validEnvelope()
		modify(envelope)
		data, err := envelope.Encode()
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{name: "empty", data: nil, wantErr: "magic"},
		{name: "wrong magic", data: []byte("XXXX\x85"), wantErr: "magic"},
		{name: "magic only", data: []byte("PDPW"), wantErr: "decoding"},
		{name: "not an array", data: []byte("PDPW\xa0"), wantErr: "decoding"},
		{name: "version", data: encode(func(e *Envelope) { e.Version = 2 }), wantErr: "version"},
		{name: "short salt", data: encode(func(e *Envelope) { e.KDF.Salt = e.KDF.Salt[:8] }), wantErr: "salt"},
		{name: "zero work factor", data: encode(func(e *Envelope) { e.KDF.WorkFactor = 0 }), wantErr: "work factor"},
		{name: "work factor above cap", data: encode(func(e *Envelope) { e.KDF.WorkFactor = 5 }), wantErr: "work factor"},
		{name: "short nonce", data: encode(func(e *Envelope) { e.Nonce = e.Nonce[:12] }), wantErr: "nonce"},
		{name: "short tag", data: encode(func(e *Envelope) { e.Tag = e.Tag[:15] }), wantErr: "tag"},
		{name: "trailing bytes", data: append(encode(func(*Envelope) {}), 0x00), wantErr: "decoding"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeEnvelope(test.data, 4)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, test.wantErr)
			}
		})
	}
}

func TestEnvelope_EmptyCiphertext(t *testing.T) {
	envelope := validEnvelope()
	envelope.Ciphertext = nil
	data, err := envelope.Encode()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeEnvelope(data, 4)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error: %v", err)
	}
	if len(decoded.Ciphertext) != 0 {
		t.Errorf("Ciphertext = %x, want empty", decoded.Ciphertext)
	}
}
