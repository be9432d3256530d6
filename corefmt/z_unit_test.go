package corefmt

import (
	"bytes"
	"testing"
)

func TestBase64URLRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFE, 0xFF, 0x7F, 0x80}
	s := EncodeBase64URL(raw)
	got, err := DecodeBase64URL(s)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch: %x != %x", got, raw)
	}
}

func TestDecodeBase64URLRejectsGarbage(t *testing.T) {
	if _, err := DecodeBase64URL("!!not-base64!!"); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got, err := DecodeHex(EncodeHex(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch: %x != %x", got, raw)
	}
}

func TestBlobFrameRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 24)
	var buf bytes.Buffer
	if err := WriteBlobFrame(&buf, payload); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadBlobFrame(&buf, 1024)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestBlobFrameMaxBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBlobFrame(&buf, make([]byte, 100)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := ReadBlobFrame(&buf, 10); err == nil {
		t.Fatal("expected maxBytes rejection")
	}
}
