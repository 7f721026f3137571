package cryptox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/enrollhub/admitd/internal/common"
)

func writeTempFile(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestEncryptFileWithRecipients_RoundTrip(t *testing.T) {
	pub, priv := mustCreateIdentity(t)
	dir := t.TempDir()

	// larger than one chunk so the frame loop is exercised
	payload := bytes.Repeat([]byte("portfolio-bytes-"), 16*1024)
	src := writeTempFile(t, dir, "bundle.zip", payload)
	enc := filepath.Join(dir, "bundle.zip.enc")
	dec := filepath.Join(dir, "bundle.dec.zip")

	if err := EncryptFileWithRecipients(src, enc, []string{pub}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFileWithPrivateKey(enc, dec, priv); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	got, err := os.ReadFile(dec)
	if err != nil {
		t.Fatalf("reading decrypted file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("decrypted content differs from original (%d vs %d bytes)", len(got), len(payload))
	}
}

func TestEncryptFileWithRecipients_EmptyFile(t *testing.T) {
	pub, priv := mustCreateIdentity(t)
	dir := t.TempDir()

	src := writeTempFile(t, dir, "empty", nil)
	enc := filepath.Join(dir, "empty.enc")
	dec := filepath.Join(dir, "empty.dec")

	if err := EncryptFileWithRecipients(src, enc, []string{pub}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFileWithPrivateKey(enc, dec, priv); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	got, err := os.ReadFile(dec)
	if err != nil {
		t.Fatalf("reading decrypted file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(got))
	}
}

func TestDecryptFileWithPrivateKey_WrongKey(t *testing.T) {
	pubA, _ := mustCreateIdentity(t)
	_, privB := mustCreateIdentity(t)
	dir := t.TempDir()

	src := writeTempFile(t, dir, "f", []byte("data"))
	enc := filepath.Join(dir, "f.enc")
	if err := EncryptFileWithRecipients(src, enc, []string{pubA}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	err := DecryptFileWithPrivateKey(enc, filepath.Join(dir, "f.dec"), privB)
	if !errors.Is(err, common.ErrCryptoDecryptFailed) {
		t.Errorf("expected ErrCryptoDecryptFailed, got %v", err)
	}
}

func TestDecryptFileWithPrivateKey_Truncated(t *testing.T) {
	pub, priv := mustCreateIdentity(t)
	dir := t.TempDir()

	src := writeTempFile(t, dir, "f", bytes.Repeat([]byte("x"), 4096))
	enc := filepath.Join(dir, "f.enc")
	if err := EncryptFileWithRecipients(src, enc, []string{pub}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// chop off the terminator frame and part of the payload
	blob, err := os.ReadFile(enc)
	if err != nil {
		t.Fatalf("reading ciphertext: %v", err)
	}
	truncated := writeTempFile(t, dir, "f.trunc", blob[:len(blob)-64])

	err = DecryptFileWithPrivateKey(truncated, filepath.Join(dir, "f.dec"), priv)
	if !errors.Is(err, common.ErrCryptoDecryptFailed) {
		t.Errorf("expected ErrCryptoDecryptFailed for truncated input, got %v", err)
	}
}
