package cryptox

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/enrollhub/admitd/internal/common"
)

// File envelopes mirror the string envelopes but stream the payload in
// sealed frames, so archives beyond a few MB are never buffered wholesale.
//
// Layout: a 4-byte big-endian header length, the JSON header (wrapped data
// keys plus an 8-byte nonce prefix), then length-prefixed AES-GCM frames.
// Each frame's nonce is the prefix concatenated with a big-endian frame
// counter, which pins frame order. A zero-length terminator frame marks the
// end; a file that stops before it is reported as truncated.

const fileChunkSize = 64 * 1024

type fileHeader struct {
	Keys        map[string][]byte `json:"keys"`
	NoncePrefix []byte            `json:"nonce_prefix"`
}

func frameNonce(prefix []byte, counter uint32) []byte {
	nonce := make([]byte, len(prefix)+4)
	copy(nonce, prefix)
	binary.BigEndian.PutUint32(nonce[len(prefix):], counter)
	return nonce
}

func newFileAEAD(dataKey []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptFileWithRecipients encrypts the file at src into dst so that any
// one of the recipient public keys can decrypt it.
func EncryptFileWithRecipients(src, dst string, recipients []string) error {
	dataKey := common.GenerateRandByteArray(32)
	defer common.WipeByteArray(dataKey)

	keys, err := wrapDataKey(dataKey, recipients)
	if err != nil {
		return err
	}

	aead, err := newFileAEAD(dataKey)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}
	noncePrefix := common.GenerateRandByteArray(aead.NonceSize() - 4)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	header, err := json.Marshal(fileHeader{Keys: keys, NoncePrefix: noncePrefix})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(header))); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}

	writeFrame := func(counter uint32, plaintext []byte) error {
		sealed := aead.Seal(nil, frameNonce(noncePrefix, counter), plaintext, nil)
		if err := binary.Write(w, binary.BigEndian, uint32(len(sealed))); err != nil {
			return err
		}
		_, err := w.Write(sealed)
		return err
	}

	buf := make([]byte, fileChunkSize)
	var counter uint32
	for {
		n, readErr := io.ReadFull(in, buf)
		if n > 0 {
			if err := writeFrame(counter, buf[:n]); err != nil {
				return err
			}
			counter++
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("reading %s: %w", src, readErr)
		}
	}

	// terminator frame, so truncation is detectable on decrypt
	if err := writeFrame(counter, nil); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return out.Sync()
}

// DecryptFileWithPrivateKey decrypts the file at src into dst using the
// caller's private key. Truncated or tampered input, or a key that was not
// among the recipients, fails with ErrCryptoDecryptFailed.
func DecryptFileWithPrivateKey(src, dst, privateKey string) error {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	r := bufio.NewReader(in)

	var headerLen uint32
	if err := binary.Read(r, binary.BigEndian, &headerLen); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	var header fileHeader
	if err := json.Unmarshal(headerBuf, &header); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}

	dataKey, err := unwrapDataKey(header.Keys, priv)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(dataKey)

	aead, err := newFileAEAD(dataKey)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	if len(header.NoncePrefix) != aead.NonceSize()-4 {
		return fmt.Errorf("%w: bad nonce prefix", common.ErrCryptoDecryptFailed)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	var counter uint32
	for {
		var frameLen uint32
		if err := binary.Read(r, binary.BigEndian, &frameLen); err != nil {
			// terminator frame never seen: the file was cut short
			return fmt.Errorf("%w: truncated input", common.ErrCryptoDecryptFailed)
		}
		sealed := make([]byte, frameLen)
		if _, err := io.ReadFull(r, sealed); err != nil {
			return fmt.Errorf("%w: truncated frame", common.ErrCryptoDecryptFailed)
		}

		plaintext, err := aead.Open(nil, frameNonce(header.NoncePrefix, counter), sealed, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
		}
		counter++

		if len(plaintext) == 0 {
			break
		}
		if _, err := w.Write(plaintext); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return out.Sync()
}
