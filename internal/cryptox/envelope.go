package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
)

// envelope is the serialized form of a recipient-set ciphertext: the payload
// sealed under a random data key, plus one RSA-OAEP-wrapped copy of that key
// per recipient, indexed by public key fingerprint.
type envelope struct {
	Keys  map[string][]byte `json:"keys"`
	Nonce []byte            `json:"nonce"`
	Data  []byte            `json:"data"`
}

func sealWithDataKey(plaintext, key []byte) (nonce, ciphertext []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	return nonce, aesgcm.Seal(nil, nonce, plaintext, nil), nil
}

func openWithDataKey(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// wrapDataKey encrypts the data key for every recipient public key and
// returns the fingerprint-indexed map. Any malformed key fails the whole
// operation.
func wrapDataKey(dataKey []byte, recipients []string) (map[string][]byte, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: empty recipient list", common.ErrCryptoEncryptFailed)
	}
	keys := make(map[string][]byte, len(recipients))
	for _, recipient := range recipients {
		pub, err := ParsePublicKey(recipient)
		if err != nil {
			return nil, err
		}
		fp, err := Fingerprint(pub)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
		}
		wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, dataKey, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
		}
		keys[fp] = wrapped
	}
	return keys, nil
}

// unwrapDataKey locates the wrapped key matching the private key's
// fingerprint and unwraps it. A private key that was not among the
// recipients fails with ErrCryptoDecryptFailed.
func unwrapDataKey(keys map[string][]byte, priv *rsa.PrivateKey) ([]byte, error) {
	fp, err := Fingerprint(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	wrapped, ok := keys[fp]
	if !ok {
		return nil, fmt.Errorf("%w: key is not a recipient", common.ErrCryptoDecryptFailed)
	}
	dataKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	return dataKey, nil
}

// EncryptWithRecipients encrypts plaintext so that any one of the recipient
// public keys can decrypt it. A fresh 256-bit data key seals the payload
// with AES-GCM; the data key is wrapped per recipient with RSA-OAEP.
func EncryptWithRecipients(plaintext string, recipients []string) (string, error) {
	dataKey := common.GenerateRandByteArray(32)
	defer common.WipeByteArray(dataKey)

	keys, err := wrapDataKey(dataKey, recipients)
	if err != nil {
		return "", err
	}

	nonce, sealed, err := sealWithDataKey([]byte(plaintext), dataKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}

	blob, err := json.Marshal(envelope{Keys: keys, Nonce: nonce, Data: sealed})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptWithPrivateKey reverses EncryptWithRecipients. It fails with
// ErrCryptoDecryptFailed if the private key does not correspond to any
// recipient used at encryption time, or if the envelope is malformed or
// tampered with. It never returns wrong plaintext.
func DecryptWithPrivateKey(ciphertext, privateKey string) (string, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}

	dataKey, err := unwrapDataKey(env.Keys, priv)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(dataKey)

	plaintext, err := openWithDataKey(env.Data, env.Nonce, dataKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	return string(plaintext), nil
}
