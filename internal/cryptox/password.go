package cryptox

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
	"golang.org/x/crypto/argon2"
)

// passwordEnvelope is the serialized form of a password-encrypted payload:
// the argon2id salt used to derive the key, the AES-GCM nonce, and the
// sealed data.
type passwordEnvelope struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// EncryptWithPassword encrypts plaintext under a key derived from password.
// Used exclusively to wrap a user's own private key under their login
// password.
func EncryptWithPassword(plaintext, password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	key := deriveKey(password, salt)
	defer common.WipeByteArray(key)

	nonce, sealed, err := sealWithDataKey([]byte(plaintext), key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}

	blob, err := json.Marshal(passwordEnvelope{Salt: salt, Nonce: nonce, Data: sealed})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoEncryptFailed, err)
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptWithPassword reverses EncryptWithPassword. A wrong password or a
// malformed envelope fails with ErrCryptoDecryptFailed.
func DecryptWithPassword(ciphertext, password string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	var env passwordEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}

	key := deriveKey(password, env.Salt)
	defer common.WipeByteArray(key)

	plaintext, err := openWithDataKey(env.Data, env.Nonce, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCryptoDecryptFailed, err)
	}
	return string(plaintext), nil
}
