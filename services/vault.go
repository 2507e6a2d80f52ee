package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Vault performs symmetric encryption of payment-provider secrets at rest.
// One process-wide key, loaded once at startup; rotation requires a restart.
// Safe for concurrent use: the key is read-only after construction.
type Vault struct {
	aead cipher.AEAD
}

// NewVault builds a vault from a base64-encoded 32-byte key.
func NewVault(encodedKey string) (*Vault, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Vault{aead: aead}, nil
}

// NewVaultFromEnv loads ENCRYPTION_KEY the same way the rest of the app
// loads configuration.
func NewVaultFromEnv() (*Vault, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	key := os.Getenv("ENCRYPTION_KEY")
	if key == "" {
		return nil, errors.New("ENCRYPTION_KEY is not set")
	}
	return NewVault(key)
}

// Encrypt seals a plaintext secret for storage. Ciphertext is
// base64(nonce || sealed).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// EncryptOptional passes nil through unchanged so optional secret fields can
// take the same write path as required ones.
func (v *Vault) EncryptOptional(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	ciphertext, err := v.Encrypt(*plaintext)
	if err != nil {
		return nil, err
	}
	return &ciphertext, nil
}

// Decrypt opens a stored ciphertext. Malformed or wrong-key input fails with
// a CredentialError; callers must let that propagate so a corrupted secret
// blocks link generation. The plaintext is returned only to the caller and
// never logged.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", &CredentialError{Err: err}
	}
	if len(raw) < v.aead.NonceSize() {
		return "", &CredentialError{Err: errors.New("ciphertext too short")}
	}
	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", &CredentialError{Err: err}
	}
	return string(plaintext), nil
}
