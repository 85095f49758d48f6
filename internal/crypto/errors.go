package crypto

import "errors"

var (
	// ErrInvalidBase64 is returned when text cannot be decoded as base64.
	ErrInvalidBase64 = errors.New("invalid base64")

	// ErrInvalidSecretKeySize is returned when the secret key size is invalid.
	ErrInvalidSecretKeySize = errors.New("invalid secret key size")

	// ErrInvalidPublicKeySize is returned when the public key size is invalid.
	ErrInvalidPublicKeySize = errors.New("invalid public key size")

	// ErrInvalidCiphertextSize is returned when the ciphertext size is invalid.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidBlob is returned when a sealed blob is truncated, carries an
	// unknown magic or version, or is otherwise malformed.
	ErrInvalidBlob = errors.New("invalid protected blob")

	// ErrKeyMismatch is returned when a sealed blob was produced for a
	// different keypair than the one supplied to Open.
	ErrKeyMismatch = errors.New("blob was protected with a different key")

	// ErrDescriptionTooLong is returned when a description does not fit the
	// blob header.
	ErrDescriptionTooLong = errors.New("description too long")
)
