package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// Sealed is a parsed sealed blob.
//
// Layout, all integers big-endian:
//
//	magic "DPB1" (4) || version (1) || scope (1) || key id (8) ||
//	ML-KEM ciphertext (1088) || nonce (12) || description length (2) ||
//	description || AES-GCM ciphertext || tag (16)
//
// Everything before the AES-GCM ciphertext is the additional authenticated data.
type Sealed struct {
	// Scope is the key scope byte chosen by the caller of Seal.
	Scope byte
	// KeyID identifies the keypair the blob was sealed to.
	KeyID [KeyIDSize]byte
	// CtKem is the ML-KEM-768 ciphertext.
	CtKem []byte
	// Nonce is the AES-GCM nonce.
	Nonce []byte
	// Description is the caller supplied description, authenticated but not encrypted.
	Description string
	// Ciphertext is the AES-GCM ciphertext including the tag.
	Ciphertext []byte

	header []byte
}

// Seal encrypts plaintext to publicKey and returns the sealed blob. Optional
// entropy is mixed into the key derivation and must be supplied again to Open.
func Seal(publicKey []byte, scope byte, description string, entropy, plaintext []byte) ([]byte, error) {
	if len(description) > MaxDescriptionSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDescriptionTooLong, len(description))
	}

	ctKem, sharedSecret, err := Encapsulate(publicKey)
	if err != nil {
		return nil, fmt.Errorf("encapsulate: %w", err)
	}

	nonce := make([]byte, AESNonceSize)
	if _, err := io.ReadFull(nonceReader(), nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}

	id := keyID(publicKey)

	header := make([]byte, 0, sealFixedSize+len(description))
	header = append(header, SealMagic[:]...)
	header = append(header, SealVersion, scope)
	header = append(header, id[:]...)
	header = append(header, ctKem...)
	header = append(header, nonce...)
	header = binary.BigEndian.AppendUint16(header, uint16(len(description)))
	header = append(header, description...)

	key, err := sealKey(sharedSecret, ctKem, entropy)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	ciphertext, err := encryptAESGCM(key, nonce, header, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	return append(header, ciphertext...), nil
}

// ParseSealed splits a sealed blob into its fields without decrypting it.
func ParseSealed(blob []byte) (*Sealed, error) {
	if len(blob) < sealFixedSize+AESTagSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrInvalidBlob, len(blob))
	}
	if !bytes.Equal(blob[:len(SealMagic)], SealMagic[:]) {
		return nil, fmt.Errorf("%w: unknown format", ErrInvalidBlob)
	}

	off := len(SealMagic)
	if blob[off] != SealVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidBlob, blob[off])
	}
	off++

	s := &Sealed{Scope: blob[off]}
	off++

	copy(s.KeyID[:], blob[off:off+KeyIDSize])
	off += KeyIDSize

	s.CtKem = blob[off : off+MLKEMCiphertextSize]
	off += MLKEMCiphertextSize

	s.Nonce = blob[off : off+AESNonceSize]
	off += AESNonceSize

	descLen := int(binary.BigEndian.Uint16(blob[off:]))
	off += 2

	if len(blob)-off < descLen+AESTagSize {
		return nil, fmt.Errorf("%w: truncated description", ErrInvalidBlob)
	}
	s.Description = string(blob[off : off+descLen])
	off += descLen

	s.header = blob[:off]
	s.Ciphertext = blob[off:]
	return s, nil
}

// Open decrypts a parsed blob with keypair. It returns ErrKeyMismatch when the
// blob was sealed to another key and ErrDecryptionFailed when authentication
// fails, including when entropy differs from the one given to Seal.
func Open(s *Sealed, keypair *Keypair, entropy []byte) ([]byte, error) {
	if keypair.KeyID() != s.KeyID {
		return nil, ErrKeyMismatch
	}

	sharedSecret, err := keypair.Decapsulate(s.CtKem)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}

	key, err := sealKey(sharedSecret, s.CtKem, entropy)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return decryptAESGCM(key, s.Nonce, s.header, s.Ciphertext)
}

// sealKey derives the AES key for one blob.
//
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: context string || entropy length (4 bytes BE) || entropy
func sealKey(sharedSecret, ctKem, entropy []byte) ([]byte, error) {
	saltHash := sha256.Sum256(ctKem)

	info := make([]byte, 0, len(HKDFContext)+4+len(entropy))
	info = append(info, HKDFContext...)
	info = binary.BigEndian.AppendUint32(info, uint32(len(entropy)))
	info = append(info, entropy...)

	return DeriveKey(sharedSecret, saltHash[:], info, AESKeySize)
}

func nonceReader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}
