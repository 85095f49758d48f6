package crypto

const (
	// HKDFContext is the context string used in HKDF key derivation
	// for domain separation.
	HKDFContext = "dpapibridge:seal:v1"

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// PublicKeyOffset is the byte offset where the public key is embedded
	// within an ML-KEM-768 secret key.
	PublicKeyOffset = 1152

	// KeyIDSize is the number of SHA-256 bytes of the public key kept in a
	// sealed blob header.
	KeyIDSize = 8

	// MaxDescriptionSize is the largest description a sealed blob can carry.
	MaxDescriptionSize = 1<<16 - 1
)

// SealMagic identifies a sealed blob.
var SealMagic = [4]byte{'D', 'P', 'B', '1'}

// SealVersion is the only sealed blob layout Open understands.
const SealVersion byte = 1

// sealFixedSize is the header size without the description.
const sealFixedSize = len(SealMagic) + 1 + 1 + KeyIDSize + MLKEMCiphertextSize + AESNonceSize + 2
