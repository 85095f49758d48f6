// Package crypto provides the primitives behind dpapibridge's envelope handling
// and its portable key-store protection backend.
//
// # Base64 Encoding
//
// Protected blobs only ever leave the process as base64 text:
//
//   - [ToBase64]/[FromBase64]: Standard base64 with padding (RFC 4648 §4).
//     Used for the CLI envelope on stdin, stdout and output files.
//
//   - [ToBase64URL]/[FromBase64URL]: URL-safe base64 without padding (RFC 4648 §5).
//     Used for key material stored in key files.
//
// [FromBase64] ignores ASCII whitespace so that a blob printed by a previous
// invocation (with its trailing newline) or wrapped by a mail client decodes.
//
// # Sealed Blobs
//
// Hosts without the Windows Data Protection API protect data with a local
// ML-KEM-768 keypair per key scope:
//
//   - ML-KEM-768 (NIST FIPS 203): encapsulates a fresh shared secret to the
//     scope's public key for every blob.
//
//   - HKDF-SHA-512 (RFC 5869): derives the AES key from the shared secret,
//     salted with SHA-256 of the KEM ciphertext.
//
//   - AES-256-GCM: encrypts the clear data. The whole blob header, including
//     the description, is bound as additional authenticated data.
//
// Use [Seal] to produce a blob and [ParseSealed] followed by [Open] to read it
// back. The header carries the key scope and a key identifier so the caller
// can pick the right keypair before any decryption is attempted.
package crypto
