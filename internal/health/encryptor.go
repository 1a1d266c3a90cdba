package health

import "io"

// Encryptor protects exported snapshots. Encrypting needs only the public
// key; decrypting needs the passphrase that guards the private key.
type Encryptor interface {
	// Setup generates a key pair, writing the public key in plaintext and
	// the private key encrypted with passphrase. Called by `keys init`.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key. It fails on a wrong passphrase.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for one import.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
