package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"github.com/golang/snappy"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen           = 32
	pbkdf2Iterations = 1024
	pbkdf2SaltLen    = 64
)

// zeroNonce is the fixed 12-byte all-zero GCM nonce this protocol uses for
// every frame. See spec §9 / original_source/src/network.rs:
// generate_add_nonce — reusing it is a known, documented weakness, not an
// oversight; a correct redesign is noted there and is out of scope here.
var zeroNonce = make([]byte, 12)

// DeriveKey derives the process-wide AES-256-GCM key from a shared secret
// using PBKDF2-HMAC-SHA256 with a fixed 64-byte zero salt and 1024
// iterations, matching ring::pbkdf2::derive in the Rust original.
func DeriveKey(secret string) []byte {
	salt := make([]byte, pbkdf2SaltLen)
	return pbkdf2.Key([]byte(secret), salt, pbkdf2Iterations, keyLen, sha256.New)
}

// Codec seals and opens Messages under a single derived key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a Codec around the given shared secret. Key derivation
// happens once, here, not on every Seal/Open call.
func NewCodec(secret string) (*Codec, error) {
	block, err := aes.NewCipher(DeriveKey(secret))
	if err != nil {
		return nil, fmt.Errorf("wire: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wire: new gcm: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Seal encodes and encrypts m into a single UDP-payload-ready datagram.
func (c *Codec) Seal(m Message) []byte {
	plaintext := Encode(m)
	return c.aead.Seal(nil, zeroNonce, plaintext, nil)
}

// Open decrypts and decodes a received datagram into a Message. Any
// authentication or decode failure is returned as an error so the caller can
// log-and-drop per §4.B/§7.
func (c *Codec) Open(datagram []byte) (Message, error) {
	plaintext, err := c.aead.Open(nil, zeroNonce, datagram, nil)
	if err != nil {
		return Message{}, fmt.Errorf("wire: open: %w", err)
	}
	return Decode(plaintext)
}

// Compress returns the Snappy (raw, unframed) compression of p, for use as
// the data field of a Data message. Never applied to control frames.
func Compress(p []byte) []byte {
	return snappy.Encode(nil, p)
}

// Decompress reverses Compress.
func Decompress(p []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, p)
	if err != nil {
		return nil, fmt.Errorf("wire: decompress: %w", err)
	}
	return out, nil
}
