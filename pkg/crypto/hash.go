package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	blake2b "github.com/minio/blake2b-simd"
	"golang.org/x/crypto/ripemd160"
)

// PersonalizationSize is the length of a BLAKE2b personalization string.
const PersonalizationSize = 16

// NewBlake2b256 creates a BLAKE2b-256 hash with the given personalization.
// Personalizations shorter than 16 bytes are zero padded by BLAKE2b itself.
// The personalization is NOT a key, but a distinct parameter that modifies
// the hash function.
func NewBlake2b256(personalization []byte) (hash.Hash, error) {
	if len(personalization) > PersonalizationSize {
		return nil, fmt.Errorf("personalization must be at most %d bytes, got %d",
			PersonalizationSize, len(personalization))
	}

	config := &blake2b.Config{
		Size:   32,
		Person: personalization,
	}
	return blake2b.New(config)
}

// Blake2b256 hashes data with a personalized BLAKE2b-256.
func Blake2b256(personalization []byte, data []byte) ([32]byte, error) {
	var digest [32]byte

	h, err := NewBlake2b256(personalization)
	if err != nil {
		return digest, err
	}
	h.Write(data)
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// DoubleSHA256 calculates SHA256(SHA256(b)).
func DoubleSHA256(b []byte) [32]byte {
	return chainhash.DoubleHashH(b)
}

// Hash160 calculates RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}

// Reverse returns a byte-reversed copy of a 32-byte value.
func Reverse(b [32]byte) [32]byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
