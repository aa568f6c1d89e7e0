// Package crypto implements secp256k1 ECDSA keys for transparent inputs.
//
// Transparent inputs in Zcash use Bitcoin-style secp256k1 ECDSA signatures.
// This package provides key parsing and the raw sign/verify primitive over a
// 32-byte message hash. Choosing which bytes are signed is the job of the
// sighash package.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: compressed 33-byte or uncompressed 65-byte SEC encoding
//   - Signatures: DER-encoded
package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// WIF version bytes.
const (
	MainNetWIFVersion byte = 0x80
	TestNetWIFVersion byte = 0xef
)

// PrivateKey wraps secp256k1 private key
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps secp256k1 public key
type PublicKey struct {
	key *secp256k1.PublicKey
}

// ParsePrivateKeyWIF parses a WIF-encoded private key
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	decoded, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}

	key := secp256k1.PrivKeyFromBytes(decoded)
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}

	key := secp256k1.PrivKeyFromBytes(keyBytes)
	return &PrivateKey{key: key}, nil
}

// Sign produces an RFC 6979 deterministic ECDSA signature over hash, which is
// interpreted as a big-endian 256-bit scalar.
func (pk *PrivateKey) Sign(hash [32]byte) *ecdsa.Signature {
	return ecdsa.Sign(pk.key, hash[:])
}

// PublicKey derives the public key
func (pk *PrivateKey) PublicKey() *PublicKey {
	pubKey := pk.key.PubKey()
	return &PublicKey{key: pubKey}
}

// Bytes returns the raw 32-byte private key
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// SerializeCompressed returns the 33-byte compressed public key
func (pub *PublicKey) SerializeCompressed() [33]byte {
	var result [33]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// Bytes returns the compressed public key bytes
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Hash160 returns RIPEMD160(SHA256(compressed pubkey)), the hash committed to
// by P2PKH scripts.
func (pub *PublicKey) Hash160() []byte {
	return Hash160(pub.Bytes())
}

// IsEqual reports whether both keys are the same curve point.
func (pub *PublicKey) IsEqual(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.key.IsEqual(other.key)
}

// Verify checks a signature over hash (big-endian scalar interpretation).
func (pub *PublicKey) Verify(hash [32]byte, sig *ecdsa.Signature) bool {
	if sig == nil {
		return false
	}
	return sig.Verify(hash[:], pub.key)
}

// ParsePublicKey parses a compressed or uncompressed SEC public key.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	if len(pubKeyBytes) != 33 && len(pubKeyBytes) != 65 {
		return nil, fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(pubKeyBytes))
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &PublicKey{key: pubKey}, nil
}

// decodeWIF decodes a WIF-encoded private key.
// WIF payload: private_key (32 bytes) || [compression_flag]
func decodeWIF(wif string) ([]byte, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("invalid WIF: %w", err)
	}
	if version != MainNetWIFVersion && version != TestNetWIFVersion {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}

	switch {
	case len(payload) == 32:
	case len(payload) == 33 && payload[32] == 0x01:
	case len(payload) == 33:
		return nil, fmt.Errorf("invalid WIF compression flag: 0x%02x", payload[32])
	default:
		return nil, errors.New("invalid WIF length")
	}

	return payload[:32], nil
}
