package sighash

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/suffix-labs/zcash-sighash/pkg/crypto"
	"github.com/suffix-labs/zcash-sighash/pkg/script"
)

// Signature is an ECDSA signature tagged with the hash type it was produced
// under. Verification recomputes the digest with that hash type, so a
// Signature without one cannot be verified.
type Signature struct {
	Sig      *ecdsa.Signature
	HashType SigHashType
}

// maxSerializedHashType is the largest hash type that survives the one-byte
// encoding used by Serialize.
const maxSerializedHashType = 0xff

// Serialize returns the transparent scriptSig encoding:
// DER signature || hash type (1 byte).
//
// Only the low byte of the hash type is written; Sign and Verify reject hash
// types that do not fit. A Signature without an ECDSA value serializes to
// nil.
func (s *Signature) Serialize() []byte {
	if s == nil || s.Sig == nil {
		return nil
	}
	der := s.Sig.Serialize()
	return append(der, byte(s.HashType))
}

// ParseSignature decodes DER signature || hash type.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) < 2 {
		return nil, errors.New("signature too short")
	}

	hashType := SigHashType(b[len(b)-1])
	if hashType == 0 {
		return nil, precondition(ErrMissingSigHashType, "signature carries hash type 0")
	}

	sig, err := ecdsa.ParseDERSignature(b[:len(b)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse DER signature: %w", err)
	}
	return &Signature{Sig: sig, HashType: hashType}, nil
}

// Sign computes the digest for input idx and signs it with key, reading the
// digest as a little-endian scalar. Signing is RFC 6979 deterministic.
//
// Returns an error if:
//   - tx or key is nil
//   - hashType is zero or does not fit in one byte
//   - idx is out of range
//   - the input's spent output is unknown (Sapling-era only)
func Sign(
	tx Signable,
	key *crypto.PrivateKey,
	hashType SigHashType,
	idx int,
	subScript script.Script,
	opts ...Option,
) (*Signature, error) {
	if key == nil {
		return nil, precondition(ErrNilKey, "no private key to sign with")
	}
	if hashType == 0 {
		return nil, precondition(ErrMissingSigHashType, "no signature hash type given")
	}
	if hashType > maxSerializedHashType {
		return nil, precondition(ErrInvalidSigHashType,
			"signature hash type 0x%x does not fit in one byte", uint32(hashType))
	}

	digest, err := CalcSignatureHash(tx, hashType, idx, subScript, opts...)
	if err != nil {
		return nil, err
	}

	sig := key.Sign(digest.signingHash())
	return &Signature{Sig: sig, HashType: hashType}, nil
}

// Verify recomputes the digest for input idx with the hash type carried by
// sig and checks sig against pub.
//
// A well-formed signature that does not match returns false with a nil
// error. An error is returned only for malformed calls: a missing
// transaction, signature, hash type or key, a hash type wider than one byte,
// or an invalid input index. Those checks happen before any hashing.
func Verify(
	tx Signable,
	sig *Signature,
	pub *crypto.PublicKey,
	idx int,
	subScript script.Script,
	opts ...Option,
) (bool, error) {
	if isNil(tx) {
		return false, precondition(ErrNilTransaction, "no transaction to verify against")
	}
	if sig == nil || sig.Sig == nil {
		return false, precondition(ErrNilSignature, "no signature to verify")
	}
	if sig.HashType == 0 {
		return false, precondition(ErrMissingSigHashType,
			"signature does not carry a signature hash type")
	}
	if sig.HashType > maxSerializedHashType {
		return false, precondition(ErrInvalidSigHashType,
			"signature hash type 0x%x does not fit in one byte", uint32(sig.HashType))
	}
	if pub == nil {
		return false, precondition(ErrNilKey, "no public key to verify with")
	}

	digest, err := CalcSignatureHash(tx, sig.HashType, idx, subScript, opts...)
	if err != nil {
		return false, err
	}

	valid := pub.Verify(digest.signingHash(), sig.Sig)
	if !valid {
		log.Debugf("Signature for input %d does not verify against digest %v",
			idx, newLogClosure(func() string { return digest.String() }))
	}
	return valid, nil
}
