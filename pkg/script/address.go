package script

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Transparent address version prefixes (two bytes each).
var (
	MainNetPubKeyHashPrefix = [2]byte{0x1c, 0xb8} // t1...
	MainNetScriptHashPrefix = [2]byte{0x1c, 0xbd} // t3...
	TestNetPubKeyHashPrefix = [2]byte{0x1d, 0x25} // tm...
	TestNetScriptHashPrefix = [2]byte{0x1c, 0xba} // t2...
)

var (
	// ErrInvalidAddress is returned when a transparent address cannot be
	// decoded.
	ErrInvalidAddress = errors.New("invalid transparent address")

	// ErrChecksumMismatch is returned when the base58check checksum of an
	// address does not match its payload. It wraps ErrInvalidAddress.
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
)

// PayToPubKeyHash returns the P2PKH locking script for a HASH160 of a public
// key:
//
//	OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG
func PayToPubKeyHash(pkHash []byte) (Script, error) {
	if len(pkHash) != 20 {
		return nil, fmt.Errorf("pubkey hash must be 20 bytes, got %d", len(pkHash))
	}

	s := make(Script, 0, 25)
	s = append(s, OP_DUP, OP_HASH160, OP_DATA_20)
	s = append(s, pkHash...)
	s = append(s, OP_EQUALVERIFY, OP_CHECKSIG)
	return s, nil
}

// PayToScriptHash returns the P2SH locking script for a HASH160 of a redeem
// script.
func PayToScriptHash(scriptHash []byte) (Script, error) {
	if len(scriptHash) != 20 {
		return nil, fmt.Errorf("script hash must be 20 bytes, got %d", len(scriptHash))
	}

	s := make(Script, 0, 23)
	s = append(s, OP_HASH160, OP_DATA_20)
	s = append(s, scriptHash...)
	s = append(s, OP_EQUAL)
	return s, nil
}

// PayToAddress decodes a base58check transparent address (t1, t3, tm or t2)
// and returns the locking script paying to it.
func PayToAddress(addr string) (Script, error) {
	prefix, hash, err := DecodeAddress(addr)
	if err != nil {
		return nil, err
	}

	switch prefix {
	case MainNetPubKeyHashPrefix, TestNetPubKeyHashPrefix:
		return PayToPubKeyHash(hash)
	case MainNetScriptHashPrefix, TestNetScriptHashPrefix:
		return PayToScriptHash(hash)
	}
	return nil, fmt.Errorf("%w: unknown prefix %x", ErrInvalidAddress, prefix[:])
}

// DecodeAddress splits a transparent address into its two-byte version
// prefix and 20-byte hash.
//
// Format: prefix (2) || hash160 (20) || checksum (4)
//
// base58check carries a one-byte version, so the second prefix byte comes
// back as the first byte of the payload.
func DecodeAddress(addr string) ([2]byte, []byte, error) {
	var prefix [2]byte

	payload, version, err := base58.CheckDecode(addr)
	switch {
	case errors.Is(err, base58.ErrChecksum):
		return prefix, nil, ErrChecksumMismatch
	case err != nil:
		return prefix, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	case len(payload) != 21:
		return prefix, nil, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(payload)+5)
	}

	prefix[0], prefix[1] = version, payload[0]
	return prefix, payload[1:], nil
}

// EncodeAddress is the inverse of DecodeAddress.
func EncodeAddress(prefix [2]byte, hash []byte) (string, error) {
	if len(hash) != 20 {
		return "", fmt.Errorf("%w: hash must be 20 bytes", ErrInvalidAddress)
	}

	payload := make([]byte, 0, 21)
	payload = append(payload, prefix[1])
	payload = append(payload, hash...)
	return base58.CheckEncode(payload, prefix[0]), nil
}
