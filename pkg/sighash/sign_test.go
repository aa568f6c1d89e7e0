package sighash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/zcash-sighash/pkg/crypto"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

func testKey(t *testing.T, last byte) *crypto.PrivateKey {
	t.Helper()
	raw := make([]byte, 32)
	raw[0] = 0x11
	raw[31] = last
	k, err := crypto.PrivateKeyFromBytes(raw)
	require.NoError(t, err)
	return k
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key := testKey(t, 1)
	pub := key.PublicKey()
	sub := mustScript(t, p2pkh33)

	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		for _, ht := range allHashTypes {
			for idx := 0; idx < tx.NumTxIn(); idx++ {
				sig, err := Sign(tx, key, ht, idx, sub)
				require.NoError(t, err)
				assert.Equal(t, ht, sig.HashType)

				ok, err := Verify(tx, sig, pub, idx, sub)
				require.NoError(t, err)
				assert.True(t, ok, "v%d %v input %d", h.Version, ht, idx)
			}
		}
	}
}

func TestSignReadsDigestLittleEndian(t *testing.T) {
	key := testKey(t, 2)
	sub := mustScript(t, p2pkh33)

	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		digest, err := CalcSignatureHash(tx, SigHashAll, 0, sub)
		require.NoError(t, err)

		sig, err := Sign(tx, key, SigHashAll, 0, sub)
		require.NoError(t, err)

		assert.True(t, key.PublicKey().Verify(crypto.Reverse(digest), sig.Sig))
		assert.False(t, key.PublicKey().Verify(digest, sig.Sig))
	}
}

func TestSignDeterministic(t *testing.T) {
	key := testKey(t, 3)
	tx := twoByTwo(t, saplingHeader())
	sub := mustScript(t, p2pkh33)

	a, err := Sign(tx, key, SigHashAll, 0, sub)
	require.NoError(t, err)
	b, err := Sign(tx, key, SigHashAll, 0, sub)
	require.NoError(t, err)
	assert.Equal(t, a.Serialize(), b.Serialize())
}

func TestVerifyMismatch(t *testing.T) {
	key := testKey(t, 4)
	pub := key.PublicKey()
	sub := mustScript(t, p2pkh33)

	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		sig, err := Sign(tx, key, SigHashAll, 0, sub)
		require.NoError(t, err)

		// Different input.
		ok, err := Verify(tx, sig, pub, 1, sub)
		require.NoError(t, err)
		assert.False(t, ok)

		// Different key.
		ok, err = Verify(tx, sig, testKey(t, 5).PublicKey(), 0, sub)
		require.NoError(t, err)
		assert.False(t, ok)

		// Different script code.
		ok, err = Verify(tx, sig, pub, 0, mustScript(t, p2pkh22))
		require.NoError(t, err)
		assert.False(t, ok)

		// Different hash type than the one signed.
		other := &Signature{Sig: sig.Sig, HashType: SigHashNone}
		ok, err = Verify(tx, other, pub, 0, sub)
		require.NoError(t, err)
		assert.False(t, ok)

		// Committed output changed.
		outs := tx.TxOuts()
		outs[1].Value++
		changed := transaction.New(tx.Header(), tx.TxIns(), outs)
		ok, err = Verify(changed, sig, pub, 0, sub)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestVerifyAnyOneCanPaySurvivesAddedInput(t *testing.T) {
	key := testKey(t, 6)
	pub := key.PublicKey()
	sub := mustScript(t, p2pkh33)

	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		ht := SigHashSingle | SigHashAnyOneCanPay
		sig, err := Sign(tx, key, ht, 0, sub)
		require.NoError(t, err)

		prev := transaction.NewTxOut(5, mustScript(t, p2pkh22))
		ins := append(tx.TxIns(),
			transaction.NewTxIn(transaction.OutPoint{Hash: hashOf(0xcc)}, &prev))
		outs := append(tx.TxOuts(), transaction.NewTxOut(1, mustScript(t, p2pkh22)))
		grown := transaction.New(tx.Header(), ins, outs)

		ok, err := Verify(grown, sig, pub, 0, sub)
		require.NoError(t, err)
		assert.True(t, ok, "v%d", h.Version)
	}
}

func TestSignPreconditions(t *testing.T) {
	tx := twoByTwo(t, saplingHeader())
	sub := mustScript(t, p2pkh33)
	key := testKey(t, 7)

	tests := []struct {
		name     string
		tx       Signable
		key      *crypto.PrivateKey
		hashType SigHashType
		idx      int
		code     ErrorCode
	}{
		{"nil key", tx, nil, SigHashAll, 0, ErrNilKey},
		{"zero hash type", tx, key, 0, 0, ErrMissingSigHashType},
		{"hash type wider than a byte", tx, key, 0x101, 0, ErrInvalidSigHashType},
		{"nil transaction", nil, key, SigHashAll, 0, ErrNilTransaction},
		{"index out of range", tx, key, SigHashAll, 2, ErrInputIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Sign(tt.tx, tt.key, tt.hashType, tt.idx, sub)
			require.Error(t, err)
			assert.Nil(t, sig)
			assert.True(t, IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestVerifyPreconditions(t *testing.T) {
	tx := twoByTwo(t, saplingHeader())
	sub := mustScript(t, p2pkh33)
	key := testKey(t, 8)
	pub := key.PublicKey()

	sig, err := Sign(tx, key, SigHashAll, 0, sub)
	require.NoError(t, err)

	tests := []struct {
		name string
		tx   Signable
		sig  *Signature
		pub  *crypto.PublicKey
		idx  int
		code ErrorCode
	}{
		{"nil transaction", nil, sig, pub, 0, ErrNilTransaction},
		{"typed nil transaction", (*transaction.Transaction)(nil), sig, pub, 0, ErrNilTransaction},
		{"nil signature", tx, nil, pub, 0, ErrNilSignature},
		{"empty signature", tx, &Signature{HashType: SigHashAll}, pub, 0, ErrNilSignature},
		{"missing hash type", tx, &Signature{Sig: sig.Sig}, pub, 0, ErrMissingSigHashType},
		{"hash type wider than a byte", tx, &Signature{Sig: sig.Sig, HashType: 0x101}, pub, 0, ErrInvalidSigHashType},
		{"nil public key", tx, sig, nil, 0, ErrNilKey},
		{"negative index", tx, sig, pub, -1, ErrInputIndexOutOfRange},
		{"index past inputs", tx, sig, pub, 2, ErrInputIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Verify(tt.tx, tt.sig, tt.pub, tt.idx, sub)
			require.Error(t, err)
			assert.False(t, ok)
			assert.True(t, IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSignatureSerialization(t *testing.T) {
	key := testKey(t, 9)
	tx := twoByTwo(t, legacyHeader())
	sub := mustScript(t, p2pkh33)

	sig, err := Sign(tx, key, SigHashSingle|SigHashAnyOneCanPay, 1, sub)
	require.NoError(t, err)

	raw := sig.Serialize()
	assert.Equal(t, byte(0x83), raw[len(raw)-1])
	assert.Equal(t, byte(0x30), raw[0])

	parsed, err := ParseSignature(raw)
	require.NoError(t, err)
	assert.Equal(t, sig.HashType, parsed.HashType)
	assert.True(t, sig.Sig.IsEqual(parsed.Sig))

	ok, err := Verify(tx, parsed, key.PublicKey(), 1, sub)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("zero hash type", func(t *testing.T) {
		bad := append(sig.Sig.Serialize(), 0x00)
		_, err := ParseSignature(bad)
		assert.True(t, IsErrorCode(err, ErrMissingSigHashType), "got %v", err)
	})

	t.Run("without ecdsa value", func(t *testing.T) {
		assert.Nil(t, (&Signature{HashType: SigHashAll}).Serialize())
		assert.Nil(t, (*Signature)(nil).Serialize())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseSignature([]byte{0x01})
		assert.Error(t, err)
		_, err = ParseSignature([]byte{0x30, 0x00, 0x01})
		assert.Error(t, err)
	})
}
