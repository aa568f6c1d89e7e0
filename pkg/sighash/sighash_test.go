package sighash

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/zcash-sighash/pkg/script"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

const (
	p2pkh22 = "76a914" + "2222222222222222222222222222222222222222" + "88ac"
	p2pkh33 = "76a914" + "3333333333333333333333333333333333333333" + "88ac"
)

var allHashTypes = []SigHashType{
	SigHashAll,
	SigHashNone,
	SigHashSingle,
	SigHashAll | SigHashAnyOneCanPay,
	SigHashNone | SigHashAnyOneCanPay,
	SigHashSingle | SigHashAnyOneCanPay,
}

func hashOf(b byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func mustScript(t *testing.T, s string) script.Script {
	t.Helper()
	sc, err := script.FromHex(s)
	require.NoError(t, err)
	return sc
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func legacyHeader() transaction.Header {
	return transaction.Header{Version: 1}
}

func saplingHeader() transaction.Header {
	return transaction.Header{
		Version:        transaction.SaplingTxVersion,
		Overwintered:   true,
		VersionGroupID: transaction.SaplingVersionGroupID,
	}
}

// twoByTwo builds a transaction with two inputs spending 100000 and 70000
// zatoshis and two outputs.
func twoByTwo(t *testing.T, h transaction.Header) *transaction.Transaction {
	t.Helper()
	prev0 := transaction.NewTxOut(100000, mustScript(t, p2pkh33))
	prev1 := transaction.NewTxOut(70000, mustScript(t, p2pkh33))
	in0 := transaction.NewTxIn(transaction.OutPoint{Hash: hashOf(0xaa), Index: 0}, &prev0)
	in1 := transaction.NewTxIn(transaction.OutPoint{Hash: hashOf(0xbb), Index: 1}, &prev1)
	in1.Sequence = 0xfffffffe
	return transaction.New(h,
		[]transaction.TxIn{in0, in1},
		[]transaction.TxOut{
			transaction.NewTxOut(50000, mustScript(t, p2pkh22)),
			transaction.NewTxOut(60000, mustScript(t, p2pkh22)),
		},
	)
}

func TestAlgorithmFor(t *testing.T) {
	tests := []struct {
		version int32
		want    Algorithm
	}{
		{0, Legacy},
		{1, Legacy},
		{2, Legacy},
		{3, Legacy},
		{4, SaplingEra},
		{5, SaplingEra},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AlgorithmFor(tt.version), "version %d", tt.version)
	}
	assert.Equal(t, "legacy", Legacy.String())
	assert.Equal(t, "sapling", SaplingEra.String())
	assert.Equal(t, "Algorithm(7)", Algorithm(7).String())
}

func TestSigHashTypeString(t *testing.T) {
	tests := []struct {
		in   SigHashType
		want string
	}{
		{SigHashAll, "ALL"},
		{SigHashNone, "NONE"},
		{SigHashSingle, "SINGLE"},
		{SigHashAll | SigHashAnyOneCanPay, "ALL|ANYONECANPAY"},
		{SigHashSingle | SigHashAnyOneCanPay, "SINGLE|ANYONECANPAY"},
		{0, "0x0"},
		{0x41, "0x41"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestParseSigHashType(t *testing.T) {
	tests := []struct {
		in      string
		want    SigHashType
		wantErr bool
	}{
		{in: "ALL", want: SigHashAll},
		{in: "none", want: SigHashNone},
		{in: "single|anyonecanpay", want: SigHashSingle | SigHashAnyOneCanPay},
		{in: "SIGHASH_NONE|SIGHASH_ANYONECANPAY", want: SigHashNone | SigHashAnyOneCanPay},
		{in: "ANYONECANPAY|ALL", want: SigHashAll | SigHashAnyOneCanPay},
		{in: "ANYONECANPAY", wantErr: true},
		{in: "ALL|NONE", wantErr: true},
		{in: "EVERYTHING", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSigHashType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorCodeStringer(t *testing.T) {
	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrNilTransaction, "ErrNilTransaction"},
		{ErrNilSignature, "ErrNilSignature"},
		{ErrMissingSigHashType, "ErrMissingSigHashType"},
		{ErrInputIndexOutOfRange, "ErrInputIndexOutOfRange"},
		{ErrMissingPrevOut, "ErrMissingPrevOut"},
		{ErrNilKey, "ErrNilKey"},
		{ErrInvalidSigHashType, "ErrInvalidSigHashType"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	require.Len(t, tests, int(numErrorCodes)+1)

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestDigestString(t *testing.T) {
	d := Digest{0: 0xab, 31: 0x01}
	assert.Equal(t, "ab"+strings.Repeat("00", 30)+"01", d.String())
	assert.Equal(t, [32]byte{0: 0x01, 31: 0xab}, d.signingHash())
}

func TestCalcSignatureHashPreconditions(t *testing.T) {
	tests := []struct {
		name string
		tx   Signable
		idx  int
		code ErrorCode
	}{
		{"nil interface", nil, 0, ErrNilTransaction},
		{"typed nil", (*transaction.Transaction)(nil), 0, ErrNilTransaction},
		{"negative index", twoByTwo(t, legacyHeader()), -1, ErrInputIndexOutOfRange},
		{"index past inputs", twoByTwo(t, legacyHeader()), 2, ErrInputIndexOutOfRange},
		{"sapling index past inputs", twoByTwo(t, saplingHeader()), 2, ErrInputIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalcSignatureHash(tt.tx, SigHashAll, tt.idx, mustScript(t, p2pkh33))
			require.Error(t, err)
			assert.True(t, IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestCalcSignatureHashDeterministic(t *testing.T) {
	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		for _, ht := range allHashTypes {
			for idx := 0; idx < tx.NumTxIn(); idx++ {
				a, err := CalcSignatureHash(tx, ht, idx, mustScript(t, p2pkh33))
				require.NoError(t, err)
				b, err := CalcSignatureHash(tx, ht, idx, mustScript(t, p2pkh33))
				require.NoError(t, err)
				assert.Equal(t, a, b, "v%d %v input %d", h.Version, ht, idx)
			}
		}
	}
}

func TestCalcSignatureHashDoesNotModifyTx(t *testing.T) {
	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		before := tx.Bytes()
		for _, ht := range allHashTypes {
			_, err := CalcSignatureHash(tx, ht, 1, mustScript(t, "ab"+p2pkh33))
			require.NoError(t, err)
		}
		assert.Equal(t, before, tx.Bytes())
		assert.Zero(t, tx.TxIn(0).SignatureScript.Len())
	}
}

func TestInputIndexChangesDigest(t *testing.T) {
	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		d0, err := CalcSignatureHash(tx, SigHashAll, 0, mustScript(t, p2pkh33))
		require.NoError(t, err)
		d1, err := CalcSignatureHash(tx, SigHashAll, 1, mustScript(t, p2pkh33))
		require.NoError(t, err)
		assert.NotEqual(t, d0, d1)
	}
}

// signableView exposes a transaction through Signable only.
type signableView struct {
	tx *transaction.Transaction
}

func (v signableView) Header() transaction.Header { return v.tx.Header() }
func (v signableView) NumTxIn() int { return v.tx.NumTxIn() }
func (v signableView) TxIn(i int) transaction.TxIn { return v.tx.TxIn(i) }
func (v signableView) NumTxOut() int { return v.tx.NumTxOut() }
func (v signableView) TxOut(i int) transaction.TxOut { return v.tx.TxOut(i) }

func TestOtherSignableImplementations(t *testing.T) {
	for _, h := range []transaction.Header{legacyHeader(), saplingHeader()} {
		tx := twoByTwo(t, h)
		for _, ht := range allHashTypes {
			want, err := CalcSignatureHash(tx, ht, 1, mustScript(t, p2pkh33))
			require.NoError(t, err)
			got, err := CalcSignatureHash(signableView{tx}, ht, 1, mustScript(t, p2pkh33))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}
