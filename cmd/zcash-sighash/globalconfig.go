package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btclog"

	"github.com/suffix-labs/zcash-sighash/pkg/script"
	"github.com/suffix-labs/zcash-sighash/pkg/sighash"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

var (
	// Default global config.
	cfg = &config{
		DebugLevel: "info",
		BranchID:   "sapling",
	}

	// branchIDs maps network upgrade names accepted by --branchid to their
	// consensus branch ids.
	branchIDs = map[string]uint32{
		"sprout":     sighash.SproutBranchID,
		"overwinter": sighash.OverwinterBranchID,
		"sapling":    sighash.SaplingBranchID,
		"blossom":    sighash.BlossomBranchID,
		"heartwood":  sighash.HeartwoodBranchID,
		"canopy":     sighash.CanopyBranchID,
		"nu5":        sighash.NU5BranchID,
	}
)

// config defines the global configuration options.
type config struct {
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	BranchID   string `long:"branchid" description:"Consensus branch id for version 4+ digests, by upgrade name (sapling, blossom, ...) or hex"`
}

// setupGlobalConfig examines the global configuration options for any
// conditions which are invalid and applies the logging level.  It returns the
// digest options selected by the configuration.
func setupGlobalConfig() ([]sighash.Option, error) {
	level, ok := btclog.LevelFromString(cfg.DebugLevel)
	if !ok {
		return nil, fmt.Errorf("the specified debug level [%v] is invalid",
			cfg.DebugLevel)
	}
	log.SetLevel(level)
	sighashLog.SetLevel(level)

	branchID, err := parseBranchID(cfg.BranchID)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using consensus branch id 0x%08x", branchID)

	return []sighash.Option{sighash.WithDefaultBranchID(branchID)}, nil
}

// parseBranchID accepts a network upgrade name or a hex branch id with an
// optional 0x prefix.
func parseBranchID(s string) (uint32, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if id, ok := branchIDs[name]; ok {
		return id, nil
	}

	id, err := strconv.ParseUint(strings.TrimPrefix(name, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("the specified branch id [%v] is neither a "+
			"network upgrade name nor a hex value", s)
	}
	return uint32(id), nil
}

// inputOptions are the options shared by every command that hashes an input.
type inputOptions struct {
	TxHex    string `long:"tx" description:"Raw transaction (hex)" required:"true"`
	Input    int    `long:"input" description:"Index of the input being signed"`
	Script   string `long:"script" description:"Script code (hex) of the output being spent"`
	Address  string `long:"address" description:"Transparent address of the output being spent, in place of --script"`
	Amount   uint64 `long:"amount" description:"Value in zatoshis of the output being spent; required for version 4+ transactions"`
	HashType string `long:"hashtype" description:"Signature hash type, e.g. ALL or SINGLE|ANYONECANPAY" default:"ALL"`
}

// load parses the transaction, script code and hash type.  The spent output
// built from --amount and the script code is attached to the selected input.
func (o *inputOptions) load() (*transaction.Transaction, script.Script,
	sighash.SigHashType, error) {

	tx, err := transaction.ParseHex(o.TxHex)
	if err != nil {
		return nil, nil, 0, err
	}

	var subScript script.Script
	switch {
	case o.Script != "" && o.Address != "":
		return nil, nil, 0, errors.New("--script and --address are " +
			"mutually exclusive")
	case o.Script != "":
		subScript, err = script.FromHex(o.Script)
	case o.Address != "":
		subScript, err = script.PayToAddress(o.Address)
	default:
		err = errors.New("the script code of the spent output is required " +
			"-- use --script or --address")
	}
	if err != nil {
		return nil, nil, 0, err
	}

	hashType, err := sighash.ParseSigHashType(o.HashType)
	if err != nil {
		return nil, nil, 0, err
	}

	// An amount of zero is taken as not given, so version 4+ digests fail
	// with a missing spent output instead of committing to a wrong value.
	if o.Amount != 0 && o.Input >= 0 && o.Input < tx.NumTxIn() {
		prev := transaction.NewTxOut(o.Amount, subScript)
		prevOuts := make([]*transaction.TxOut, tx.NumTxIn())
		prevOuts[o.Input] = &prev
		tx = tx.WithPrevOuts(prevOuts)
	}

	log.Debugf("Loaded v%d transaction %v with %d inputs and %d outputs",
		tx.Version(), tx.TxHash(), tx.NumTxIn(), tx.NumTxOut())

	return tx, subScript, hashType, nil
}
