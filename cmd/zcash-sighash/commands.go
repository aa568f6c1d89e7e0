package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/suffix-labs/zcash-sighash/pkg/crypto"
	"github.com/suffix-labs/zcash-sighash/pkg/sighash"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

const appVersion = "0.1.0"

var (
	sighashCfg = sighashCmd{}
	signCfg    = signCmd{}
	verifyCfg  = verifyCmd{}
	txidCfg    = txidCmd{}
	versionCfg = versionCmd{}
)

// sighashCmd defines the configuration options for the sighash command.
type sighashCmd struct {
	inputOptions
}

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *sighashCmd) Execute(args []string) error {
	opts, err := setupGlobalConfig()
	if err != nil {
		return err
	}

	tx, subScript, hashType, err := cmd.load()
	if err != nil {
		return err
	}

	log.Infof("Computing %v digest of input %d (%v)",
		sighash.AlgorithmFor(tx.Version()), cmd.Input, hashType)
	digest, err := sighash.CalcSignatureHash(tx, hashType, cmd.Input,
		subScript, opts...)
	if err != nil {
		return err
	}

	fmt.Println(digest)
	return nil
}

// signCmd defines the configuration options for the sign command.
type signCmd struct {
	inputOptions
	WIF string `long:"wif" description:"Private key in wallet import format"`
	Key string `long:"key" description:"Raw 32-byte private key (hex)"`
}

// privateKey loads the key given by --wif or --key.
func (cmd *signCmd) privateKey() (*crypto.PrivateKey, error) {
	switch {
	case cmd.WIF != "" && cmd.Key != "":
		return nil, errors.New("--wif and --key are mutually exclusive")
	case cmd.WIF != "":
		return crypto.ParsePrivateKeyWIF(cmd.WIF)
	case cmd.Key != "":
		raw, err := hex.DecodeString(cmd.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid private key hex: %w", err)
		}
		return crypto.PrivateKeyFromBytes(raw)
	}
	return nil, errors.New("a private key is required -- use --wif or --key")
}

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *signCmd) Execute(args []string) error {
	opts, err := setupGlobalConfig()
	if err != nil {
		return err
	}

	key, err := cmd.privateKey()
	if err != nil {
		return err
	}

	tx, subScript, hashType, err := cmd.load()
	if err != nil {
		return err
	}

	sig, err := sighash.Sign(tx, key, hashType, cmd.Input, subScript, opts...)
	if err != nil {
		return err
	}

	log.Infof("Signed input %d with public key %x", cmd.Input,
		key.PublicKey().Bytes())
	fmt.Println(hex.EncodeToString(sig.Serialize()))
	return nil
}

// verifyCmd defines the configuration options for the verify command.
type verifyCmd struct {
	inputOptions
	Sig    string `long:"sig" description:"DER signature followed by the hash type byte (hex)" required:"true"`
	PubKey string `long:"pubkey" description:"SEC encoded public key (hex)" required:"true"`
}

// Execute is the main entry point for the command.  It's invoked by the parser.
// The hash type is taken from the signature; --hashtype is ignored.
func (cmd *verifyCmd) Execute(args []string) error {
	opts, err := setupGlobalConfig()
	if err != nil {
		return err
	}

	rawSig, err := hex.DecodeString(cmd.Sig)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := sighash.ParseSignature(rawSig)
	if err != nil {
		return err
	}

	rawPub, err := hex.DecodeString(cmd.PubKey)
	if err != nil {
		return fmt.Errorf("invalid public key hex: %w", err)
	}
	pub, err := crypto.ParsePublicKey(rawPub)
	if err != nil {
		return err
	}

	tx, subScript, _, err := cmd.load()
	if err != nil {
		return err
	}

	valid, err := sighash.Verify(tx, sig, pub, cmd.Input, subScript, opts...)
	if err != nil {
		return err
	}
	if !valid {
		fmt.Println("invalid")
		return fmt.Errorf("signature for input %d does not verify", cmd.Input)
	}

	fmt.Println("valid")
	return nil
}

// txidCmd defines the configuration options for the txid command.
type txidCmd struct {
	TxHex string `long:"tx" description:"Raw transaction (hex)" required:"true"`
}

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *txidCmd) Execute(args []string) error {
	if _, err := setupGlobalConfig(); err != nil {
		return err
	}

	tx, err := transaction.ParseHex(cmd.TxHex)
	if err != nil {
		return err
	}

	fmt.Println(tx.TxHash())
	return nil
}

// versionCmd defines the configuration options for the version command.
type versionCmd struct{}

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *versionCmd) Execute(args []string) error {
	fmt.Printf("zcash-sighash v%s\n", appVersion)
	fmt.Println("Transparent signature hashes for Zcash transactions up to version 4")
	return nil
}
