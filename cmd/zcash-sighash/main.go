// zcash-sighash computes, signs and verifies transparent input signature
// hashes of raw Zcash transactions.
//
// Example usage:
//
//	# Digest of input 0 of a v4 transaction spending a P2PKH output
//	zcash-sighash sighash --tx <hex> --input 0 --address t1... --amount 100000
//
//	# Sign input 0 with a WIF key
//	zcash-sighash sign --tx <hex> --input 0 --address t1... --amount 100000 --wif K...
//
//	# Verify a DER || hash type signature
//	zcash-sighash verify --tx <hex> --input 0 --address t1... --amount 100000 \
//	  --sig <hex> --pubkey <hex>
//
//	# Transaction id
//	zcash-sighash txid --tx <hex>
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"

	"github.com/suffix-labs/zcash-sighash/pkg/sighash"
)

var (
	log        = btclog.Disabled
	sighashLog = btclog.Disabled
)

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Setup logging. Results go to stdout, logs to stderr.
	backendLogger := btclog.NewBackend(os.Stderr)
	log = backendLogger.Logger("MAIN")
	sighashLog = backendLogger.Logger("SGHS")
	sighash.UseLogger(sighashLog)

	// Setup the parser options and commands.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	parserFlags := flags.Options(flags.HelpFlag | flags.PassDoubleDash)
	parser := flags.NewNamedParser(appName, parserFlags)
	parser.AddGroup("Global Options", "", cfg)
	parser.AddCommand("sighash",
		"Compute the signature hash of a transparent input",
		"Compute the signature hash of a transparent input.  Transactions "+
			"of version 4 and later commit to the value of the spent "+
			"output, which must be given with --amount.", &sighashCfg)
	parser.AddCommand("sign",
		"Sign a transparent input",
		"Sign a transparent input and print the DER signature followed "+
			"by the signature hash type byte.", &signCfg)
	parser.AddCommand("verify",
		"Verify a transparent input signature", "", &verifyCfg)
	parser.AddCommand("txid",
		"Print the transaction id of a raw transaction", "", &txidCfg)
	parser.AddCommand("version",
		"Show version information", "", &versionCfg)

	// Parse command line and invoke the Execute function for the specified
	// command.
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		} else {
			log.Error(err)
		}

		return err
	}

	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
