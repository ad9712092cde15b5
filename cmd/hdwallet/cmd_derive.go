package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"github.com/urfave/cli"
	"github.com/walletkit/hdwalletkit/hdkeychain"
)

var deriveCommand = cli.Command{
	Name:      "derive",
	Category:  "Wallet",
	Usage:     "Derive a key at a path from a seed or mnemonic.",
	ArgsUsage: "path",
	Description: `
	Imports a master key from the given hex seed (or BIP39 mnemonic),
	walks the derivation path and prints the resulting node, including
	its extended key serializations under the requested version prefix.

	Example: hdwallet derive --seed 000102030405060708090a0b0c0d0e0f \
	    "m/84'/0'/0'/0/0"`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "seed",
			Usage: "master seed as hex",
		},
		cli.StringFlag{
			Name:  "mnemonic",
			Usage: "BIP39 mnemonic phrase instead of --seed",
		},
		cli.StringFlag{
			Name:  "passphrase",
			Usage: "optional BIP39 passphrase with --mnemonic",
		},
		cli.StringFlag{
			Name: "prefix",
			Usage: "extended key version prefix (xprv, yprv, " +
				"zprv, Ltpv, Mtpv)",
			Value: "xprv",
		},
	},
	Action: derive,
}

func derive(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "derive")
	}
	path := ctx.Args().First()

	seed, err := seedFromFlags(ctx)
	if err != nil {
		return err
	}

	master, err := hdkeychain.NewMaster(seed, hdkeychain.Secp256k1)
	if err != nil {
		return err
	}
	key, err := master.DerivePath(path)
	if err != nil {
		return fmt.Errorf("unable to derive %s: %w", path, err)
	}

	privVersion, err := hdkeychain.VersionFromPrefix(ctx.String("prefix"))
	if err != nil {
		return err
	}
	privVersion, err = privVersion.PrivVersion()
	if err != nil {
		return err
	}
	pubVersion, err := privVersion.PubVersion()
	if err != nil {
		return err
	}

	xprv, err := key.SerializePrivate(privVersion)
	if err != nil {
		return err
	}
	xpub, err := key.Neuter().SerializePublic(pubVersion)
	if err != nil {
		return err
	}

	privKey, err := key.PrivKeyBytes()
	if err != nil {
		return err
	}

	printJSON(struct {
		Path        string `json:"path"`
		Depth       uint8  `json:"depth"`
		Fingerprint uint32 `json:"fingerprint"`
		PrivKey     string `json:"priv_key"`
		PubKey      string `json:"pub_key"`
		ChainCode   string `json:"chain_code"`
		ExtPriv     string `json:"ext_priv"`
		ExtPub      string `json:"ext_pub"`
	}{
		Path:        key.Path(),
		Depth:       key.Depth(),
		Fingerprint: key.Fingerprint(),
		PrivKey:     hex.EncodeToString(privKey),
		PubKey:      hex.EncodeToString(key.PubKeyBytes()),
		ChainCode:   hex.EncodeToString(key.ChainCode()),
		ExtPriv:     xprv,
		ExtPub:      xpub,
	})

	return nil
}

func seedFromFlags(ctx *cli.Context) ([]byte, error) {
	switch {
	case ctx.IsSet("seed") && ctx.IsSet("mnemonic"):
		return nil, errors.New("--seed and --mnemonic are mutually " +
			"exclusive")

	case ctx.IsSet("seed"):
		seed, err := hex.DecodeString(ctx.String("seed"))
		if err != nil {
			return nil, fmt.Errorf("invalid seed hex: %w", err)
		}
		return seed, nil

	case ctx.IsSet("mnemonic"):
		seed, err := bip39.NewSeedWithErrorChecking(
			ctx.String("mnemonic"), ctx.String("passphrase"),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid mnemonic: %w", err)
		}
		return seed, nil

	default:
		return nil, errors.New("one of --seed or --mnemonic is " +
			"required")
	}
}
