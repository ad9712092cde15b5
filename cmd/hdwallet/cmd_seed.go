package main

import (
	"encoding/hex"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"github.com/urfave/cli"
)

var seedCommand = cli.Command{
	Name:     "seed",
	Category: "Wallet",
	Usage:    "Generate a new BIP39 mnemonic and its derivation seed.",
	Description: `
	Generates fresh entropy, encodes it as a BIP39 mnemonic phrase and
	prints the stretched seed the derivation engine consumes. An optional
	passphrase hardens the mnemonic to seed conversion.`,
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "bits",
			Usage: "entropy size in bits (128 to 256)",
			Value: 256,
		},
		cli.StringFlag{
			Name:  "passphrase",
			Usage: "optional BIP39 passphrase",
		},
	},
	Action: newSeed,
}

func newSeed(ctx *cli.Context) error {
	bits := ctx.Int("bits")

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return fmt.Errorf("unable to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return fmt.Errorf("unable to encode mnemonic: %w", err)
	}
	seed := bip39.NewSeed(mnemonic, ctx.String("passphrase"))

	printJSON(struct {
		Mnemonic string `json:"mnemonic"`
		Seed     string `json:"seed"`
	}{
		Mnemonic: mnemonic,
		Seed:     hex.EncodeToString(seed),
	})

	return nil
}
