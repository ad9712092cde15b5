package main

import (
	"encoding/hex"

	"github.com/urfave/cli"
	"github.com/walletkit/hdwalletkit/hdkeychain"
	"github.com/walletkit/hdwalletkit/wallet"
)

var decodeCommand = cli.Command{
	Name:      "decode",
	Category:  "Wallet",
	Usage:     "Decode a Base58Check extended key.",
	ArgsUsage: "extended_key",
	Description: `
	Parses an extended key string, verifies its checksum and prints its
	fields: version prefix, depth and derived type, parent fingerprint,
	child number, chain code and key material.`,
	Action: decode,
}

func decode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "decode")
	}

	ext, err := hdkeychain.Parse(ctx.Args().First())
	if err != nil {
		return err
	}

	key := ext.HDKey()
	resp := struct {
		Version     string `json:"version"`
		Private     bool   `json:"private"`
		DerivedType string `json:"derived_type"`
		Depth       uint8  `json:"depth"`
		ParentFP    uint32 `json:"parent_fingerprint"`
		ChildNumber uint32 `json:"child_number"`
		Hardened    bool   `json:"hardened"`
		ChainCode   string `json:"chain_code"`
		PubKey      string `json:"pub_key"`
		PubKeyHash  string `json:"pub_key_hash"`
	}{
		Version:     ext.Version().Prefix(),
		Private:     ext.IsPrivate(),
		DerivedType: ext.DerivedType().String(),
		Depth:       key.Depth(),
		ParentFP:    key.ParentFingerprint(),
		ChildNumber: key.ChildNumber(),
		Hardened:    key.IsHardened(),
		ChainCode:   hex.EncodeToString(key.ChainCode()),
		PubKey:      hex.EncodeToString(key.PubKeyBytes()),
		PubKeyHash:  hex.EncodeToString(wallet.PubKeyHash(key)),
	}
	printJSON(resp)

	return nil
}
