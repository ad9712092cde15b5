package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"
	"github.com/walletkit/hdwalletkit/eckey"
)

var signCommand = cli.Command{
	Name:      "sign",
	Category:  "Signing",
	Usage:     "Sign a message with a private key.",
	ArgsUsage: "message",
	Description: `
	Signs the message text with the given private key and prints both the
	DER ECDSA signature over its double-SHA256 digest and the recoverable
	Bitcoin signed message form.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "key",
			Usage: "32-byte private key as hex",
		},
	},
	Action: sign,
}

func sign(ctx *cli.Context) error {
	if ctx.NArg() != 1 || !ctx.IsSet("key") {
		return cli.ShowCommandHelp(ctx, "sign")
	}
	message := ctx.Args().First()

	key, err := keyFromHex(ctx.String("key"))
	if err != nil {
		return err
	}

	der, err := key.SignDER([]byte(message))
	if err != nil {
		return err
	}
	compact, err := key.SignMessage(message)
	if err != nil {
		return err
	}

	printJSON(struct {
		PubKey    string `json:"pub_key"`
		DER       string `json:"der"`
		Signature string `json:"signature"`
	}{
		PubKey:    hex.EncodeToString(key.PubKeyBytes()),
		DER:       hex.EncodeToString(der),
		Signature: compact,
	})

	return nil
}

var verifyCommand = cli.Command{
	Name:      "verify",
	Category:  "Signing",
	Usage:     "Verify a Bitcoin signed message.",
	ArgsUsage: "message signature",
	Description: `
	Recovers the public key from a base64 message signature and checks it
	against the expected public key if one is given.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "pubkey",
			Usage: "expected public key as hex",
		},
	},
	Action: verify,
}

func verify(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "verify")
	}
	message := ctx.Args().Get(0)
	signature := ctx.Args().Get(1)

	recovered, err := eckey.RecoverFromMessage(message, signature)
	if err != nil {
		return fmt.Errorf("unable to recover key: %w", err)
	}

	valid := true
	if ctx.IsSet("pubkey") {
		pubBytes, err := hex.DecodeString(ctx.String("pubkey"))
		if err != nil {
			return fmt.Errorf("invalid pubkey hex: %w", err)
		}
		expected, err := eckey.FromPubKeyBytes(pubBytes)
		if err != nil {
			return err
		}
		valid = expected.VerifyMessage(message, signature)
	}

	printJSON(struct {
		Valid  bool   `json:"valid"`
		PubKey string `json:"pub_key"`
	}{
		Valid:  valid,
		PubKey: hex.EncodeToString(recovered.PubKeyBytes()),
	})

	return nil
}

func keyFromHex(privHex string) (*eckey.Key, error) {
	privBytes, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid key hex: %w", err)
	}
	if len(privBytes) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d",
			len(privBytes))
	}
	return eckey.FromPrivKeyBytes(privBytes, true)
}
