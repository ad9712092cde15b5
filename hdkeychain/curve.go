// Package hdkeychain implements BIP 32 hierarchical deterministic key
// derivation over secp256k1 along with a SLIP-0010 style hardened-only
// ed25519 variant, textual derivation path resolution, and the Base58Check
// extended key serialization format with its SLIP-0132 version registry.
package hdkeychain

import (
	"crypto/ed25519"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Curve identifies the elliptic curve a derivation tree runs on. The curve
// fixes the master seed salt, whether non-hardened derivation is available,
// and the scalar arithmetic used to combine parent keys with HMAC output.
type Curve uint8

const (
	// Secp256k1 is the Bitcoin curve with full BIP 32 semantics.
	Secp256k1 Curve = iota

	// Ed25519 follows the SLIP-0010 construction: hardened derivation
	// only, intermediate hashes used verbatim as key material.
	Ed25519
)

// ErrUnsupportedCurve is returned when an operation is not defined for the
// key's curve, such as serializing an ed25519 node as an extended key.
var ErrUnsupportedCurve = errors.New("operation not supported on curve")

// String returns the human readable curve name.
func (c Curve) String() string {
	switch c {
	case Secp256k1:
		return "secp256k1"
	case Ed25519:
		return "ed25519"
	default:
		return "unknown"
	}
}

// SeedSalt returns the HMAC-SHA512 key used to turn a master seed into the
// root node.
func (c Curve) SeedSalt() []byte {
	switch c {
	case Ed25519:
		return []byte("ed25519 seed")
	default:
		return []byte("Bitcoin seed")
	}
}

// SupportsNonHardened reports whether the curve admits non-hardened child
// derivation.
func (c Curve) SupportsNonHardened() bool {
	return c == Secp256k1
}

// masterScalar validates the IL half of the master HMAC as root private key
// material. On secp256k1 an IL of zero or at least the group order makes the
// seed unusable; ed25519 accepts any value.
func (c Curve) masterScalar(il []byte) ([]byte, error) {
	switch c {
	case Secp256k1:
		var scalar btcec.ModNScalar
		overflow := scalar.SetByteSlice(il)
		zero := scalar.IsZero()
		scalar.Zero()
		if overflow || zero {
			return nil, ErrUnusableSeed
		}
	case Ed25519:
	default:
		return nil, ErrUnsupportedCurve
	}

	priv := make([]byte, len(il))
	copy(priv, il)
	return priv, nil
}

// childScalar combines a parent private key with the IL half of a child
// HMAC. On secp256k1 the result is (parent + IL) mod N, invalid when IL
// overflows the order or the sum is zero; ed25519 children take IL verbatim.
func (c Curve) childScalar(parentPriv, il []byte) ([]byte, error) {
	switch c {
	case Secp256k1:
		var ilScalar, sum btcec.ModNScalar
		if overflow := ilScalar.SetByteSlice(il); overflow {
			return nil, ErrInvalidChild
		}

		sum.SetByteSlice(parentPriv)
		sum.Add(&ilScalar)
		ilScalar.Zero()

		if sum.IsZero() {
			return nil, ErrInvalidChild
		}

		child := sum.Bytes()
		sum.Zero()
		return child[:], nil

	case Ed25519:
		child := make([]byte, len(il))
		copy(child, il)
		return child, nil

	default:
		return nil, ErrUnsupportedCurve
	}
}

// pubKeyBytes computes the 33-byte serialized public key for a private
// scalar: SEC1 compressed form on secp256k1, 0x00 followed by the 32-byte
// ed25519 point otherwise.
func (c Curve) pubKeyBytes(priv []byte) ([]byte, error) {
	switch c {
	case Secp256k1:
		privKey, _ := btcec.PrivKeyFromBytes(priv)
		return privKey.PubKey().SerializeCompressed(), nil

	case Ed25519:
		pub := ed25519.NewKeyFromSeed(priv).
			Public().(ed25519.PublicKey)
		return append([]byte{0x00}, pub...), nil

	default:
		return nil, ErrUnsupportedCurve
	}
}
