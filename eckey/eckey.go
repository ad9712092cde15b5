// Package eckey implements the elliptic curve key primitive used throughout
// the wallet: a secp256k1 key pair with optional private material, plus
// deterministic ECDSA signing, public key recovery, Bitcoin signed messages
// and the BIP 341 taproot output key tweak.
package eckey

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrNoPrivateKey is returned when an operation that needs private key
	// material is invoked on a public-only key.
	ErrNoPrivateKey = errors.New("private key material not available")

	// ErrInvalidPrivateKey is returned for private key scalars that are
	// unusable on secp256k1, namely zero and one.
	ErrInvalidPrivateKey = errors.New("invalid private key scalar")

	// ErrInvalidPubKey is returned when a serialized public key cannot be
	// parsed as a point on the curve.
	ErrInvalidPubKey = errors.New("invalid public key")
)

const (
	pubKeyCompressedEven = 0x02
	pubKeyCompressedOdd  = 0x03
	pubKeyUncompressed   = 0x04
)

// Key is a secp256k1 key pair. The public key is always present, the private
// key only when the key was built from private material. A Key is immutable
// after construction and safe for concurrent use.
type Key struct {
	priv *btcec.PrivateKey
	pub  *btcec.PublicKey

	// compressed records the serialization format the key was created
	// with. It is carried through signing so that recoverable message
	// signatures encode the right header byte.
	compressed bool

	createdAt time.Time
}

// FromPrivKey wraps an existing private key.
func FromPrivKey(priv *btcec.PrivateKey, compressed bool) *Key {
	return &Key{
		priv:       priv,
		pub:        priv.PubKey(),
		compressed: compressed,
		createdAt:  time.Now(),
	}
}

// FromPrivKeyBytes builds a key from a big-endian private scalar. Values
// larger than the group order are reduced modulo the order. The scalars zero
// and one are rejected as unusable.
func FromPrivKeyBytes(privBytes []byte, compressed bool) (*Key, error) {
	var scalar btcec.ModNScalar
	scalar.SetByteSlice(privBytes)

	if scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}

	var one [32]byte
	one[31] = 1
	if scalar.Bytes() == one {
		return nil, ErrInvalidPrivateKey
	}

	priv := &btcec.PrivateKey{Key: scalar}
	return FromPrivKey(priv, compressed), nil
}

// FromPubKey wraps an existing public key.
func FromPubKey(pub *btcec.PublicKey, compressed bool) *Key {
	return &Key{
		pub:        pub,
		compressed: compressed,
		createdAt:  time.Now(),
	}
}

// FromPubKeyBytes parses a serialized public key. The compression flag of the
// resulting key follows the encoding that was passed in.
func FromPubKeyBytes(pubBytes []byte) (*Key, error) {
	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}

	compressed := len(pubBytes) == 33

	return &Key{
		pub:        pub,
		compressed: compressed,
		createdAt:  time.Now(),
	}, nil
}

// HasPrivKey reports whether private key material is available.
func (k *Key) HasPrivKey() bool {
	return k.priv != nil
}

// PrivKey returns the private key, or ErrNoPrivateKey for public-only keys.
func (k *Key) PrivKey() (*btcec.PrivateKey, error) {
	if k.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return k.priv, nil
}

// PrivKeyBytes returns the 32-byte big-endian private scalar.
func (k *Key) PrivKeyBytes() ([]byte, error) {
	if k.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return k.priv.Serialize(), nil
}

// PubKey returns the public key.
func (k *Key) PubKey() *btcec.PublicKey {
	return k.pub
}

// PubKeyBytes serializes the public key in the key's native format: 33 bytes
// compressed or 65 bytes uncompressed.
func (k *Key) PubKeyBytes() []byte {
	if k.compressed {
		return k.pub.SerializeCompressed()
	}
	return k.pub.SerializeUncompressed()
}

// PubKeyXOnly returns the BIP 340 x-only serialization of the public key.
func (k *Key) PubKeyXOnly() []byte {
	return schnorr.SerializePubKey(k.pub)
}

// PubKeyHash returns HASH160 (SHA256 then RIPEMD160) of the compressed
// public key.
func (k *Key) PubKeyHash() []byte {
	return btcutil.Hash160(k.pub.SerializeCompressed())
}

// IsCompressed reports whether the key serializes its public key in
// compressed form.
func (k *Key) IsCompressed() bool {
	return k.compressed
}

// CreationTime returns the time the key object was created. This is metadata
// for wallet bookkeeping, not part of the key material.
func (k *Key) CreationTime() time.Time {
	return k.createdAt
}

// IsPubKeyCanonical reports whether encoded is a well-formed SEC1 public key
// encoding: a 65-byte uncompressed point or a 33-byte compressed point. Only
// the byte shape is checked, the point is not validated against the curve.
func IsPubKeyCanonical(encoded []byte) bool {
	if len(encoded) == 0 {
		return false
	}

	switch encoded[0] {
	case pubKeyUncompressed:
		return len(encoded) == 65
	case pubKeyCompressedEven, pubKeyCompressedOdd:
		return len(encoded) == 33
	default:
		return false
	}
}

// IsPubKeyCompressed reports whether encoded has the shape of a compressed
// public key: 33 bytes with an 0x02/0x03 parity prefix, or a 32-byte x-only
// key.
func IsPubKeyCompressed(encoded []byte) bool {
	switch {
	case len(encoded) == 32:
		return true
	case len(encoded) == 33:
		return encoded[0] == pubKeyCompressedEven ||
			encoded[0] == pubKeyCompressedOdd
	default:
		return false
	}
}

// IsSignatureCanonical reports whether sig is a canonically encoded DER
// ECDSA signature: correct SEQUENCE framing, and INTEGER components that are
// non-empty, positive and minimally encoded. The values themselves are not
// range checked against the group order.
func IsSignatureCanonical(sig []byte) bool {
	// Shortest possible DER signature is 8 bytes.
	if len(sig) < 8 {
		return false
	}
	if sig[0] != 0x30 || int(sig[1]) != len(sig)-2 {
		return false
	}

	// R component.
	if sig[2] != 0x02 {
		return false
	}
	rLen := int(sig[3])
	if rLen == 0 || 4+rLen+2 > len(sig) {
		return false
	}
	r := sig[4 : 4+rLen]
	if r[0]&0x80 != 0 {
		return false
	}
	if rLen > 1 && r[0] == 0x00 && r[1]&0x80 == 0 {
		return false
	}

	// S component.
	sOff := 4 + rLen
	if sig[sOff] != 0x02 {
		return false
	}
	sLen := int(sig[sOff+1])
	if sLen == 0 || sOff+2+sLen != len(sig) {
		return false
	}
	s := sig[sOff+2:]
	if s[0]&0x80 != 0 {
		return false
	}
	if sLen > 1 && s[0] == 0x00 && s[1]&0x80 == 0 {
		return false
	}

	return true
}
