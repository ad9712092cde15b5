package hdkeychain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/walletkit/hdwalletkit/eckey"
)

var (
	// ErrNotPrivate is returned when private key material is required but
	// the node only carries a public key.
	ErrNotPrivate = errors.New("extended key is not private")
)

// HDKey is a single node of a hierarchical deterministic key tree: key
// material plus the BIP 32 tree metadata (chain code, depth, parent
// fingerprint, child index). Nodes are immutable after derivation and safe
// for concurrent use. Nodes produced by derivation keep a reference to their
// parent so the textual path can be rebuilt; parsed nodes have no parent.
type HDKey struct {
	curve Curve

	// privKey is the 32-byte private scalar, nil for public-only nodes.
	privKey []byte

	// pubKey is the 33-byte serialized public key (compressed SEC1, or
	// 0x00-prefixed ed25519 point).
	pubKey []byte

	chainCode []byte
	depth     uint8
	parentFP  uint32

	// childNum is the 31-bit child index without the hardened bit;
	// hardened carries that bit separately.
	childNum uint32
	hardened bool

	parent *HDKey
}

// Curve returns the curve the node's subtree derives on.
func (k *HDKey) Curve() Curve {
	return k.curve
}

// IsPrivate reports whether the node carries private key material.
func (k *HDKey) IsPrivate() bool {
	return k.privKey != nil
}

// PrivKeyBytes returns a copy of the 32-byte private scalar.
func (k *HDKey) PrivKeyBytes() ([]byte, error) {
	if k.privKey == nil {
		return nil, ErrNotPrivate
	}
	priv := make([]byte, len(k.privKey))
	copy(priv, k.privKey)
	return priv, nil
}

// PaddedPrivKeyBytes returns the private scalar left-padded to the 33 bytes
// of the extended key serialization's key material field.
func (k *HDKey) PaddedPrivKeyBytes() ([]byte, error) {
	if k.privKey == nil {
		return nil, ErrNotPrivate
	}
	padded := make([]byte, 33)
	copy(padded[33-len(k.privKey):], k.privKey)
	return padded, nil
}

// PubKeyBytes returns a copy of the 33-byte serialized public key.
func (k *HDKey) PubKeyBytes() []byte {
	pub := make([]byte, len(k.pubKey))
	copy(pub, k.pubKey)
	return pub
}

// ChainCode returns a copy of the node's 32-byte chain code.
func (k *HDKey) ChainCode() []byte {
	code := make([]byte, len(k.chainCode))
	copy(code, k.chainCode)
	return code
}

// Depth returns the node's distance from the master key.
func (k *HDKey) Depth() uint8 {
	return k.depth
}

// ParentFingerprint returns the first four bytes of HASH160 of the parent's
// public key, zero for the master node.
func (k *HDKey) ParentFingerprint() uint32 {
	return k.parentFP
}

// ChildNumber returns the node's 31-bit child index without the hardened
// bit.
func (k *HDKey) ChildNumber() uint32 {
	return k.childNum
}

// IsHardened reports whether the node was derived hardened from its parent.
func (k *HDKey) IsHardened() bool {
	return k.hardened
}

// childNumberEncoded is the wire form of the child index, with bit 31 set
// for hardened nodes.
func (k *HDKey) childNumberEncoded() uint32 {
	if k.hardened {
		return k.childNum | HardenedKeyStart
	}
	return k.childNum
}

// Fingerprint returns the node's own key fingerprint: the first four bytes
// of HASH160 of the serialized public key, big endian.
func (k *HDKey) Fingerprint() uint32 {
	return binary.BigEndian.Uint32(btcutil.Hash160(k.pubKey)[:4])
}

// Path rebuilds the textual derivation path of the node from its parent
// references, e.g. "m/44'/0'/0'/0/1". Nodes without a parent reference
// (master nodes and parsed extended keys) are the path root "m".
func (k *HDKey) Path() string {
	if k.parent == nil {
		return "m"
	}

	marker := ""
	if k.hardened {
		marker = "'"
	}
	return fmt.Sprintf("%s/%d%s", k.parent.Path(), k.childNum, marker)
}

// String returns the derivation path.
func (k *HDKey) String() string {
	return k.Path()
}

// Neuter returns a public-only copy of the node: same public key and tree
// metadata, no private scalar. Neutering an already public node returns the
// node itself.
func (k *HDKey) Neuter() *HDKey {
	if k.privKey == nil {
		return k
	}

	neutered := *k
	neutered.privKey = nil
	return &neutered
}

// ECKey bridges a secp256k1 node to the elliptic curve key primitive, with
// private material when the node has it.
func (k *HDKey) ECKey() (*eckey.Key, error) {
	if k.curve != Secp256k1 {
		return nil, ErrUnsupportedCurve
	}
	if k.privKey == nil {
		return eckey.FromPubKeyBytes(k.pubKey)
	}
	return eckey.FromPrivKeyBytes(k.privKey, true)
}
