package hdkeychain

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// HardenedKeyStart is the first hardened child index, 2^31. Child
	// indices are passed to DeriveChild without this bit; hardening is an
	// explicit flag.
	HardenedKeyStart uint32 = 0x80000000

	// maxDepth is the deepest possible node, limited by the single depth
	// byte of the serialization format.
	maxDepth = 255
)

var (
	// ErrInvalidSeed is returned for an empty master seed. Seed
	// stretching and length policy belong to the seed producer, the
	// derivation engine only requires some input.
	ErrInvalidSeed = errors.New("seed must not be empty")

	// ErrUnusableSeed is returned when the master HMAC yields key
	// material that is invalid on the curve. The caller should pick a
	// new seed.
	ErrUnusableSeed = errors.New("unusable seed")

	// ErrInvalidChild is returned when a child index yields invalid key
	// material. The caller should skip to the next index.
	ErrInvalidChild = errors.New("the extended key at this index is " +
		"invalid")

	// ErrInvalidChildNumber is returned when a child index has bit 31
	// set; hardening is expressed through the flag, not the index.
	ErrInvalidChildNumber = errors.New("child index must be below 2^31")

	// ErrNonHardenedUnsupported is returned when non-hardened derivation
	// is requested on a curve that only supports hardened children.
	ErrNonHardenedUnsupported = errors.New("curve does not support " +
		"non-hardened derivation")

	// ErrDeriveHardFromPublic is returned when a hardened child is
	// requested from a public-only parent.
	ErrDeriveHardFromPublic = errors.New("cannot derive a hardened key " +
		"from a public key")

	// ErrDeriveBeyondMaxDepth is returned when the parent is already at
	// the maximum tree depth.
	ErrDeriveBeyondMaxDepth = errors.New("cannot derive a key with more " +
		"than 255 indices in its path")
)

// NewMaster derives the root node of a new tree from a seed on the given
// curve: HMAC-SHA512 keyed with the curve's seed salt, left half becoming
// the private key and right half the chain code.
func NewMaster(seed []byte, curve Curve) (*HDKey, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}

	il, ir := splitHMAC(curve.SeedSalt(), seed)

	privKey, err := curve.masterScalar(il)
	if err != nil {
		return nil, err
	}
	pubKey, err := curve.pubKeyBytes(privKey)
	if err != nil {
		return nil, err
	}

	return &HDKey{
		curve:     curve,
		privKey:   privKey,
		pubKey:    pubKey,
		chainCode: ir,
	}, nil
}

// splitHMAC returns the two 32-byte halves of HMAC-SHA512(key, msg).
func splitHMAC(key, msg []byte) (il, ir []byte) {
	mac := hmac.New(sha512.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// DeriveChild derives the child node at the given 31-bit index. Hardened
// children commit to the parent's private key and are unreachable from the
// neutered tree; non-hardened children commit to the public key and can be
// derived from either form of the parent.
//
// A small fraction of indices yield invalid key material on secp256k1 and
// fail with ErrInvalidChild; the skip-to-next-index policy belongs to the
// caller.
func (k *HDKey) DeriveChild(index uint32, hardened bool) (*HDKey, error) {
	switch {
	case index >= HardenedKeyStart:
		return nil, ErrInvalidChildNumber

	case k.depth == maxDepth:
		return nil, ErrDeriveBeyondMaxDepth

	case !hardened && !k.curve.SupportsNonHardened():
		return nil, ErrNonHardenedUnsupported

	case hardened && k.privKey == nil:
		return nil, ErrDeriveHardFromPublic
	}

	// The HMAC input is either the padded private key or the public key,
	// followed by the wire-encoded child index.
	data := make([]byte, 0, 37)
	wireIndex := index
	if hardened {
		padded, err := k.PaddedPrivKeyBytes()
		if err != nil {
			return nil, err
		}
		data = append(data, padded...)
		wireIndex |= HardenedKeyStart
	} else {
		data = append(data, k.pubKey...)
	}
	data = binary.BigEndian.AppendUint32(data, wireIndex)

	il, ir := splitHMAC(k.chainCode, data)

	var (
		childPriv, childPub []byte
		err                 error
	)
	if k.privKey != nil {
		childPriv, err = k.curve.childScalar(k.privKey, il)
		if err == nil {
			childPub, err = k.curve.pubKeyBytes(childPriv)
		}
	} else {
		childPub, err = childPubKey(k.pubKey, il)
	}
	if err != nil {
		return nil, fmt.Errorf("child index %d: %w", index, err)
	}

	return &HDKey{
		curve:     k.curve,
		privKey:   childPriv,
		pubKey:    childPub,
		chainCode: ir,
		depth:     k.depth + 1,
		parentFP:  k.Fingerprint(),
		childNum:  index,
		hardened:  hardened,
		parent:    k,
	}, nil
}

// childPubKey computes the non-hardened child of a public-only secp256k1
// parent: childPub = IL*G + parentPub. The child is invalid when IL
// overflows the group order or the sum is the point at infinity.
func childPubKey(parentPub, il []byte) ([]byte, error) {
	var ilScalar btcec.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return nil, ErrInvalidChild
	}

	parent, err := btcec.ParsePubKey(parentPub)
	if err != nil {
		return nil, err
	}

	var parentJ, ilJ, childJ btcec.JacobianPoint
	parent.AsJacobian(&parentJ)
	btcec.ScalarBaseMultNonConst(&ilScalar, &ilJ)
	btcec.AddNonConst(&parentJ, &ilJ, &childJ)

	if (childJ.X.IsZero() && childJ.Y.IsZero()) || childJ.Z.IsZero() {
		return nil, ErrInvalidChild
	}
	childJ.ToAffine()

	return btcec.NewPublicKey(&childJ.X, &childJ.Y).
		SerializeCompressed(), nil
}
