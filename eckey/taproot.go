package eckey

import (
	"errors"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	// ErrInvalidXOnlyPoint is returned when an x coordinate does not
	// correspond to a point on the curve.
	ErrInvalidXOnlyPoint = errors.New("invalid x-only point")

	// ErrInvalidTaprootTweak is returned in the negligible-probability
	// case that the TapTweak hash is not a valid scalar.
	ErrInvalidTaprootTweak = errors.New("invalid taproot tweak")
)

// TweakedOutputKey derives the BIP 341 taproot output key for a key spend
// with no script tree: Q = lift_x(P) + H_TapTweak(x(P))*G. When private
// material is present the returned key is also able to sign for Q, with the
// private scalar negated first if the internal key has an odd Y coordinate.
func (k *Key) TweakedOutputKey() (*Key, error) {
	xOnly := schnorr.SerializePubKey(k.pub)

	// lift_x: the even-Y point with the internal key's X coordinate.
	var x btcec.FieldVal
	if overflow := x.SetByteSlice(xOnly); overflow {
		return nil, ErrInvalidXOnlyPoint
	}
	var y btcec.FieldVal
	if !secp256k1.DecompressY(&x, false, &y) {
		return nil, ErrInvalidXOnlyPoint
	}
	y.Normalize()
	internal := btcec.NewPublicKey(&x, &y)

	tweakHash := chainhash.TaggedHash(chainhash.TagTapTweak, xOnly)

	var tweak btcec.ModNScalar
	if overflow := tweak.SetByteSlice(tweakHash[:]); overflow {
		return nil, ErrInvalidTaprootTweak
	}

	// Q = internal + tweak*G.
	var internalJ, tweakJ, outJ btcec.JacobianPoint
	internal.AsJacobian(&internalJ)
	btcec.ScalarBaseMultNonConst(&tweak, &tweakJ)
	btcec.AddNonConst(&internalJ, &tweakJ, &outJ)
	outJ.ToAffine()
	outputKey := btcec.NewPublicKey(&outJ.X, &outJ.Y)

	if k.priv == nil {
		return FromPubKey(outputKey, true), nil
	}

	// The private scalar must correspond to the lifted (even-Y) internal
	// key, so negate it when the implied point has odd Y.
	tweakedScalar := k.priv.Key
	if k.pub.SerializeCompressed()[0] == pubKeyCompressedOdd {
		tweakedScalar.Negate()
	}
	tweakedScalar.Add(&tweak)

	return &Key{
		priv:       &btcec.PrivateKey{Key: tweakedScalar},
		pub:        outputKey,
		compressed: true,
		createdAt:  time.Now(),
	}, nil
}
