package eckey

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrRecoveryFailed is returned when no public key can be recovered for the
// given recovery ID, signature and digest.
var ErrRecoveryFailed = errors.New("public key recovery failed")

// RecoverPubKey recovers the public key that produced sig over digest, per
// SEC 1 section 4.1.6. recID selects one of up to four candidate keys: bit 0
// is the parity of the nonce point's Y coordinate and bit 1 selects the
// second candidate X coordinate r + N. ErrRecoveryFailed means the selected
// candidate does not exist, callers probing recovery IDs should try the next
// one. The subgroup membership check of SEC 1 is omitted since secp256k1 has
// cofactor 1.
func RecoverPubKey(recID int, sig *Signature, digest []byte,
	compressed bool) (*Key, error) {

	if recID < 0 || recID > 3 {
		return nil, fmt.Errorf("recovery ID %d out of range", recID)
	}

	// Candidate X coordinate: x = r + (recID/2)*N. The addition can push
	// the value past the field prime, in which case no point exists.
	rScalar := sig.R()
	rBytes := rScalar.Bytes()
	x := new(big.Int).SetBytes(rBytes[:])
	if recID >= 2 {
		x.Add(x, btcec.S256().Params().N)
	}
	if x.Cmp(btcec.S256().Params().P) >= 0 {
		return nil, ErrRecoveryFailed
	}

	var fx btcec.FieldVal
	fx.SetByteSlice(x.Bytes())

	var fy btcec.FieldVal
	oddY := recID&1 == 1
	if !secp256k1.DecompressY(&fx, oddY, &fy) {
		return nil, ErrRecoveryFailed
	}
	fy.Normalize()

	var noncePoint btcec.JacobianPoint
	noncePoint.X.Set(&fx)
	noncePoint.Y.Set(&fy)
	noncePoint.Z.SetInt(1)

	var e btcec.ModNScalar
	e.SetByteSlice(digest)

	// Q = r^-1*s*R + r^-1*(-e)*G.
	rInv := new(btcec.ModNScalar).InverseValNonConst(&rScalar)

	u1 := new(btcec.ModNScalar).Mul2(&e, rInv)
	u1.Negate()

	sScalar := sig.S()
	u2 := new(btcec.ModNScalar).Mul2(&sScalar, rInv)

	var u1G, u2R, q btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(u1, &u1G)
	btcec.ScalarMultNonConst(u2, &noncePoint, &u2R)
	btcec.AddNonConst(&u1G, &u2R, &q)

	// The point at infinity is not a valid public key.
	if (q.X.IsZero() && q.Y.IsZero()) || q.Z.IsZero() {
		return nil, ErrRecoveryFailed
	}
	q.ToAffine()

	return FromPubKey(btcec.NewPublicKey(&q.X, &q.Y), compressed), nil
}
