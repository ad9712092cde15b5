package eckey

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Signature is an ECDSA signature over secp256k1, held as its raw (R, S)
// scalar pair so that compact recoverable encodings can be produced without
// a DER round trip.
type Signature struct {
	r btcec.ModNScalar
	s btcec.ModNScalar
}

// NewSignature builds a signature from its component scalars.
func NewSignature(r, s *btcec.ModNScalar) *Signature {
	var sig Signature
	sig.r.Set(r)
	sig.s.Set(s)
	return &sig
}

// R returns a copy of the signature's R scalar.
func (sig *Signature) R() btcec.ModNScalar {
	return sig.r
}

// S returns a copy of the signature's S scalar.
func (sig *Signature) S() btcec.ModNScalar {
	return sig.s
}

// Serialize encodes the signature in canonical DER form.
func (sig *Signature) Serialize() []byte {
	return ecdsa.NewSignature(&sig.r, &sig.s).Serialize()
}

// Verify checks the signature against the given 32-byte digest and public
// key.
func (sig *Signature) Verify(digest []byte, pub *btcec.PublicKey) bool {
	return ecdsa.NewSignature(&sig.r, &sig.s).Verify(digest, pub)
}

// IsLowS reports whether the S component is in the lower half of the group
// order. Signatures produced by this package always are.
func (sig *Signature) IsLowS() bool {
	return !sig.s.IsOverHalfOrder()
}
