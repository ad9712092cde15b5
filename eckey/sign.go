package eckey

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// messageDigest maps an arbitrary message to the 32-byte digest that is
// signed: double-SHA256 of the message, except that a nil message maps to
// the fixed sentinel digest 0x01 followed by 31 zero bytes. The sentinel
// keeps signatures over "no message" well-defined without signing the digest
// of the empty string.
func messageDigest(msg []byte) []byte {
	if msg == nil {
		digest := make([]byte, 32)
		digest[0] = 0x01
		return digest
	}
	return chainhash.DoubleHashB(msg)
}

// Sign signs the message with deterministic ECDSA (RFC 6979 nonces) and
// returns the raw signature with S normalized to the lower half of the group
// order.
func (k *Key) Sign(msg []byte) (*Signature, error) {
	if k.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return signDigest(k.priv, messageDigest(msg)), nil
}

// SignDER signs the message and returns the signature in canonical DER form.
func (k *Key) SignDER(msg []byte) ([]byte, error) {
	sig, err := k.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// VerifySignature checks a DER encoded signature over msg against the key's
// public key. Malformed or mathematically invalid signatures report false,
// the method never fails.
func (k *Key) VerifySignature(msg, derSig []byte) bool {
	sig, err := ecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false
	}
	return sig.Verify(messageDigest(msg), k.pub)
}

// signDigest runs the ECDSA signing equation over the 32-byte digest. The
// RFC 6979 iteration counter is bumped in the (astronomically unlikely) case
// that a nonce yields r = 0 or s = 0.
func signDigest(priv *btcec.PrivateKey, digest []byte) *Signature {
	privBytes := priv.Serialize()
	defer zeroBytes(privBytes)

	var e btcec.ModNScalar
	e.SetByteSlice(digest)

	for iteration := uint32(0); ; iteration++ {
		nonce := secp256k1.NonceRFC6979(
			privBytes, digest, nil, nil, iteration,
		)

		// R = nonce*G, r = R.x mod N.
		var kG btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(nonce, &kG)
		kG.ToAffine()

		var r btcec.ModNScalar
		r.SetBytes(kG.X.Bytes())
		if r.IsZero() {
			nonce.Zero()
			continue
		}

		// s = nonce^-1 * (e + r*priv) mod N.
		kInv := new(btcec.ModNScalar).InverseValNonConst(nonce)
		nonce.Zero()

		s := new(btcec.ModNScalar).Mul2(&r, &priv.Key).Add(&e).Mul(kInv)
		if s.IsZero() {
			continue
		}
		if s.IsOverHalfOrder() {
			s.Negate()
		}

		return NewSignature(&r, s)
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
