package eckey

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
)

// ErrInvalidCompactSig is returned when a base64 message signature does not
// decode to the 65-byte header||R||S compact layout.
var ErrInvalidCompactSig = errors.New("invalid compact message signature")

// signedMsgHeader is the magic prefix of the Bitcoin signed message
// envelope.
const signedMsgHeader = "Bitcoin Signed Message:\n"

// compactSigLen is header byte + 32-byte R + 32-byte S.
const compactSigLen = 65

// signedMessageEnvelope builds the preimage that is double-SHA256 hashed for
// message signing: varint-prefixed magic followed by the varint-prefixed
// message.
func signedMessageEnvelope(message string) []byte {
	var buf bytes.Buffer
	_ = wire.WriteVarInt(&buf, 0, uint64(len(signedMsgHeader)))
	buf.WriteString(signedMsgHeader)
	_ = wire.WriteVarInt(&buf, 0, uint64(len(message)))
	buf.WriteString(message)
	return buf.Bytes()
}

// SignMessage produces a recoverable Bitcoin message signature over the
// text: a base64 encoded 65-byte payload whose header byte is
// 27 + recoveryID, plus 4 when the signing key is compressed.
func (k *Key) SignMessage(message string) (string, error) {
	if k.priv == nil {
		return "", ErrNoPrivateKey
	}

	digest := messageDigest(signedMessageEnvelope(message))
	sig := signDigest(k.priv, digest)

	// Determine the recovery ID by probing which candidate reproduces
	// our own public key.
	want := k.PubKeyBytes()
	for recID := 0; recID < 4; recID++ {
		candidate, err := RecoverPubKey(
			recID, sig, digest, k.compressed,
		)
		if err != nil {
			continue
		}
		if !bytes.Equal(candidate.PubKeyBytes(), want) {
			continue
		}

		headerByte := byte(27 + recID)
		if k.compressed {
			headerByte += 4
		}

		rBytes, sBytes := sig.r.Bytes(), sig.s.Bytes()
		compact := make([]byte, compactSigLen)
		compact[0] = headerByte
		copy(compact[1:33], rBytes[:])
		copy(compact[33:], sBytes[:])

		return base64.StdEncoding.EncodeToString(compact), nil
	}

	return "", ErrRecoveryFailed
}

// RecoverFromMessage recovers the public key that signed the given message
// with SignMessage. The compression flag of the returned key follows the
// signature's header byte.
func RecoverFromMessage(message, sigB64 string) (*Key, error) {
	raw, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompactSig, err)
	}
	if len(raw) != compactSigLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCompactSig,
			len(raw))
	}

	headerByte := raw[0]
	if headerByte < 27 || headerByte >= 35 {
		return nil, fmt.Errorf("%w: header byte %d",
			ErrInvalidCompactSig, headerByte)
	}
	compressed := headerByte >= 31
	recID := int(headerByte-27) & 3

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(raw[1:33]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: R out of range",
			ErrInvalidCompactSig)
	}
	if overflow := s.SetByteSlice(raw[33:]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: S out of range",
			ErrInvalidCompactSig)
	}

	digest := messageDigest(signedMessageEnvelope(message))
	return RecoverPubKey(recID, NewSignature(&r, &s), digest, compressed)
}

// VerifyMessage reports whether sigB64 is a valid signature by this key over
// the given message text.
func (k *Key) VerifyMessage(message, sigB64 string) bool {
	recovered, err := RecoverFromMessage(message, sigB64)
	if err != nil {
		return false
	}
	return recovered.PubKey().IsEqual(k.pub)
}
