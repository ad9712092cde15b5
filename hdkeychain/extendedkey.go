package hdkeychain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// serializedKeyLen is the length of the binary extended key payload:
	// version(4) + depth(1) + parent fingerprint(4) + child number(4) +
	// chain code(32) + key material(33).
	serializedKeyLen = 78

	// checkedKeyLen is the payload plus the 4-byte Base58Check checksum.
	checkedKeyLen = serializedKeyLen + 4
)

var (
	// ErrInvalidKeyLen is returned when a decoded extended key is not
	// exactly 82 bytes.
	ErrInvalidKeyLen = errors.New("the provided serialized extended " +
		"key length is invalid")

	// ErrBadChecksum is returned when the trailing checksum does not
	// match the payload.
	ErrBadChecksum = errors.New("bad extended key checksum")

	// ErrVersionMismatch is returned when a version's public/private
	// flag disagrees with the requested serialization or parse mode.
	ErrVersionMismatch = errors.New("extended key version does not " +
		"match key material")

	// ErrInvalidKeyData is returned when the 33-byte key material field
	// is not valid for its version: a private field without the zero
	// padding byte or with an out-of-range scalar.
	ErrInvalidKeyData = errors.New("invalid extended key material")

	// ErrWrongDerivedType is returned by callers that require an
	// extended key of a specific tree level, such as an account key.
	ErrWrongDerivedType = errors.New("extended key has wrong derived " +
		"type")
)

// DerivedType classifies an extended key by its tree depth.
type DerivedType uint8

const (
	// TypeGeneric is any depth other than the master and account levels.
	TypeGeneric DerivedType = iota

	// TypeMaster is the depth-0 root of a tree.
	TypeMaster

	// TypeAccount is a depth-3 node, the account level of the BIP 44
	// family layouts (purpose'/coin'/account').
	TypeAccount
)

// DerivedTypeForDepth maps a tree depth to its classification.
func DerivedTypeForDepth(depth uint8) DerivedType {
	switch depth {
	case 0:
		return TypeMaster
	case 3:
		return TypeAccount
	default:
		return TypeGeneric
	}
}

// String returns the human readable type name.
func (t DerivedType) String() string {
	switch t {
	case TypeMaster:
		return "master"
	case TypeAccount:
		return "account"
	default:
		return "generic"
	}
}

// ExtendedKey is a parsed Base58Check extended key: the HD node it encodes
// together with the version it was serialized under. Parsed nodes carry no
// parent reference, their depth and fingerprint fields are taken at face
// value.
type ExtendedKey struct {
	key     *HDKey
	version HDVersion
}

// HDKey returns the decoded HD node.
func (e *ExtendedKey) HDKey() *HDKey {
	return e.key
}

// Version returns the version the key was serialized under.
func (e *ExtendedKey) Version() HDVersion {
	return e.version
}

// IsPrivate reports whether the key carries private material.
func (e *ExtendedKey) IsPrivate() bool {
	return e.key.IsPrivate()
}

// DerivedType classifies the key by its depth.
func (e *ExtendedKey) DerivedType() DerivedType {
	return DerivedTypeForDepth(e.key.depth)
}

// String re-serializes the key under its original version.
func (e *ExtendedKey) String() string {
	var (
		s   string
		err error
	)
	if e.IsPrivate() {
		s, err = e.key.SerializePrivate(e.version)
	} else {
		s, err = e.key.SerializePublic(e.version)
	}
	if err != nil {
		// Parsing validated version and key material agreement, so
		// re-serialization cannot fail.
		panic(fmt.Sprintf("re-serialization failed: %v", err))
	}
	return s
}

// SerializePublic encodes the node's public form as a Base58Check extended
// key under the given public version.
func (k *HDKey) SerializePublic(version HDVersion) (string, error) {
	if k.curve != Secp256k1 {
		return "", ErrUnsupportedCurve
	}
	if !version.Valid() {
		return "", fmt.Errorf("%w: %#010x", ErrUnknownVersion,
			uint32(version))
	}
	if version.IsPrivate() {
		return "", ErrVersionMismatch
	}
	return encodeBase58Check(k.serializePayload(version, k.pubKey)), nil
}

// SerializePrivate encodes the node as a Base58Check extended private key
// under the given private version.
func (k *HDKey) SerializePrivate(version HDVersion) (string, error) {
	if k.curve != Secp256k1 {
		return "", ErrUnsupportedCurve
	}
	if !version.Valid() {
		return "", fmt.Errorf("%w: %#010x", ErrUnknownVersion,
			uint32(version))
	}
	if !version.IsPrivate() {
		return "", ErrVersionMismatch
	}

	padded, err := k.PaddedPrivKeyBytes()
	if err != nil {
		return "", err
	}
	return encodeBase58Check(k.serializePayload(version, padded)), nil
}

// serializePayload assembles the 78-byte binary layout with the given
// 33-byte key material field.
func (k *HDKey) serializePayload(version HDVersion, keyMaterial []byte) []byte {
	payload := make([]byte, 0, serializedKeyLen)

	versionBytes := version.bytes()
	payload = append(payload, versionBytes[:]...)
	payload = append(payload, k.depth)
	payload = binary.BigEndian.AppendUint32(payload, k.parentFP)
	payload = binary.BigEndian.AppendUint32(payload, k.childNumberEncoded())
	payload = append(payload, k.chainCode...)
	payload = append(payload, keyMaterial...)

	return payload
}

// encodeBase58Check appends the first four bytes of double-SHA256 of the
// payload and Base58 encodes the result.
func encodeBase58Check(payload []byte) string {
	checksum := chainhash.DoubleHashB(payload)[:4]
	return base58.Encode(append(payload, checksum...))
}

// Parse decodes a Base58Check extended key. The checksum, version and key
// material are validated; the reconstructed node has no parent reference.
func Parse(serialized string) (*ExtendedKey, error) {
	decoded := base58.Decode(serialized)
	if len(decoded) != checkedKeyLen {
		return nil, ErrInvalidKeyLen
	}

	payload, checksum := decoded[:serializedKeyLen],
		decoded[serializedKeyLen:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:4], checksum) {
		return nil, ErrBadChecksum
	}

	version := HDVersion(binary.BigEndian.Uint32(payload[0:4]))
	info, ok := versionRegistry[version]
	if !ok {
		return nil, fmt.Errorf("%w: %#010x", ErrUnknownVersion,
			binary.BigEndian.Uint32(payload[0:4]))
	}

	depth := payload[4]
	parentFP := binary.BigEndian.Uint32(payload[5:9])
	childEncoded := binary.BigEndian.Uint32(payload[9:13])

	chainCode := make([]byte, 32)
	copy(chainCode, payload[13:45])
	keyMaterial := payload[45:serializedKeyLen]

	key := &HDKey{
		curve:     Secp256k1,
		chainCode: chainCode,
		depth:     depth,
		parentFP:  parentFP,
		childNum:  childEncoded &^ HardenedKeyStart,
		hardened:  childEncoded&HardenedKeyStart != 0,
	}

	if info.private {
		if keyMaterial[0] != 0x00 {
			return nil, ErrInvalidKeyData
		}

		privKey := make([]byte, 32)
		copy(privKey, keyMaterial[1:])

		var scalar btcec.ModNScalar
		overflow := scalar.SetByteSlice(privKey)
		zero := scalar.IsZero()
		scalar.Zero()
		if overflow || zero {
			return nil, ErrInvalidKeyData
		}

		pubKey, err := Secp256k1.pubKeyBytes(privKey)
		if err != nil {
			return nil, err
		}

		key.privKey = privKey
		key.pubKey = pubKey
	} else {
		pub, err := btcec.ParsePubKey(keyMaterial)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyData,
				err)
		}
		key.pubKey = pub.SerializeCompressed()
	}

	return &ExtendedKey{key: key, version: version}, nil
}

// ParsePrivate decodes an extended key and requires it to be private.
func ParsePrivate(serialized string) (*ExtendedKey, error) {
	ext, err := Parse(serialized)
	if err != nil {
		return nil, err
	}
	if !ext.IsPrivate() {
		return nil, ErrVersionMismatch
	}
	return ext, nil
}

// ParsePublic decodes an extended key and requires it to be public.
func ParsePublic(serialized string) (*ExtendedKey, error) {
	ext, err := Parse(serialized)
	if err != nil {
		return nil, err
	}
	if ext.IsPrivate() {
		return nil, ErrVersionMismatch
	}
	return ext, nil
}
