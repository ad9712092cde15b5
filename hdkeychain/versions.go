package hdkeychain

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Purpose is the BIP 43 purpose field bound to an extended key version.
type Purpose uint32

const (
	PurposeBIP44 Purpose = 44
	PurposeBIP49 Purpose = 49
	PurposeBIP84 Purpose = 84
	PurposeBIP86 Purpose = 86
)

// CoinType is the SLIP-0044 registered coin type bound to an extended key
// version.
type CoinType uint32

const (
	CoinTypeBitcoin  CoinType = 0
	CoinTypeLitecoin CoinType = 2
)

// HDVersion is the 4-byte big-endian version prefix of a serialized
// extended key, selecting both the textual prefix and the purpose/coin
// binding per SLIP-0132.
type HDVersion uint32

const (
	// Bitcoin mainnet, BIP 44 (and BIP 86 taproot accounts, which reuse
	// the original BIP 32 version bytes).
	VersionXprv HDVersion = 0x0488ade4
	VersionXpub HDVersion = 0x0488b21e

	// Bitcoin mainnet, BIP 49 p2wpkh-nested-in-p2sh.
	VersionYprv HDVersion = 0x049d7878
	VersionYpub HDVersion = 0x049d7cb2

	// Bitcoin mainnet, BIP 84 p2wpkh.
	VersionZprv HDVersion = 0x04b2430c
	VersionZpub HDVersion = 0x04b24746

	// Litecoin mainnet, BIP 44.
	VersionLtpv HDVersion = 0x019d9cfe
	VersionLtub HDVersion = 0x019da462

	// Litecoin mainnet, BIP 49.
	VersionMtpv HDVersion = 0x01b26792
	VersionMtub HDVersion = 0x01b26ef6
)

var (
	// ErrUnknownVersion is returned when a version integer or prefix is
	// not in the registry.
	ErrUnknownVersion = errors.New("unknown extended key version")

	// ErrNoPrivVersion is returned when the private counterpart of a
	// public-only registry entry is requested.
	ErrNoPrivVersion = errors.New("version has no private counterpart")
)

// versionInfo is one registry entry. The registry is a fixed, closed table;
// lookups never mutate it.
type versionInfo struct {
	prefix   string
	private  bool
	pair     HDVersion
	purposes []Purpose
	coin     CoinType
}

var versionRegistry = map[HDVersion]versionInfo{
	VersionXprv: {
		prefix:   "xprv",
		private:  true,
		pair:     VersionXpub,
		purposes: []Purpose{PurposeBIP44, PurposeBIP86},
		coin:     CoinTypeBitcoin,
	},
	VersionXpub: {
		prefix:   "xpub",
		pair:     VersionXprv,
		purposes: []Purpose{PurposeBIP44, PurposeBIP86},
		coin:     CoinTypeBitcoin,
	},
	VersionYprv: {
		prefix:   "yprv",
		private:  true,
		pair:     VersionYpub,
		purposes: []Purpose{PurposeBIP49},
		coin:     CoinTypeBitcoin,
	},
	VersionYpub: {
		prefix:   "ypub",
		pair:     VersionYprv,
		purposes: []Purpose{PurposeBIP49},
		coin:     CoinTypeBitcoin,
	},
	VersionZprv: {
		prefix:   "zprv",
		private:  true,
		pair:     VersionZpub,
		purposes: []Purpose{PurposeBIP84},
		coin:     CoinTypeBitcoin,
	},
	VersionZpub: {
		prefix:   "zpub",
		pair:     VersionZprv,
		purposes: []Purpose{PurposeBIP84},
		coin:     CoinTypeBitcoin,
	},
	VersionLtpv: {
		prefix:   "Ltpv",
		private:  true,
		pair:     VersionLtub,
		purposes: []Purpose{PurposeBIP44},
		coin:     CoinTypeLitecoin,
	},
	VersionLtub: {
		prefix:   "Ltub",
		pair:     VersionLtpv,
		purposes: []Purpose{PurposeBIP44},
		coin:     CoinTypeLitecoin,
	},
	VersionMtpv: {
		prefix:   "Mtpv",
		private:  true,
		pair:     VersionMtub,
		purposes: []Purpose{PurposeBIP49},
		coin:     CoinTypeLitecoin,
	},
	VersionMtub: {
		prefix:   "Mtub",
		pair:     VersionMtpv,
		purposes: []Purpose{PurposeBIP49},
		coin:     CoinTypeLitecoin,
	},
}

// Valid reports whether the version is in the registry.
func (v HDVersion) Valid() bool {
	_, ok := versionRegistry[v]
	return ok
}

// IsPrivate reports whether the version denotes a private extended key.
// Unknown versions report false.
func (v HDVersion) IsPrivate() bool {
	return versionRegistry[v].private
}

// Prefix returns the 4-character textual prefix of the version, empty for
// unknown versions.
func (v HDVersion) Prefix() string {
	return versionRegistry[v].prefix
}

// Purposes returns the BIP 43 purposes the version is registered for.
func (v HDVersion) Purposes() []Purpose {
	return versionRegistry[v].purposes
}

// Coin returns the coin type the version is registered for.
func (v HDVersion) Coin() CoinType {
	return versionRegistry[v].coin
}

// PubVersion returns the public counterpart of the version. Public versions
// return themselves.
func (v HDVersion) PubVersion() (HDVersion, error) {
	info, ok := versionRegistry[v]
	if !ok {
		return 0, ErrUnknownVersion
	}
	if !info.private {
		return v, nil
	}
	return info.pair, nil
}

// PrivVersion returns the private counterpart of the version. Private
// versions return themselves; entries without a private pairing fail with
// ErrNoPrivVersion.
func (v HDVersion) PrivVersion() (HDVersion, error) {
	info, ok := versionRegistry[v]
	if !ok {
		return 0, ErrUnknownVersion
	}
	if info.private {
		return v, nil
	}
	if info.pair == 0 {
		return 0, ErrNoPrivVersion
	}
	return info.pair, nil
}

// bytes returns the big-endian wire encoding of the version.
func (v HDVersion) bytes() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b
}

// String returns the textual prefix, or the hex value for unknown versions.
func (v HDVersion) String() string {
	if info, ok := versionRegistry[v]; ok {
		return info.prefix
	}
	return fmt.Sprintf("0x%08x", uint32(v))
}

// VersionFromPrefix looks up a version by its 4-character textual prefix.
func VersionFromPrefix(prefix string) (HDVersion, error) {
	for version, info := range versionRegistry {
		if info.prefix == prefix {
			return version, nil
		}
	}
	return 0, fmt.Errorf("%w: prefix %q", ErrUnknownVersion, prefix)
}

// VersionFor looks up the version registered for a purpose, coin type and
// privacy. BIP 86 accounts map onto the original BIP 32 version bytes.
func VersionFor(purpose Purpose, coin CoinType, private bool) (HDVersion,
	error) {

	for version, info := range versionRegistry {
		if info.private != private || info.coin != coin {
			continue
		}
		for _, p := range info.purposes {
			if p == purpose {
				return version, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: purpose %d coin %d", ErrUnknownVersion,
		purpose, coin)
}
