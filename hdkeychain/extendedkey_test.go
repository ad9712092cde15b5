package hdkeychain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseRoundTrip asserts that parsing and re-serializing an extended
// key reproduces the identical string, for both private and public keys.
func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		testVec1MasterPriv,
		testVec1MasterPub,
		testVec2MasterPriv,
		testVec2MasterPub,
	}

	for _, serialized := range tests {
		ext, err := Parse(serialized)
		require.NoError(t, err)
		require.Equal(t, serialized, ext.String())
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		err  error
	}{{
		name: "bad checksum",
		key: "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8Nqtwy" +
			"bGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6" +
			"W1EBygr15",
		err: ErrBadChecksum,
	}, {
		name: "too short",
		key:  "xpub1234",
		err:  ErrInvalidKeyLen,
	}, {
		name: "empty",
		key:  "",
		err:  ErrInvalidKeyLen,
	}, {
		name: "unknown version",
		key: "xbad4LfUL9eKmA66w2GJdVMqhvDmYGJpTGjWRAtjHqoUY17sGaym" +
			"oMV9Cm3ocn9Ud6Hh2vLFVC7KSKCRVVrqc6dsEdsTjRV1WUmkK8" +
			"5YEUujAPX",
		err: ErrUnknownVersion,
	}, {
		name: "pubkey not on curve",
		key: "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8Nqtwy" +
			"bGhePY2gZ1hr9Rwbk95YadvBkQXxzHBSngB8ndpW6QH7zhhsXZ" +
			"2jHyZqPjk",
		err: ErrInvalidKeyData,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(test.key)
			require.ErrorIs(t, err, test.err)
		})
	}
}

// TestChecksumTamper flips the last character of a valid key and expects
// the checksum to catch it.
func TestChecksumTamper(t *testing.T) {
	t.Parallel()

	tampered := testVec1MasterPub[:len(testVec1MasterPub)-1] + "o"
	_, err := Parse(tampered)
	require.Error(t, err)
}

func TestParseModeChecks(t *testing.T) {
	t.Parallel()

	// ParsePrivate refuses public keys and vice versa.
	_, err := ParsePrivate(testVec1MasterPub)
	require.ErrorIs(t, err, ErrVersionMismatch)

	_, err = ParsePublic(testVec1MasterPriv)
	require.ErrorIs(t, err, ErrVersionMismatch)

	ext, err := ParsePrivate(testVec1MasterPriv)
	require.NoError(t, err)
	require.True(t, ext.IsPrivate())
	require.Equal(t, VersionXprv, ext.Version())

	// Parsed keys have no parent reference and resolve to the path root.
	require.Equal(t, "m", ext.HDKey().Path())
}

// TestParsedHardenedMetadata checks that the hardened bit and child number
// survive a serialization round trip.
func TestParsedHardenedMetadata(t *testing.T) {
	t.Parallel()

	child, err := masterFromSeedHex(t, testVec1Seed).DerivePath("m/5'")
	require.NoError(t, err)

	ext, err := Parse(serializePriv(t, child))
	require.NoError(t, err)

	key := ext.HDKey()
	require.True(t, key.IsHardened())
	require.Equal(t, uint32(5), key.ChildNumber())
	require.Equal(t, uint8(1), key.Depth())
	require.True(t, key.IsPrivate())

	priv, err := key.PrivKeyBytes()
	require.NoError(t, err)
	childPriv, err := child.PrivKeyBytes()
	require.NoError(t, err)
	require.Equal(t, childPriv, priv)
	require.Equal(t, child.ChainCode(), key.ChainCode())
}

func TestDerivedType(t *testing.T) {
	t.Parallel()

	master := masterFromSeedHex(t, testVec1Seed)

	ext, err := Parse(serializePriv(t, master))
	require.NoError(t, err)
	require.Equal(t, TypeMaster, ext.DerivedType())

	account, err := master.DerivePath("m/44'/0'/0'")
	require.NoError(t, err)
	ext, err = Parse(serializePriv(t, account))
	require.NoError(t, err)
	require.Equal(t, TypeAccount, ext.DerivedType())

	leaf, err := account.DerivePath("0/0")
	require.NoError(t, err)
	ext, err = Parse(serializePriv(t, leaf))
	require.NoError(t, err)
	require.Equal(t, TypeGeneric, ext.DerivedType())

	require.Equal(t, "master", TypeMaster.String())
	require.Equal(t, "account", TypeAccount.String())
	require.Equal(t, "generic", TypeGeneric.String())
}

func TestSerializeModeChecks(t *testing.T) {
	t.Parallel()

	master := masterFromSeedHex(t, testVec1Seed)

	// Private serialization demands a private version and private
	// material.
	_, err := master.SerializePrivate(VersionXpub)
	require.ErrorIs(t, err, ErrVersionMismatch)

	_, err = master.Neuter().SerializePrivate(VersionXprv)
	require.ErrorIs(t, err, ErrNotPrivate)

	// Public serialization demands a public version.
	_, err = master.SerializePublic(VersionXprv)
	require.ErrorIs(t, err, ErrVersionMismatch)

	// Unregistered versions are refused outright.
	_, err = master.SerializePrivate(HDVersion(0xdeadbeef))
	require.ErrorIs(t, err, ErrUnknownVersion)

	// SerializePublic on a private node serializes its public half.
	s, err := master.SerializePublic(VersionXpub)
	require.NoError(t, err)
	require.Equal(t, testVec1MasterPub, s)
}
