// Package wallet provides the thin account and address-key helpers on top
// of the derivation engine: BIP 44 family path construction for a fixed
// purpose and coin type, watch-only wallets built from an account level
// extended public key, and the skip-to-next-index policy for the rare
// invalid child indices.
package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/walletkit/hdwalletkit/hdkeychain"
)

const (
	// ExternalChain is the branch index of receive addresses.
	ExternalChain uint32 = 0

	// InternalChain is the branch index of change addresses.
	InternalChain uint32 = 1
)

var (
	// ErrUnknownAccount is returned when a watch-only wallet is asked
	// for an account other than the one its extended public key encodes.
	ErrUnknownAccount = errors.New("account not known to wallet")

	// ErrExhaustedIndexSpace is returned when no valid child exists at
	// or after a start index. In practice this is unreachable, invalid
	// indices occur with probability below 1/2^127.
	ErrExhaustedIndexSpace = errors.New("no valid child index left")
)

// Wallet binds a key tree to a purpose and coin type and derives the
// account, receive and change keys of the BIP 44 family layout
// m/purpose'/coin'/account'/chain/index. A wallet is either full (rooted at
// a master key) or watch-only (rooted at a single account's extended public
// key).
type Wallet struct {
	purpose hdkeychain.Purpose
	coin    hdkeychain.CoinType

	// root is the master key, nil for watch-only wallets.
	root *hdkeychain.HDKey

	// account and accountIndex carry the single account of a watch-only
	// wallet.
	account      *hdkeychain.HDKey
	accountIndex uint32
}

// NewFromSeed builds a full wallet from a master seed.
func NewFromSeed(seed []byte, purpose hdkeychain.Purpose,
	coin hdkeychain.CoinType) (*Wallet, error) {

	master, err := hdkeychain.NewMaster(seed, hdkeychain.Secp256k1)
	if err != nil {
		return nil, fmt.Errorf("unable to derive master key: %w", err)
	}

	log.Debugf("Created wallet for purpose=%d coin=%d from %d byte seed",
		purpose, coin, len(seed))

	return &Wallet{
		purpose: purpose,
		coin:    coin,
		root:    master,
	}, nil
}

// NewWatchOnly builds a watch-only wallet from an account level extended
// public key such as an xpub or zpub. The key must be at the account depth
// of the BIP 44 layout; the purpose and coin type are taken from its
// version registry entry.
func NewWatchOnly(accountPub string) (*Wallet, error) {
	ext, err := hdkeychain.ParsePublic(accountPub)
	if err != nil {
		return nil, err
	}
	if ext.DerivedType() != hdkeychain.TypeAccount {
		return nil, fmt.Errorf("%w: depth %d",
			hdkeychain.ErrWrongDerivedType, ext.HDKey().Depth())
	}

	version := ext.Version()

	log.Debugf("Created watch-only wallet from %s account key",
		version.Prefix())

	return &Wallet{
		purpose:      version.Purposes()[0],
		coin:         version.Coin(),
		account:      ext.HDKey(),
		accountIndex: ext.HDKey().ChildNumber(),
	}, nil
}

// IsWatchOnly reports whether the wallet has no private master key.
func (w *Wallet) IsWatchOnly() bool {
	return w.root == nil
}

// Purpose returns the wallet's BIP 43 purpose.
func (w *Wallet) Purpose() hdkeychain.Purpose {
	return w.purpose
}

// CoinType returns the wallet's coin type.
func (w *Wallet) CoinType() hdkeychain.CoinType {
	return w.coin
}

// AccountKey derives the account level key m/purpose'/coin'/account'. Every
// level of the account path carries the hardened marker. Watch-only wallets
// can only serve the account their public key encodes.
func (w *Wallet) AccountKey(account uint32) (*hdkeychain.HDKey, error) {
	if w.root == nil {
		if account != w.accountIndex {
			return nil, fmt.Errorf("%w: account %d",
				ErrUnknownAccount, account)
		}
		return w.account, nil
	}

	path := fmt.Sprintf("m/%d'/%d'/%d'", w.purpose, w.coin, account)
	log.Tracef("Deriving account key at %s", path)

	return w.root.DerivePath(path)
}

// AccountPubKey serializes the account level key as an extended public key
// under the version registered for the wallet's purpose and coin.
func (w *Wallet) AccountPubKey(account uint32) (string, error) {
	accountKey, err := w.AccountKey(account)
	if err != nil {
		return "", err
	}

	version, err := hdkeychain.VersionFor(w.purpose, w.coin, false)
	if err != nil {
		return "", err
	}

	return accountKey.Neuter().SerializePublic(version)
}

// AccountPrivKey serializes the account level key as an extended private
// key. Watch-only wallets fail with ErrNotPrivate.
func (w *Wallet) AccountPrivKey(account uint32) (string, error) {
	accountKey, err := w.AccountKey(account)
	if err != nil {
		return "", err
	}
	if !accountKey.IsPrivate() {
		return "", hdkeychain.ErrNotPrivate
	}

	version, err := hdkeychain.VersionFor(w.purpose, w.coin, true)
	if err != nil {
		return "", err
	}

	return accountKey.SerializePrivate(version)
}

// ReceiveKey derives the external chain key
// m/purpose'/coin'/account'/0/index.
func (w *Wallet) ReceiveKey(account, index uint32) (*hdkeychain.HDKey,
	error) {

	return w.chainKey(account, ExternalChain, index)
}

// ChangeKey derives the internal chain key
// m/purpose'/coin'/account'/1/index.
func (w *Wallet) ChangeKey(account, index uint32) (*hdkeychain.HDKey,
	error) {

	return w.chainKey(account, InternalChain, index)
}

func (w *Wallet) chainKey(account, chain, index uint32) (*hdkeychain.HDKey,
	error) {

	accountKey, err := w.AccountKey(account)
	if err != nil {
		return nil, err
	}

	chainKey, err := accountKey.DeriveChild(chain, false)
	if err != nil {
		return nil, err
	}
	return chainKey.DeriveChild(index, false)
}

// PubKeyHash returns the HASH160 of a node's serialized public key, the
// payload of p2pkh and p2wpkh addresses.
func PubKeyHash(key *hdkeychain.HDKey) []byte {
	return btcutil.Hash160(key.PubKeyBytes())
}

// NextValidChild derives the first valid child of parent at or after the
// start index, skipping indices that fail with ErrInvalidChild per the
// BIP 32 derivation policy. It returns the child together with the index it
// was found at.
func NextValidChild(parent *hdkeychain.HDKey, start uint32,
	hardened bool) (*hdkeychain.HDKey, uint32, error) {

	for index := start; index < hdkeychain.HardenedKeyStart; index++ {
		child, err := parent.DeriveChild(index, hardened)
		switch {
		case err == nil:
			return child, index, nil

		case errors.Is(err, hdkeychain.ErrInvalidChild):
			log.Debugf("Skipping invalid child index %d", index)
			continue

		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrExhaustedIndexSpace
}
