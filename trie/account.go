package trie

import (
	"github.com/holiman/uint256"

	"github.com/lightproof/lightproof/rlp"
	"github.com/lightproof/lightproof/types"
)

// Account is the state trie leaf value for an address: the canonical
// four-field RLP list [nonce, balance, storageRoot, codeHash].
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot types.Hash
	CodeHash    types.Hash
}

// Encode returns the canonical RLP encoding of the account.
func (a *Account) Encode() []byte {
	var payload []byte
	payload = rlp.AppendUint(payload, a.Nonce)
	payload = rlp.AppendUint256(payload, a.Balance)
	payload = rlp.AppendString(payload, a.StorageRoot[:])
	payload = rlp.AppendString(payload, a.CodeHash[:])
	return rlp.WrapList(payload)
}

// DecodeAccount decodes an account leaf value, typically the result of
// verifying an account proof against a state root.
func DecodeAccount(b []byte) (*Account, error) {
	items, err := rlp.Split(b)
	if err != nil {
		return nil, ErrAccountInvalid
	}
	if len(items) != 4 {
		return nil, ErrAccountInvalid
	}
	for _, item := range items {
		if item.Kind != rlp.String {
			return nil, ErrAccountInvalid
		}
	}

	nonce, ok := decodeCanonicalUint(items[0].Payload)
	if !ok {
		return nil, ErrAccountInvalid
	}
	balance, ok := decodeCanonicalUint256(items[1].Payload)
	if !ok {
		return nil, ErrAccountInvalid
	}
	if len(items[2].Payload) != types.HashLength || len(items[3].Payload) != types.HashLength {
		return nil, ErrAccountInvalid
	}

	acc := &Account{Nonce: nonce, Balance: balance}
	acc.StorageRoot.SetBytes(items[2].Payload)
	acc.CodeHash.SetBytes(items[3].Payload)
	return acc, nil
}

// decodeCanonicalUint interprets a big-endian integer payload, rejecting
// leading zeros.
func decodeCanonicalUint(b []byte) (uint64, bool) {
	if len(b) > 8 || (len(b) > 0 && b[0] == 0) {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, true
}

func decodeCanonicalUint256(b []byte) (*uint256.Int, bool) {
	if len(b) > 32 || (len(b) > 0 && b[0] == 0) {
		return nil, false
	}
	return new(uint256.Int).SetBytes(b), true
}
