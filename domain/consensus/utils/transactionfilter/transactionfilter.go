// Package transactionfilter builds the compact probabilistic filter a
// transaction block commits to. Light clients match the filter against
// puzzle hashes they watch instead of downloading full coin lists.
package transactionfilter

import (
	"github.com/btcsuite/btcd/btcutil/gcs"
	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/hashes"
)

// Golomb-coded set parameters, shared with every client that decodes the
// filter.
const (
	filterP = 19
	filterM = 784931
)

// Encode builds the serialized filter over a transaction block's effects:
// the puzzle hash of every addition and the coin id of every removal.
func Encode(additions []*externalapi.Coin, removals []*externalapi.DomainHash) ([]byte, error) {
	data := make([][]byte, 0, len(additions)+len(removals))
	for _, addition := range additions {
		data = append(data, addition.PuzzleHash.ByteSlice())
	}
	for _, removal := range removals {
		data = append(data, removal.ByteSlice())
	}

	// The filter is a consensus commitment, so the key is fixed rather
	// than derived per block.
	var key [gcs.KeySize]byte
	filter, err := gcs.BuildGCSFilter(filterP, filterM, key, data)
	if err != nil {
		return nil, errors.Wrap(err, "building transactions filter")
	}
	filterBytes, err := filter.NBytes()
	if err != nil {
		return nil, errors.Wrap(err, "serializing transactions filter")
	}
	return filterBytes, nil
}

// Hash returns the hash of the serialized filter, as committed to by the
// foliage transaction block
func Hash(additions []*externalapi.Coin, removals []*externalapi.DomainHash) (*externalapi.DomainHash, error) {
	encoded, err := Encode(additions, removals)
	if err != nil {
		return nil, err
	}
	return hashes.HashData(encoded), nil
}
