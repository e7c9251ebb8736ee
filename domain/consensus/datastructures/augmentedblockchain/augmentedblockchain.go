// Package augmentedblockchain overlays not-yet-committed blocks on top of a
// committed chain index. Batch pre-validation stages each block here so that
// later blocks in the batch can resolve predecessors, heights and generator
// references against blocks that precede them in the batch, before anything
// is durably committed.
package augmentedblockchain

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
)

// AugmentedBlockchain is a ChainIndex and BlockStore whose answers prefer the
// overlay and fall back to the wrapped committed view. Safe for concurrent use.
type AugmentedBlockchain struct {
	mutex      sync.RWMutex
	chain      model.ChainIndex
	blockStore model.BlockStore

	extraRecords map[externalapi.DomainHash]*externalapi.BlockRecord
	extraBlocks  map[externalapi.DomainHash]*externalapi.FullBlock
	heightToHash map[uint32]*externalapi.DomainHash
}

// This type must implement both chain views.
var _ model.ChainIndex = (*AugmentedBlockchain)(nil)
var _ model.BlockStore = (*AugmentedBlockchain)(nil)

// New creates an AugmentedBlockchain over the given committed chain index and
// block store
func New(chain model.ChainIndex, blockStore model.BlockStore) *AugmentedBlockchain {
	return &AugmentedBlockchain{
		chain:      chain,
		blockStore: blockStore,

		extraRecords: make(map[externalapi.DomainHash]*externalapi.BlockRecord),
		extraBlocks:  make(map[externalapi.DomainHash]*externalapi.FullBlock),
		heightToHash: make(map[uint32]*externalapi.DomainHash),
	}
}

// AddExtraBlock stages a block and its record in the overlay. The record must
// describe exactly this block.
func (ab *AugmentedBlockchain) AddExtraBlock(block *externalapi.FullBlock,
	record *externalapi.BlockRecord) error {

	headerHash := consensushashing.HeaderHash(block.Foliage)
	if !headerHash.Equal(record.HeaderHash) {
		return errors.Errorf("block record %s does not describe block %s",
			record.HeaderHash, headerHash)
	}

	ab.mutex.Lock()
	defer ab.mutex.Unlock()

	ab.extraRecords[*record.HeaderHash] = record
	ab.extraBlocks[*record.HeaderHash] = block
	ab.heightToHash[record.Height] = record.HeaderHash
	return nil
}

// RemoveExtraBlock evicts a staged block from the overlay, usually after it
// has been durably committed
func (ab *AugmentedBlockchain) RemoveExtraBlock(headerHash *externalapi.DomainHash) {
	ab.mutex.Lock()
	defer ab.mutex.Unlock()

	record, ok := ab.extraRecords[*headerHash]
	if !ok {
		return
	}
	delete(ab.extraRecords, *headerHash)
	delete(ab.extraBlocks, *headerHash)
	if staged, ok := ab.heightToHash[record.Height]; ok && staged.Equal(headerHash) {
		delete(ab.heightToHash, record.Height)
	}
}

// BlockRecord returns the block record for the given header hash
func (ab *AugmentedBlockchain) BlockRecord(blockHash *externalapi.DomainHash) (
	*externalapi.BlockRecord, error) {

	record, ok, err := ab.TryBlockRecord(blockHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("block record %s not found", blockHash)
	}
	return record, nil
}

// TryBlockRecord returns the block record for the given header hash, checking
// the overlay before the committed chain
func (ab *AugmentedBlockchain) TryBlockRecord(blockHash *externalapi.DomainHash) (
	*externalapi.BlockRecord, bool, error) {

	ab.mutex.RLock()
	record, ok := ab.extraRecords[*blockHash]
	ab.mutex.RUnlock()
	if ok {
		return record, true, nil
	}
	return ab.chain.TryBlockRecord(blockHash)
}

// BlockRecordFromDB returns the committed block record for the given header
// hash, bypassing the overlay
func (ab *AugmentedBlockchain) BlockRecordFromDB(blockHash *externalapi.DomainHash) (
	*externalapi.BlockRecord, bool, error) {

	return ab.chain.BlockRecordFromDB(blockHash)
}

// HeightToHash returns the header hash at the given height, preferring staged
// blocks over the committed chain
func (ab *AugmentedBlockchain) HeightToHash(height uint32) (*externalapi.DomainHash, bool, error) {
	ab.mutex.RLock()
	hash, ok := ab.heightToHash[height]
	ab.mutex.RUnlock()
	if ok {
		return hash, true, nil
	}
	return ab.chain.HeightToHash(height)
}

// HeightToBlockRecord returns the block record at the given height
func (ab *AugmentedBlockchain) HeightToBlockRecord(height uint32) (*externalapi.BlockRecord, error) {
	hash, ok, err := ab.HeightToHash(height)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("no block at height %d", height)
	}
	return ab.BlockRecord(hash)
}

// ContainsBlock returns whether a record exists for the given hash in either view
func (ab *AugmentedBlockchain) ContainsBlock(blockHash *externalapi.DomainHash) (bool, error) {
	ab.mutex.RLock()
	_, ok := ab.extraRecords[*blockHash]
	ab.mutex.RUnlock()
	if ok {
		return true, nil
	}
	return ab.chain.ContainsBlock(blockHash)
}

// ContainsHeight returns whether either view reaches the given height
func (ab *AugmentedBlockchain) ContainsHeight(height uint32) (bool, error) {
	ab.mutex.RLock()
	_, ok := ab.heightToHash[height]
	ab.mutex.RUnlock()
	if ok {
		return true, nil
	}
	return ab.chain.ContainsHeight(height)
}

// PrevBlockHashes returns the predecessor hash of each given header hash.
// Overlay hits are answered locally; the rest are resolved through one
// batched lookup against the committed chain.
func (ab *AugmentedBlockchain) PrevBlockHashes(blockHashes []*externalapi.DomainHash) (
	[]*externalapi.DomainHash, error) {

	prevHashes := make([]*externalapi.DomainHash, len(blockHashes))
	missingIndexes := make([]int, 0, len(blockHashes))
	missingHashes := make([]*externalapi.DomainHash, 0, len(blockHashes))

	ab.mutex.RLock()
	for i, blockHash := range blockHashes {
		if record, ok := ab.extraRecords[*blockHash]; ok {
			prevHashes[i] = record.PrevHash
			continue
		}
		missingIndexes = append(missingIndexes, i)
		missingHashes = append(missingHashes, blockHash)
	}
	ab.mutex.RUnlock()

	if len(missingHashes) > 0 {
		resolved, err := ab.chain.PrevBlockHashes(missingHashes)
		if err != nil {
			return nil, err
		}
		for i, index := range missingIndexes {
			prevHashes[index] = resolved[i]
		}
	}
	return prevHashes, nil
}

// Peak returns the committed chain's heaviest block record. Staged blocks are
// candidates, not chain members, so the overlay never influences the peak.
func (ab *AugmentedBlockchain) Peak() (*externalapi.BlockRecord, bool, error) {
	return ab.chain.Peak()
}

// AddBlockRecord commits the given block record to the underlying chain index
// and evicts it from the overlay
func (ab *AugmentedBlockchain) AddBlockRecord(record *externalapi.BlockRecord) error {
	err := ab.chain.AddBlockRecord(record)
	if err != nil {
		return err
	}
	ab.RemoveExtraBlock(record.HeaderHash)
	return nil
}

// LookupBlockGenerators resolves generators at the given heights as seen from
// the branch headerHash tips. The walk descends through staged records as far
// as the overlay reaches, then hands the remaining heights to the committed
// chain in one call.
func (ab *AugmentedBlockchain) LookupBlockGenerators(headerHash *externalapi.DomainHash,
	heights []uint32) (map[uint32][]byte, error) {

	remaining := make(map[uint32]struct{}, len(heights))
	for _, height := range heights {
		remaining[height] = struct{}{}
	}
	generators := make(map[uint32][]byte, len(heights))

	ab.mutex.RLock()
	cursor := headerHash
	for len(remaining) > 0 {
		record, ok := ab.extraRecords[*cursor]
		if !ok {
			break
		}
		if _, wanted := remaining[record.Height]; wanted {
			block := ab.extraBlocks[*cursor]
			if block.TransactionsGenerator == nil {
				ab.mutex.RUnlock()
				return nil, errors.Wrapf(ruleerrors.ErrMissingGenerator,
					"staged block %s at height %d has no transactions generator",
					record.HeaderHash, record.Height)
			}
			generators[record.Height] = block.TransactionsGenerator
			delete(remaining, record.Height)
		}
		cursor = record.PrevHash
	}
	ab.mutex.RUnlock()

	if len(remaining) > 0 {
		remainingHeights := make([]uint32, 0, len(remaining))
		for height := range remaining {
			remainingHeights = append(remainingHeights, height)
		}
		committed, err := ab.chain.LookupBlockGenerators(cursor, remainingHeights)
		if err != nil {
			return nil, err
		}
		for height, generator := range committed {
			generators[height] = generator
		}
	}
	return generators, nil
}

// GetFullBlock returns the full block for the given header hash, checking the
// overlay before the committed block store
func (ab *AugmentedBlockchain) GetFullBlock(headerHash *externalapi.DomainHash) (
	*externalapi.FullBlock, bool, error) {

	ab.mutex.RLock()
	block, ok := ab.extraBlocks[*headerHash]
	ab.mutex.RUnlock()
	if ok {
		return block, true, nil
	}
	return ab.blockStore.GetFullBlock(headerHash)
}
