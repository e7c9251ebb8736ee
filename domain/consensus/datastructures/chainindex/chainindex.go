// Package chainindex persists block records, indexed by header hash and by
// height along the canonical chain, and tracks the heaviest tip.
package chainindex

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/database"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/lrucache"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

var (
	recordsBucket = database.MakeBucket([]byte("block-records"))
	heightsBucket = database.MakeBucket([]byte("chain-heights"))
	peakKey       = database.MakeBucket([]byte("chain")).Key([]byte("peak"))
)

// chainIndex is an ldb-backed model.ChainIndex with an LRU record cache in
// front. Safe for concurrent use; writes go through AddBlockRecord only.
type chainIndex struct {
	mutex      sync.Mutex
	db         model.DBManager
	blockStore model.BlockStore
	cache      *lrucache.LRUCache
}

var _ model.ChainIndex = (*chainIndex)(nil)

// New instantiates a new ChainIndex over the given database. The block store
// backs generator lookups.
func New(db model.DBManager, blockStore model.BlockStore, cacheSize int, preallocate bool) model.ChainIndex {
	return &chainIndex{
		db:         db,
		blockStore: blockStore,
		cache:      lrucache.New(cacheSize, preallocate),
	}
}

func hashAsKey(headerHash *externalapi.DomainHash) []byte {
	return recordsBucket.Key(headerHash.ByteSlice())
}

func heightAsKey(height uint32) []byte {
	var heightBytes [4]byte
	binary.BigEndian.PutUint32(heightBytes[:], height)
	return heightsBucket.Key(heightBytes[:])
}

// BlockRecord returns the block record for the given header hash. Returns an
// error if the hash is unknown.
func (ci *chainIndex) BlockRecord(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, error) {
	record, ok, err := ci.TryBlockRecord(blockHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("block record %s not found", blockHash)
	}
	return record, nil
}

// TryBlockRecord is like BlockRecord, except an unknown hash is reported
// through the boolean rather than an error
func (ci *chainIndex) TryBlockRecord(blockHash *externalapi.DomainHash) (
	*externalapi.BlockRecord, bool, error) {

	ci.mutex.Lock()
	if cached, ok := ci.cache.Get(blockHash); ok {
		ci.mutex.Unlock()
		return cached.(*externalapi.BlockRecord), true, nil
	}
	ci.mutex.Unlock()

	record, ok, err := ci.BlockRecordFromDB(blockHash)
	if err != nil || !ok {
		return nil, false, err
	}

	ci.mutex.Lock()
	defer ci.mutex.Unlock()
	ci.cache.Add(blockHash, record)
	return record, true, nil
}

// BlockRecordFromDB returns the block record for the given header hash
// straight from the database, bypassing the cache
func (ci *chainIndex) BlockRecordFromDB(blockHash *externalapi.DomainHash) (
	*externalapi.BlockRecord, bool, error) {

	serialized, ok, err := ci.db.Get(hashAsKey(blockHash))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record, err := serialization.DeserializeBlockRecord(bytes.NewReader(serialized))
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// HeightToHash returns the header hash at the given height on the canonical
// chain
func (ci *chainIndex) HeightToHash(height uint32) (*externalapi.DomainHash, bool, error) {
	hashBytes, ok, err := ci.db.Get(heightAsKey(height))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(hashBytes)
	if err != nil {
		return nil, false, err
	}
	return hash, true, nil
}

// HeightToBlockRecord returns the block record at the given height on the
// canonical chain. Returns an error if the height is unknown.
func (ci *chainIndex) HeightToBlockRecord(height uint32) (*externalapi.BlockRecord, error) {
	hash, ok, err := ci.HeightToHash(height)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("no block at height %d", height)
	}
	return ci.BlockRecord(hash)
}

// ContainsBlock returns whether a record exists for the given hash
func (ci *chainIndex) ContainsBlock(blockHash *externalapi.DomainHash) (bool, error) {
	ci.mutex.Lock()
	if ci.cache.Has(blockHash) {
		ci.mutex.Unlock()
		return true, nil
	}
	ci.mutex.Unlock()

	return ci.db.Has(hashAsKey(blockHash))
}

// ContainsHeight returns whether the canonical chain reaches the given height
func (ci *chainIndex) ContainsHeight(height uint32) (bool, error) {
	return ci.db.Has(heightAsKey(height))
}

// PrevBlockHashes returns, for each given header hash, the hash of its
// predecessor. The lookup is batched; results are positional.
func (ci *chainIndex) PrevBlockHashes(blockHashes []*externalapi.DomainHash) (
	[]*externalapi.DomainHash, error) {

	prevHashes := make([]*externalapi.DomainHash, len(blockHashes))
	for i, blockHash := range blockHashes {
		record, err := ci.BlockRecord(blockHash)
		if err != nil {
			return nil, err
		}
		prevHashes[i] = record.PrevHash
	}
	return prevHashes, nil
}

// Peak returns the heaviest block record, or false if the chain is empty
func (ci *chainIndex) Peak() (*externalapi.BlockRecord, bool, error) {
	hashBytes, ok, err := ci.db.Get(peakKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(hashBytes)
	if err != nil {
		return nil, false, err
	}
	record, err := ci.BlockRecord(hash)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// AddBlockRecord durably commits the given block record, updating the height
// index and, if the record outweighs the current peak, the peak pointer. All
// writes land in one atomic batch.
func (ci *chainIndex) AddBlockRecord(record *externalapi.BlockRecord) error {
	serialized := &bytes.Buffer{}
	err := serialization.SerializeBlockRecord(serialized, record)
	if err != nil {
		return err
	}

	peak, hasPeak, err := ci.Peak()
	if err != nil {
		return err
	}

	tx, err := ci.db.Begin()
	if err != nil {
		return err
	}
	err = tx.Put(hashAsKey(record.HeaderHash), serialized.Bytes())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	err = tx.Put(heightAsKey(record.Height), record.HeaderHash.ByteSlice())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if !hasPeak || record.Weight.Cmp(peak.Weight) > 0 {
		err = tx.Put(peakKey, record.HeaderHash.ByteSlice())
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	ci.mutex.Lock()
	defer ci.mutex.Unlock()
	ci.cache.Add(record.HeaderHash, record)
	return nil
}

// LookupBlockGenerators resolves the transaction generators at the given
// heights, as seen from the branch headerHash tips. The walk descends block
// records until it rejoins the canonical chain, then switches to direct
// height lookups for the remaining heights.
func (ci *chainIndex) LookupBlockGenerators(headerHash *externalapi.DomainHash,
	heights []uint32) (map[uint32][]byte, error) {

	remaining := make(map[uint32]struct{}, len(heights))
	for _, height := range heights {
		remaining[height] = struct{}{}
	}
	generators := make(map[uint32][]byte, len(heights))

	cursor, err := ci.BlockRecord(headerHash)
	if err != nil {
		return nil, err
	}
	for len(remaining) > 0 {
		canonicalHash, onCanonicalChain, err := ci.HeightToHash(cursor.Height)
		if err != nil {
			return nil, err
		}
		if onCanonicalChain && canonicalHash.Equal(cursor.HeaderHash) {
			break
		}
		if _, wanted := remaining[cursor.Height]; wanted {
			err = ci.resolveGenerator(cursor.HeaderHash, cursor.Height, generators)
			if err != nil {
				return nil, err
			}
			delete(remaining, cursor.Height)
		}
		if cursor.Height == 0 {
			break
		}
		cursor, err = ci.BlockRecord(cursor.PrevHash)
		if err != nil {
			return nil, err
		}
	}

	for height := range remaining {
		if height > cursor.Height {
			return nil, errors.Errorf("no block at height %d below branch tip %s",
				height, headerHash)
		}
		hash, ok, err := ci.HeightToHash(height)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Errorf("no block at height %d", height)
		}
		err = ci.resolveGenerator(hash, height, generators)
		if err != nil {
			return nil, err
		}
	}
	return generators, nil
}

func (ci *chainIndex) resolveGenerator(blockHash *externalapi.DomainHash,
	height uint32, generators map[uint32][]byte) error {

	block, ok, err := ci.blockStore.GetFullBlock(blockHash)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("block %s at height %d is missing from the block store",
			blockHash, height)
	}
	if block.TransactionsGenerator == nil {
		return errors.Wrapf(ruleerrors.ErrMissingGenerator,
			"block %s at height %d has no transactions generator", blockHash, height)
	}
	generators[height] = block.TransactionsGenerator
	return nil
}
