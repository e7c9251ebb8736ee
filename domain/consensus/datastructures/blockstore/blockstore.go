// Package blockstore persists full blocks by header hash.
package blockstore

import (
	"bytes"
	"sync"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/database"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/lrucache"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

var bucket = database.MakeBucket([]byte("full-blocks"))

// blockStore is an ldb-backed model.BlockStore with an LRU cache in front.
// Safe for concurrent use.
type blockStore struct {
	mutex sync.Mutex
	db    model.DBManager
	cache *lrucache.LRUCache
}

// BlockStore extends model.BlockStore with the write operations of the commit
// path
type BlockStore interface {
	model.BlockStore

	// StoreBlock durably stores the given block under its header hash
	StoreBlock(block *externalapi.FullBlock) error

	// HasBlock returns whether a block is stored for the given header hash
	HasBlock(headerHash *externalapi.DomainHash) (bool, error)
}

// New instantiates a new BlockStore over the given database
func New(db model.DBManager, cacheSize int, preallocate bool) BlockStore {
	return &blockStore{
		db:    db,
		cache: lrucache.New(cacheSize, preallocate),
	}
}

func (bs *blockStore) hashAsKey(headerHash *externalapi.DomainHash) []byte {
	return bucket.Key(headerHash.ByteSlice())
}

// StoreBlock durably stores the given block under its header hash
func (bs *blockStore) StoreBlock(block *externalapi.FullBlock) error {
	serialized := &bytes.Buffer{}
	err := serialization.SerializeFullBlock(serialized, block)
	if err != nil {
		return err
	}

	headerHash := consensushashing.HeaderHash(block.Foliage)
	err = bs.db.Put(bs.hashAsKey(headerHash), serialized.Bytes())
	if err != nil {
		return err
	}

	bs.mutex.Lock()
	defer bs.mutex.Unlock()
	bs.cache.Add(headerHash, block)
	return nil
}

// GetFullBlock returns the full block for the given header hash, or false if
// the block is not stored
func (bs *blockStore) GetFullBlock(headerHash *externalapi.DomainHash) (
	*externalapi.FullBlock, bool, error) {

	bs.mutex.Lock()
	if cached, ok := bs.cache.Get(headerHash); ok {
		bs.mutex.Unlock()
		return cached.(*externalapi.FullBlock), true, nil
	}
	bs.mutex.Unlock()

	serialized, ok, err := bs.db.Get(bs.hashAsKey(headerHash))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	block, err := serialization.DeserializeFullBlock(bytes.NewReader(serialized))
	if err != nil {
		return nil, false, err
	}

	bs.mutex.Lock()
	defer bs.mutex.Unlock()
	bs.cache.Add(headerHash, block)
	return block, true, nil
}

// HasBlock returns whether a block is stored for the given header hash
func (bs *blockStore) HasBlock(headerHash *externalapi.DomainHash) (bool, error) {
	bs.mutex.Lock()
	if bs.cache.Has(headerHash) {
		bs.mutex.Unlock()
		return true, nil
	}
	bs.mutex.Unlock()

	return bs.db.Has(bs.hashAsKey(headerHash))
}
