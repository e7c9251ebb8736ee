// Package coinstore persists the durable coin set: one CoinRecord per
// confirmed coin, keyed by coin id. Mutation happens only on the
// single-writer commit path, either applying an accepted block's effects or
// rolling the coin set back below a height during a reorg.
package coinstore

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/database"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/lrucache"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

var (
	recordsBucket = database.MakeBucket([]byte("coin-records"))
	undoBucket    = database.MakeBucket([]byte("coin-undo"))
	tipHeightKey  = database.MakeBucket([]byte("coin-set")).Key([]byte("tip-height"))
)

// CoinStore extends model.CoinStore with the mutations of the commit path
type CoinStore interface {
	model.CoinStore

	// ApplyBlock applies an accepted transaction block's coin-set effects:
	// confirming created coins (reward claims as coinbase) and marking
	// removed coins spent. Coins created and spent within the same block
	// leave no record. Writes an undo record so the block can be rolled
	// back.
	ApplyBlock(height uint32, timestamp uint64, additions []*externalapi.Coin,
		rewardClaims []*externalapi.Coin, removals []*externalapi.DomainHash) error

	// RollbackToHeight unwinds every applied block above the given height
	RollbackToHeight(height uint32) error

	// TipHeight returns the height of the last applied block, or false if
	// no block has been applied
	TipHeight() (uint32, bool, error)
}

type coinStore struct {
	mutex sync.Mutex
	db    model.DBManager
	cache *lrucache.LRUCache
}

// New instantiates a new CoinStore over the given database
func New(db model.DBManager, cacheSize int, preallocate bool) CoinStore {
	return &coinStore{
		db:    db,
		cache: lrucache.New(cacheSize, preallocate),
	}
}

func coinIDAsKey(coinID *externalapi.DomainHash) []byte {
	return recordsBucket.Key(coinID.ByteSlice())
}

func heightAsUndoKey(height uint32) []byte {
	var heightBytes [4]byte
	binary.BigEndian.PutUint32(heightBytes[:], height)
	return undoBucket.Key(heightBytes[:])
}

// GetCoinRecord returns the coin record for the given coin id, or false if no
// such coin has been confirmed
func (cs *coinStore) GetCoinRecord(coinID *externalapi.DomainHash) (
	*externalapi.CoinRecord, bool, error) {

	cs.mutex.Lock()
	if cached, ok := cs.cache.Get(coinID); ok {
		cs.mutex.Unlock()
		return cached.(*externalapi.CoinRecord), true, nil
	}
	cs.mutex.Unlock()

	serialized, ok, err := cs.db.Get(coinIDAsKey(coinID))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record, err := serialization.DeserializeCoinRecord(bytes.NewReader(serialized))
	if err != nil {
		return nil, false, err
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.cache.Add(coinID, record)
	return record, true, nil
}

// GetCoinRecords is the batched form of GetCoinRecord. Results are
// positional; missing coins yield nil entries.
func (cs *coinStore) GetCoinRecords(coinIDs []*externalapi.DomainHash) (
	[]*externalapi.CoinRecord, error) {

	records := make([]*externalapi.CoinRecord, len(coinIDs))
	for i, coinID := range coinIDs {
		record, ok, err := cs.GetCoinRecord(coinID)
		if err != nil {
			return nil, err
		}
		if ok {
			records[i] = record
		}
	}
	return records, nil
}

// TipHeight returns the height of the last applied block, or false if no
// block has been applied
func (cs *coinStore) TipHeight() (uint32, bool, error) {
	heightBytes, ok, err := cs.db.Get(tipHeightKey)
	if err != nil || !ok {
		return 0, false, err
	}
	if len(heightBytes) != 4 {
		return 0, false, errors.Errorf("malformed tip height entry of %d bytes", len(heightBytes))
	}
	return binary.BigEndian.Uint32(heightBytes), true, nil
}

// ApplyBlock applies an accepted transaction block's coin-set effects in one
// atomic batch
func (cs *coinStore) ApplyBlock(height uint32, timestamp uint64,
	additions []*externalapi.Coin, rewardClaims []*externalapi.Coin,
	removals []*externalapi.DomainHash) error {

	undo := &undoRecord{}
	removed := make(map[externalapi.DomainHash]struct{}, len(removals))
	for _, coinID := range removals {
		removed[*coinID] = struct{}{}
	}
	created := make(map[externalapi.DomainHash]struct{}, len(additions)+len(rewardClaims))
	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}

	confirm := func(coin *externalapi.Coin, coinbase bool) error {
		coinID := consensushashing.CoinID(coin)
		created[*coinID] = struct{}{}
		if _, isEphemeral := removed[*coinID]; isEphemeral {
			// Created and spent within this same block; such coins never
			// reach the durable record set.
			return nil
		}
		record := &externalapi.CoinRecord{
			Coin:                coin,
			ConfirmedBlockIndex: height,
			SpentBlockIndex:     0,
			Coinbase:            coinbase,
			Timestamp:           timestamp,
		}
		undo.created = append(undo.created, coinID)
		return cs.putRecord(tx, coinID, record)
	}
	for _, coin := range additions {
		err = confirm(coin, false)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, claim := range rewardClaims {
		err = confirm(claim, true)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	for _, coinID := range removals {
		if _, isEphemeral := created[*coinID]; isEphemeral {
			continue
		}
		stored, ok, err := cs.GetCoinRecord(coinID)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if !ok {
			_ = tx.Rollback()
			return errors.Errorf("applied block at height %d spends unknown coin %s",
				height, coinID)
		}
		undo.spent = append(undo.spent, &spentCoin{coinID: coinID, record: stored.Clone()})

		spentRecord := stored.Clone()
		spentRecord.SpentBlockIndex = height
		err = cs.putRecord(tx, coinID, spentRecord)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	serializedUndo := &bytes.Buffer{}
	err = serializeUndoRecord(serializedUndo, undo)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	err = tx.Put(heightAsUndoKey(height), serializedUndo.Bytes())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	var heightBytes [4]byte
	binary.BigEndian.PutUint32(heightBytes[:], height)
	err = tx.Put(tipHeightKey, heightBytes[:])
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (cs *coinStore) putRecord(tx model.DBTransaction,
	coinID *externalapi.DomainHash, record *externalapi.CoinRecord) error {

	serialized := &bytes.Buffer{}
	err := serialization.SerializeCoinRecord(serialized, record)
	if err != nil {
		return err
	}
	err = tx.Put(coinIDAsKey(coinID), serialized.Bytes())
	if err != nil {
		return err
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.cache.Add(coinID, record)
	return nil
}

// RollbackToHeight unwinds every applied block above the given height,
// deleting the coins those blocks confirmed and unmarking the coins they
// spent
func (cs *coinStore) RollbackToHeight(height uint32) error {
	tipHeight, ok, err := cs.TipHeight()
	if err != nil {
		return err
	}
	if !ok || tipHeight <= height {
		return nil
	}

	for unwindHeight := tipHeight; unwindHeight > height; unwindHeight-- {
		err := cs.unwindHeight(unwindHeight)
		if err != nil {
			return err
		}
	}

	var heightBytes [4]byte
	binary.BigEndian.PutUint32(heightBytes[:], height)
	return cs.db.Put(tipHeightKey, heightBytes[:])
}

func (cs *coinStore) unwindHeight(height uint32) error {
	serializedUndo, ok, err := cs.db.Get(heightAsUndoKey(height))
	if err != nil {
		return err
	}
	if !ok {
		// Not every height carries a transaction block.
		return nil
	}
	undo, err := deserializeUndoRecord(bytes.NewReader(serializedUndo))
	if err != nil {
		return err
	}

	tx, err := cs.db.Begin()
	if err != nil {
		return err
	}
	cs.mutex.Lock()
	for _, coinID := range undo.created {
		err = tx.Delete(coinIDAsKey(coinID))
		if err != nil {
			cs.mutex.Unlock()
			_ = tx.Rollback()
			return err
		}
		cs.cache.Remove(coinID)
	}
	cs.mutex.Unlock()

	for _, spent := range undo.spent {
		err = cs.putRecord(tx, spent.coinID, spent.record)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	err = tx.Delete(heightAsUndoKey(height))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
