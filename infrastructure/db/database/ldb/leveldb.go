package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
)

// LevelDB defines a thin wrapper around leveldb. It implements model.DBManager.
type LevelDB struct {
	ldb *leveldb.DB
}

var _ model.DBManager = (*LevelDB)(nil)

// options tunes leveldb for the consensus stores: many small records written
// in batches and read back by exact key, never scanned. The records are
// hashes and compact serializations, so compression buys nothing.
func options() *opt.Options {
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     128 * opt.MiB,
		WriteBuffer:            64 * opt.MiB,
		DisableSeeksCompaction: true,
	}
}

// NewLevelDB opens a leveldb instance defined by the given path
func NewLevelDB(path string) (*LevelDB, error) {
	ldb, err := leveldb.OpenFile(path, options())

	// If the database is corrupted, attempt to recover.
	if _, corrupted := err.(*ldbErrors.ErrCorrupted); corrupted {
		log.Warnf("LevelDB corruption detected for path %s: %s", path, err)
		var recoverErr error
		ldb, recoverErr = leveldb.RecoverFile(path, nil)
		if recoverErr != nil {
			return nil, errors.Wrapf(err, "failed recovering from database corruption: %s", recoverErr)
		}
		log.Warnf("LevelDB recovered from corruption for path %s", path)
	}

	if err != nil && ldb == nil {
		return nil, errors.WithStack(err)
	}

	return &LevelDB{ldb: ldb}, nil
}

// Close closes the leveldb instance
func (db *LevelDB) Close() error {
	err := db.ldb.Close()
	return errors.WithStack(err)
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *LevelDB) Put(key []byte, value []byte) error {
	err := db.ldb.Put(key, value, nil)
	return errors.WithStack(err)
}

// Get gets the value for the given key. The second return value is false if
// the key does not exist.
func (db *LevelDB) Get(key []byte) ([]byte, bool, error) {
	data, err := db.ldb.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.WithStack(err)
	}
	return data, true, nil
}

// Has returns true if the database does contain the given key
func (db *LevelDB) Has(key []byte) (bool, error) {
	exists, err := db.ldb.Has(key, nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

// Delete deletes the value for the given key. Will not return an error if the
// key doesn't exist.
func (db *LevelDB) Delete(key []byte) error {
	err := db.ldb.Delete(key, nil)
	return errors.WithStack(err)
}

// Begin begins a new transaction
func (db *LevelDB) Begin() (model.DBTransaction, error) {
	return &LevelDBTransaction{
		db:    db,
		batch: new(leveldb.Batch),
	}, nil
}
