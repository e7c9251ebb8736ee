package ldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBTransaction is a thin wrapper around leveldb batches. It supports
// only Put and Delete; staged writes become visible atomically on Commit.
//
// Note: transactions provide data consistency over the state of the database
// as it was when the transaction started. There is NO guarantee that if one
// puts data into the transaction then it will be available to get within the
// same transaction.
type LevelDBTransaction struct {
	db       *LevelDB
	batch    *leveldb.Batch
	isClosed bool
}

// Put stages setting the value for the given key
func (tx *LevelDBTransaction) Put(key []byte, value []byte) error {
	if tx.isClosed {
		return errors.New("cannot put into a closed transaction")
	}
	tx.batch.Put(key, value)
	return nil
}

// Delete stages deleting the value for the given key
func (tx *LevelDBTransaction) Delete(key []byte) error {
	if tx.isClosed {
		return errors.New("cannot delete from a closed transaction")
	}
	tx.batch.Delete(key)
	return nil
}

// Commit atomically applies all staged writes
func (tx *LevelDBTransaction) Commit() error {
	if tx.isClosed {
		return errors.New("cannot commit a closed transaction")
	}
	tx.isClosed = true
	return errors.WithStack(tx.db.ldb.Write(tx.batch, nil))
}

// Rollback discards all staged writes
func (tx *LevelDBTransaction) Rollback() error {
	if tx.isClosed {
		return errors.New("cannot rollback a closed transaction")
	}
	tx.isClosed = true
	tx.batch.Reset()
	return nil
}
