package model

// DBReader defines read access to the underlying key/value database
type DBReader interface {
	// Get gets the value for the given key. The second return value is
	// false if the key does not exist.
	Get(key []byte) ([]byte, bool, error)

	// Has returns true if the database contains the given key
	Has(key []byte) (bool, error)
}

// DBWriter defines write access to the underlying key/value database
type DBWriter interface {
	DBReader

	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key []byte, value []byte) error

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key []byte) error
}

// DBTransaction is a batch of writes that is applied atomically on Commit
type DBTransaction interface {
	// Put stages setting the value for the given key
	Put(key []byte, value []byte) error

	// Delete stages deleting the value for the given key
	Delete(key []byte) error

	// Commit atomically applies all staged writes
	Commit() error

	// Rollback discards all staged writes
	Rollback() error
}

// DBManager is a database that can additionally begin atomic write batches
type DBManager interface {
	DBWriter

	// Begin begins a new database transaction
	Begin() (DBTransaction, error)

	// Close closes the database
	Close() error
}
