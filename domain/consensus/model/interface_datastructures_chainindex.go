package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// ChainIndex answers block-record queries over a chain of block records,
// indexed both by header hash and by height. The committed chain index and
// the augmented (overlay) chain view both implement it, so validation code
// is oblivious to whether a predecessor block is durably committed yet.
type ChainIndex interface {
	// BlockRecord returns the block record for the given header hash.
	// Returns an error if the hash is unknown.
	BlockRecord(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, error)

	// TryBlockRecord is like BlockRecord, except an unknown hash is
	// reported through the boolean rather than an error
	TryBlockRecord(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, bool, error)

	// BlockRecordFromDB returns the block record for the given header
	// hash, consulting only durably committed state and never any overlay
	BlockRecordFromDB(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, bool, error)

	// HeightToHash returns the header hash of the block at the given
	// height on the current chain
	HeightToHash(height uint32) (*externalapi.DomainHash, bool, error)

	// HeightToBlockRecord returns the block record at the given height on
	// the current chain. Returns an error if the height is unknown.
	HeightToBlockRecord(height uint32) (*externalapi.BlockRecord, error)

	// ContainsBlock returns whether a record exists for the given hash
	ContainsBlock(blockHash *externalapi.DomainHash) (bool, error)

	// ContainsHeight returns whether the current chain reaches the given height
	ContainsHeight(height uint32) (bool, error)

	// PrevBlockHashes returns, for each given header hash, the hash of
	// its predecessor. The lookup is batched; results are positional.
	PrevBlockHashes(blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error)

	// Peak returns the heaviest block record, or false if the chain is empty
	Peak() (*externalapi.BlockRecord, bool, error)

	// AddBlockRecord durably commits the given block record to the index
	AddBlockRecord(record *externalapi.BlockRecord) error

	// LookupBlockGenerators resolves the transaction generators at the
	// given heights, as seen from the branch that headerHash is the tip
	// of. Fails if any matched block carries no generator.
	LookupBlockGenerators(headerHash *externalapi.DomainHash, heights []uint32) (map[uint32][]byte, error)
}
