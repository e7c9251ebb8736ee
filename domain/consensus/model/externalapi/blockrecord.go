package externalapi

import "math/big"

// BlockRecord is an immutable summary of a block sufficient for consensus
// bookkeeping. It is produced once, by the header validation stage, and is
// looked up by hash or height through the chain index afterwards.
type BlockRecord struct {
	HeaderHash *DomainHash
	PrevHash   *DomainHash
	Height     uint32

	// Weight is the cumulative difficulty of the chain up to and including
	// this block. TotalIters is the cumulative number of VDF iterations.
	Weight     *big.Int
	TotalIters *big.Int

	// Timestamp is present only for transaction blocks
	Timestamp *uint64

	PrevTransactionBlockHeight uint32
	PrevTransactionBlockHash   *DomainHash

	// Fees is present only for transaction blocks
	Fees *uint64

	PoolPuzzleHash   *DomainHash
	FarmerPuzzleHash *DomainHash

	// SubSlotIters and Deficit are sub-slot bookkeeping carried from the
	// header stage. Deficit counts blocks since the last challenge block
	// that lack an infused-challenge-chain commitment.
	SubSlotIters uint64
	Deficit      uint8
}

// IsTransactionBlock returns whether this block carries transactions. Only
// transaction blocks have timestamps.
func (br *BlockRecord) IsTransactionBlock() bool {
	return br.Timestamp != nil
}

// Clone returns a clone of the block record
func (br *BlockRecord) Clone() *BlockRecord {
	clone := *br
	if br.Weight != nil {
		clone.Weight = new(big.Int).Set(br.Weight)
	}
	if br.TotalIters != nil {
		clone.TotalIters = new(big.Int).Set(br.TotalIters)
	}
	if br.Timestamp != nil {
		timestamp := *br.Timestamp
		clone.Timestamp = &timestamp
	}
	if br.Fees != nil {
		fees := *br.Fees
		clone.Fees = &fees
	}
	return &clone
}

// ChainTip is a lightweight (height, hash) descriptor of a chain position,
// used by the fork resolver.
type ChainTip struct {
	Height uint32
	Hash   *DomainHash
}
