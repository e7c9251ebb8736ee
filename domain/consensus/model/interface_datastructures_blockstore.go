package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// BlockStore is the read interface over durably stored full blocks. The body
// validator uses it to replay blocks between a fork point and a candidate's
// predecessor.
type BlockStore interface {
	// GetFullBlock returns the full block for the given header hash, or
	// false if the block is not stored
	GetFullBlock(headerHash *externalapi.DomainHash) (*externalapi.FullBlock, bool, error)
}
