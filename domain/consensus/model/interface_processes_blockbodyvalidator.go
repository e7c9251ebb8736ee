package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// BlockBodyValidator is the consensus state-transition function: it decides
// whether a candidate block body may extend the chain described by the given
// chain index. There is no partial acceptance; the first failing check
// rejects the whole block.
type BlockBodyValidator interface {
	// ValidateBlockBody validates the given body at the given height.
	// npcResult is the generator-execution result for this block, or nil
	// when the block carries no generator. forkPoint, when non-nil, is
	// the precomputed fork height between the current peak and the
	// block's predecessor; when nil it is computed through the fork
	// resolver. Returns the validated execution cost.
	ValidateBlockBody(chain ChainIndex, body *externalapi.BlockBody, height uint32,
		npcResult *externalapi.SpendBundleConditions, forkPoint *int64) (uint64, error)
}
