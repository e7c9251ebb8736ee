package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// ForkPointPreGenesis is the fork height reported for two chains that share
// no common ancestor: the whole alternate chain must be applied from genesis.
const ForkPointPreGenesis = int64(-1)

// ForkResolver computes fork points and chain deltas between two chain tips
// that are both reachable through a ChainIndex
type ForkResolver interface {
	// FindForkPoint returns the height of the most recent common ancestor
	// of a and b, or ForkPointPreGenesis if the chains are disjoint down
	// to genesis
	FindForkPoint(chain ChainIndex, a, b *externalapi.BlockRecord) (int64, error)

	// LookupForkChain returns a height→hash map of every block on the
	// right tip's branch above the fork point, along with the fork
	// ancestor's hash. For fully disjoint branches the fork hash is the
	// network's genesis challenge.
	LookupForkChain(chain ChainIndex, left, right *externalapi.ChainTip) (
		map[uint32]*externalapi.DomainHash, *externalapi.DomainHash, error)
}
