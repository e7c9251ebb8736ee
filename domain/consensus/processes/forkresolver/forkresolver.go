// Package forkresolver locates the common ancestor of two chain tips and
// enumerates the blocks that distinguish one branch from the other.
package forkresolver

import (
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

type forkResolver struct {
	genesisChallenge *externalapi.DomainHash
}

// New instantiates a new ForkResolver for a network with the given genesis
// challenge
func New(genesisChallenge *externalapi.DomainHash) model.ForkResolver {
	return &forkResolver{
		genesisChallenge: genesisChallenge,
	}
}

// FindForkPoint returns the height of the most recent common ancestor of a
// and b. Both records walk back until their heights match, then both step in
// lock-step until the hashes agree. Two chains that still differ at height 0
// have no common ancestor and resolve to ForkPointPreGenesis.
func (fr *forkResolver) FindForkPoint(chain model.ChainIndex,
	a, b *externalapi.BlockRecord) (int64, error) {

	var err error
	for a.Height > b.Height {
		a, err = chain.BlockRecord(a.PrevHash)
		if err != nil {
			return 0, err
		}
	}
	for b.Height > a.Height {
		b, err = chain.BlockRecord(b.PrevHash)
		if err != nil {
			return 0, err
		}
	}

	for !a.HeaderHash.Equal(b.HeaderHash) {
		if a.Height == 0 {
			return model.ForkPointPreGenesis, nil
		}
		a, err = chain.BlockRecord(a.PrevHash)
		if err != nil {
			return 0, err
		}
		b, err = chain.BlockRecord(b.PrevHash)
		if err != nil {
			return 0, err
		}
	}
	return int64(a.Height), nil
}

// LookupForkChain maps every height on the right branch above the fork point
// to its header hash and returns the fork ancestor's hash alongside. The
// descent only touches predecessor hashes, so it runs off the batched
// PrevBlockHashes lookup rather than full block records.
func (fr *forkResolver) LookupForkChain(chain model.ChainIndex,
	left, right *externalapi.ChainTip) (map[uint32]*externalapi.DomainHash, *externalapi.DomainHash, error) {

	branch := make(map[uint32]*externalapi.DomainHash)
	leftHeight, leftHash := left.Height, left.Hash
	rightHeight, rightHash := right.Height, right.Hash

	for leftHeight > rightHeight {
		prevHashes, err := chain.PrevBlockHashes([]*externalapi.DomainHash{leftHash})
		if err != nil {
			return nil, nil, err
		}
		leftHash = prevHashes[0]
		leftHeight--
	}
	for rightHeight > leftHeight {
		branch[rightHeight] = rightHash
		prevHashes, err := chain.PrevBlockHashes([]*externalapi.DomainHash{rightHash})
		if err != nil {
			return nil, nil, err
		}
		rightHash = prevHashes[0]
		rightHeight--
	}

	for !leftHash.Equal(rightHash) {
		branch[rightHeight] = rightHash
		if rightHeight == 0 {
			// Disjoint down to genesis. The caller replays the whole
			// right branch, anchored at the network's genesis challenge.
			return branch, fr.genesisChallenge, nil
		}
		prevHashes, err := chain.PrevBlockHashes(
			[]*externalapi.DomainHash{leftHash, rightHash})
		if err != nil {
			return nil, nil, err
		}
		leftHash, rightHash = prevHashes[0], prevHashes[1]
		leftHeight--
		rightHeight--
	}
	return branch, rightHash, nil
}
