// Package blockbodyvalidator decides whether a candidate block body is a
// valid state transition of the coin set: reward incorporation, generator
// commitments, cost accounting, Merkle and filter commitments, spend
// visibility across forks, value conservation, per-coin conditions and the
// aggregate signature.
package blockbodyvalidator

import (
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/blssignatures"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/constants"
)

type blockBodyValidator struct {
	constants      *constants.ConsensusConstants
	coinStore      model.CoinStore
	blockStore     model.BlockStore
	executor       model.GeneratorExecutor
	forkResolver   model.ForkResolver
	signatureCache *blssignatures.SignatureCache
}

// New instantiates a new BlockBodyValidator
func New(
	consensusConstants *constants.ConsensusConstants,
	coinStore model.CoinStore,
	blockStore model.BlockStore,
	executor model.GeneratorExecutor,
	forkResolver model.ForkResolver,
	signatureCache *blssignatures.SignatureCache) model.BlockBodyValidator {

	return &blockBodyValidator{
		constants:      consensusConstants,
		coinStore:      coinStore,
		blockStore:     blockStore,
		executor:       executor,
		forkResolver:   forkResolver,
		signatureCache: signatureCache,
	}
}

// emptyGeneratorRoot is the declared generator root of a block that carries
// no generator. emptyRefListRoot is the declared refs root of a generator
// that references no prior generators.
var (
	emptyGeneratorRoot = externalapi.NewZeroHash()
	emptyRefListRoot   = allOnesHash()
)

func allOnesHash() *externalapi.DomainHash {
	var ones [externalapi.DomainHashSize]byte
	for i := range ones {
		ones[i] = 0xff
	}
	return externalapi.NewDomainHashFromByteArray(&ones)
}
