package constants

import (
	"math"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

const (
	// MojoPerCoin is the number of mojos in one whole coin
	MojoPerCoin = 1_000_000_000_000

	// MaxCoinAmount is the maximum amount a single coin may carry, in mojos
	MaxCoinAmount uint64 = math.MaxUint64

	// MaxBlockCostCLVM is the maximum execution cost of a block's
	// transaction generator
	MaxBlockCostCLVM uint64 = 11_000_000_000

	// MaxGeneratorSize is the maximum serialized size of a transaction
	// generator program
	MaxGeneratorSize uint32 = 1_000_000

	// MaxGeneratorRefListSize is the maximum number of previous generators
	// a generator program may reference
	MaxGeneratorRefListSize uint32 = 512

	// BlocksPerYear is the expected number of blocks farmed per year: 32
	// blocks per sub-slot, one sub-slot per 10 minutes.
	BlocksPerYear = 32 * 6 * 24 * 365
)

// ConsensusConstants bundles the per-network consensus parameters the
// validation code needs
type ConsensusConstants struct {
	// GenesisChallenge identifies the network; it doubles as the declared
	// predecessor hash of the genesis block and as the seed of reward-coin
	// parent ids.
	GenesisChallenge *externalapi.DomainHash

	// AggSigMeAdditionalData is appended to every AGG_SIG_ME message so
	// signatures can't be replayed across networks
	AggSigMeAdditionalData []byte

	MaxBlockCostCLVM        uint64
	MaxCoinAmount           uint64
	MaxGeneratorSize        uint32
	MaxGeneratorRefListSize uint32
}

func mustHashFromString(s string) *externalapi.DomainHash {
	hash, err := externalapi.NewDomainHashFromString(s)
	if err != nil {
		panic(err)
	}
	return hash
}

// MainnetConstants are the consensus parameters of the production network
var MainnetConstants = &ConsensusConstants{
	GenesisChallenge:        mustHashFromString("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"),
	AggSigMeAdditionalData:  mustHashFromString("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb").ByteSlice(),
	MaxBlockCostCLVM:        MaxBlockCostCLVM,
	MaxCoinAmount:           MaxCoinAmount,
	MaxGeneratorSize:        MaxGeneratorSize,
	MaxGeneratorRefListSize: MaxGeneratorRefListSize,
}

// TestnetConstants are the consensus parameters of the public testnet
var TestnetConstants = &ConsensusConstants{
	GenesisChallenge:        mustHashFromString("ae83525ba8d1dd3f09b277de18ca3e43fc0af20d20c4b3e92ef2a48bd291ccb2"),
	AggSigMeAdditionalData:  mustHashFromString("ae83525ba8d1dd3f09b277de18ca3e43fc0af20d20c4b3e92ef2a48bd291ccb2").ByteSlice(),
	MaxBlockCostCLVM:        MaxBlockCostCLVM,
	MaxCoinAmount:           MaxCoinAmount,
	MaxGeneratorSize:        MaxGeneratorSize,
	MaxGeneratorRefListSize: MaxGeneratorRefListSize,
}
