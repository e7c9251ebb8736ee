// Package rewards derives the pool and farmer reward coins owed for a block.
// The derivations are pure functions over (height, puzzle hash, genesis
// challenge); reward coins are never stored, only re-derived and compared.
package rewards

import (
	"encoding/binary"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/constants"
)

// The block reward splits 7/8 to the pool and 1/8 to the farmer.
const (
	rewardDenominator   = 8
	poolRewardNumerator = 7
)

// The genesis block carries the whole 21M-coin pre-farm. The full pre-farm
// does not fit in 64 bits, so the two shares are spelled out directly.
const (
	prefarmPoolShare   = 21_000_000 / rewardDenominator * poolRewardNumerator * uint64(constants.MojoPerCoin)
	prefarmFarmerShare = 21_000_000 / rewardDenominator * uint64(constants.MojoPerCoin)
)

// baseReward returns the full block reward at the given post-genesis height,
// in mojos. The reward halves every three years.
func baseReward(height uint32) uint64 {
	const threeYears = 3 * constants.BlocksPerYear

	switch {
	case height < 1*threeYears:
		return 2 * constants.MojoPerCoin
	case height < 2*threeYears:
		return 1 * constants.MojoPerCoin
	case height < 3*threeYears:
		return constants.MojoPerCoin / 2
	case height < 4*threeYears:
		return constants.MojoPerCoin / 4
	default:
		return 0
	}
}

// CalculatePoolReward returns the pool's 7/8 share of the block reward at
// the given height
func CalculatePoolReward(height uint32) uint64 {
	if height == 0 {
		return prefarmPoolShare
	}
	return baseReward(height) / rewardDenominator * poolRewardNumerator
}

// CalculateBaseFarmerReward returns the farmer's 1/8 share of the block
// reward at the given height, not including fees
func CalculateBaseFarmerReward(height uint32) uint64 {
	if height == 0 {
		return prefarmFarmerShare
	}
	return baseReward(height) / rewardDenominator
}

// poolParentID derives the parent id of a pool reward coin: the first half
// of the genesis challenge followed by the height as a 128-bit big-endian
// integer.
func poolParentID(height uint32, genesisChallenge *externalapi.DomainHash) *externalapi.DomainHash {
	return rewardParentID(height, genesisChallenge.ByteSlice()[:16])
}

// farmerParentID derives the parent id of a farmer reward coin: the second
// half of the genesis challenge followed by the height as a 128-bit
// big-endian integer.
func farmerParentID(height uint32, genesisChallenge *externalapi.DomainHash) *externalapi.DomainHash {
	return rewardParentID(height, genesisChallenge.ByteSlice()[16:])
}

func rewardParentID(height uint32, challengeHalf []byte) *externalapi.DomainHash {
	var parent [externalapi.DomainHashSize]byte
	copy(parent[:16], challengeHalf)
	binary.BigEndian.PutUint32(parent[28:], height)
	return externalapi.NewDomainHashFromByteArray(&parent)
}

// CreatePoolCoin synthesizes the pool reward coin for the given block
func CreatePoolCoin(height uint32, poolPuzzleHash *externalapi.DomainHash, amount uint64,
	genesisChallenge *externalapi.DomainHash) *externalapi.Coin {

	return externalapi.NewCoin(poolParentID(height, genesisChallenge), poolPuzzleHash, amount)
}

// CreateFarmerCoin synthesizes the farmer reward coin for the given block
func CreateFarmerCoin(height uint32, farmerPuzzleHash *externalapi.DomainHash, amount uint64,
	genesisChallenge *externalapi.DomainHash) *externalapi.Coin {

	return externalapi.NewCoin(farmerParentID(height, genesisChallenge), farmerPuzzleHash, amount)
}
