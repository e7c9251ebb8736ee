package rewards

import (
	"testing"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/constants"
)

const threeYears = 3 * constants.BlocksPerYear

func TestPrefarm(t *testing.T) {
	pool := CalculatePoolReward(0)
	farmer := CalculateBaseFarmerReward(0)

	// The full 21M-coin pre-farm does not fit in 64 bits; the two shares
	// individually do.
	const prefarmCoins = 21_000_000
	if pool != prefarmCoins/8*7*uint64(constants.MojoPerCoin) {
		t.Fatalf("pool pre-farm share is %d, expected 7/8 of %d coins", pool, prefarmCoins)
	}
	if farmer != prefarmCoins/8*uint64(constants.MojoPerCoin) {
		t.Fatalf("farmer pre-farm share is %d, expected 1/8 of %d coins", farmer, prefarmCoins)
	}
}

func TestRewardSchedule(t *testing.T) {
	tests := []struct {
		height       uint32
		wantTotal    uint64
		wantDescribe string
	}{
		{1, 2 * constants.MojoPerCoin, "first era"},
		{threeYears - 1, 2 * constants.MojoPerCoin, "end of first era"},
		{threeYears, 1 * constants.MojoPerCoin, "first halving"},
		{2*threeYears - 1, 1 * constants.MojoPerCoin, "end of second era"},
		{2 * threeYears, constants.MojoPerCoin / 2, "second halving"},
		{3 * threeYears, constants.MojoPerCoin / 4, "third halving"},
		{4 * threeYears, 0, "emission end"},
		{10 * threeYears, 0, "long after emission end"},
	}

	for _, test := range tests {
		pool := CalculatePoolReward(test.height)
		farmer := CalculateBaseFarmerReward(test.height)
		if pool+farmer != test.wantTotal {
			t.Errorf("%s (height %d): reward %d, expected %d",
				test.wantDescribe, test.height, pool+farmer, test.wantTotal)
		}
		if test.wantTotal != 0 && pool != farmer*7 {
			t.Errorf("%s (height %d): pool %d is not 7x farmer %d",
				test.wantDescribe, test.height, pool, farmer)
		}
	}
}

func TestRewardCoinDerivation(t *testing.T) {
	genesisChallenge := constants.MainnetConstants.GenesisChallenge
	puzzleHash := genesisChallenge

	// Re-deriving the same reward coin must give the same coin id,
	// and every (height, role) pair must give a distinct one.
	seen := make(map[string]uint32)
	for _, height := range []uint32{0, 1, 2, 1000, threeYears} {
		pool := CreatePoolCoin(height, puzzleHash, CalculatePoolReward(height), genesisChallenge)
		poolAgain := CreatePoolCoin(height, puzzleHash, CalculatePoolReward(height), genesisChallenge)
		if !consensushashing.CoinID(pool).Equal(consensushashing.CoinID(poolAgain)) {
			t.Fatalf("pool coin derivation at height %d is not deterministic", height)
		}

		farmer := CreateFarmerCoin(height, puzzleHash, CalculateBaseFarmerReward(height), genesisChallenge)
		for _, coinID := range []string{
			consensushashing.CoinID(pool).String(),
			consensushashing.CoinID(farmer).String(),
		} {
			if prior, ok := seen[coinID]; ok {
				t.Fatalf("coin id %s at height %d collides with height %d",
					coinID, height, prior)
			}
			seen[coinID] = height
		}
	}
}

func TestRewardParentIDsEmbedHeight(t *testing.T) {
	genesisChallenge := constants.MainnetConstants.GenesisChallenge

	poolParent := poolParentID(107, genesisChallenge)
	farmerParent := farmerParentID(107, genesisChallenge)
	if poolParent.Equal(farmerParent) {
		t.Fatal("pool and farmer parent ids coincide")
	}

	poolBytes := poolParent.ByteSlice()
	if string(poolBytes[:16]) != string(genesisChallenge.ByteSlice()[:16]) {
		t.Fatal("pool parent id does not start with the first half of the genesis challenge")
	}
	farmerBytes := farmerParent.ByteSlice()
	if string(farmerBytes[:16]) != string(genesisChallenge.ByteSlice()[16:]) {
		t.Fatal("farmer parent id does not start with the second half of the genesis challenge")
	}
	if poolBytes[31] != 107 || farmerBytes[31] != 107 {
		t.Fatal("parent ids do not end with the height")
	}
}
