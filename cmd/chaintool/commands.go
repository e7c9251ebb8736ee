package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/rewards"
)

type tipCommand struct {
	commandConfig
}

func (c *tipCommand) Execute(_ []string) error {
	stores, err := c.openStores()
	if err != nil {
		return err
	}
	defer stores.close()

	peak, ok, err := stores.chainIndex.Peak()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("the chain is empty")
		return nil
	}
	fmt.Printf("peak height:\t%d\n", peak.Height)
	fmt.Printf("header hash:\t%s\n", peak.HeaderHash)
	fmt.Printf("weight:\t\t%s\n", peak.Weight)
	if peak.IsTransactionBlock() {
		fmt.Printf("timestamp:\t%d\n", *peak.Timestamp)
		fmt.Printf("fees:\t\t%d\n", *peak.Fees)
	}
	coinTip, ok, err := stores.coinStore.TipHeight()
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("coin set at:\t%d\n", coinTip)
	}
	return nil
}

type rewardsCommand struct {
	commandConfig
	Height uint32 `long:"height" required:"true" description:"Block height to derive reward coins for"`
}

func (c *rewardsCommand) Execute(_ []string) error {
	stores, err := c.openStores()
	if err != nil {
		return err
	}
	defer stores.close()

	record, err := stores.chainIndex.HeightToBlockRecord(c.Height)
	if err != nil {
		return err
	}
	genesisChallenge := c.cfg.ActiveConstants.GenesisChallenge
	poolCoin := rewards.CreatePoolCoin(c.Height, record.PoolPuzzleHash,
		rewards.CalculatePoolReward(c.Height), genesisChallenge)
	farmerCoin := rewards.CreateFarmerCoin(c.Height, record.FarmerPuzzleHash,
		rewards.CalculateBaseFarmerReward(c.Height), genesisChallenge)

	fmt.Printf("pool coin:\t%s\tamount %d\n", consensushashing.CoinID(poolCoin), poolCoin.Amount)
	fmt.Printf("farmer coin:\t%s\tamount %d (excluding fees)\n",
		consensushashing.CoinID(farmerCoin), farmerCoin.Amount)
	return nil
}

type verifyCommand struct {
	commandConfig
	FromHeight uint32 `long:"from" description:"First height to verify"`
	ToHeight   uint32 `long:"to" required:"true" description:"Last height to verify"`
}

// Execute re-verifies, for each stored block in the range, that the record
// matches the block and that the block's declared hashes and generator
// commitments hold. Spend-level checks need the generator executor and are
// out of this tool's reach.
func (c *verifyCommand) Execute(_ []string) error {
	if c.FromHeight > c.ToHeight {
		return errors.Errorf("--from %d is above --to %d", c.FromHeight, c.ToHeight)
	}
	stores, err := c.openStores()
	if err != nil {
		return err
	}
	defer stores.close()

	verified := 0
	for height := c.FromHeight; height <= c.ToHeight; height++ {
		hash, ok, err := stores.chainIndex.HeightToHash(height)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		block, ok, err := stores.blockStore.GetFullBlock(hash)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("block %s at height %d is missing from the block store",
				hash, height)
		}

		headerHash := consensushashing.HeaderHash(block.Foliage)
		if !headerHash.Equal(hash) {
			return errors.Errorf("block at height %d hashes to %s, index says %s",
				height, headerHash, hash)
		}
		if block.IsTransactionBlock() {
			ftbHash := consensushashing.FoliageTransactionBlockHash(block.FoliageTransactionBlock)
			if !ftbHash.Equal(block.Foliage.FoliageTransactionBlockHash) {
				return errors.Errorf("block %s declares foliage transaction block hash %s, actual %s",
					hash, block.Foliage.FoliageTransactionBlockHash, ftbHash)
			}
			tiHash := consensushashing.TransactionsInfoHash(block.TransactionsInfo)
			if !tiHash.Equal(block.FoliageTransactionBlock.TransactionsInfoHash) {
				return errors.Errorf("block %s declares transactions info hash %s, actual %s",
					hash, block.FoliageTransactionBlock.TransactionsInfoHash, tiHash)
			}
			if block.TransactionsGenerator != nil {
				generatorRoot := consensushashing.GeneratorRoot(block.TransactionsGenerator)
				if !generatorRoot.Equal(block.TransactionsInfo.GeneratorRoot) {
					return errors.Errorf("block %s declares generator root %s, actual %s",
						hash, block.TransactionsInfo.GeneratorRoot, generatorRoot)
				}
			}
		}
		verified++
	}
	fmt.Printf("verified %d blocks between heights %d and %d\n",
		verified, c.FromHeight, c.ToHeight)
	return nil
}
