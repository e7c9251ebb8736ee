package blockbodyvalidator

import (
	"bytes"
	"sort"

	"github.com/kaspanet/go-muhash"
	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

// forkInfo is the transient view of the coin-set delta between the fork
// point and the candidate's predecessor: which coins the candidate's branch
// added and removed that the durable coin store does not reflect. The ECMH
// multiset tracks the same delta as a single commutative commitment, so two
// replays of the same branch can be compared by one digest.
type forkInfo struct {
	forkHeight int64
	additions  map[externalapi.DomainHash]*forkAddition
	removals   map[externalapi.DomainHash]uint32
	multiset   *muhash.MuHash
}

type forkAddition struct {
	coin            *externalapi.Coin
	confirmedHeight uint32
	timestamp       uint64
	coinbase        bool
}

// ephemeralCoin is a coin created by the candidate block itself
type ephemeralCoin struct {
	coin     *externalapi.Coin
	coinbase bool
}

// resolvedCoin is a removal resolved to the coin it spends, along with where
// that coin was confirmed
type resolvedCoin struct {
	coin            *externalapi.Coin
	confirmedHeight uint32
	timestamp       uint64
	coinbase        bool
}

func (fi *forkInfo) addCoin(coin *externalapi.Coin, height uint32,
	timestamp uint64, coinbase bool) error {

	coinID := consensushashing.CoinID(coin)
	fi.additions[*coinID] = &forkAddition{
		coin:            coin,
		confirmedHeight: height,
		timestamp:       timestamp,
		coinbase:        coinbase,
	}

	serialized := &bytes.Buffer{}
	err := serialization.SerializeCoin(serialized, coin)
	if err != nil {
		return err
	}
	fi.multiset.Add(serialized.Bytes())
	return nil
}

func (fi *forkInfo) removeCoin(coin *externalapi.Coin, coinID *externalapi.DomainHash,
	height uint32) error {

	fi.removals[*coinID] = height

	serialized := &bytes.Buffer{}
	err := serialization.SerializeCoin(serialized, coin)
	if err != nil {
		return err
	}
	fi.multiset.Remove(serialized.Bytes())
	return nil
}

// resolveForkPoint returns the fork height between the current peak and the
// candidate's predecessor, computing it through the fork resolver unless the
// caller precomputed it
func (v *blockBodyValidator) resolveForkPoint(chain model.ChainIndex,
	body *externalapi.BlockBody, height uint32, forkPoint *int64) (int64, error) {

	if forkPoint != nil {
		return *forkPoint, nil
	}
	if height == 0 {
		return model.ForkPointPreGenesis, nil
	}
	peak, hasPeak, err := chain.Peak()
	if err != nil {
		return 0, err
	}
	if !hasPeak {
		return model.ForkPointPreGenesis, nil
	}
	prevRecord, err := chain.BlockRecord(body.Foliage.PrevBlockHash)
	if err != nil {
		return 0, err
	}
	return v.forkResolver.FindForkPoint(chain, peak, prevRecord)
}

// buildForkInfo replays the blocks on the candidate's branch between the fork
// point and the candidate's predecessor, accumulating their additions and
// removals. When the predecessor is at or below the fork point there is
// nothing to replay and the durable coin store alone is authoritative.
func (v *blockBodyValidator) buildForkInfo(chain model.ChainIndex,
	body *externalapi.BlockBody, height uint32, forkHeight int64) (*forkInfo, error) {

	fork := &forkInfo{
		forkHeight: forkHeight,
		additions:  make(map[externalapi.DomainHash]*forkAddition),
		removals:   make(map[externalapi.DomainHash]uint32),
		multiset:   muhash.NewMuHash(),
	}
	if height == 0 {
		return fork, nil
	}

	prevRecord, err := chain.BlockRecord(body.Foliage.PrevBlockHash)
	if err != nil {
		return nil, err
	}
	if int64(prevRecord.Height) <= forkHeight {
		return fork, nil
	}

	branch, err := v.forkBranch(chain, prevRecord, forkHeight)
	if err != nil {
		return nil, err
	}

	heights := make([]uint32, 0, len(branch))
	for branchHeight := range branch {
		if int64(branchHeight) > forkHeight && branchHeight <= prevRecord.Height {
			heights = append(heights, branchHeight)
		}
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	for _, branchHeight := range heights {
		blockHash := branch[branchHeight]
		block, ok, err := v.blockStore.GetFullBlock(blockHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Errorf("block %s at height %d is missing from the block store",
				blockHash, branchHeight)
		}
		err = v.applyBlockToForkInfo(chain, block, fork)
		if err != nil {
			return nil, err
		}
	}

	digest := fork.multiset.Finalize()
	log.Debugf("replayed %d blocks above fork height %d, coin-delta multiset %x",
		len(heights), forkHeight, digest.AsArray()[:])
	return fork, nil
}

// forkBranch maps the heights above the fork point to the candidate-branch
// hashes that occupy them
func (v *blockBodyValidator) forkBranch(chain model.ChainIndex,
	prevRecord *externalapi.BlockRecord, forkHeight int64) (
	map[uint32]*externalapi.DomainHash, error) {

	peak, hasPeak, err := chain.Peak()
	if err != nil {
		return nil, err
	}
	if hasPeak {
		branch, _, err := v.forkResolver.LookupForkChain(chain,
			&externalapi.ChainTip{Height: peak.Height, Hash: peak.HeaderHash},
			&externalapi.ChainTip{Height: prevRecord.Height, Hash: prevRecord.HeaderHash})
		return branch, err
	}

	// No committed peak: the branch is the predecessor's whole ancestry.
	branch := make(map[uint32]*externalapi.DomainHash)
	curr := prevRecord
	for int64(curr.Height) > forkHeight {
		branch[curr.Height] = curr.HeaderHash
		if curr.Height == 0 {
			break
		}
		curr, err = chain.BlockRecord(curr.PrevHash)
		if err != nil {
			return nil, err
		}
	}
	return branch, nil
}

// applyBlockToForkInfo folds one replayed block's coin-set effects into the
// fork view. Reward claims incorporated by the block become spendable
// (coinbase) additions; generator spends remove their coins and add their
// created coins.
func (v *blockBodyValidator) applyBlockToForkInfo(chain model.ChainIndex,
	block *externalapi.FullBlock, fork *forkInfo) error {

	if !block.IsTransactionBlock() {
		return nil
	}
	timestamp := block.FoliageTransactionBlock.Timestamp

	for _, claim := range block.TransactionsInfo.RewardClaimsIncorporated {
		err := fork.addCoin(claim, block.Height, timestamp, true)
		if err != nil {
			return err
		}
	}
	if block.TransactionsGenerator == nil {
		return nil
	}

	refGenerators, err := v.lookupRefGenerators(chain, block.Foliage.PrevBlockHash,
		block.TransactionsGeneratorRefList)
	if err != nil {
		return err
	}
	npcResult, err := v.executor.Run(block.TransactionsGenerator, refGenerators,
		v.constants.MaxBlockCostCLVM, block.Height)
	if err != nil {
		return err
	}
	if npcResult.ErrorCode != nil {
		return errors.Errorf("replayed block %s failed generator execution with code %d",
			consensushashing.HeaderHash(block.Foliage), *npcResult.ErrorCode)
	}

	for _, spend := range npcResult.Spends {
		spentCoin, err := v.resolveReplayedSpend(spend, fork)
		if err != nil {
			return err
		}
		err = fork.removeCoin(spentCoin, spend.CoinID, block.Height)
		if err != nil {
			return err
		}
		for _, condition := range spend.Conditions {
			if condition.Opcode != externalapi.ConditionCreateCoin {
				continue
			}
			puzzleHash, err := conditionHash(condition, 0)
			if err != nil {
				return err
			}
			amount, err := conditionAmount(condition, 1)
			if err != nil {
				return err
			}
			coin := externalapi.NewCoin(spend.CoinID, puzzleHash, amount)
			err = fork.addCoin(coin, block.Height, timestamp, false)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveReplayedSpend locates the coin a replayed spend consumes, either in
// the fork-local additions or in the durable coin store. Replayed blocks were
// validated when first accepted, so a miss here is a store inconsistency, not
// a rule violation.
func (v *blockBodyValidator) resolveReplayedSpend(spend *externalapi.SpendConditions,
	fork *forkInfo) (*externalapi.Coin, error) {

	if addition, ok := fork.additions[*spend.CoinID]; ok {
		return addition.coin, nil
	}
	record, ok, err := v.coinStore.GetCoinRecord(spend.CoinID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("replayed spend of %s references a coin missing from the coin store",
			spend.CoinID)
	}
	return record.Coin, nil
}

// resolveRemovals resolves every removed coin id to a visible unspent coin,
// or fails with the appropriate double-spend or unknown-coin error
func (v *blockBodyValidator) resolveRemovals(npcResult *externalapi.SpendBundleConditions,
	created map[externalapi.DomainHash]*ephemeralCoin, fork *forkInfo,
	height uint32, timestamp uint64) (map[externalapi.DomainHash]*resolvedCoin, error) {

	resolved := make(map[externalapi.DomainHash]*resolvedCoin)
	if npcResult == nil {
		return resolved, nil
	}

	var toFetch []*externalapi.DomainHash
	for _, spend := range npcResult.Spends {
		coinID := spend.CoinID
		if ephemeral, ok := created[*coinID]; ok {
			resolved[*coinID] = &resolvedCoin{
				coin:            ephemeral.coin,
				confirmedHeight: height,
				timestamp:       timestamp,
				coinbase:        ephemeral.coinbase,
			}
			continue
		}
		if addition, ok := fork.additions[*coinID]; ok {
			if spentHeight, spent := fork.removals[*coinID]; spent {
				return nil, errors.Wrapf(ruleerrors.ErrDoubleSpendInFork,
					"coin %s was already spent at height %d on this branch",
					coinID, spentHeight)
			}
			resolved[*coinID] = &resolvedCoin{
				coin:            addition.coin,
				confirmedHeight: addition.confirmedHeight,
				timestamp:       addition.timestamp,
				coinbase:        addition.coinbase,
			}
			continue
		}
		toFetch = append(toFetch, coinID)
	}

	records, err := v.coinStore.GetCoinRecords(toFetch)
	if err != nil {
		return nil, err
	}
	var missing []*externalapi.DomainHash
	for i, record := range records {
		coinID := toFetch[i]
		if record == nil {
			missing = append(missing, coinID)
			continue
		}
		if int64(record.ConfirmedBlockIndex) > fork.forkHeight {
			// Confirmed on the other side of the fork; on this branch
			// the coin does not exist.
			missing = append(missing, coinID)
			continue
		}
		if spentHeight, spent := fork.removals[*coinID]; spent {
			return nil, errors.Wrapf(ruleerrors.ErrDoubleSpendInFork,
				"coin %s was already spent at height %d on this branch",
				coinID, spentHeight)
		}
		if record.Spent() && int64(record.SpentBlockIndex) <= fork.forkHeight {
			return nil, errors.Wrapf(ruleerrors.ErrDoubleSpend,
				"coin %s was spent at height %d", coinID, record.SpentBlockIndex)
		}
		resolved[*coinID] = &resolvedCoin{
			coin:            record.Coin,
			confirmedHeight: record.ConfirmedBlockIndex,
			timestamp:       record.Timestamp,
			coinbase:        record.Coinbase,
		}
	}
	if len(missing) > 0 {
		return nil, ruleerrors.NewErrMissingCoins(missing)
	}
	return resolved, nil
}
