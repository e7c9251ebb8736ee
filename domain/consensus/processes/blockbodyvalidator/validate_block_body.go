package blockbodyvalidator

import (
	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/blssignatures"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/merkleset"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/rewards"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/transactionfilter"
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/logger"
)

// blockAddition is a coin created by this block's generator, paired with its
// precomputed id
type blockAddition struct {
	coinID *externalapi.DomainHash
	coin   *externalapi.Coin
}

// ValidateBlockBody validates the given body as an extension of the chain at
// the given height and returns the validated execution cost. Every check is
// terminal; the body either passes all of them or is rejected whole.
func (v *blockBodyValidator) ValidateBlockBody(chain model.ChainIndex,
	body *externalapi.BlockBody, height uint32,
	npcResult *externalapi.SpendBundleConditions, forkPoint *int64) (uint64, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockBody")
	defer onEnd()

	if !body.IsTransactionBlock() {
		if body.FoliageTransactionBlock != nil || body.TransactionsInfo != nil ||
			body.TransactionsGenerator != nil || len(body.TransactionsGeneratorRefList) > 0 {
			return 0, errors.Wrapf(ruleerrors.ErrNotBlockButHasData,
				"non-transaction block at height %d carries transaction data", height)
		}
		return 0, nil
	}
	if body.FoliageTransactionBlock == nil || body.TransactionsInfo == nil {
		return 0, errors.Wrapf(ruleerrors.ErrIsTransactionBlockButNoData,
			"transaction block at height %d is missing transaction data", height)
	}

	err := v.checkDeclaredHashes(body)
	if err != nil {
		return 0, err
	}

	err = v.checkRewardClaims(chain, body, height)
	if err != nil {
		return 0, err
	}

	err = v.checkGeneratorCommitments(body)
	if err != nil {
		return 0, err
	}

	npcResult, err = v.resolveNPCResult(chain, body, height, npcResult)
	if err != nil {
		return 0, err
	}

	cost, err := v.checkCost(body, npcResult)
	if err != nil {
		return 0, err
	}

	additions, err := additionsFromNPCResult(npcResult)
	if err != nil {
		return 0, err
	}
	rewardClaims := body.TransactionsInfo.RewardClaimsIncorporated

	err = v.checkCoinAmounts(additions, rewardClaims)
	if err != nil {
		return 0, err
	}

	removals := removalIDs(npcResult)
	err = v.checkCommitmentRoots(body, additions, rewardClaims, removals)
	if err != nil {
		return 0, err
	}

	createdCoins, err := checkDuplicateCreations(additions, rewardClaims)
	if err != nil {
		return 0, err
	}
	err = checkDuplicateRemovals(removals)
	if err != nil {
		return 0, err
	}

	forkHeight, err := v.resolveForkPoint(chain, body, height, forkPoint)
	if err != nil {
		return 0, err
	}
	fork, err := v.buildForkInfo(chain, body, height, forkHeight)
	if err != nil {
		return 0, err
	}

	resolved, err := v.resolveRemovals(npcResult, createdCoins, fork, height,
		body.FoliageTransactionBlock.Timestamp)
	if err != nil {
		return 0, err
	}

	err = v.checkValueConservation(body, npcResult, additions, resolved)
	if err != nil {
		return 0, err
	}

	err = checkPuzzleHashBinding(npcResult, resolved)
	if err != nil {
		return 0, err
	}

	err = v.checkConditions(npcResult, resolved, height,
		body.FoliageTransactionBlock.Timestamp)
	if err != nil {
		return 0, err
	}

	err = v.checkAggregateSignature(body, npcResult)
	if err != nil {
		return 0, err
	}

	return cost, nil
}

// checkDeclaredHashes verifies that the foliage's declared transaction-block
// hash and the transaction block's declared transactions-info hash both match
// the data they commit to
func (v *blockBodyValidator) checkDeclaredHashes(body *externalapi.BlockBody) error {
	ftbHash := consensushashing.FoliageTransactionBlockHash(body.FoliageTransactionBlock)
	if !ftbHash.Equal(body.Foliage.FoliageTransactionBlockHash) {
		return errors.Wrapf(ruleerrors.ErrInvalidFoliageBlockHash,
			"declared foliage transaction block hash %s, actual %s",
			body.Foliage.FoliageTransactionBlockHash, ftbHash)
	}

	tiHash := consensushashing.TransactionsInfoHash(body.TransactionsInfo)
	if !tiHash.Equal(body.FoliageTransactionBlock.TransactionsInfoHash) {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionsInfoHash,
			"declared transactions info hash %s, actual %s",
			body.FoliageTransactionBlock.TransactionsInfoHash, tiHash)
	}
	return nil
}

// checkRewardClaims reconstructs the reward coins owed since the previous
// transaction block and requires the declared claims to equal them as a set
func (v *blockBodyValidator) checkRewardClaims(chain model.ChainIndex,
	body *externalapi.BlockBody, height uint32) error {

	expected, err := v.expectedRewardClaims(chain, body.Foliage.PrevBlockHash, height)
	if err != nil {
		return err
	}

	claims := body.TransactionsInfo.RewardClaimsIncorporated
	if len(claims) != len(expected) {
		return errors.Wrapf(ruleerrors.ErrInvalidRewardCoins,
			"expected %d incorporated reward coins, got %d", len(expected), len(claims))
	}

	expectedIDs := make(map[externalapi.DomainHash]int, len(expected))
	for _, coin := range expected {
		expectedIDs[*consensushashing.CoinID(coin)]++
	}
	for _, claim := range claims {
		claimID := consensushashing.CoinID(claim)
		if expectedIDs[*claimID] == 0 {
			return errors.Wrapf(ruleerrors.ErrInvalidRewardCoins,
				"incorporated reward coin %s is not owed", claimID)
		}
		expectedIDs[*claimID]--
	}
	return nil
}

// expectedRewardClaims derives the reward coins a transaction block at the
// given height must incorporate: one pool/farmer pair per non-transaction
// block since the previous transaction block, plus the previous transaction
// block's own pair, whose farmer coin also collects that block's fees.
func (v *blockBodyValidator) expectedRewardClaims(chain model.ChainIndex,
	prevHash *externalapi.DomainHash, height uint32) ([]*externalapi.Coin, error) {

	if height == 0 {
		return nil, nil
	}

	curr, err := chain.BlockRecord(prevHash)
	if err != nil {
		return nil, err
	}

	var claims []*externalapi.Coin
	for !curr.IsTransactionBlock() && curr.Height > 0 {
		claims = append(claims,
			rewards.CreatePoolCoin(curr.Height, curr.PoolPuzzleHash,
				rewards.CalculatePoolReward(curr.Height), v.constants.GenesisChallenge),
			rewards.CreateFarmerCoin(curr.Height, curr.FarmerPuzzleHash,
				rewards.CalculateBaseFarmerReward(curr.Height), v.constants.GenesisChallenge))
		curr, err = chain.BlockRecord(curr.PrevHash)
		if err != nil {
			return nil, err
		}
	}

	var fees uint64
	if curr.Fees != nil {
		fees = *curr.Fees
	}
	farmerAmount, err := addAmounts(rewards.CalculateBaseFarmerReward(curr.Height), fees)
	if err != nil {
		return nil, err
	}
	claims = append(claims,
		rewards.CreatePoolCoin(curr.Height, curr.PoolPuzzleHash,
			rewards.CalculatePoolReward(curr.Height), v.constants.GenesisChallenge),
		rewards.CreateFarmerCoin(curr.Height, curr.FarmerPuzzleHash,
			farmerAmount, v.constants.GenesisChallenge))
	return claims, nil
}

// checkGeneratorCommitments verifies the declared generator root and
// generator-refs root, including the sentinel roots for absent data
func (v *blockBodyValidator) checkGeneratorCommitments(body *externalapi.BlockBody) error {
	ti := body.TransactionsInfo

	if body.TransactionsGenerator != nil {
		if uint32(len(body.TransactionsGenerator)) > v.constants.MaxGeneratorSize {
			return errors.Wrapf(ruleerrors.ErrBlockCostExceedsMax,
				"serialized generator is %d bytes, max %d",
				len(body.TransactionsGenerator), v.constants.MaxGeneratorSize)
		}
		generatorRoot := consensushashing.GeneratorRoot(body.TransactionsGenerator)
		if !generatorRoot.Equal(ti.GeneratorRoot) {
			return errors.Wrapf(ruleerrors.ErrInvalidTransactionsGeneratorHash,
				"declared generator root %s, actual %s", ti.GeneratorRoot, generatorRoot)
		}
	} else if !emptyGeneratorRoot.Equal(ti.GeneratorRoot) {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionsGeneratorHash,
			"block carries no generator but declares generator root %s", ti.GeneratorRoot)
	}

	refList := body.TransactionsGeneratorRefList
	if uint32(len(refList)) > v.constants.MaxGeneratorRefListSize {
		return errors.Wrapf(ruleerrors.ErrTooManyGeneratorRefs,
			"generator references %d prior generators, max %d",
			len(refList), v.constants.MaxGeneratorRefListSize)
	}
	if len(refList) > 0 {
		if body.TransactionsGenerator == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidTransactionsGeneratorRefsRoot,
				"generator reference list without a generator")
		}
		refsRoot := consensushashing.GeneratorRefsRoot(refList)
		if !refsRoot.Equal(ti.GeneratorRefsRoot) {
			return errors.Wrapf(ruleerrors.ErrInvalidTransactionsGeneratorRefsRoot,
				"declared generator refs root %s, actual %s", ti.GeneratorRefsRoot, refsRoot)
		}
	} else if !emptyRefListRoot.Equal(ti.GeneratorRefsRoot) {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionsGeneratorRefsRoot,
			"empty generator reference list but declared refs root %s", ti.GeneratorRefsRoot)
	}
	return nil
}

// resolveNPCResult returns the generator-execution result for the candidate
// block, running the executor if the caller has not already done so
func (v *blockBodyValidator) resolveNPCResult(chain model.ChainIndex,
	body *externalapi.BlockBody, height uint32,
	npcResult *externalapi.SpendBundleConditions) (*externalapi.SpendBundleConditions, error) {

	if body.TransactionsGenerator == nil {
		return nil, nil
	}
	if npcResult != nil {
		return npcResult, nil
	}

	refGenerators, err := v.lookupRefGenerators(chain, body.Foliage.PrevBlockHash,
		body.TransactionsGeneratorRefList)
	if err != nil {
		return nil, err
	}
	return v.executor.Run(body.TransactionsGenerator, refGenerators,
		v.constants.MaxBlockCostCLVM, height)
}

// lookupRefGenerators resolves the generator reference list into generator
// bytes, ordered like the reference list
func (v *blockBodyValidator) lookupRefGenerators(chain model.ChainIndex,
	prevHash *externalapi.DomainHash, refList []uint32) ([][]byte, error) {

	if len(refList) == 0 {
		return nil, nil
	}
	generators, err := chain.LookupBlockGenerators(prevHash, refList)
	if err != nil {
		return nil, err
	}
	refGenerators := make([][]byte, len(refList))
	for i, refHeight := range refList {
		generator, ok := generators[refHeight]
		if !ok {
			return nil, errors.Wrapf(ruleerrors.ErrMissingGenerator,
				"no generator found at referenced height %d", refHeight)
		}
		refGenerators[i] = generator
	}
	return refGenerators, nil
}

// checkCost verifies the generator execution outcome against the declared
// cost and the maximum block cost
func (v *blockBodyValidator) checkCost(body *externalapi.BlockBody,
	npcResult *externalapi.SpendBundleConditions) (uint64, error) {

	ti := body.TransactionsInfo
	if npcResult == nil {
		if ti.Cost != 0 {
			return 0, errors.Wrapf(ruleerrors.ErrInvalidBlockCost,
				"block carries no generator but declares cost %d", ti.Cost)
		}
		return 0, nil
	}

	if npcResult.ErrorCode != nil {
		return 0, errors.Wrapf(ruleerrors.ErrGeneratorRuntimeError,
			"generator execution failed with code %d", *npcResult.ErrorCode)
	}
	if npcResult.Cost > v.constants.MaxBlockCostCLVM {
		return 0, errors.Wrapf(ruleerrors.ErrBlockCostExceedsMax,
			"execution cost %d exceeds maximum block cost %d",
			npcResult.Cost, v.constants.MaxBlockCostCLVM)
	}
	if ti.Cost != npcResult.Cost {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidBlockCost,
			"declared cost %d, actual %d", ti.Cost, npcResult.Cost)
	}
	return npcResult.Cost, nil
}

// additionsFromNPCResult collects the coins created by CREATE_COIN conditions
// across all spends
func additionsFromNPCResult(npcResult *externalapi.SpendBundleConditions) ([]*blockAddition, error) {
	if npcResult == nil {
		return nil, nil
	}

	var additions []*blockAddition
	for _, spend := range npcResult.Spends {
		for _, condition := range spend.Conditions {
			if condition.Opcode != externalapi.ConditionCreateCoin {
				continue
			}
			puzzleHash, err := conditionHash(condition, 0)
			if err != nil {
				return nil, err
			}
			amount, err := conditionAmount(condition, 1)
			if err != nil {
				return nil, err
			}
			coin := externalapi.NewCoin(spend.CoinID, puzzleHash, amount)
			additions = append(additions, &blockAddition{
				coinID: consensushashing.CoinID(coin),
				coin:   coin,
			})
		}
	}
	return additions, nil
}

func removalIDs(npcResult *externalapi.SpendBundleConditions) []*externalapi.DomainHash {
	if npcResult == nil {
		return nil
	}
	ids := make([]*externalapi.DomainHash, len(npcResult.Spends))
	for i, spend := range npcResult.Spends {
		ids[i] = spend.CoinID
	}
	return ids
}

// checkCoinAmounts bounds every created coin's amount by the protocol maximum
func (v *blockBodyValidator) checkCoinAmounts(additions []*blockAddition,
	rewardClaims []*externalapi.Coin) error {

	for _, addition := range additions {
		if addition.coin.Amount > v.constants.MaxCoinAmount {
			return errors.Wrapf(ruleerrors.ErrCoinAmountExceedsMaximum,
				"created coin %s has amount %d", addition.coinID, addition.coin.Amount)
		}
	}
	for _, claim := range rewardClaims {
		if claim.Amount > v.constants.MaxCoinAmount {
			return errors.Wrapf(ruleerrors.ErrCoinAmountExceedsMaximum,
				"incorporated reward coin has amount %d", claim.Amount)
		}
	}
	return nil
}

// checkCommitmentRoots recomputes the additions and removals Merkle-set roots
// and the transactions filter hash and requires equality with the declared
// values
func (v *blockBodyValidator) checkCommitmentRoots(body *externalapi.BlockBody,
	additions []*blockAddition, rewardClaims []*externalapi.Coin,
	removals []*externalapi.DomainHash) error {

	allAdditions := make([]*externalapi.Coin, 0, len(additions)+len(rewardClaims))
	for _, addition := range additions {
		allAdditions = append(allAdditions, addition.coin)
	}
	allAdditions = append(allAdditions, rewardClaims...)

	// The additions set commits per puzzle hash: one leaf for the puzzle
	// hash itself and one for the sorted list of coin ids it received.
	coinIDsByPuzzleHash := make(map[externalapi.DomainHash][]*externalapi.DomainHash)
	for _, coin := range allAdditions {
		coinIDsByPuzzleHash[*coin.PuzzleHash] =
			append(coinIDsByPuzzleHash[*coin.PuzzleHash], consensushashing.CoinID(coin))
	}
	additionLeaves := make([]*externalapi.DomainHash, 0, 2*len(coinIDsByPuzzleHash))
	for puzzleHash, coinIDs := range coinIDsByPuzzleHash {
		puzzleHash := puzzleHash
		additionLeaves = append(additionLeaves, &puzzleHash,
			consensushashing.HashCoinIDList(coinIDs))
	}

	additionsRoot := merkleset.ComputeRoot(additionLeaves)
	if !additionsRoot.Equal(body.FoliageTransactionBlock.AdditionsRoot) {
		return errors.Wrapf(ruleerrors.ErrBadAdditionRoot,
			"declared additions root %s, actual %s",
			body.FoliageTransactionBlock.AdditionsRoot, additionsRoot)
	}

	removalsRoot := merkleset.ComputeRoot(removals)
	if !removalsRoot.Equal(body.FoliageTransactionBlock.RemovalsRoot) {
		return errors.Wrapf(ruleerrors.ErrBadRemovalRoot,
			"declared removals root %s, actual %s",
			body.FoliageTransactionBlock.RemovalsRoot, removalsRoot)
	}

	filterHash, err := transactionfilter.Hash(allAdditions, removals)
	if err != nil {
		return err
	}
	if !filterHash.Equal(body.FoliageTransactionBlock.FilterHash) {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionsFilterHash,
			"declared filter hash %s, actual %s",
			body.FoliageTransactionBlock.FilterHash, filterHash)
	}
	return nil
}

// checkDuplicateCreations rejects two created coins with the same id and
// returns the block's ephemeral coin set, reward claims included
func checkDuplicateCreations(additions []*blockAddition,
	rewardClaims []*externalapi.Coin) (map[externalapi.DomainHash]*ephemeralCoin, error) {

	created := make(map[externalapi.DomainHash]*ephemeralCoin, len(additions)+len(rewardClaims))
	for _, addition := range additions {
		if _, ok := created[*addition.coinID]; ok {
			return nil, errors.Wrapf(ruleerrors.ErrDuplicateOutput,
				"coin %s is created twice", addition.coinID)
		}
		created[*addition.coinID] = &ephemeralCoin{coin: addition.coin, coinbase: false}
	}
	for _, claim := range rewardClaims {
		claimID := consensushashing.CoinID(claim)
		if _, ok := created[*claimID]; ok {
			return nil, errors.Wrapf(ruleerrors.ErrDuplicateOutput,
				"coin %s is created twice", claimID)
		}
		created[*claimID] = &ephemeralCoin{coin: claim, coinbase: true}
	}
	return created, nil
}

func checkDuplicateRemovals(removals []*externalapi.DomainHash) error {
	seen := make(map[externalapi.DomainHash]struct{}, len(removals))
	for _, coinID := range removals {
		if _, ok := seen[*coinID]; ok {
			return errors.Wrapf(ruleerrors.ErrDoubleSpend,
				"coin %s is spent twice within the block", coinID)
		}
		seen[*coinID] = struct{}{}
	}
	return nil
}

// checkValueConservation verifies that the block removes at least as much
// value as it creates, that fees match the declaration, and that no
// RESERVE_FEE condition asks for more than the actual fees
func (v *blockBodyValidator) checkValueConservation(body *externalapi.BlockBody,
	npcResult *externalapi.SpendBundleConditions, additions []*blockAddition,
	resolved map[externalapi.DomainHash]*resolvedCoin) error {

	var removedAmount uint64
	var err error
	for coinID := range resolved {
		removedAmount, err = addAmounts(removedAmount, resolved[coinID].coin.Amount)
		if err != nil {
			return err
		}
	}
	var addedAmount uint64
	for _, addition := range additions {
		addedAmount, err = addAmounts(addedAmount, addition.coin.Amount)
		if err != nil {
			return err
		}
	}

	if removedAmount < addedAmount {
		return errors.Wrapf(ruleerrors.ErrMintingCoin,
			"block creates %d mojo out of thin air", addedAmount-removedAmount)
	}
	fees := removedAmount - addedAmount

	reserved, err := reserveFeeSum(npcResult)
	if err != nil {
		return err
	}
	if reserved > fees {
		return errors.Wrapf(ruleerrors.ErrReserveFeeConditionFailed,
			"reserved fees %d exceed actual fees %d", reserved, fees)
	}
	if body.TransactionsInfo.Fees != fees {
		return errors.Wrapf(ruleerrors.ErrInvalidBlockFeeAmount,
			"declared fees %d, actual %d", body.TransactionsInfo.Fees, fees)
	}
	return nil
}

// checkPuzzleHashBinding verifies that each spend's executed puzzle hash is
// the puzzle hash of the coin being spent
func checkPuzzleHashBinding(npcResult *externalapi.SpendBundleConditions,
	resolved map[externalapi.DomainHash]*resolvedCoin) error {

	if npcResult == nil {
		return nil
	}
	for _, spend := range npcResult.Spends {
		coin := resolved[*spend.CoinID].coin
		if !coin.PuzzleHash.Equal(spend.PuzzleHash) {
			return errors.Wrapf(ruleerrors.ErrWrongPuzzleHash,
				"spend of %s executed puzzle %s but the coin is locked by %s",
				spend.CoinID, spend.PuzzleHash, coin.PuzzleHash)
		}
	}
	return nil
}

// checkAggregateSignature collects the (public key, message) pairs implied by
// the block's signature conditions and verifies the declared aggregate
// signature over them
func (v *blockBodyValidator) checkAggregateSignature(body *externalapi.BlockBody,
	npcResult *externalapi.SpendBundleConditions) error {

	pairs, err := aggSigPairs(npcResult, v.constants.AggSigMeAdditionalData)
	if err != nil {
		return err
	}

	valid, err := blssignatures.AggregateVerify(pairs,
		body.TransactionsInfo.AggregatedSignature, v.signatureCache)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrBadAggregateSignature,
			"malformed aggregated signature: %s", err)
	}
	if !valid {
		return errors.Wrapf(ruleerrors.ErrBadAggregateSignature,
			"aggregated signature does not verify over %d pairs", len(pairs))
	}
	return nil
}

func addAmounts(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.Wrapf(ruleerrors.ErrCoinAmountOverflow,
			"amount sum %d + %d overflows", a, b)
	}
	return sum, nil
}
