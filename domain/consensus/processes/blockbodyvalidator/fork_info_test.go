package blockbodyvalidator

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
)

// forkScenario commits a canonical chain r0..r2 with r2 as the peak, plus an
// off-chain block b1 extending r0. b1 spends the durable coin w into a new
// coin v. A candidate extending b1 forks the chain at height 0 and must see
// b1's coin-set effects through replay.
type forkScenario struct {
	h       *harness
	b1      *externalapi.BlockRecord
	claims  []*externalapi.Coin
	puzzleP *externalapi.DomainHash
	puzzleQ *externalapi.DomainHash
	wID     *externalapi.DomainHash
	vCoin   *externalapi.Coin
	vID     *externalapi.DomainHash
}

func newForkScenario(t *testing.T) *forkScenario {
	t.Helper()
	h := newHarness()

	r0 := h.commitRecord('0', 0, h.consts.GenesisChallenge,
		recordOpts{txBlock: true, timestamp: 900, weight: 1, canonical: true})
	r1 := h.commitRecord('1', 1, r0.HeaderHash,
		recordOpts{txBlock: true, timestamp: 1000, weight: 2, canonical: true})
	h.commitRecord('2', 2, r1.HeaderHash,
		recordOpts{txBlock: true, timestamp: 1100, weight: 3, canonical: true})

	puzzleP, puzzleQ := testHash('P'), testHash('Q')
	wCoin := externalapi.NewCoin(testHash('m'), puzzleP, 1000)
	wID := h.coinStore.addCoin(wCoin, 0, fundsTimestamp)

	// b1 competes with r1: it spends w into v and pays 100 in fees.
	b1 := h.commitRecord('b', 1, r0.HeaderHash,
		recordOpts{txBlock: true, timestamp: 950, fees: 100, weight: 2})
	vCoin := externalapi.NewCoin(wID, puzzleQ, 900)
	h.executor.results["genB1"] = &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{
			spendOf(wID, puzzleP, createCoin(puzzleQ, 900)),
		},
		Cost: 4000,
	}
	b1FTB := &externalapi.FoliageTransactionBlock{
		PrevTransactionBlockHash: r0.HeaderHash,
		Timestamp:                950,
		FilterHash:               testHash('f'),
		AdditionsRoot:            testHash('a'),
		RemovalsRoot:             testHash('r'),
		TransactionsInfoHash:     testHash('t'),
	}
	h.chain.blocks[*b1.HeaderHash] = &externalapi.FullBlock{
		Foliage: &externalapi.Foliage{
			PrevBlockHash:               r0.HeaderHash,
			RewardBlockHash:             testHash('w'),
			FoliageTransactionBlockHash: consensushashing.FoliageTransactionBlockHash(b1FTB),
		},
		FoliageTransactionBlock: b1FTB,
		TransactionsInfo: &externalapi.TransactionsInfo{
			RewardClaimsIncorporated: h.claimsForTransactionBlock(r0),
		},
		TransactionsGenerator: []byte("genB1"),
		Height:                1,
	}

	return &forkScenario{
		h:       h,
		b1:      b1,
		claims:  h.claimsForTransactionBlock(b1),
		puzzleP: puzzleP,
		puzzleQ: puzzleQ,
		wID:     wID,
		vCoin:   vCoin,
		vID:     consensushashing.CoinID(vCoin),
	}
}

func (s *forkScenario) validate(body *externalapi.BlockBody,
	npc *externalapi.SpendBundleConditions) (uint64, error) {

	return s.h.validator.ValidateBlockBody(s.h.chain, body, 2, npc, nil)
}

func TestSpendOfForkAddition(t *testing.T) {
	s := newForkScenario(t)

	// v only exists on b1's branch; the candidate spends it.
	npc := &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{
			spendOf(s.vID, s.puzzleQ, createCoin(testHash('R'), 850)),
		},
		Cost: 5000,
	}
	body := buildTxBody(t, &bodyConfig{
		prevHash: s.b1.HeaderHash, timestamp: candidateTime, claims: s.claims,
		generator: []byte("genCand"), npc: npc, fees: 50, cost: 5000,
	})
	cost, err := s.validate(body, npc)
	if err != nil {
		t.Fatalf("spending a coin created on the candidate's branch failed: %+v", err)
	}
	if cost != 5000 {
		t.Fatalf("validated cost is %d, expected 5000", cost)
	}
}

func TestSpendOfCoinRemovedOnBranch(t *testing.T) {
	s := newForkScenario(t)

	// w is unspent in the durable store but b1 already spent it.
	npc := &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{spendOf(s.wID, s.puzzleP)},
		Cost:   5000,
	}
	body := buildTxBody(t, &bodyConfig{
		prevHash: s.b1.HeaderHash, timestamp: candidateTime, claims: s.claims,
		generator: []byte("genCand"), npc: npc, fees: 1000, cost: 5000,
	})
	_, err := s.validate(body, npc)
	requireRuleError(t, err, ruleerrors.ErrDoubleSpendInFork)
}

func TestSpendOfCoinConfirmedOnOtherBranch(t *testing.T) {
	s := newForkScenario(t)

	// A coin confirmed above the fork height on the canonical chain is
	// invisible from the candidate's branch.
	otherBranchCoin := externalapi.NewCoin(testHash('n'), s.puzzleP, 600)
	otherBranchID := s.h.coinStore.addCoin(otherBranchCoin, 2, 1100)

	npc := &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{spendOf(otherBranchID, s.puzzleP)},
		Cost:   5000,
	}
	body := buildTxBody(t, &bodyConfig{
		prevHash: s.b1.HeaderHash, timestamp: candidateTime, claims: s.claims,
		generator: []byte("genCand"), npc: npc, fees: 600, cost: 5000,
	})
	_, err := s.validate(body, npc)
	missing := &ruleerrors.ErrMissingCoins{}
	if !errors.As(err, missing) {
		t.Fatalf("expected ErrMissingCoins, got %+v", err)
	}
	if len(missing.MissingCoinIDs) != 1 || !missing.MissingCoinIDs[0].Equal(otherBranchID) {
		t.Fatalf("wrong missing coins reported: %v", missing.MissingCoinIDs)
	}
}

func TestSpendOfReplayedRewardClaim(t *testing.T) {
	s := newForkScenario(t)

	// b1 incorporated r0's reward pair, so those coins are spendable on
	// its branch.
	claimCoin := s.h.chain.blocks[*s.b1.HeaderHash].TransactionsInfo.RewardClaimsIncorporated[0]
	claimID := consensushashing.CoinID(claimCoin)

	npc := &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{
			spendOf(claimID, claimCoin.PuzzleHash,
				createCoin(s.puzzleQ, claimCoin.Amount)),
		},
		Cost: 5000,
	}
	body := buildTxBody(t, &bodyConfig{
		prevHash: s.b1.HeaderHash, timestamp: candidateTime, claims: s.claims,
		generator: []byte("genCand"), npc: npc, cost: 5000,
	})
	_, err := s.validate(body, npc)
	if err != nil {
		t.Fatalf("spending a reward coin claimed on the candidate's branch failed: %+v", err)
	}
}

func TestExplicitForkPointSkipsResolution(t *testing.T) {
	s := newForkScenario(t)

	// With a precomputed fork point the validator must not consult the
	// fork resolver, but the replay still runs.
	npc := &externalapi.SpendBundleConditions{
		Spends: []*externalapi.SpendConditions{
			spendOf(s.vID, s.puzzleQ, createCoin(testHash('R'), 850)),
		},
		Cost: 5000,
	}
	body := buildTxBody(t, &bodyConfig{
		prevHash: s.b1.HeaderHash, timestamp: candidateTime, claims: s.claims,
		generator: []byte("genCand"), npc: npc, fees: 50, cost: 5000,
	})
	forkPoint := int64(0)
	cost, err := s.h.validator.ValidateBlockBody(s.h.chain, body, 2, npc, &forkPoint)
	if err != nil {
		t.Fatalf("validation with an explicit fork point failed: %+v", err)
	}
	if cost != 5000 {
		t.Fatalf("validated cost is %d, expected 5000", cost)
	}
}
