package blockbodyvalidator

import (
	"math"
	"math/big"
	"testing"

	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/processes/forkresolver"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/ruleerrors"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/blssignatures"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/consensushashing"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/constants"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/merkleset"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/rewards"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/transactionfilter"
)

func testHash(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	for i := range hashBytes {
		hashBytes[i] = b
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func testConstants() *constants.ConsensusConstants {
	genesisChallenge := testHash('G')
	return &constants.ConsensusConstants{
		GenesisChallenge:        genesisChallenge,
		AggSigMeAdditionalData:  genesisChallenge.ByteSlice(),
		MaxBlockCostCLVM:        1_000_000,
		MaxCoinAmount:           math.MaxUint64,
		MaxGeneratorSize:        1000,
		MaxGeneratorRefListSize: 4,
	}
}

// fakeChain is an in-memory ChainIndex and BlockStore.
type fakeChain struct {
	records    map[externalapi.DomainHash]*externalapi.BlockRecord
	byHeight   map[uint32]*externalapi.DomainHash
	blocks     map[externalapi.DomainHash]*externalapi.FullBlock
	generators map[uint32][]byte
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		records:    make(map[externalapi.DomainHash]*externalapi.BlockRecord),
		byHeight:   make(map[uint32]*externalapi.DomainHash),
		blocks:     make(map[externalapi.DomainHash]*externalapi.FullBlock),
		generators: make(map[uint32][]byte),
	}
}

func (f *fakeChain) BlockRecord(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, error) {
	record, ok := f.records[*blockHash]
	if !ok {
		return nil, errors.Errorf("block record %s not found", blockHash)
	}
	return record, nil
}

func (f *fakeChain) TryBlockRecord(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, bool, error) {
	record, ok := f.records[*blockHash]
	return record, ok, nil
}

func (f *fakeChain) BlockRecordFromDB(blockHash *externalapi.DomainHash) (*externalapi.BlockRecord, bool, error) {
	return f.TryBlockRecord(blockHash)
}

func (f *fakeChain) HeightToHash(height uint32) (*externalapi.DomainHash, bool, error) {
	hash, ok := f.byHeight[height]
	return hash, ok, nil
}

func (f *fakeChain) HeightToBlockRecord(height uint32) (*externalapi.BlockRecord, error) {
	hash, ok := f.byHeight[height]
	if !ok {
		return nil, errors.Errorf("no block at height %d", height)
	}
	return f.BlockRecord(hash)
}

func (f *fakeChain) ContainsBlock(blockHash *externalapi.DomainHash) (bool, error) {
	_, ok := f.records[*blockHash]
	return ok, nil
}

func (f *fakeChain) ContainsHeight(height uint32) (bool, error) {
	_, ok := f.byHeight[height]
	return ok, nil
}

func (f *fakeChain) PrevBlockHashes(blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	prevHashes := make([]*externalapi.DomainHash, len(blockHashes))
	for i, blockHash := range blockHashes {
		record, err := f.BlockRecord(blockHash)
		if err != nil {
			return nil, err
		}
		prevHashes[i] = record.PrevHash
	}
	return prevHashes, nil
}

func (f *fakeChain) Peak() (*externalapi.BlockRecord, bool, error) {
	var peak *externalapi.BlockRecord
	for _, record := range f.records {
		if peak == nil || record.Weight.Cmp(peak.Weight) > 0 {
			peak = record
		}
	}
	return peak, peak != nil, nil
}

func (f *fakeChain) AddBlockRecord(record *externalapi.BlockRecord) error {
	f.records[*record.HeaderHash] = record
	f.byHeight[record.Height] = record.HeaderHash
	return nil
}

func (f *fakeChain) LookupBlockGenerators(_ *externalapi.DomainHash,
	heights []uint32) (map[uint32][]byte, error) {

	generators := make(map[uint32][]byte, len(heights))
	for _, height := range heights {
		generator, ok := f.generators[height]
		if !ok {
			return nil, errors.Wrapf(ruleerrors.ErrMissingGenerator,
				"no generator at height %d", height)
		}
		generators[height] = generator
	}
	return generators, nil
}

func (f *fakeChain) GetFullBlock(headerHash *externalapi.DomainHash) (*externalapi.FullBlock, bool, error) {
	block, ok := f.blocks[*headerHash]
	return block, ok, nil
}

type fakeCoinStore struct {
	records map[externalapi.DomainHash]*externalapi.CoinRecord
}

func newFakeCoinStore() *fakeCoinStore {
	return &fakeCoinStore{records: make(map[externalapi.DomainHash]*externalapi.CoinRecord)}
}

func (f *fakeCoinStore) GetCoinRecord(coinID *externalapi.DomainHash) (*externalapi.CoinRecord, bool, error) {
	record, ok := f.records[*coinID]
	return record, ok, nil
}

func (f *fakeCoinStore) GetCoinRecords(coinIDs []*externalapi.DomainHash) ([]*externalapi.CoinRecord, error) {
	records := make([]*externalapi.CoinRecord, len(coinIDs))
	for i, coinID := range coinIDs {
		records[i] = f.records[*coinID]
	}
	return records, nil
}

// addCoin confirms an unspent coin in the fake store and returns its id
func (f *fakeCoinStore) addCoin(coin *externalapi.Coin, confirmedHeight uint32,
	timestamp uint64) *externalapi.DomainHash {

	coinID := consensushashing.CoinID(coin)
	f.records[*coinID] = &externalapi.CoinRecord{
		Coin:                coin,
		ConfirmedBlockIndex: confirmedHeight,
		Timestamp:           timestamp,
	}
	return coinID
}

// fakeExecutor returns canned generator-execution results keyed by the
// generator bytes.
type fakeExecutor struct {
	results map[string]*externalapi.SpendBundleConditions
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{results: make(map[string]*externalapi.SpendBundleConditions)}
}

func (f *fakeExecutor) Run(generatorBytes []byte, _ [][]byte, _ uint64,
	_ uint32) (*externalapi.SpendBundleConditions, error) {

	result, ok := f.results[string(generatorBytes)]
	if !ok {
		return nil, errors.Errorf("no canned result for generator %q", generatorBytes)
	}
	return result, nil
}

type harness struct {
	consts    *constants.ConsensusConstants
	chain     *fakeChain
	coinStore *fakeCoinStore
	executor  *fakeExecutor
	validator model.BlockBodyValidator
}

func newHarness() *harness {
	consts := testConstants()
	chain := newFakeChain()
	coinStore := newFakeCoinStore()
	executor := newFakeExecutor()
	return &harness{
		consts:    consts,
		chain:     chain,
		coinStore: coinStore,
		executor:  executor,
		validator: New(consts, coinStore, chain, executor,
			forkresolver.New(consts.GenesisChallenge), blssignatures.NewSignatureCache(16)),
	}
}

type recordOpts struct {
	txBlock   bool
	timestamp uint64
	fees      uint64
	weight    int64
	canonical bool
}

// commitRecord commits a block record to the fake chain. The header hash is
// synthetic; nothing in body validation re-hashes committed blocks.
func (h *harness) commitRecord(name byte, height uint32, prevHash *externalapi.DomainHash,
	opts recordOpts) *externalapi.BlockRecord {

	record := &externalapi.BlockRecord{
		HeaderHash:       testHash(name),
		PrevHash:         prevHash,
		Height:           height,
		Weight:           big.NewInt(opts.weight),
		TotalIters:       big.NewInt(opts.weight),
		PoolPuzzleHash:   testHash('p'),
		FarmerPuzzleHash: testHash('f'),
	}
	if opts.txBlock {
		timestamp := opts.timestamp
		fees := opts.fees
		record.Timestamp = &timestamp
		record.Fees = &fees
	}
	h.chain.records[*record.HeaderHash] = record
	if opts.canonical {
		h.chain.byHeight[height] = record.HeaderHash
	}
	return record
}

// claimsForTransactionBlock derives the reward pair a successor must
// incorporate for a committed transaction block
func (h *harness) claimsForTransactionBlock(record *externalapi.BlockRecord) []*externalapi.Coin {
	var fees uint64
	if record.Fees != nil {
		fees = *record.Fees
	}
	return []*externalapi.Coin{
		rewards.CreatePoolCoin(record.Height, record.PoolPuzzleHash,
			rewards.CalculatePoolReward(record.Height), h.consts.GenesisChallenge),
		rewards.CreateFarmerCoin(record.Height, record.FarmerPuzzleHash,
			rewards.CalculateBaseFarmerReward(record.Height)+fees, h.consts.GenesisChallenge),
	}
}

// claimsForNonTransactionBlock derives the reward pair a non-transaction
// block contributes to its successor's claims: base rewards only, no fees
func (h *harness) claimsForNonTransactionBlock(record *externalapi.BlockRecord) []*externalapi.Coin {
	return []*externalapi.Coin{
		rewards.CreatePoolCoin(record.Height, record.PoolPuzzleHash,
			rewards.CalculatePoolReward(record.Height), h.consts.GenesisChallenge),
		rewards.CreateFarmerCoin(record.Height, record.FarmerPuzzleHash,
			rewards.CalculateBaseFarmerReward(record.Height), h.consts.GenesisChallenge),
	}
}

// bodyConfig drives buildTxBody. The builder derives every commitment from
// the config, so a test that wants a specific commitment to be wrong mutates
// it through mutateTransactionsInfo/mutateFoliageTransactionBlock before the
// enclosing hashes are taken.
type bodyConfig struct {
	prevHash  *externalapi.DomainHash
	timestamp uint64
	claims    []*externalapi.Coin
	generator []byte
	refList   []uint32
	npc       *externalapi.SpendBundleConditions
	fees      uint64
	cost      uint64
	signature []byte

	mutateTransactionsInfo        func(*externalapi.TransactionsInfo)
	mutateFoliageTransactionBlock func(*externalapi.FoliageTransactionBlock)
}

func buildTxBody(t *testing.T, cfg *bodyConfig) *externalapi.BlockBody {
	t.Helper()

	additions, err := additionsFromNPCResult(cfg.npc)
	if err != nil {
		t.Fatalf("building additions: %+v", err)
	}
	removals := removalIDs(cfg.npc)

	allAdditions := make([]*externalapi.Coin, 0, len(additions)+len(cfg.claims))
	for _, addition := range additions {
		allAdditions = append(allAdditions, addition.coin)
	}
	allAdditions = append(allAdditions, cfg.claims...)

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

	filterHash, err := transactionfilter.Hash(allAdditions, removals)
	if err != nil {
		t.Fatalf("building filter hash: %+v", err)
	}

	generatorRoot := emptyGeneratorRoot
	if cfg.generator != nil {
		generatorRoot = consensushashing.GeneratorRoot(cfg.generator)
	}
	refsRoot := emptyRefListRoot
	if len(cfg.refList) > 0 {
		refsRoot = consensushashing.GeneratorRefsRoot(cfg.refList)
	}
	signature := cfg.signature
	if signature == nil {
		signature = blssignatures.IdentitySignature()
	}

	ti := &externalapi.TransactionsInfo{
		GeneratorRoot:            generatorRoot,
		GeneratorRefsRoot:        refsRoot,
		AggregatedSignature:      signature,
		Fees:                     cfg.fees,
		Cost:                     cfg.cost,
		RewardClaimsIncorporated: cfg.claims,
	}
	if cfg.mutateTransactionsInfo != nil {
		cfg.mutateTransactionsInfo(ti)
	}

	ftb := &externalapi.FoliageTransactionBlock{
		PrevTransactionBlockHash: cfg.prevHash,
		Timestamp:                cfg.timestamp,
		FilterHash:               filterHash,
		AdditionsRoot:            merkleset.ComputeRoot(additionLeaves),
		RemovalsRoot:             merkleset.ComputeRoot(removals),
		TransactionsInfoHash:     consensushashing.TransactionsInfoHash(ti),
	}
	if cfg.mutateFoliageTransactionBlock != nil {
		cfg.mutateFoliageTransactionBlock(ftb)
	}

	foliage := &externalapi.Foliage{
		PrevBlockHash:               cfg.prevHash,
		RewardBlockHash:             testHash('w'),
		FoliageTransactionBlockHash: consensushashing.FoliageTransactionBlockHash(ftb),
	}
	return &externalapi.BlockBody{
		Foliage:                      foliage,
		FoliageTransactionBlock:      ftb,
		TransactionsInfo:             ti,
		TransactionsGenerator:        cfg.generator,
		TransactionsGeneratorRefList: cfg.refList,
	}
}

func spendOf(coinID, puzzleHash *externalapi.DomainHash,
	conditions ...*externalapi.ConditionWithArgs) *externalapi.SpendConditions {

	return &externalapi.SpendConditions{
		CoinID:     coinID,
		PuzzleHash: puzzleHash,
		Conditions: conditions,
	}
}

func createCoin(puzzleHash *externalapi.DomainHash, amount uint64) *externalapi.ConditionWithArgs {
	return &externalapi.ConditionWithArgs{
		Opcode: externalapi.ConditionCreateCoin,
		Vars:   [][]byte{puzzleHash.ByteSlice(), serialization.CanonicalAmountBytes(amount)},
	}
}

func condition(opcode externalapi.ConditionOpcode, vars ...[]byte) *externalapi.ConditionWithArgs {
	return &externalapi.ConditionWithArgs{Opcode: opcode, Vars: vars}
}

func amountArg(amount uint64) []byte {
	return serialization.CanonicalAmountBytes(amount)
}

// scenario is the shared baseline: a committed two-transaction-block chain
// with r1 as the peak, a durable funded coin, and a candidate slot at
// height 2 directly extending the peak (fork height 1, nothing to replay).
type scenario struct {
	h         *harness
	r0, r1    *externalapi.BlockRecord
	claims    []*externalapi.Coin
	puzzleP   *externalapi.DomainHash
	puzzleQ   *externalapi.DomainHash
	fundsCoin *externalapi.Coin
	fundsID   *externalapi.DomainHash
}

const (
	fundsAmount    = uint64(1000)
	fundsTimestamp = uint64(500)
	candidateTime  = uint64(2000)
)

func newScenario(t *testing.T) *scenario {
	t.Helper()
	h := newHarness()

	r0 := h.commitRecord('0', 0, h.consts.GenesisChallenge,
		recordOpts{txBlock: true, timestamp: 900, weight: 1, canonical: true})
	r1 := h.commitRecord('1', 1, r0.HeaderHash,
		recordOpts{txBlock: true, timestamp: 1000, weight: 2, canonical: true})

	puzzleP, puzzleQ := testHash('P'), testHash('Q')
	fundsCoin := externalapi.NewCoin(testHash('u'), puzzleP, fundsAmount)
	fundsID := h.coinStore.addCoin(fundsCoin, 0, fundsTimestamp)

	return &scenario{
		h:         h,
		r0:        r0,
		r1:        r1,
		claims:    h.claimsForTransactionBlock(r1),
		puzzleP:   puzzleP,
		puzzleQ:   puzzleQ,
		fundsCoin: fundsCoin,
		fundsID:   fundsID,
	}
}

// validate runs the candidate body at height 2 against the scenario chain
func (s *scenario) validate(body *externalapi.BlockBody,
	npc *externalapi.SpendBundleConditions) (uint64, error) {

	return s.h.validator.ValidateBlockBody(s.h.chain, body, 2, npc, nil)
}

// requireRuleError asserts that validation failed with the given rule error
func requireRuleError(t *testing.T, err error, expected error) {
	t.Helper()
	if err == nil {
		t.Fatal("validation unexpectedly passed")
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected %v, got %+v", expected, err)
	}
}
