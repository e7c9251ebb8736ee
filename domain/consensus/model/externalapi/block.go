package externalapi

// Foliage is the part of the block signed by the farmer. Its hash is the
// block's header hash. FoliageTransactionBlockHash is nil for blocks that do
// not carry transactions.
type Foliage struct {
	PrevBlockHash               *DomainHash
	RewardBlockHash             *DomainHash
	FoliageTransactionBlockHash *DomainHash

	// FoliageTransactionBlockSignature is a BLS signature over
	// FoliageTransactionBlockHash. Verified by the header stage; carried
	// here because it is part of the serialized foliage.
	FoliageTransactionBlockSignature []byte
}

// FoliageTransactionBlock commits to everything a transaction block contains:
// the compact filter over touched puzzle hashes and coin ids, the
// additions/removals Merkle-set roots, and the transactions info.
type FoliageTransactionBlock struct {
	PrevTransactionBlockHash *DomainHash
	Timestamp                uint64
	FilterHash               *DomainHash
	AdditionsRoot            *DomainHash
	RemovalsRoot             *DomainHash
	TransactionsInfoHash     *DomainHash
}

// TransactionsInfo carries the declared results of executing the block's
// transaction generator. Every field is re-derived and checked by the block
// body validator.
type TransactionsInfo struct {
	GeneratorRoot     *DomainHash
	GeneratorRefsRoot *DomainHash

	// AggregatedSignature is a 96-byte BLS12-381 G2 element aggregating
	// every signature required by the spends in this block.
	AggregatedSignature []byte

	Fees uint64
	Cost uint64

	RewardClaimsIncorporated []*Coin
}

// BlockBody is the minimal view of a block that body validation needs. Both
// FullBlock and UnfinishedBlock expose it, so the same validation path serves
// finished and unfinished blocks.
type BlockBody struct {
	Foliage                 *Foliage
	FoliageTransactionBlock *FoliageTransactionBlock
	TransactionsInfo        *TransactionsInfo

	// TransactionsGenerator is the serialized generator program, nil when
	// the block carries no transactions. TransactionsGeneratorRefList is
	// the list of heights of previous generators the program references.
	TransactionsGenerator        []byte
	TransactionsGeneratorRefList []uint32
}

// IsTransactionBlock returns whether this body belongs to a transaction block
func (bb *BlockBody) IsTransactionBlock() bool {
	return bb.Foliage.FoliageTransactionBlockHash != nil
}

// FullBlock is a complete block as gossiped on the network, minus the
// proof-of-space/proof-of-time fields that only the header stage inspects.
type FullBlock struct {
	Foliage                 *Foliage
	FoliageTransactionBlock *FoliageTransactionBlock
	TransactionsInfo        *TransactionsInfo

	TransactionsGenerator        []byte
	TransactionsGeneratorRefList []uint32

	Height uint32
}

// Body returns the shared body view of the block
func (fb *FullBlock) Body() *BlockBody {
	return &BlockBody{
		Foliage:                      fb.Foliage,
		FoliageTransactionBlock:      fb.FoliageTransactionBlock,
		TransactionsInfo:             fb.TransactionsInfo,
		TransactionsGenerator:        fb.TransactionsGenerator,
		TransactionsGeneratorRefList: fb.TransactionsGeneratorRefList,
	}
}

// IsTransactionBlock returns whether this block carries transactions
func (fb *FullBlock) IsTransactionBlock() bool {
	return fb.Foliage.FoliageTransactionBlockHash != nil
}

// UnfinishedBlock is a block that has not been infused into the chain yet.
// It has no height of its own; candidates are validated at the height they
// would be infused at.
type UnfinishedBlock struct {
	Foliage                 *Foliage
	FoliageTransactionBlock *FoliageTransactionBlock
	TransactionsInfo        *TransactionsInfo

	TransactionsGenerator        []byte
	TransactionsGeneratorRefList []uint32
}

// Body returns the shared body view of the block
func (ub *UnfinishedBlock) Body() *BlockBody {
	return &BlockBody{
		Foliage:                      ub.Foliage,
		FoliageTransactionBlock:      ub.FoliageTransactionBlock,
		TransactionsInfo:             ub.TransactionsInfo,
		TransactionsGenerator:        ub.TransactionsGenerator,
		TransactionsGeneratorRefList: ub.TransactionsGeneratorRefList,
	}
}
