package externalapi

// Coin is the fundamental unit of value: an unspent output identified by the
// coin that created it, the hash of the puzzle that locks it, and its amount
// in mojos. Coins are immutable; the coin id is a pure function of the three
// fields (see consensushashing.CoinID).
type Coin struct {
	ParentCoinInfo *DomainHash
	PuzzleHash     *DomainHash
	Amount         uint64
}

// NewCoin constructs a new Coin
func NewCoin(parentCoinInfo, puzzleHash *DomainHash, amount uint64) *Coin {
	return &Coin{
		ParentCoinInfo: parentCoinInfo,
		PuzzleHash:     puzzleHash,
		Amount:         amount,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = Coin{ParentCoinInfo: &DomainHash{}, PuzzleHash: &DomainHash{}, Amount: 0}

// Equal returns whether coin equals to other
func (c *Coin) Equal(other *Coin) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.ParentCoinInfo.Equal(other.ParentCoinInfo) &&
		c.PuzzleHash.Equal(other.PuzzleHash) &&
		c.Amount == other.Amount
}

// Clone returns a clone of coin
func (c *Coin) Clone() *Coin {
	return &Coin{
		ParentCoinInfo: c.ParentCoinInfo,
		PuzzleHash:     c.PuzzleHash,
		Amount:         c.Amount,
	}
}

// CoinRecord tracks a coin's lifecycle in the durable coin set. It is created
// when the coin is confirmed and mutated exactly once, from unspent to spent,
// when a later block consumes the coin.
type CoinRecord struct {
	Coin                *Coin
	ConfirmedBlockIndex uint32
	SpentBlockIndex     uint32
	Coinbase            bool
	Timestamp           uint64
}

// Spent returns whether the coin has been marked spent
func (cr *CoinRecord) Spent() bool {
	return cr.SpentBlockIndex > 0
}

// Clone returns a clone of the coin record
func (cr *CoinRecord) Clone() *CoinRecord {
	return &CoinRecord{
		Coin:                cr.Coin.Clone(),
		ConfirmedBlockIndex: cr.ConfirmedBlockIndex,
		SpentBlockIndex:     cr.SpentBlockIndex,
		Coinbase:            cr.Coinbase,
		Timestamp:           cr.Timestamp,
	}
}
