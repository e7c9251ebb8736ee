package model

import "github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"

// CoinStore is the read interface over the durable coin set. Validation only
// ever reads coin records; all mutation happens on the single-writer commit
// path after a block is accepted.
type CoinStore interface {
	// GetCoinRecord returns the coin record for the given coin id, or
	// false if no such coin has been confirmed
	GetCoinRecord(coinID *externalapi.DomainHash) (*externalapi.CoinRecord, bool, error)

	// GetCoinRecords is the batched form of GetCoinRecord. Results are
	// positional; missing coins yield nil entries.
	GetCoinRecords(coinIDs []*externalapi.DomainHash) ([]*externalapi.CoinRecord, error)
}
