package coinstore

import (
	"io"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

// undoRecord captures what an applied block did to the coin set, so a reorg
// can unwind it: the ids of coins the block confirmed and the prior records
// of coins it spent.
type undoRecord struct {
	created []*externalapi.DomainHash
	spent   []*spentCoin
}

type spentCoin struct {
	coinID *externalapi.DomainHash
	record *externalapi.CoinRecord
}

func serializeUndoRecord(w io.Writer, undo *undoRecord) error {
	err := serialization.WriteUint32(w, uint32(len(undo.created)))
	if err != nil {
		return err
	}
	for _, coinID := range undo.created {
		err = serialization.WriteHash(w, coinID)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteUint32(w, uint32(len(undo.spent)))
	if err != nil {
		return err
	}
	for _, spent := range undo.spent {
		err = serialization.WriteHash(w, spent.coinID)
		if err != nil {
			return err
		}
		err = serialization.SerializeCoinRecord(w, spent.record)
		if err != nil {
			return err
		}
	}
	return nil
}

func deserializeUndoRecord(r io.Reader) (*undoRecord, error) {
	undo := &undoRecord{}

	createdCount, err := serialization.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < createdCount; i++ {
		coinID, err := serialization.ReadHash(r)
		if err != nil {
			return nil, err
		}
		undo.created = append(undo.created, coinID)
	}

	spentCount, err := serialization.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < spentCount; i++ {
		coinID, err := serialization.ReadHash(r)
		if err != nil {
			return nil, err
		}
		record, err := serialization.DeserializeCoinRecord(r)
		if err != nil {
			return nil, err
		}
		undo.spent = append(undo.spent, &spentCoin{coinID: coinID, record: record})
	}
	return undo, nil
}
