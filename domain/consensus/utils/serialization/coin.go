package serialization

import (
	"io"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

// CanonicalAmountBytes encodes an amount the way the coin-id hash consumes
// it: minimal big-endian, with a leading zero byte only when the top bit of
// the first byte would otherwise read as a sign bit. Zero encodes to the
// empty string. This encoding is consensus-critical: coin ids are derived
// from it.
func CanonicalAmountBytes(amount uint64) []byte {
	if amount == 0 {
		return nil
	}

	var buf [9]byte
	for i := 8; i >= 1; i-- {
		buf[i] = byte(amount)
		amount >>= 8
	}

	start := 1
	for start < 8 && buf[start] == 0 {
		start++
	}
	// Keep a zero byte in front when the top bit is set, so the value
	// can't be read as negative.
	if buf[start]&0x80 != 0 {
		start--
	}
	return buf[start:]
}

// SerializeCoin serializes a coin in its byte-stream form: parent id, puzzle
// hash and the amount as 8 big-endian bytes (zero amounts included).
func SerializeCoin(w io.Writer, coin *externalapi.Coin) error {
	err := WriteHash(w, coin.ParentCoinInfo)
	if err != nil {
		return err
	}
	err = WriteHash(w, coin.PuzzleHash)
	if err != nil {
		return err
	}
	return WriteUint64(w, coin.Amount)
}

// DeserializeCoin deserializes a coin from its byte-stream form
func DeserializeCoin(r io.Reader) (*externalapi.Coin, error) {
	parentCoinInfo, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	puzzleHash, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	amount, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	return externalapi.NewCoin(parentCoinInfo, puzzleHash, amount), nil
}

// SerializeCoinRecord serializes a coin record for the durable coin store
func SerializeCoinRecord(w io.Writer, record *externalapi.CoinRecord) error {
	err := SerializeCoin(w, record.Coin)
	if err != nil {
		return err
	}
	err = WriteUint32(w, record.ConfirmedBlockIndex)
	if err != nil {
		return err
	}
	err = WriteUint32(w, record.SpentBlockIndex)
	if err != nil {
		return err
	}
	err = WriteBool(w, record.Coinbase)
	if err != nil {
		return err
	}
	return WriteUint64(w, record.Timestamp)
}

// DeserializeCoinRecord deserializes a coin record
func DeserializeCoinRecord(r io.Reader) (*externalapi.CoinRecord, error) {
	coin, err := DeserializeCoin(r)
	if err != nil {
		return nil, err
	}
	confirmedBlockIndex, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	spentBlockIndex, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	coinbase, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	timestamp, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	return &externalapi.CoinRecord{
		Coin:                coin,
		ConfirmedBlockIndex: confirmedBlockIndex,
		SpentBlockIndex:     spentBlockIndex,
		Coinbase:            coinbase,
		Timestamp:           timestamp,
	}, nil
}
