package serialization

import (
	"bytes"
	"testing"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

func TestCanonicalAmountBytes(t *testing.T) {
	tests := []struct {
		amount   uint64
		expected []byte
	}{
		{0, nil},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x00, 0x80}},
		{0xff, []byte{0x00, 0xff}},
		{0x100, []byte{0x01, 0x00}},
		{0x7fff, []byte{0x7f, 0xff}},
		{0x8000, []byte{0x00, 0x80, 0x00}},
		{0xffffffff, []byte{0x00, 0xff, 0xff, 0xff, 0xff}},
		{0x7fffffffffffffff, []byte{0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{0x8000000000000000, []byte{0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{0xffffffffffffffff, []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, test := range tests {
		encoded := CanonicalAmountBytes(test.amount)
		if !bytes.Equal(encoded, test.expected) {
			t.Errorf("CanonicalAmountBytes(%d) = %x, expected %x",
				test.amount, encoded, test.expected)
		}
	}
}

func TestCoinRoundTrip(t *testing.T) {
	parent, err := externalapi.NewDomainHashFromString(
		"0101010101010101010101010101010101010101010101010101010101010101")
	if err != nil {
		t.Fatal(err)
	}
	puzzleHash, err := externalapi.NewDomainHashFromString(
		"0202020202020202020202020202020202020202020202020202020202020202")
	if err != nil {
		t.Fatal(err)
	}

	for _, amount := range []uint64{0, 1, 0xff, 0xffffffffffffffff} {
		coin := externalapi.NewCoin(parent, puzzleHash, amount)

		buf := &bytes.Buffer{}
		err := SerializeCoin(buf, coin)
		if err != nil {
			t.Fatalf("SerializeCoin(amount=%d): %+v", amount, err)
		}
		deserialized, err := DeserializeCoin(buf)
		if err != nil {
			t.Fatalf("DeserializeCoin(amount=%d): %+v", amount, err)
		}
		if !deserialized.Equal(coin) {
			t.Fatalf("coin with amount %d did not survive the round trip", amount)
		}
	}
}

func TestCoinRecordRoundTrip(t *testing.T) {
	parent, err := externalapi.NewDomainHashFromString(
		"0303030303030303030303030303030303030303030303030303030303030303")
	if err != nil {
		t.Fatal(err)
	}
	record := &externalapi.CoinRecord{
		Coin:                externalapi.NewCoin(parent, parent, 1_000_000),
		ConfirmedBlockIndex: 42,
		SpentBlockIndex:     107,
		Coinbase:            true,
		Timestamp:           1616162400,
	}

	buf := &bytes.Buffer{}
	err = SerializeCoinRecord(buf, record)
	if err != nil {
		t.Fatalf("SerializeCoinRecord: %+v", err)
	}
	deserialized, err := DeserializeCoinRecord(buf)
	if err != nil {
		t.Fatalf("DeserializeCoinRecord: %+v", err)
	}
	if !deserialized.Coin.Equal(record.Coin) ||
		deserialized.ConfirmedBlockIndex != record.ConfirmedBlockIndex ||
		deserialized.SpentBlockIndex != record.SpentBlockIndex ||
		deserialized.Coinbase != record.Coinbase ||
		deserialized.Timestamp != record.Timestamp {
		t.Fatalf("coin record did not survive the round trip: got %+v, want %+v",
			deserialized, record)
	}
}

func TestReadBoolRejectsMalformedBytes(t *testing.T) {
	_, err := ReadBool(bytes.NewReader([]byte{2}))
	if err == nil {
		t.Fatal("ReadBool accepted the byte 2")
	}
}
