package transactionfilter

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/gcs"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/hashes"
)

func testHash(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	for i := range hashBytes {
		hashBytes[i] = b
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func TestEncodeIsDeterministic(t *testing.T) {
	additions := []*externalapi.Coin{
		externalapi.NewCoin(testHash(1), testHash(2), 100),
		externalapi.NewCoin(testHash(3), testHash(4), 200),
	}
	removals := []*externalapi.DomainHash{testHash(5), testHash(6)}

	first, err := Encode(additions, removals)
	if err != nil {
		t.Fatalf("Encode: %+v", err)
	}
	second, err := Encode(additions, removals)
	if err != nil {
		t.Fatalf("Encode: %+v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("two encodings of the same block effects differ")
	}
}

func TestFilterMatchesItsContents(t *testing.T) {
	watchedPuzzleHash := testHash(2)
	additions := []*externalapi.Coin{
		externalapi.NewCoin(testHash(1), watchedPuzzleHash, 100),
	}
	removedCoinID := testHash(5)
	removals := []*externalapi.DomainHash{removedCoinID}

	encoded, err := Encode(additions, removals)
	if err != nil {
		t.Fatalf("Encode: %+v", err)
	}
	filter, err := gcs.FromNBytes(19, 784931, encoded)
	if err != nil {
		t.Fatalf("decoding the filter: %+v", err)
	}

	var key [gcs.KeySize]byte
	for _, member := range []*externalapi.DomainHash{watchedPuzzleHash, removedCoinID} {
		match, err := filter.Match(key, member.ByteSlice())
		if err != nil {
			t.Fatalf("Match: %+v", err)
		}
		if !match {
			t.Fatalf("the filter does not match its own member %s", member)
		}
	}
}

func TestHashCommitsToEncoding(t *testing.T) {
	additions := []*externalapi.Coin{
		externalapi.NewCoin(testHash(1), testHash(2), 100),
	}
	removals := []*externalapi.DomainHash{testHash(5)}

	encoded, err := Encode(additions, removals)
	if err != nil {
		t.Fatalf("Encode: %+v", err)
	}
	filterHash, err := Hash(additions, removals)
	if err != nil {
		t.Fatalf("Hash: %+v", err)
	}
	if !filterHash.Equal(hashes.HashData(encoded)) {
		t.Fatal("Hash does not commit to the serialized filter")
	}

	otherHash, err := Hash(additions, nil)
	if err != nil {
		t.Fatalf("Hash: %+v", err)
	}
	if filterHash.Equal(otherHash) {
		t.Fatal("the filter hash ignored the removals")
	}
}
