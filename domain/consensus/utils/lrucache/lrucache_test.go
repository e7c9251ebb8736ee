package lrucache

import (
	"testing"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

func keyForByte(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	hashBytes[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func TestAddEvictsLeastRecentlyUsed(t *testing.T) {
	cache := New(3, false)
	for i := byte(0); i < 3; i++ {
		cache.Add(keyForByte(i), int(i))
	}

	cache.Add(keyForByte(3), 3)
	if cache.Has(keyForByte(0)) {
		t.Fatal("the oldest entry survived an over-capacity Add")
	}
	if cache.Len() != 3 {
		t.Fatalf("cache holds %d entries, expected 3", cache.Len())
	}
	for i := byte(1); i <= 3; i++ {
		if !cache.Has(keyForByte(i)) {
			t.Fatalf("entry %d was wrongly evicted", i)
		}
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	cache := New(3, false)
	for i := byte(0); i < 3; i++ {
		cache.Add(keyForByte(i), int(i))
	}

	value, ok := cache.Get(keyForByte(0))
	if !ok || value.(int) != 0 {
		t.Fatalf("Get(0) = (%v, %t), expected (0, true)", value, ok)
	}

	// Entry 1 is now the least recently used one.
	cache.Add(keyForByte(3), 3)
	if !cache.Has(keyForByte(0)) {
		t.Fatal("a freshly read entry was evicted")
	}
	if cache.Has(keyForByte(1)) {
		t.Fatal("the least recently used entry survived")
	}
}

func TestAddExistingKeyUpdatesValue(t *testing.T) {
	cache := New(2, false)
	cache.Add(keyForByte(0), "old")
	cache.Add(keyForByte(1), "other")
	cache.Add(keyForByte(0), "new")

	if cache.Len() != 2 {
		t.Fatalf("re-adding a key changed the length to %d", cache.Len())
	}
	value, ok := cache.Get(keyForByte(0))
	if !ok || value.(string) != "new" {
		t.Fatalf("Get(0) = (%v, %t), expected the updated value", value, ok)
	}

	// The re-add refreshed recency, so key 1 goes first.
	cache.Add(keyForByte(2), "third")
	if cache.Has(keyForByte(1)) {
		t.Fatal("the least recently used entry survived")
	}
}

func TestRemove(t *testing.T) {
	cache := New(2, false)
	cache.Add(keyForByte(0), 0)
	cache.Remove(keyForByte(0))
	if cache.Has(keyForByte(0)) {
		t.Fatal("a removed entry is still present")
	}

	// Removing a missing key is a no-op.
	cache.Remove(keyForByte(9))
	if cache.Len() != 0 {
		t.Fatalf("cache holds %d entries, expected 0", cache.Len())
	}
}
