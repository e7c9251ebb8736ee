package blssignatures

import (
	"crypto/sha256"
	"sync"

	"github.com/drand/kyber"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/lrucache"
)

// SignatureCache memoizes the pairing e(pk, H(pk ‖ msg)) per (public key,
// message) pair. Pairings dominate verification time, and the same spends
// reappear when competing blocks at the same height carry overlapping
// transactions. Safe for concurrent use.
type SignatureCache struct {
	mutex sync.Mutex
	cache *lrucache.LRUCache
}

// NewSignatureCache creates a SignatureCache holding up to capacity pairings
func NewSignatureCache(capacity int) *SignatureCache {
	return &SignatureCache{
		cache: lrucache.New(capacity, true),
	}
}

func cacheKey(pair *PublicKeyMessagePair) *externalapi.DomainHash {
	hasher := sha256.New()
	hasher.Write(pair.PublicKey)
	hasher.Write(pair.Message)
	var key [externalapi.DomainHashSize]byte
	copy(key[:], hasher.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&key)
}

func (sc *SignatureCache) get(pair *PublicKeyMessagePair) (kyber.Point, bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	value, ok := sc.cache.Get(cacheKey(pair))
	if !ok {
		return nil, false
	}
	return value.(kyber.Point), true
}

func (sc *SignatureCache) add(pair *PublicKeyMessagePair, gtElement kyber.Point) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.cache.Add(cacheKey(pair), gtElement)
}
