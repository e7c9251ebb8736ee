// Package consensushashing derives the network-visible hashes of consensus
// data: coin ids, header hashes and commitment hashes. Everything here must
// match the wire encoding byte for byte.
package consensushashing

import (
	"sort"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/hashes"
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/serialization"
)

// CoinID returns the coin's id: sha256 over the parent id, the puzzle hash
// and the canonical variable-length encoding of the amount. An amount of
// zero contributes nothing to the hashed stream.
func CoinID(coin *externalapi.Coin) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	writer.InfallibleWrite(coin.ParentCoinInfo.ByteSlice())
	writer.InfallibleWrite(coin.PuzzleHash.ByteSlice())
	writer.InfallibleWrite(serialization.CanonicalAmountBytes(coin.Amount))
	return writer.Finalize()
}

// HeaderHash returns the block's header hash: the sha256 of the serialized
// foliage.
func HeaderHash(foliage *externalapi.Foliage) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeFoliage(writer, foliage)
	if err != nil {
		// Writing into a hash writer cannot fail.
		panic(err)
	}
	return writer.Finalize()
}

// FoliageTransactionBlockHash returns the hash the foliage declares for its
// transaction block
func FoliageTransactionBlockHash(ftb *externalapi.FoliageTransactionBlock) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeFoliageTransactionBlock(writer, ftb)
	if err != nil {
		panic(err)
	}
	return writer.Finalize()
}

// TransactionsInfoHash returns the hash the foliage transaction block
// declares for its transactions info
func TransactionsInfoHash(ti *externalapi.TransactionsInfo) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	err := serialization.SerializeTransactionsInfo(writer, ti)
	if err != nil {
		panic(err)
	}
	return writer.Finalize()
}

// GeneratorRoot returns the commitment to a serialized generator program
func GeneratorRoot(generatorBytes []byte) *externalapi.DomainHash {
	return hashes.HashData(generatorBytes)
}

// GeneratorRefsRoot returns the commitment to a generator reference list:
// the sha256 of the concatenation of the references as big-endian uint32s
func GeneratorRefsRoot(refList []uint32) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	for _, ref := range refList {
		err := serialization.WriteUint32(writer, ref)
		if err != nil {
			panic(err)
		}
	}
	return writer.Finalize()
}

// CoinAnnouncementID returns the id asserted by ASSERT_COIN_ANNOUNCEMENT:
// sha256 of the announcing coin's id and the announcement message
func CoinAnnouncementID(coinID *externalapi.DomainHash, message []byte) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	writer.InfallibleWrite(coinID.ByteSlice())
	writer.InfallibleWrite(message)
	return writer.Finalize()
}

// PuzzleAnnouncementID returns the id asserted by ASSERT_PUZZLE_ANNOUNCEMENT:
// sha256 of the announcing coin's puzzle hash and the announcement message
func PuzzleAnnouncementID(puzzleHash *externalapi.DomainHash, message []byte) *externalapi.DomainHash {
	writer := hashes.NewHashWriter()
	writer.InfallibleWrite(puzzleHash.ByteSlice())
	writer.InfallibleWrite(message)
	return writer.Finalize()
}

// HashCoinIDList returns the hash of a group of coin ids, sorted, as used by
// the additions Merkle-set leaves. Sorting makes the leaf independent of the
// order the coins appeared in the generator output.
func HashCoinIDList(coinIDs []*externalapi.DomainHash) *externalapi.DomainHash {
	sorted := externalapi.CloneHashes(coinIDs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	writer := hashes.NewHashWriter()
	for _, coinID := range sorted {
		writer.InfallibleWrite(coinID.ByteSlice())
	}
	return writer.Finalize()
}
