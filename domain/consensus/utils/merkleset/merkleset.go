// Package merkleset implements the order-independent commitment structure
// used for the additions and removals roots: a binary radix trie over the
// bits of the leaves, where runs of single-leaf subtrees collapse upward.
// Building the set from the same leaves in any order yields the same root.
package merkleset

import (
	"crypto/sha256"
	"sort"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

type nodeType byte

const (
	emptyNode nodeType = iota
	terminalNode
	middleNode
)

// blankHash is the root of the empty set
var blankHash = externalapi.NewZeroHash()

// hashdown combines two child subtrees into a middle-node hash. The input is
// padded with 30 zero bytes so it can't collide with a leaf preimage.
func hashdown(leftType nodeType, leftHash *externalapi.DomainHash,
	rightType nodeType, rightHash *externalapi.DomainHash) *externalapi.DomainHash {

	var buf [30 + 2 + 2*externalapi.DomainHashSize]byte
	buf[30] = byte(leftType)
	copy(buf[31:], leftHash.ByteSlice())
	buf[31+externalapi.DomainHashSize] = byte(rightType)
	copy(buf[32+externalapi.DomainHashSize:], rightHash.ByteSlice())

	sum := sha256.Sum256(buf[:])
	return externalapi.NewDomainHashFromByteArray(&sum)
}

// ComputeRoot returns the Merkle-set root of the given leaves. Duplicate
// leaves are collapsed; callers that must reject duplicates do so before
// building the commitment.
func ComputeRoot(leaves []*externalapi.DomainHash) *externalapi.DomainHash {
	sorted := externalapi.CloneHashes(leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	deduplicated := sorted[:0]
	for i, leaf := range sorted {
		if i == 0 || !leaf.Equal(sorted[i-1]) {
			deduplicated = append(deduplicated, leaf)
		}
	}

	rootType, rootHash := computeRoot(deduplicated, 0)
	if rootType == emptyNode {
		return blankHash
	}
	return rootHash
}

// computeRoot builds the subtree over sorted, distinct leaves that share a
// bit prefix of length depth.
func computeRoot(leaves []*externalapi.DomainHash, depth int) (nodeType, *externalapi.DomainHash) {
	switch len(leaves) {
	case 0:
		return emptyNode, blankHash
	case 1:
		return terminalNode, leaves[0]
	}

	// Distinct 32-byte leaves must diverge within 256 bits.
	split := sort.Search(len(leaves), func(i int) bool {
		return bitAt(leaves[i], depth) == 1
	})
	leftType, leftHash := computeRoot(leaves[:split], depth+1)
	rightType, rightHash := computeRoot(leaves[split:], depth+1)

	// A middle node with a single occupied child collapses into that
	// child, keeping the trie independent of where leaves diverge.
	if leftType == emptyNode {
		return rightType, rightHash
	}
	if rightType == emptyNode {
		return leftType, leftHash
	}
	return middleNode, hashdown(leftType, leftHash, rightType, rightHash)
}

func bitAt(hash *externalapi.DomainHash, index int) byte {
	return (hash.ByteSlice()[index/8] >> (7 - uint(index%8))) & 1
}
