package hashes

import (
	"crypto/sha256"
	"hash"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// HashWriter is used to incrementally hash data without concatenating all of
// the data to a single buffer. It exposes an io.Writer api and a Finalize
// function to get the resulting hash. The hash function is sha256, which is
// the only hash this chain's consensus data uses.
type HashWriter struct {
	hash.Hash
}

// NewHashWriter returns a new sha256 HashWriter
func NewHashWriter() *HashWriter {
	return &HashWriter{sha256.New()}
}

// InfallibleWrite is just like write but doesn't return anything
func (h *HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h *HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(sum[:0]))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

// HashData returns the sha256 hash of the given data
func HashData(data []byte) *externalapi.DomainHash {
	sum := sha256.Sum256(data)
	return externalapi.NewDomainHashFromByteArray(&sum)
}
