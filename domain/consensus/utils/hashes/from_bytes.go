package hashes

import (
	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

// FromBytes creates a DomainHash from the given byte slice
func FromBytes(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}
