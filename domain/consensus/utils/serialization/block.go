package serialization

import (
	"io"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

func writeOptionalHash(w io.Writer, hash *externalapi.DomainHash) error {
	err := WriteBool(w, hash != nil)
	if err != nil {
		return err
	}
	if hash == nil {
		return nil
	}
	return WriteHash(w, hash)
}

func readOptionalHash(r io.Reader) (*externalapi.DomainHash, error) {
	present, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return ReadHash(r)
}

// SerializeFoliage serializes a foliage. The header hash is the sha256 of
// exactly these bytes, so this encoding is consensus-critical.
func SerializeFoliage(w io.Writer, foliage *externalapi.Foliage) error {
	err := WriteHash(w, foliage.PrevBlockHash)
	if err != nil {
		return err
	}
	err = WriteHash(w, foliage.RewardBlockHash)
	if err != nil {
		return err
	}
	err = writeOptionalHash(w, foliage.FoliageTransactionBlockHash)
	if err != nil {
		return err
	}
	return WriteVarBytes(w, foliage.FoliageTransactionBlockSignature)
}

// DeserializeFoliage deserializes a foliage
func DeserializeFoliage(r io.Reader) (*externalapi.Foliage, error) {
	prevBlockHash, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	rewardBlockHash, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	foliageTransactionBlockHash, err := readOptionalHash(r)
	if err != nil {
		return nil, err
	}
	signature, err := ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &externalapi.Foliage{
		PrevBlockHash:                    prevBlockHash,
		RewardBlockHash:                  rewardBlockHash,
		FoliageTransactionBlockHash:      foliageTransactionBlockHash,
		FoliageTransactionBlockSignature: signature,
	}, nil
}

// SerializeFoliageTransactionBlock serializes a foliage transaction block.
// Its hash is declared in the foliage, so this encoding is consensus-critical.
func SerializeFoliageTransactionBlock(w io.Writer, ftb *externalapi.FoliageTransactionBlock) error {
	err := WriteHash(w, ftb.PrevTransactionBlockHash)
	if err != nil {
		return err
	}
	err = WriteUint64(w, ftb.Timestamp)
	if err != nil {
		return err
	}
	for _, hash := range []*externalapi.DomainHash{
		ftb.FilterHash, ftb.AdditionsRoot, ftb.RemovalsRoot, ftb.TransactionsInfoHash} {

		err = WriteHash(w, hash)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeFoliageTransactionBlock deserializes a foliage transaction block
func DeserializeFoliageTransactionBlock(r io.Reader) (*externalapi.FoliageTransactionBlock, error) {
	prevTransactionBlockHash, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	timestamp, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	hashes := make([]*externalapi.DomainHash, 4)
	for i := range hashes {
		hashes[i], err = ReadHash(r)
		if err != nil {
			return nil, err
		}
	}
	return &externalapi.FoliageTransactionBlock{
		PrevTransactionBlockHash: prevTransactionBlockHash,
		Timestamp:                timestamp,
		FilterHash:               hashes[0],
		AdditionsRoot:            hashes[1],
		RemovalsRoot:             hashes[2],
		TransactionsInfoHash:     hashes[3],
	}, nil
}

// SerializeTransactionsInfo serializes a transactions info. Its hash is
// declared in the foliage transaction block, so this encoding is
// consensus-critical.
func SerializeTransactionsInfo(w io.Writer, ti *externalapi.TransactionsInfo) error {
	err := WriteHash(w, ti.GeneratorRoot)
	if err != nil {
		return err
	}
	err = WriteHash(w, ti.GeneratorRefsRoot)
	if err != nil {
		return err
	}
	err = WriteVarBytes(w, ti.AggregatedSignature)
	if err != nil {
		return err
	}
	err = WriteUint64(w, ti.Fees)
	if err != nil {
		return err
	}
	err = WriteUint64(w, ti.Cost)
	if err != nil {
		return err
	}
	err = WriteUint32(w, uint32(len(ti.RewardClaimsIncorporated)))
	if err != nil {
		return err
	}
	for _, claim := range ti.RewardClaimsIncorporated {
		err = SerializeCoin(w, claim)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeTransactionsInfo deserializes a transactions info
func DeserializeTransactionsInfo(r io.Reader) (*externalapi.TransactionsInfo, error) {
	generatorRoot, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	generatorRefsRoot, err := ReadHash(r)
	if err != nil {
		return nil, err
	}
	aggregatedSignature, err := ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	fees, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	cost, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	claimCount, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	claims := make([]*externalapi.Coin, claimCount)
	for i := range claims {
		claims[i], err = DeserializeCoin(r)
		if err != nil {
			return nil, err
		}
	}
	return &externalapi.TransactionsInfo{
		GeneratorRoot:            generatorRoot,
		GeneratorRefsRoot:        generatorRefsRoot,
		AggregatedSignature:      aggregatedSignature,
		Fees:                     fees,
		Cost:                     cost,
		RewardClaimsIncorporated: claims,
	}, nil
}

// SerializeFullBlock serializes a full block for the durable block store
func SerializeFullBlock(w io.Writer, block *externalapi.FullBlock) error {
	err := SerializeFoliage(w, block.Foliage)
	if err != nil {
		return err
	}
	err = WriteBool(w, block.FoliageTransactionBlock != nil)
	if err != nil {
		return err
	}
	if block.FoliageTransactionBlock != nil {
		err = SerializeFoliageTransactionBlock(w, block.FoliageTransactionBlock)
		if err != nil {
			return err
		}
	}
	err = WriteBool(w, block.TransactionsInfo != nil)
	if err != nil {
		return err
	}
	if block.TransactionsInfo != nil {
		err = SerializeTransactionsInfo(w, block.TransactionsInfo)
		if err != nil {
			return err
		}
	}
	err = WriteBool(w, block.TransactionsGenerator != nil)
	if err != nil {
		return err
	}
	if block.TransactionsGenerator != nil {
		err = WriteVarBytes(w, block.TransactionsGenerator)
		if err != nil {
			return err
		}
	}
	err = WriteUint32(w, uint32(len(block.TransactionsGeneratorRefList)))
	if err != nil {
		return err
	}
	for _, ref := range block.TransactionsGeneratorRefList {
		err = WriteUint32(w, ref)
		if err != nil {
			return err
		}
	}
	return WriteUint32(w, block.Height)
}

// DeserializeFullBlock deserializes a full block
func DeserializeFullBlock(r io.Reader) (*externalapi.FullBlock, error) {
	foliage, err := DeserializeFoliage(r)
	if err != nil {
		return nil, err
	}
	block := &externalapi.FullBlock{Foliage: foliage}

	hasFoliageTransactionBlock, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if hasFoliageTransactionBlock {
		block.FoliageTransactionBlock, err = DeserializeFoliageTransactionBlock(r)
		if err != nil {
			return nil, err
		}
	}
	hasTransactionsInfo, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if hasTransactionsInfo {
		block.TransactionsInfo, err = DeserializeTransactionsInfo(r)
		if err != nil {
			return nil, err
		}
	}
	hasGenerator, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if hasGenerator {
		block.TransactionsGenerator, err = ReadVarBytes(r)
		if err != nil {
			return nil, err
		}
	}
	refCount, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if refCount > 0 {
		block.TransactionsGeneratorRefList = make([]uint32, refCount)
		for i := range block.TransactionsGeneratorRefList {
			block.TransactionsGeneratorRefList[i], err = ReadUint32(r)
			if err != nil {
				return nil, err
			}
		}
	}
	block.Height, err = ReadUint32(r)
	if err != nil {
		return nil, err
	}
	return block, nil
}
