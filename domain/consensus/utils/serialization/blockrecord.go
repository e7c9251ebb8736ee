package serialization

import (
	"io"
	"math/big"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

func writeBigInt(w io.Writer, value *big.Int) error {
	if value == nil {
		return WriteVarBytes(w, nil)
	}
	return WriteVarBytes(w, value.Bytes())
}

func readBigInt(r io.Reader) (*big.Int, error) {
	valueBytes, err := ReadVarBytes(r)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(valueBytes), nil
}

func writeOptionalUint64(w io.Writer, value *uint64) error {
	err := WriteBool(w, value != nil)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return WriteUint64(w, *value)
}

func readOptionalUint64(r io.Reader) (*uint64, error) {
	present, err := ReadBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	value, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// SerializeBlockRecord serializes a block record for the durable chain index
func SerializeBlockRecord(w io.Writer, record *externalapi.BlockRecord) error {
	err := WriteHash(w, record.HeaderHash)
	if err != nil {
		return err
	}
	err = WriteHash(w, record.PrevHash)
	if err != nil {
		return err
	}
	err = WriteUint32(w, record.Height)
	if err != nil {
		return err
	}
	err = writeBigInt(w, record.Weight)
	if err != nil {
		return err
	}
	err = writeBigInt(w, record.TotalIters)
	if err != nil {
		return err
	}
	err = writeOptionalUint64(w, record.Timestamp)
	if err != nil {
		return err
	}
	err = WriteUint32(w, record.PrevTransactionBlockHeight)
	if err != nil {
		return err
	}
	err = WriteHash(w, record.PrevTransactionBlockHash)
	if err != nil {
		return err
	}
	err = writeOptionalUint64(w, record.Fees)
	if err != nil {
		return err
	}
	err = WriteHash(w, record.PoolPuzzleHash)
	if err != nil {
		return err
	}
	err = WriteHash(w, record.FarmerPuzzleHash)
	if err != nil {
		return err
	}
	err = WriteUint64(w, record.SubSlotIters)
	if err != nil {
		return err
	}
	return WriteUint8(w, record.Deficit)
}

// DeserializeBlockRecord deserializes a block record
func DeserializeBlockRecord(r io.Reader) (*externalapi.BlockRecord, error) {
	record := &externalapi.BlockRecord{}
	var err error

	record.HeaderHash, err = ReadHash(r)
	if err != nil {
		return nil, err
	}
	record.PrevHash, err = ReadHash(r)
	if err != nil {
		return nil, err
	}
	record.Height, err = ReadUint32(r)
	if err != nil {
		return nil, err
	}
	record.Weight, err = readBigInt(r)
	if err != nil {
		return nil, err
	}
	record.TotalIters, err = readBigInt(r)
	if err != nil {
		return nil, err
	}
	record.Timestamp, err = readOptionalUint64(r)
	if err != nil {
		return nil, err
	}
	record.PrevTransactionBlockHeight, err = ReadUint32(r)
	if err != nil {
		return nil, err
	}
	record.PrevTransactionBlockHash, err = ReadHash(r)
	if err != nil {
		return nil, err
	}
	record.Fees, err = readOptionalUint64(r)
	if err != nil {
		return nil, err
	}
	record.PoolPuzzleHash, err = ReadHash(r)
	if err != nil {
		return nil, err
	}
	record.FarmerPuzzleHash, err = ReadHash(r)
	if err != nil {
		return nil, err
	}
	record.SubSlotIters, err = ReadUint64(r)
	if err != nil {
		return nil, err
	}
	record.Deficit, err = ReadUint8(r)
	if err != nil {
		return nil, err
	}
	return record, nil
}
