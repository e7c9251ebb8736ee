// Package serialization implements the byte-exact streamable encoding used
// for consensus commitments and for durable store records: fixed-width
// big-endian integers, 32-byte hashes, bool-prefixed optionals and
// uint32-count-prefixed lists.
package serialization

import (
	"encoding/binary"
	"io"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// WriteUint8 serializes a uint8 to w
func WriteUint8(w io.Writer, value uint8) error {
	_, err := w.Write([]byte{value})
	return errors.WithStack(err)
}

// WriteUint32 serializes a uint32 to w in big-endian
func WriteUint32(w io.Writer, value uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// WriteUint64 serializes a uint64 to w in big-endian
func WriteUint64(w io.Writer, value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// WriteBool serializes a bool to w as a single 0/1 byte
func WriteBool(w io.Writer, value bool) error {
	b := byte(0)
	if value {
		b = 1
	}
	return WriteUint8(w, b)
}

// WriteHash serializes a DomainHash to w
func WriteHash(w io.Writer, hash *externalapi.DomainHash) error {
	_, err := w.Write(hash.ByteSlice())
	return errors.WithStack(err)
}

// WriteVarBytes serializes a uint32-length-prefixed byte slice to w
func WriteVarBytes(w io.Writer, data []byte) error {
	err := WriteUint32(w, uint32(len(data)))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}

// ReadUint8 deserializes a uint8 from r
func ReadUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return buf[0], nil
}

// ReadUint32 deserializes a big-endian uint32 from r
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64 deserializes a big-endian uint64 from r
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadBool deserializes a bool from r. Any byte other than 0 or 1 is malformed.
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("invalid bool encoding %d", b)
	}
}

// ReadHash deserializes a DomainHash from r
func ReadHash(r io.Reader) (*externalapi.DomainHash, error) {
	var buf [externalapi.DomainHashSize]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return externalapi.NewDomainHashFromByteArray(&buf), nil
}

// maxVarBytesLength caps length prefixes so a corrupt record can't make us
// allocate unbounded memory.
const maxVarBytesLength = 1 << 26

// ReadVarBytes deserializes a uint32-length-prefixed byte slice from r
func ReadVarBytes(r io.Reader) ([]byte, error) {
	length, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if length > maxVarBytesLength {
		return nil, errors.Errorf("var bytes length %d is over the limit of %d", length, maxVarBytesLength)
	}
	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}
