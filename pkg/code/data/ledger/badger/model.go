package badger

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
)

var errInvalidRecordEncoding = errors.New("invalid record encoding")

const (
	accountKeyPrefix = "account/"
	lastIdKey        = "meta/last_id"
)

func getAccountKey(address string) []byte {
	return []byte(accountKeyPrefix + address)
}

// Layout: id | version | lamports | created_at | last_updated_at | owner | data
func marshalRecord(r *ledger.Record) []byte {
	buf := make([]byte, 5*8+2+len(r.Owner)+4+len(r.Data))

	var offset int
	binary.LittleEndian.PutUint64(buf[offset:], r.Id)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], r.Version)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], r.Lamports)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], uint64(r.CreatedAt.UnixNano()))
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:], uint64(r.LastUpdatedAt.UnixNano()))
	offset += 8
	binary.LittleEndian.PutUint16(buf[offset:], uint16(len(r.Owner)))
	offset += 2
	copy(buf[offset:], r.Owner)
	offset += len(r.Owner)
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(r.Data)))
	offset += 4
	copy(buf[offset:], r.Data)

	return buf
}

func unmarshalRecord(address string, buf []byte) (*ledger.Record, error) {
	if len(buf) < 5*8+2 {
		return nil, errInvalidRecordEncoding
	}

	r := &ledger.Record{Address: address}

	var offset int
	r.Id = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	r.Version = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	r.Lamports = binary.LittleEndian.Uint64(buf[offset:])
	offset += 8
	r.CreatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[offset:])))
	offset += 8
	r.LastUpdatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[offset:])))
	offset += 8

	ownerLength := int(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2
	if len(buf) < offset+ownerLength+4 {
		return nil, errInvalidRecordEncoding
	}
	r.Owner = string(buf[offset : offset+ownerLength])
	offset += ownerLength

	dataLength := int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	if len(buf) != offset+dataLength {
		return nil, errInvalidRecordEncoding
	}
	if dataLength > 0 {
		r.Data = make([]byte, dataLength)
		copy(r.Data, buf[offset:])
	}

	return r, nil
}
