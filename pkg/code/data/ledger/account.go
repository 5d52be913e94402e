package ledger

import (
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Record is the persisted state of a single account
type Record struct {
	Id uint64

	Address string
	Owner   string

	Lamports uint64
	Data     []byte

	// Version is incremented on every update and is used for optimistic
	// concurrency control
	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if err := validatePublicKey(r.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}

	if err := validatePublicKey(r.Owner); err != nil {
		return errors.Wrap(err, "invalid owner")
	}

	if r.Lamports > maxLamports {
		return errors.New("lamports exceeds the maximum supported balance")
	}

	return nil
}

func (r *Record) Clone() *Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return &Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          data,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id
	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = nil
	if r.Data != nil {
		dst.Data = make([]byte, len(r.Data))
		copy(dst.Data, r.Data)
	}
	dst.Version = r.Version
	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}

// Balances are stored as signed 64 bit integers in some backends
const maxLamports = 1<<63 - 1

func validatePublicKey(value string) error {
	decoded, err := base58.Decode(value)
	if err != nil {
		return err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return errors.Errorf("invalid public key length %d", len(decoded))
	}
	return nil
}
