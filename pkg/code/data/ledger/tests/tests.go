package tests

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testCreateAndGet,
		testUpdate,
		testGetAllByOwner,
		testTxCommit,
		testTxRollback,
		testTxConcurrentDisjointCreates,
	} {
		tf(t, s)
		teardown()
	}
}

func testCreateAndGet(t *testing.T, s ledger.Store) {
	t.Run("testCreateAndGet", func(t *testing.T) {
		ctx := context.Background()

		start := time.Now()

		expected := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 1_000_000,
			Data:     []byte{1, 2, 3, 4},
		}
		cloned := expected.Clone()

		_, err := s.Get(ctx, expected.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		require.NoError(t, s.Create(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)
		assert.True(t, expected.CreatedAt.After(start.Add(-time.Second)))

		actual, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assert.Equal(t, expected.Id, actual.Id)
		assert.Equal(t, cloned.Address, actual.Address)
		assert.Equal(t, cloned.Owner, actual.Owner)
		assert.Equal(t, cloned.Lamports, actual.Lamports)
		assert.Equal(t, cloned.Data, actual.Data)
		assert.EqualValues(t, 1, actual.Version)

		duplicate := cloned.Clone()
		duplicate.Lamports = 1
		assert.Equal(t, ledger.ErrAccountExists, s.Create(ctx, duplicate))

		actual, err = s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assert.Equal(t, cloned.Lamports, actual.Lamports)

		invalid := &ledger.Record{Address: "invalid", Owner: newAddress(t)}
		assert.Error(t, s.Create(ctx, invalid))
	})
}

func testUpdate(t *testing.T, s ledger.Store) {
	t.Run("testUpdate", func(t *testing.T) {
		ctx := context.Background()

		record := &ledger.Record{
			Address: newAddress(t),
			Owner:   newAddress(t),
			Data:    make([]byte, 8),
		}

		assert.Equal(t, ledger.ErrAccountNotFound, s.Update(ctx, record.Clone()))

		require.NoError(t, s.Create(ctx, record))

		first := record.Clone()
		first.Lamports = 500
		first.Data = []byte{8, 7, 6, 5, 4, 3, 2, 1}
		require.NoError(t, s.Update(ctx, first))
		assert.EqualValues(t, 2, first.Version)

		// Based on the now stale version 1
		second := record.Clone()
		second.Lamports = 600
		assert.Equal(t, ledger.ErrStaleVersion, s.Update(ctx, second))

		actual, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 2, actual.Version)
		assert.EqualValues(t, 500, actual.Lamports)
		assert.Equal(t, first.Data, actual.Data)
		assert.Equal(t, record.Owner, actual.Owner)

		actual.Lamports = 0
		require.NoError(t, s.Update(ctx, actual))
		assert.EqualValues(t, 3, actual.Version)
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)

		_, err := s.GetAllByOwner(ctx, owner)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		var expected []*ledger.Record
		for i := 0; i < 5; i++ {
			record := &ledger.Record{
				Address:  newAddress(t),
				Owner:    owner,
				Lamports: uint64(i),
			}
			require.NoError(t, s.Create(ctx, record))
			expected = append(expected, record)
		}
		require.NoError(t, s.Create(ctx, &ledger.Record{
			Address: newAddress(t),
			Owner:   newAddress(t),
		}))

		actual, err := s.GetAllByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, actual, len(expected))
		for i := range expected {
			assert.Equal(t, expected[i].Address, actual[i].Address)
			assert.Equal(t, expected[i].Lamports, actual[i].Lamports)
		}
	})
}

func testTxCommit(t *testing.T, s ledger.Store) {
	t.Run("testTxCommit", func(t *testing.T) {
		ctx := context.Background()

		existing := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 100,
		}
		require.NoError(t, s.Create(ctx, existing))

		created := &ledger.Record{
			Address:  newAddress(t),
			Owner:    existing.Owner,
			Lamports: 50,
		}

		err := s.ExecuteInTx(ctx, func(ctx context.Context) error {
			if err := s.Create(ctx, created); err != nil {
				return err
			}

			// Writes are visible within the tx
			actual, err := s.Get(ctx, created.Address)
			if err != nil {
				return err
			}
			actual.Lamports += 25
			if err := s.Update(ctx, actual); err != nil {
				return err
			}

			actual, err = s.Get(ctx, existing.Address)
			if err != nil {
				return err
			}
			actual.Lamports -= 25
			if err := s.Update(ctx, actual); err != nil {
				return err
			}

			records, err := s.GetAllByOwner(ctx, existing.Owner)
			if err != nil {
				return err
			}
			if len(records) != 2 {
				return errors.New("expected both records within tx")
			}

			return s.ExecuteInTx(ctx, func(ctx context.Context) error { return nil })
		})
		assert.Equal(t, ledger.ErrAlreadyInTx, err)

		err = s.ExecuteInTx(ctx, func(ctx context.Context) error {
			if err := s.Create(ctx, created); err != nil {
				return err
			}

			actual, err := s.Get(ctx, created.Address)
			if err != nil {
				return err
			}
			actual.Lamports += 25
			if err := s.Update(ctx, actual); err != nil {
				return err
			}

			actual, err = s.Get(ctx, existing.Address)
			if err != nil {
				return err
			}
			actual.Lamports -= 25
			return s.Update(ctx, actual)
		})
		require.NoError(t, err)

		actual, err := s.Get(ctx, created.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 75, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)

		actual, err = s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 75, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
	})
}

func testTxRollback(t *testing.T, s ledger.Store) {
	t.Run("testTxRollback", func(t *testing.T) {
		ctx := context.Background()

		existing := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 100,
		}
		require.NoError(t, s.Create(ctx, existing))

		created := &ledger.Record{
			Address: newAddress(t),
			Owner:   existing.Owner,
		}

		expectedErr := errors.New("handler failure")
		err := s.ExecuteInTx(ctx, func(ctx context.Context) error {
			if err := s.Create(ctx, created); err != nil {
				return err
			}

			actual, err := s.Get(ctx, existing.Address)
			if err != nil {
				return err
			}
			actual.Lamports = 0
			if err := s.Update(ctx, actual); err != nil {
				return err
			}

			return expectedErr
		})
		assert.Equal(t, expectedErr, err)

		_, err = s.Get(ctx, created.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Lamports)
		assert.EqualValues(t, 1, actual.Version)
	})
}

func testTxConcurrentDisjointCreates(t *testing.T, s ledger.Store) {
	t.Run("testTxConcurrentDisjointCreates", func(t *testing.T) {
		ctx := context.Background()

		const workers = 4

		// Transactions wait for each other before committing where the store
		// allows it to overlap them. Stores that serialize transactions fall
		// through after the timeout.
		var arrived sync.WaitGroup
		arrived.Add(workers)
		overlapped := make(chan struct{})
		go func() {
			arrived.Wait()
			close(overlapped)
		}()

		records := make([]*ledger.Record, workers)
		results := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			records[i] = &ledger.Record{
				Address:  newAddress(t),
				Owner:    newAddress(t),
				Lamports: uint64(i + 1),
			}

			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				results[i] = s.ExecuteInTx(ctx, func(ctx context.Context) error {
					if err := s.Create(ctx, records[i]); err != nil {
						arrived.Done()
						return err
					}

					arrived.Done()
					select {
					case <-overlapped:
					case <-time.After(250 * time.Millisecond):
					}
					return nil
				})
			}(i)
		}
		wg.Wait()

		ids := make(map[uint64]struct{})
		for i, record := range records {
			require.NoError(t, results[i])

			actual, err := s.Get(ctx, record.Address)
			require.NoError(t, err)
			assert.EqualValues(t, i+1, actual.Lamports)
			assert.EqualValues(t, 1, actual.Version)

			ids[actual.Id] = struct{}{}
		}
		assert.Len(t, ids, workers)
	})
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}
