package sync

import (
	"fmt"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 256
	operationCount := 1000

	l := NewStripedLock(4)

	var workerWg base.WaitGroup
	startChan := make(chan struct{})
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		workerWg.Add(1)

		go func(workerID int) {
			defer workerWg.Done()

			var opWg base.WaitGroup
			key := []byte(fmt.Sprintf("worker%d", workerID))
			for j := 0; j < operationCount; j++ {
				opWg.Add(1)

				go func() {
					defer opWg.Done()

					<-startChan

					mu := l.Get(key)
					mu.Lock()
					data[workerID]++
					mu.Unlock()
				}()
			}
			opWg.Wait()
		}(i)
	}

	close(startChan)
	workerWg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_LockAll(t *testing.T) {
	accountCount := 16
	workerCount := 64
	operationCount := 500

	l := NewStripedLock(8)

	keys := make([][]byte, accountCount)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("account%d", i))
	}
	balances := make([]int, accountCount)

	var wg base.WaitGroup
	startChan := make(chan struct{})
	for i := 0; i < workerCount; i++ {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			<-startChan

			for j := 0; j < operationCount; j++ {
				// Overlapping key sets in both orders, including duplicates
				from := (workerID + j) % accountCount
				to := (workerID*7 + j) % accountCount

				unlock := l.LockAll(keys[from], keys[to], keys[from])
				balances[from]--
				balances[to]++
				unlock()
			}
		}(i)
	}

	close(startChan)
	wg.Wait()

	var total int
	for _, balance := range balances {
		total += balance
	}
	assert.Equal(t, 0, total)
}
