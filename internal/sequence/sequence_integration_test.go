//go:build integration

package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"seva/internal/sequence"
	"seva/pkg/testutil/containers"
)

// TestConcurrentAllocationsAreUnique drives the allocator from many
// goroutines and verifies no id is handed out twice. The single-row UPDATE
// serializes on the row lock, so this holds across connections too.
func TestConcurrentAllocationsAreUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	alloc := sequence.NewPostgres(pg.DB)

	const workers = 20
	const perWorker = 10

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id, err := alloc.Next(context.Background())
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for id := range seen {
		require.Greater(t, id, int64(10000000))
		require.LessOrEqual(t, id, int64(10000000+workers*perWorker))
	}
}
