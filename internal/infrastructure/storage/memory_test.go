package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"spot-counter/internal/domain/entity"
)

func TestMemorySessionRepository_GetCreatesWithDefaults(t *testing.T) {
	defaults := entity.DefaultDetectionParams()
	defaults.Channel = entity.ChannelGreen
	repo := NewMemorySessionRepository(defaults)
	ctx := context.Background()

	s, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), s.ChatID)
	require.Equal(t, entity.StateMainMenu, s.State)
	require.Equal(t, entity.ChannelGreen, s.Params.Channel)

	again, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.Same(t, s, again)
}

func TestMemorySessionRepository_SessionsDoNotShareParams(t *testing.T) {
	repo := NewMemorySessionRepository(entity.DefaultDetectionParams())
	ctx := context.Background()

	a, _ := repo.Get(ctx, 1)
	b, _ := repo.Get(ctx, 2)
	a.Params.ClaheGrid[0] = 4
	a.Params.ContrastThreshold = 60

	require.Equal(t, 8, b.Params.ClaheGrid[0])
	require.Equal(t, 25.0, b.Params.ContrastThreshold)
	require.Equal(t, 8, repo.Defaults().ClaheGrid[0])
}

func TestMemorySessionRepository_SaveAndUpdateState(t *testing.T) {
	repo := NewMemorySessionRepository(entity.DefaultDetectionParams())
	ctx := context.Background()

	s := entity.NewSession(7, entity.DefaultDetectionParams())
	s.Params.RelThreshold = 0.5
	require.NoError(t, repo.Save(ctx, s))

	require.NoError(t, repo.UpdateState(ctx, 7, entity.StateAwaitingImage))
	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingImage, got.State)
	require.Equal(t, 0.5, got.Params.RelThreshold)

	// неизвестный чат игнорируется
	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
}

func TestMemorySessionRepository_ConcurrentGet(t *testing.T) {
	repo := NewMemorySessionRepository(entity.DefaultDetectionParams())
	ctx := context.Background()

	got := make([]*entity.Session, 16)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = repo.Get(ctx, 5)
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		require.Same(t, got[0], s)
	}
}

func TestMemoryResultRepository(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, repo.Save(ctx, entity.ImageResult{Name: "b", Count: 2}))
	require.NoError(t, repo.Save(ctx, entity.ImageResult{Name: "a", Count: 5}))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []entity.ImageResult{{Name: "b", Count: 2}, {Name: "a", Count: 5}}, list)

	// List отдаёт копию
	list[0].Count = 100
	again, _ := repo.List(ctx)
	require.Equal(t, 2, again[0].Count)

	require.NoError(t, repo.Reset(ctx))
	list, _ = repo.List(ctx)
	require.Empty(t, list)
}
