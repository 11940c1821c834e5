package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

type captureNotifier struct {
	published [][]*entities.User
}

func (c *captureNotifier) PublishLeaderboard(_ context.Context, users []*entities.User) error {
	c.published = append(c.published, users)
	return nil
}

func TestRefreshPublishesTopBalances(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for id, souls := range map[int64]int64{1: 300, 2: 100, 3: 200, 4: 50} {
		if err := env.users.Ensure(ctx, id, "player"); err != nil {
			t.Fatalf("ensure: %v", err)
		}
		if err := env.users.SetBalance(ctx, id, souls); err != nil {
			t.Fatalf("set balance: %v", err)
		}
	}

	board := NewLeaderboardService(&fakeUsers{m: env.store}, "@every 1m", 3, zap.NewNop())
	notifier := &captureNotifier{}
	board.SetNotifier(notifier)

	if err := board.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(notifier.published) != 1 {
		t.Fatalf("published %d times, want 1", len(notifier.published))
	}

	top := notifier.published[0]
	if len(top) != 3 {
		t.Fatalf("top size = %d, want 3", len(top))
	}
	wantOrder := []int64{1, 3, 2}
	for i, user := range top {
		if user.ID != wantOrder[i] {
			t.Fatalf("rank %d = user %d, want %d", i+1, user.ID, wantOrder[i])
		}
	}
}
