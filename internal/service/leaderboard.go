package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

// LeaderboardNotifier renders and publishes (or edits in place) the
// leaderboard message in the configured channel.
type LeaderboardNotifier interface {
	PublishLeaderboard(ctx context.Context, users []*entities.User) error
}

// LeaderboardService periodically refreshes the channel leaderboard with the
// highest balances.
type LeaderboardService struct {
	users    UserRepository
	notifier LeaderboardNotifier
	schedule string
	size     int
	logger   *zap.Logger
}

func NewLeaderboardService(
	users UserRepository,
	schedule string,
	size int,
	logger *zap.Logger,
) *LeaderboardService {
	if size <= 0 {
		size = 10
	}

	return &LeaderboardService{
		users:    users,
		schedule: schedule,
		size:     size,
		logger:   logger,
	}
}

// SetNotifier sets the notifier (called after the delivery layer is created).
func (s *LeaderboardService) SetNotifier(notifier LeaderboardNotifier) {
	s.notifier = notifier
}

// Start refreshes once immediately, then on the configured schedule until
// the context is cancelled.
func (s *LeaderboardService) Start(ctx context.Context) {
	if s.notifier == nil {
		s.logger.Warn("leaderboard notifier not set, refresh disabled")
		return
	}

	s.logger.Info("leaderboard service started", zap.String("schedule", s.schedule))

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("initial leaderboard refresh failed", zap.Error(err))
	}

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Error("leaderboard refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	c.Stop()
	s.logger.Info("leaderboard service stopped")
}

// Refresh fetches the current top balances and pushes them to the channel.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	top, err := s.users.ListTop(ctx, s.size)
	if err != nil {
		return err
	}

	return s.notifier.PublishLeaderboard(ctx, top)
}
