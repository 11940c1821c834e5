package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
)

// GraderService grades durable answers at reveal time and settles reward
// points. Settlement is differential: a delta is applied only when an
// answer's correctness flag actually changes, so re-running a pass over
// unchanged rows never moves a balance.
type GraderService struct {
	sets      SetRepository
	questions QuestionRepository
	answers   AnswerRepository
	users     UserRepository
	granter   RewardGranter // nil disables completion rewards
	logger    *zap.Logger

	// Serializes reveal passes so two concurrent triggers for the same set
	// cannot interleave their read-then-write cycles.
	mu sync.Mutex
}

func NewGraderService(
	sets SetRepository,
	questions QuestionRepository,
	answers AnswerRepository,
	users UserRepository,
	granter RewardGranter,
	logger *zap.Logger,
) *GraderService {
	return &GraderService{
		sets:      sets,
		questions: questions,
		answers:   answers,
		users:     users,
		granter:   granter,
		logger:    logger,
	}
}

// settle computes the signed point delta for a correctness transition.
func settle(prev, now bool, reward int) int {
	switch {
	case prev == now:
		return 0
	case now:
		return reward
	default:
		return -reward
	}
}

// RevealReport summarizes one grading pass.
type RevealReport struct {
	Graded       int
	Correct      int
	PerfectUsers []int64
}

// Reveal grades every durable answer for the set's questions. Questions with
// manual grading keep whatever flag a human set; the rest are auto-graded by
// case-insensitive match against the accepted-answer pool. Reveal only ever
// promotes an answer to correct; demotion happens through Grade alone.
// Users whose correct count equals the active question count receive the
// completion reward, each grant isolated from the others.
func (g *GraderService) Reveal(ctx context.Context, setID int64) (*RevealReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, err := g.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrSetNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	active, err := g.questions.ListBySet(ctx, setID, true)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[int64]*entities.Question, len(active))
	for _, q := range active {
		byID[q.ID] = q
	}

	rows, err := g.answers.ListBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	report := &RevealReport{}
	correctCount := make(map[int64]int)

	for _, row := range rows {
		q, ok := byID[row.QuestionID]
		if !ok {
			// Answer to a question that has since been deactivated.
			continue
		}

		prev := row.IsCorrect
		now := prev
		if !q.ManualGrading && !prev && q.Matches(row.Value) {
			now = true
		}

		if now != prev {
			if err := g.answers.SetCorrect(ctx, row.ID, now); err != nil {
				return nil, fmt.Errorf("mark answer %d: %w", row.ID, err)
			}
			if delta := settle(prev, now, q.Reward); delta != 0 {
				if err := g.users.AddSouls(ctx, row.UserID, int64(delta)); err != nil {
					return nil, fmt.Errorf("settle answer %d: %w", row.ID, err)
				}
			}
		}

		report.Graded++
		if now {
			report.Correct++
			correctCount[row.UserID]++
		}
	}

	if set.RewardChannelID != 0 && g.granter != nil && len(active) > 0 {
		for userID, count := range correctCount {
			if count != len(active) {
				continue
			}
			report.PerfectUsers = append(report.PerfectUsers, userID)
			if err := g.granter.GrantReward(ctx, userID, set); err != nil {
				g.logger.Error("completion reward grant failed",
					zap.Int64("user_id", userID),
					zap.Int64("set_id", setID),
					zap.Error(err),
				)
			}
		}
	}

	g.logger.Info("set graded",
		zap.Int64("set_id", setID),
		zap.Int("graded", report.Graded),
		zap.Int("correct", report.Correct),
		zap.Int("perfect_users", len(report.PerfectUsers)),
	)

	return report, nil
}

// Grade applies a manual correctness verdict to a single answer. The signed
// point delta is derived from the previous flag: unchanged is a no-op,
// false-to-true awards the question's reward, true-to-false takes it back.
// This is the only path that decrements a balance.
func (g *GraderService) Grade(ctx context.Context, answerID int64, correct bool) (int, error) {
	row, err := g.answers.GetByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, repository.ErrAnswerNotFound) {
			return 0, ErrAnswerNotFound
		}
		return 0, fmt.Errorf("get answer: %w", err)
	}

	delta := settle(row.IsCorrect, correct, row.Question.Reward)
	if delta == 0 {
		return 0, nil
	}

	if err := g.answers.SetCorrect(ctx, answerID, correct); err != nil {
		return 0, fmt.Errorf("mark answer: %w", err)
	}
	if err := g.users.AddSouls(ctx, row.UserID, int64(delta)); err != nil {
		return 0, fmt.Errorf("settle answer: %w", err)
	}

	g.logger.Info("answer regraded",
		zap.Int64("answer_id", answerID),
		zap.Bool("correct", correct),
		zap.Int("delta", delta),
	)

	return delta, nil
}
