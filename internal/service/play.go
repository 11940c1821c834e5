package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

// PlayService drives the interactive answer-collection flow: starting or
// resuming a session, sequencing questions, collecting answers and persisting
// them on confirm.
type PlayService struct {
	sets      SetRepository
	questions QuestionRepository
	answers   AnswerRepository
	users     UserRepository
	sessions  SessionStore
	logger    *zap.Logger
}

func NewPlayService(
	sets SetRepository,
	questions QuestionRepository,
	answers AnswerRepository,
	users UserRepository,
	sessions SessionStore,
	logger *zap.Logger,
) *PlayService {
	return &PlayService{
		sets:      sets,
		questions: questions,
		answers:   answers,
		users:     users,
		sessions:  sessions,
		logger:    logger,
	}
}

// Step is what the presentation layer shows next: either the question at the
// session's pointer, or, when Question is nil, the collected answers ready
// for confirmation.
type Step struct {
	Question *entities.Question
	Position int // 1-based position of Question within the set
	Total    int // total active questions in the set
	Answers  []storage.SessionAnswer
}

// Done reports whether every question has been answered and the summary
// should be shown.
func (s *Step) Done() bool {
	return s.Question == nil
}

// Start creates or resumes the session for (user, set) and returns the step
// to present. A user with any durable answer for the set is refused.
func (s *PlayService) Start(ctx context.Context, userID, setID int64) (*Step, error) {
	set, err := s.getOpenSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	played, err := s.answers.HasAnyForSet(ctx, userID, setID)
	if err != nil {
		return nil, fmt.Errorf("check prior answers: %w", err)
	}
	if played {
		return nil, ErrAlreadyPlayed
	}

	sess := s.sessions.Start(userID, setID)

	return s.nextStep(ctx, userID, set, sess)
}

// Submit records one answer for the current question, advances the pointer
// and returns the next step. The raw value is accepted as-is; BOOLEAN and
// CHOICE inputs are constrained by the presentation layer.
func (s *PlayService) Submit(ctx context.Context, userID, setID, questionID int64, value string) (*Step, error) {
	set, err := s.getOpenSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if q.SetID != setID {
		return nil, ErrQuestionNotFound
	}

	sess, err := s.sessions.Mutate(userID, setID, func(sess *storage.Session) {
		// A repeated tap on the same question's button is a no-op.
		if sess.HasAnswered(q.ID) {
			return
		}
		sess.Answers = append(sess.Answers, storage.SessionAnswer{
			QuestionID: q.ID,
			Position:   q.Position,
			Prompt:     q.Prompt,
			Value:      value,
			Reward:     q.Reward,
		})
		sess.Current++
		sess.AwaitingTextQID = 0
	})
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	return s.nextStep(ctx, userID, set, sess)
}

// Reset discards collected answers and restarts the walk from the first
// question.
func (s *PlayService) Reset(ctx context.Context, userID, setID int64) (*Step, error) {
	set, err := s.getOpenSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Reset(userID, setID)

	return s.nextStep(ctx, userID, set, sess)
}

// Confirm persists the session's collected answers and discards the session.
// Each row is written only if no (user, question) row exists yet, which makes
// a retry after a partial failure idempotent.
func (s *PlayService) Confirm(ctx context.Context, userID int64, username string, setID int64) ([]storage.SessionAnswer, error) {
	sess, ok := s.sessions.Snapshot(userID, setID)
	if !ok || len(sess.Answers) == 0 {
		return nil, ErrEmptySession
	}

	if err := s.users.Upsert(ctx, entities.NewUser(userID, username)); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	for _, sa := range sess.Answers {
		exists, err := s.answers.Exists(ctx, userID, sa.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("check answer existence: %w", err)
		}
		if exists {
			continue
		}

		err = s.answers.Create(ctx, &entities.Answer{
			UserID:     userID,
			QuestionID: sa.QuestionID,
			Value:      sa.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("persist answer: %w", err)
		}
	}

	s.sessions.Delete(userID, setID)

	return sess.Answers, nil
}

// ResultEntry is one graded answer in a user's result view.
type ResultEntry struct {
	Position int
	Prompt   string
	Value    string
	Correct  bool
	Reward   int
}

// ResultSummary is the per-user outcome of a set after grading.
type ResultSummary struct {
	Set          *entities.QuestionSet
	Entries      []ResultEntry
	Score        int
	CorrectCount int
	Total        int
	Perfect      bool
}

// Result returns the user's graded answers for a set.
func (s *PlayService) Result(ctx context.Context, userID, setID int64) (*ResultSummary, error) {
	set, err := s.getSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	active, err := s.questions.ListBySet(ctx, setID, true)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	mine, err := s.answers.ListByUserAndSet(ctx, userID, setID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	if len(mine) == 0 {
		return nil, ErrAnswerNotFound
	}

	summary := &ResultSummary{Set: set, Total: len(active)}
	for _, a := range mine {
		summary.Entries = append(summary.Entries, ResultEntry{
			Position: a.Question.Position,
			Prompt:   a.Question.Prompt,
			Value:    a.Value,
			Correct:  a.IsCorrect,
			Reward:   a.Question.Reward,
		})
		if a.IsCorrect {
			summary.Score += a.Question.Reward
			summary.CorrectCount++
		}
	}
	summary.Perfect = summary.Total > 0 && summary.CorrectCount == summary.Total

	return summary, nil
}

// nextStep resolves the question the session should present next, or the
// confirmation summary when the set is exhausted. BINGO sets walk positions
// strictly; STANDARD sets present the first question without a durable or
// in-session answer.
func (s *PlayService) nextStep(ctx context.Context, userID int64, set *entities.QuestionSet, sess storage.Session) (*Step, error) {
	active, err := s.questions.ListBySet(ctx, set.ID, true)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	var next *entities.Question
	switch set.Type {
	case entities.SetTypeStandard:
		answered := make(map[int64]bool)
		durable, err := s.answers.ListByUserAndSet(ctx, userID, set.ID)
		if err != nil {
			return nil, fmt.Errorf("list answered: %w", err)
		}
		for _, a := range durable {
			answered[a.QuestionID] = true
		}
		for _, sa := range sess.Answers {
			answered[sa.QuestionID] = true
		}
		for _, q := range active {
			if !answered[q.ID] {
				next = q
				break
			}
		}
	default:
		q, err := s.questions.GetByPosition(ctx, set.ID, sess.Current)
		if err != nil && !errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, fmt.Errorf("question at position: %w", err)
		}
		if err == nil && !sess.HasAnswered(q.ID) {
			next = q
			break
		}

		// A stale inline button can record an answer ahead of the counter,
		// parking the counter on a position that is already answered. Fall
		// back to the first question the session has no answer for.
		for _, q := range active {
			if !sess.HasAnswered(q.ID) {
				next = q
				break
			}
		}
	}

	step := &Step{Total: len(active), Answers: sess.Answers}
	if next != nil {
		step.Question = next
		step.Position = next.Position
	}

	// Remember which question waits on a free-text reply so plain messages
	// can be routed back into the flow.
	var awaiting int64
	if next != nil && next.Kind == entities.InputText {
		awaiting = next.ID
	}
	if _, err := s.sessions.Mutate(userID, set.ID, func(sess *storage.Session) {
		sess.AwaitingTextQID = awaiting
	}); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return nil, err
	}

	return step, nil
}

// PendingText reports the set and question a user's plain-text message
// answers, if a session is waiting on one.
func (s *PlayService) PendingText(userID int64) (setID, questionID int64, ok bool) {
	return s.sessions.FindAwaitingText(userID)
}

func (s *PlayService) getSet(ctx context.Context, setID int64) (*entities.QuestionSet, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrSetNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	return set, nil
}

func (s *PlayService) getOpenSet(ctx context.Context, setID int64) (*entities.QuestionSet, error) {
	set, err := s.getSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if !set.IsOpen() {
		return nil, ErrSetClosed
	}

	return set, nil
}
