package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
)

// SetService manages question sets and their lifecycle, including the
// transition guard and question CRUD used by the admin panel.
type SetService struct {
	sets      SetRepository
	questions QuestionRepository
	revealer  Revealer
	panels    PanelNotifier // nil when no chat delivery is attached
	events    EventNotifier // nil disables the event log
	logger    *zap.Logger
}

func NewSetService(
	sets SetRepository,
	questions QuestionRepository,
	revealer Revealer,
	logger *zap.Logger,
) *SetService {
	return &SetService{
		sets:      sets,
		questions: questions,
		revealer:  revealer,
		logger:    logger,
	}
}

// AttachNotifiers wires the chat-side notifiers after the delivery layer is
// constructed. Both are optional.
func (s *SetService) AttachNotifiers(panels PanelNotifier, events EventNotifier) {
	s.panels = panels
	s.events = events
}

// ValidateTransition checks whether a set may move to the given status. The
// BINGO nine-question guard lives here and nowhere else. A revealed set is
// terminal; reveal itself is reachable only from OPEN or CLOSED.
func ValidateTransition(set *entities.QuestionSet, to entities.SetStatus, questionCount int) error {
	if !entities.ValidStatus(to) {
		return &ValidationError{Reason: fmt.Sprintf("unknown status %q", to)}
	}
	if set.Status == entities.StatusRevealed {
		return &ValidationError{Reason: "set is already revealed"}
	}

	switch to {
	case entities.StatusOpen:
		if set.Type == entities.SetTypeBingo && questionCount != entities.BingoQuestionCount {
			return &ValidationError{Reason: fmt.Sprintf(
				"bingo set requires exactly %d questions (currently %d)",
				entities.BingoQuestionCount, questionCount,
			)}
		}
	case entities.StatusRevealed:
		if set.Status != entities.StatusOpen && set.Status != entities.StatusClosed {
			return &ValidationError{Reason: "only an open or closed set can be revealed"}
		}
	}

	return nil
}

// CreateSetInput carries the admin-provided fields for a new set.
type CreateSetInput struct {
	Title           string
	Description     string
	Type            entities.SetType
	RewardChannelID int64
}

// Create creates a set in DRAFT. A BINGO set is pre-populated with nine
// placeholder questions so the card shape is fixed from the start.
func (s *SetService) Create(ctx context.Context, input CreateSetInput) (*entities.QuestionSet, error) {
	if input.Title == "" {
		return nil, &ValidationError{Reason: "title is required"}
	}
	if input.Type == "" {
		input.Type = entities.SetTypeBingo
	}
	if input.Type != entities.SetTypeBingo && input.Type != entities.SetTypeStandard {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown set type %q", input.Type)}
	}

	set := &entities.QuestionSet{
		Title:           input.Title,
		Description:     input.Description,
		Type:            input.Type,
		Status:          entities.StatusDraft,
		RewardChannelID: input.RewardChannelID,
	}

	var questions []*entities.Question
	if set.Type == entities.SetTypeBingo {
		for i := 1; i <= entities.BingoQuestionCount; i++ {
			questions = append(questions, &entities.Question{
				Position: i,
				Prompt:   fmt.Sprintf("Question %d", i),
				Kind:     entities.InputBoolean,
				Answers:  []string{"Yes"},
				Reward:   100,
				IsActive: true,
			})
		}
	}

	id, err := s.sets.CreateWithQuestions(ctx, set, questions)
	if err != nil {
		return nil, err
	}
	set.ID = id

	s.logEvent(ctx, "Set created", fmt.Sprintf("%s (%s), id %d", set.Title, set.Type, set.ID))

	return s.Get(ctx, id)
}

// Transition moves a set to a new status after validation. A transition to
// REVEALED triggers the grading pass; the returned report is non-nil in that
// case. The published panel, if any, is refreshed afterwards.
func (s *SetService) Transition(ctx context.Context, setID int64, to entities.SetStatus) (*entities.QuestionSet, *RevealReport, error) {
	set, err := s.Get(ctx, setID)
	if err != nil {
		return nil, nil, err
	}

	count, err := s.questions.CountBySet(ctx, setID)
	if err != nil {
		return nil, nil, fmt.Errorf("count questions: %w", err)
	}

	if err := ValidateTransition(set, to, count); err != nil {
		return nil, nil, err
	}

	// The grading pass runs before the new status is persisted. A failed
	// pass leaves the set in its prior status, so the reveal can simply be
	// re-triggered; the pass itself is idempotent over already-graded rows.
	var report *RevealReport
	if to == entities.StatusRevealed {
		report, err = s.revealer.Reveal(ctx, setID)
		if err != nil {
			return nil, nil, fmt.Errorf("grade set: %w", err)
		}
	}

	if err := s.sets.UpdateStatus(ctx, setID, to); err != nil {
		return nil, nil, err
	}
	set.Status = to

	if s.panels != nil && set.PanelMessageID != 0 {
		if err := s.panels.RefreshPanel(ctx, set); err != nil {
			s.logger.Error("panel refresh failed",
				zap.Int64("set_id", setID),
				zap.Error(err),
			)
		}
	}

	s.logEvent(ctx, "Status changed", fmt.Sprintf("set %d -> %s", setID, to))

	return set, report, nil
}

// Get returns a set by ID.
func (s *SetService) Get(ctx context.Context, setID int64) (*entities.QuestionSet, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrSetNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	return set, nil
}

// SetWithQuestions is the admin list view of a set.
type SetWithQuestions struct {
	Set       *entities.QuestionSet
	Questions []*entities.Question
}

// List returns all sets with their questions, newest set first.
func (s *SetService) List(ctx context.Context) ([]*SetWithQuestions, error) {
	sets, err := s.sets.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*SetWithQuestions, 0, len(sets))
	for _, set := range sets {
		questions, err := s.questions.ListBySet(ctx, set.ID, false)
		if err != nil {
			return nil, err
		}
		out = append(out, &SetWithQuestions{Set: set, Questions: questions})
	}

	return out, nil
}

// Update modifies a set's title, description and reward channel.
func (s *SetService) Update(ctx context.Context, setID int64, title, description string, rewardChannelID int64) (*entities.QuestionSet, error) {
	set, err := s.Get(ctx, setID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, &ValidationError{Reason: "title is required"}
	}

	set.Title = title
	set.Description = description
	set.RewardChannelID = rewardChannelID

	if err := s.sets.Update(ctx, set); err != nil {
		return nil, err
	}

	return set, nil
}

// Delete removes a set; its questions and their answers cascade away.
func (s *SetService) Delete(ctx context.Context, setID int64) error {
	err := s.sets.Delete(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrSetNotFound) {
			return ErrSetNotFound
		}
		return err
	}

	s.logEvent(ctx, "Set deleted", fmt.Sprintf("id %d", setID))

	return nil
}

// AttachPanel records a freshly published panel message on the set.
func (s *SetService) AttachPanel(ctx context.Context, setID, chatID int64, messageID int) error {
	err := s.sets.SetPanelMessage(ctx, setID, chatID, messageID)
	if errors.Is(err, repository.ErrSetNotFound) {
		return ErrSetNotFound
	}

	return err
}

// CreateQuestion adds a question to a set.
func (s *SetService) CreateQuestion(ctx context.Context, q *entities.Question) (*entities.Question, error) {
	if _, err := s.Get(ctx, q.SetID); err != nil {
		return nil, err
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	if _, err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// UpdateQuestion modifies an existing question.
func (s *SetService) UpdateQuestion(ctx context.Context, q *entities.Question) (*entities.Question, error) {
	existing, err := s.questions.GetByID(ctx, q.ID)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	q.SetID = existing.SetID

	if err := validateQuestion(q); err != nil {
		return nil, err
	}

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// DeleteQuestion removes a question and its answers.
func (s *SetService) DeleteQuestion(ctx context.Context, questionID int64) error {
	err := s.questions.Delete(ctx, questionID)
	if errors.Is(err, repository.ErrQuestionNotFound) {
		return ErrQuestionNotFound
	}

	return err
}

func validateQuestion(q *entities.Question) error {
	if q.Prompt == "" {
		return &ValidationError{Reason: "prompt is required"}
	}
	if q.Position < 1 {
		return &ValidationError{Reason: "position must be at least 1"}
	}
	switch q.Kind {
	case "":
		q.Kind = entities.InputBoolean
	case entities.InputBoolean, entities.InputText:
	case entities.InputChoice:
		if len(q.Options) < 2 {
			return &ValidationError{Reason: "choice question needs at least 2 options"}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown input kind %q", q.Kind)}
	}
	if q.Reward < 0 {
		return &ValidationError{Reason: "reward must not be negative"}
	}

	return nil
}

func (s *SetService) logEvent(ctx context.Context, title, body string) {
	if s.events != nil {
		s.events.LogEvent(ctx, title, body)
	}
}
