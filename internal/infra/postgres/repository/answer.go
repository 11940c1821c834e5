package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
)

var ErrAnswerNotFound = errors.New("answer not found")

// AnswerRepository provides access to durable user answers in the database.
type AnswerRepository struct {
	db postgres.DBTX
}

// NewAnswerRepository creates a new AnswerRepository with the provided database pool.
func NewAnswerRepository(db postgres.DBTX) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create inserts an answer row. The (user_id, question_id) unique constraint
// makes a duplicate insert fail; callers check Exists first.
func (r *AnswerRepository) Create(ctx context.Context, a *entities.Answer) error {
	query := `
		INSERT INTO user_answers (user_id, question_id, answer, is_correct)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, a.UserID, a.QuestionID, a.Value, a.IsCorrect).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}

	return nil
}

// Exists reports whether the user already has a durable answer for the question.
func (r *AnswerRepository) Exists(ctx context.Context, userID, questionID int64) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM user_answers WHERE user_id = $1 AND question_id = $2)"

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check answer existence: %w", err)
	}

	return exists, nil
}

// HasAnyForSet reports whether the user has any durable answer within the
// set. Used to refuse a second play-through at session start.
func (r *AnswerRepository) HasAnyForSet(ctx context.Context, userID, setID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM user_answers ua
			JOIN questions q ON q.id = ua.question_id
			WHERE ua.user_id = $1 AND q.set_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, setID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check set answers: %w", err)
	}

	return exists, nil
}

const answerJoinColumns = `
	ua.id, ua.user_id, ua.question_id, ua.answer, ua.is_correct, ua.created_at,
	q.id, q.set_id, q.position, q.prompt, q.input_kind,
	q.answers, q.options, q.reward, q.manual_grading, q.is_active
`

func scanAnswerWithQuestion(row pgx.Row) (*entities.AnswerWithQuestion, error) {
	var a entities.AnswerWithQuestion
	err := row.Scan(
		&a.ID, &a.UserID, &a.QuestionID, &a.Value, &a.IsCorrect, &a.CreatedAt,
		&a.Question.ID, &a.Question.SetID, &a.Question.Position, &a.Question.Prompt,
		&a.Question.Kind, &a.Question.Answers, &a.Question.Options,
		&a.Question.Reward, &a.Question.ManualGrading, &a.Question.IsActive,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// GetByID retrieves an answer joined with its owning question.
func (r *AnswerRepository) GetByID(ctx context.Context, answerID int64) (*entities.AnswerWithQuestion, error) {
	query := "SELECT" + answerJoinColumns + `
		FROM user_answers ua
		JOIN questions q ON q.id = ua.question_id
		WHERE ua.id = $1
	`

	a, err := scanAnswerWithQuestion(r.db.QueryRow(ctx, query, answerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}

	return a, nil
}

// ListBySet returns every durable answer for a set's questions, for grading
// and for the admin roster.
func (r *AnswerRepository) ListBySet(ctx context.Context, setID int64) ([]*entities.AnswerWithQuestion, error) {
	query := "SELECT" + answerJoinColumns + `
		FROM user_answers ua
		JOIN questions q ON q.id = ua.question_id
		WHERE q.set_id = $1
		ORDER BY ua.user_id, q.position
	`

	return r.list(ctx, query, setID)
}

// ListByUserAndSet returns one user's durable answers for a set, ordered by
// question position.
func (r *AnswerRepository) ListByUserAndSet(ctx context.Context, userID, setID int64) ([]*entities.AnswerWithQuestion, error) {
	query := "SELECT" + answerJoinColumns + `
		FROM user_answers ua
		JOIN questions q ON q.id = ua.question_id
		WHERE ua.user_id = $1 AND q.set_id = $2
		ORDER BY q.position
	`

	return r.list(ctx, query, userID, setID)
}

// ListAll returns every answer row; used by the backup endpoint.
func (r *AnswerRepository) ListAll(ctx context.Context) ([]*entities.Answer, error) {
	query := `
		SELECT id, user_id, question_id, answer, is_correct, created_at
		FROM user_answers
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*entities.Answer
	for rows.Next() {
		var a entities.Answer
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.Value, &a.IsCorrect, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, &a)
	}

	return answers, rows.Err()
}

// SetCorrect flips an answer's correctness flag.
func (r *AnswerRepository) SetCorrect(ctx context.Context, answerID int64, correct bool) error {
	tag, err := r.db.Exec(ctx, "UPDATE user_answers SET is_correct = $2 WHERE id = $1", answerID, correct)
	if err != nil {
		return fmt.Errorf("set answer correctness: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAnswerNotFound
	}

	return nil
}

func (r *AnswerRepository) list(ctx context.Context, query string, args ...any) ([]*entities.AnswerWithQuestion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*entities.AnswerWithQuestion
	for rows.Next() {
		a, err := scanAnswerWithQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}

	return answers, rows.Err()
}
