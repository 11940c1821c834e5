package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionRepository provides access to question data in the database.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository with the provided database pool.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `
	id, set_id, position, prompt, input_kind,
	answers, options, reward, manual_grading, is_active
`

func scanQuestion(row pgx.Row) (*entities.Question, error) {
	var q entities.Question
	err := row.Scan(
		&q.ID,
		&q.SetID,
		&q.Position,
		&q.Prompt,
		&q.Kind,
		&q.Answers,
		&q.Options,
		&q.Reward,
		&q.ManualGrading,
		&q.IsActive,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

func insertQuestion(ctx context.Context, db postgres.DBTX, q *entities.Question) error {
	query := `
		INSERT INTO questions (
			set_id, position, prompt, input_kind,
			answers, options, reward, manual_grading, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := db.QueryRow(
		ctx, query,
		q.SetID, q.Position, q.Prompt, q.Kind,
		q.Answers, q.Options, q.Reward, q.ManualGrading, q.IsActive,
	).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	return nil
}

// Create inserts a single question.
func (r *QuestionRepository) Create(ctx context.Context, q *entities.Question) (int64, error) {
	if err := insertQuestion(ctx, r.db, q); err != nil {
		return 0, err
	}
	return q.ID, nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, questionID int64) (*entities.Question, error) {
	query := "SELECT" + questionColumns + "FROM questions WHERE id = $1"

	q, err := scanQuestion(r.db.QueryRow(ctx, query, questionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	return q, nil
}

// GetByPosition retrieves the active question at the given 1-based position
// within a set. ErrQuestionNotFound signals the position is exhausted.
func (r *QuestionRepository) GetByPosition(ctx context.Context, setID int64, position int) (*entities.Question, error) {
	query := "SELECT" + questionColumns + `
		FROM questions
		WHERE set_id = $1 AND position = $2 AND is_active
	`

	q, err := scanQuestion(r.db.QueryRow(ctx, query, setID, position))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question by position: %w", err)
	}

	return q, nil
}

// ListBySet returns a set's questions ordered by position. When activeOnly
// is set, inactive questions are skipped.
func (r *QuestionRepository) ListBySet(ctx context.Context, setID int64, activeOnly bool) ([]*entities.Question, error) {
	query := "SELECT" + questionColumns + "FROM questions WHERE set_id = $1"
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY position"

	rows, err := r.db.Query(ctx, query, setID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []*entities.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// CountBySet returns the number of questions in a set, active or not. The
// BINGO open guard counts all questions, matching what an admin sees.
func (r *QuestionRepository) CountBySet(ctx context.Context, setID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM questions WHERE set_id = $1", setID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}

	return count, nil
}

// Update modifies a question's editable fields.
func (r *QuestionRepository) Update(ctx context.Context, q *entities.Question) error {
	query := `
		UPDATE questions
		SET position = $2, prompt = $3, input_kind = $4, answers = $5,
		    options = $6, reward = $7, manual_grading = $8, is_active = $9
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx, query,
		q.ID, q.Position, q.Prompt, q.Kind, q.Answers,
		q.Options, q.Reward, q.ManualGrading, q.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuestionNotFound
	}

	return nil
}

// Delete removes a question and, via cascade, its answers.
func (r *QuestionRepository) Delete(ctx context.Context, questionID int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM questions WHERE id = $1", questionID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuestionNotFound
	}

	return nil
}
