package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
)

var ErrSetNotFound = errors.New("question set not found")

// SetRepository provides access to question set data in the database.
type SetRepository struct {
	db postgres.DBTX
	tx *postgres.Transactor
}

// NewSetRepository creates a new SetRepository backed by the provided pool.
func NewSetRepository(pool *pgxpool.Pool) *SetRepository {
	return &SetRepository{db: pool, tx: postgres.NewTransactor(pool)}
}

const setColumns = `
	id, title, description, set_type, status,
	reward_channel_id, panel_chat_id, panel_message_id, created_at
`

func scanSet(row pgx.Row) (*entities.QuestionSet, error) {
	var set entities.QuestionSet
	err := row.Scan(
		&set.ID,
		&set.Title,
		&set.Description,
		&set.Type,
		&set.Status,
		&set.RewardChannelID,
		&set.PanelChatID,
		&set.PanelMessageID,
		&set.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &set, nil
}

// CreateWithQuestions inserts a set and its initial questions in a single
// transaction, so a half-created BINGO card can never be observed.
func (r *SetRepository) CreateWithQuestions(
	ctx context.Context, set *entities.QuestionSet, questions []*entities.Question,
) (int64, error) {
	var setID int64

	err := r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO question_sets (title, description, set_type, status, reward_channel_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		err := tx.QueryRow(
			ctx, query,
			set.Title, set.Description, set.Type, set.Status, set.RewardChannelID,
		).Scan(&setID)
		if err != nil {
			return fmt.Errorf("insert set: %w", err)
		}

		for _, q := range questions {
			q.SetID = setID
			if err := insertQuestion(ctx, tx, q); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create set with questions: %w", err)
	}

	return setID, nil
}

// GetByID retrieves a set by ID.
func (r *SetRepository) GetByID(ctx context.Context, setID int64) (*entities.QuestionSet, error) {
	query := "SELECT" + setColumns + "FROM question_sets WHERE id = $1"

	set, err := scanSet(r.db.QueryRow(ctx, query, setID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("get set: %w", err)
	}

	return set, nil
}

// List returns all sets, newest first.
func (r *SetRepository) List(ctx context.Context) ([]*entities.QuestionSet, error) {
	query := "SELECT" + setColumns + "FROM question_sets ORDER BY id DESC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []*entities.QuestionSet
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		sets = append(sets, set)
	}

	return sets, rows.Err()
}

// Update modifies a set's editable fields.
func (r *SetRepository) Update(ctx context.Context, set *entities.QuestionSet) error {
	query := `
		UPDATE question_sets
		SET title = $2, description = $3, reward_channel_id = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, set.ID, set.Title, set.Description, set.RewardChannelID)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}

// UpdateStatus moves a set to a new lifecycle status.
func (r *SetRepository) UpdateStatus(ctx context.Context, setID int64, status entities.SetStatus) error {
	tag, err := r.db.Exec(ctx, "UPDATE question_sets SET status = $2 WHERE id = $1", setID, status)
	if err != nil {
		return fmt.Errorf("update set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}

// SetPanelMessage records the published panel message so later status
// transitions can edit it in place.
func (r *SetRepository) SetPanelMessage(ctx context.Context, setID, chatID int64, messageID int) error {
	query := `
		UPDATE question_sets
		SET panel_chat_id = $2, panel_message_id = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, setID, chatID, messageID)
	if err != nil {
		return fmt.Errorf("set panel message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}

// Delete removes a set; questions and answers go with it via cascade.
func (r *SetRepository) Delete(ctx context.Context, setID int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM question_sets WHERE id = $1", setID)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}

	return nil
}
