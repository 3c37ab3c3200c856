package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// Turn is one recorded exchange: what the learner said and the segments
// the tutor answered with.
type Turn struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	UserText  string          `json:"user_text"`
	Segments  []tutor.Segment `json:"segments"`
	CreatedAt time.Time       `json:"created_at"`
}

// TurnRepository defines the interface for lesson turn data access.
type TurnRepository interface {
	RecordTurn(ctx context.Context, sessionID, userText string, segments []tutor.Segment) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}

// PostgresTurnRepository implements TurnRepository with PostgreSQL.
type PostgresTurnRepository struct {
	db *client.PostgresClient
}

// NewPostgresTurnRepository creates a new PostgresTurnRepository.
func NewPostgresTurnRepository(db *client.PostgresClient) *PostgresTurnRepository {
	return &PostgresTurnRepository{db: db}
}

// RecordTurn inserts one completed exchange.
func (r *PostgresTurnRepository) RecordTurn(ctx context.Context, sessionID, userText string, segments []tutor.Segment) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to encode segments: %w", err)
	}

	query := `
		INSERT INTO lesson_turns (session_id, user_text, segments)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Pool.Exec(ctx, query, sessionID, userText, data); err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}

	return nil
}

// ListBySession retrieves a session's turns in the order they happened.
func (r *PostgresTurnRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, user_text, segments, created_at
		FROM lesson_turns
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		var data []byte
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.UserText, &data, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if err := json.Unmarshal(data, &turn.Segments); err != nil {
			return nil, fmt.Errorf("failed to decode segments: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	return turns, nil
}
