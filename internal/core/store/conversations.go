package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docsage/docsage/internal/core"
)

// SaveTurn appends one conversation turn.
func (s *Store) SaveTurn(ctx context.Context, conversationID string, turn core.Turn) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO conversation_turns (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, turn.Role, turn.Content, createdAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// LoadRecentTurns returns the last k turns for a conversation in
// chronological order, oldest first.
func (s *Store) LoadRecentTurns(ctx context.Context, conversationID string, k int) ([]core.Turn, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT role, content, created_at FROM conversation_turns
		 WHERE conversation_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		conversationID, k)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var turns []core.Turn
	for rows.Next() {
		var (
			turn    core.Turn
			created int64
		)
		if err := rows.Scan(&turn.Role, &turn.Content, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.CreatedAt = time.Unix(0, created).UTC()
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
