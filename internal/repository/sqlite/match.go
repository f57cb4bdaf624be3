package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

var _ repository.MatchRepository = (*DB)(nil)

const matchColumns = `id, user1_id, user2_id, user1_role, user2_role, chat_unlocked, created_at`

func (db *DB) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("match", id)
		}
		return nil, fmt.Errorf("sqlite: getting match %s: %w", id, err)
	}
	return m, nil
}

// ListMatchesFor returns the matches p takes part in, as that role only,
// newest first.
func (db *DB) ListMatchesFor(ctx context.Context, p model.Participant) ([]model.Match, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE (user1_id = ? AND user1_role = ?)
		    OR (user2_id = ? AND user2_role = ?)
		 ORDER BY created_at DESC, id DESC`,
		p.UserID, p.Role, p.UserID, p.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing matches of user %d: %w", p.UserID, err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating matches: %w", err)
	}
	return matches, nil
}

// SetChatUnlocked flips the chat gate on. Unlocking twice is a no-op.
func (db *DB) SetChatUnlocked(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE matches SET chat_unlocked = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: unlocking chat of match %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("match", id)
	}
	return nil
}

func scanMatch(row rowScanner) (*model.Match, error) {
	var m model.Match
	err := row.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.User1Role, &m.User2Role, &m.ChatUnlocked, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
