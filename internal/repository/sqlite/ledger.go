package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

var (
	_ repository.Ledger   = (*DB)(nil)
	_ repository.LedgerTx = (*ledgerTx)(nil)
)

// InTx runs fn inside one BEGIN IMMEDIATE transaction.
//
// Everything fn does through the LedgerTx (quota update, swipe insert, match
// insert) commits together or not at all. fn must not touch db directly: an
// in-memory pool has a single connection, and it is held by tx.
func (db *DB) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return wrapBusy(err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapBusy(err, "committing transaction")
	}
	return nil
}

// ledgerTx implements repository.LedgerTx on top of a *sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

func (l *ledgerTx) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, l.tx, id)
}

func (l *ledgerTx) UpdateSparkQuota(ctx context.Context, userID int64, q model.SparkQuota) error {
	return updateSparkQuota(ctx, l.tx, userID, q)
}

func (l *ledgerTx) HasSwipe(ctx context.Context, key model.SwipeKey) (bool, error) {
	var n int
	err := l.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM swipes
		 WHERE swiper_id = ? AND swiped_id = ? AND swiper_role = ? AND swiped_role = ?`,
		key.SwiperID, key.SwipedID, key.SwiperRole, key.SwipedRole,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking swipe %d→%d: %w", key.SwiperID, key.SwipedID, err)
	}
	return n > 0, nil
}

// InsertSwipe appends a swipe. The ledger's UNIQUE constraint turns a
// second swipe on the same key into apperror.ErrDuplicateSwipe even if the
// HasSwipe pre-check was skipped.
func (l *ledgerTx) InsertSwipe(ctx context.Context, s *model.Swipe) error {
	s.ID = xid.New().String()
	s.CreatedAt = time.Now().UTC()

	_, err := l.tx.ExecContext(ctx,
		`INSERT INTO swipes (id, swiper_id, swiped_id, swiper_role, swiped_role, action, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SwiperID, s.SwipedID, s.SwiperRole, s.SwipedRole, s.Action, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateSwipe()
		}
		return wrapBusy(err, "inserting swipe")
	}
	return nil
}

func (l *ledgerTx) FindPositiveSwipe(ctx context.Context, key model.SwipeKey) (*model.Swipe, error) {
	var s model.Swipe
	err := l.tx.QueryRowContext(ctx,
		`SELECT id, swiper_id, swiped_id, swiper_role, swiped_role, action, created_at
		 FROM swipes
		 WHERE swiper_id = ? AND swiped_id = ? AND swiper_role = ? AND swiped_role = ?
		   AND action IN ('like', 'super_spark')`,
		key.SwiperID, key.SwipedID, key.SwiperRole, key.SwipedRole,
	).Scan(&s.ID, &s.SwiperID, &s.SwipedID, &s.SwiperRole, &s.SwipedRole, &s.Action, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: finding swipe %d→%d: %w", key.SwiperID, key.SwipedID, err)
	}
	return &s, nil
}

func (l *ledgerTx) FindMatch(ctx context.Context, pair model.MatchPair) (*model.Match, error) {
	row := l.tx.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE user1_id = ? AND user1_role = ? AND user2_id = ? AND user2_role = ?`,
		pair.User1.UserID, pair.User1.Role, pair.User2.UserID, pair.User2.Role,
	)
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: finding match %d/%d: %w", pair.User1.UserID, pair.User2.UserID, err)
	}
	return m, nil
}

// InsertMatch stores m, assigning its ID and CreatedAt. The unique index on
// the canonical pair rejects a second match for the same pair; that surfaces
// as apperror.ErrStorageConflict so the caller can retry and find the row.
func (l *ledgerTx) InsertMatch(ctx context.Context, m *model.Match) error {
	if p := m.Pair(); p.User1.UserID == p.User2.UserID || model.NewMatchPair(p.User2, p.User1) != p {
		return fmt.Errorf("sqlite: inserting match: pair %d/%d is not canonical", m.User1ID, m.User2ID)
	}
	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := l.tx.ExecContext(ctx,
		`INSERT INTO matches (id, user1_id, user2_id, user1_role, user2_role, chat_unlocked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.User1ID, m.User2ID, m.User1Role, m.User2Role, m.ChatUnlocked, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.StorageConflict("matches")
		}
		return wrapBusy(err, "inserting match")
	}
	return nil
}
