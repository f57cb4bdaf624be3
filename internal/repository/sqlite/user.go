package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, github_id, password_hash, name, age, location, photo_url,
	active_role, super_spark_count, super_spark_reset_at, created_at, updated_at`

// CreateUser inserts a new user and fills in ID and timestamps.
//
// New users start in the entrepreneur role with a full spark quota unless the
// caller already set CurrentRole / SparkResetAt.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.CurrentRole == "" {
		user.CurrentRole = model.RoleEntrepreneur
	}
	if user.SparkResetAt.IsZero() {
		user.SparkCount = model.SparkWeeklyCap
		user.SparkResetAt = now
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, github_id, password_hash, name, age, location, photo_url,
			active_role, super_spark_count, super_spark_reset_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(user.Email),
		user.GitHubID,
		user.PasswordHash,
		user.Name,
		user.Age,
		user.Location,
		user.PhotoURL,
		user.CurrentRole,
		user.SparkCount,
		user.SparkResetAt.UTC(),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "an account with this email already exists",
				Field:   "email",
			}
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByID retrieves a user by their ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, db.conn, id)
}

// GetUserByEmail looks a user up by (case-insensitive) email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpsertGitHubUser inserts or updates a user based on their GitHub ID.
//
// An existing user keeps their ID, role and quota; only the fields GitHub
// owns (name, email, avatar) are refreshed. The caller's struct is replaced
// with the stored record either way.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting GitHub user: GitHubID is nil")
	}

	var existingID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, *user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	if existingID == 0 {
		if err := db.CreateUser(ctx, user); err != nil {
			return err
		}
		return nil
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = COALESCE(?, email), photo_url = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		nullString(normalizeEmail(user.Email)),
		user.PhotoURL,
		time.Now().UTC(),
		existingID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "this GitHub email belongs to another account",
				Field:   "email",
			}
		}
		return fmt.Errorf("sqlite: updating GitHub user %d: %w", existingID, err)
	}

	stored, err := getUser(ctx, db.conn, existingID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// SetCurrentRole switches the role a user swipes as.
func (db *DB) SetCurrentRole(ctx context.Context, id int64, role model.Role) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET active_role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting role of user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return nil
}

// UpdateUserDetails writes the fields a user edits on their account page.
// Email, role and quota are never touched here.
func (db *DB) UpdateUserDetails(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, age = ?, location = ?, photo_url = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name, user.Age, user.Location, user.PhotoURL, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	return nil
}

// UpdateSparkQuota overwrites a user's spark counter outside of a swipe.
// The swipe flow uses the transactional variant on ledgerTx instead.
func (db *DB) UpdateSparkQuota(ctx context.Context, userID int64, q model.SparkQuota) error {
	return updateSparkQuota(ctx, db.conn, userID, q)
}

func getUser(ctx context.Context, q querier, id int64) (*model.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

func updateSparkQuota(ctx context.Context, q querier, userID int64, quota model.SparkQuota) error {
	res, err := q.ExecContext(ctx,
		`UPDATE users SET super_spark_count = ?, super_spark_reset_at = ?, updated_at = ?
		 WHERE id = ?`,
		quota.Count, quota.ResetAt.UTC(), time.Now().UTC(), userID,
	)
	if err != nil {
		return wrapBusy(err, fmt.Sprintf("updating spark quota of user %d", userID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", strconv.FormatInt(userID, 10))
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u     model.User
		email sql.NullString
		ghID  sql.NullInt64
	)
	err := row.Scan(
		&u.ID,
		&email,
		&ghID,
		&u.PasswordHash,
		&u.Name,
		&u.Age,
		&u.Location,
		&u.PhotoURL,
		&u.CurrentRole,
		&u.SparkCount,
		&u.SparkResetAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	if ghID.Valid {
		id := ghID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nullString stores "" as NULL so optional UNIQUE columns don't collide.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
