package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/sparko/internal/apperror"
	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

const profileColumns = `p.id, p.user_id, p.role, p.title, p.company, p.tagline, p.bio,
	p.skills, p.details, p.is_complete, p.completion_percentage, p.created_at, p.updated_at`

// GetProfile returns the profile a user holds for role.
func (db *DB) GetProfile(ctx context.Context, userID int64, role model.Role) (*model.Profile, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles p WHERE p.user_id = ? AND p.role = ?`,
		userID, role,
	)
	p, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(string(role)+" profile of user", strconv.FormatInt(userID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting %s profile of user %d: %w", role, userID, err)
	}
	return p, nil
}

// EnsureProfile lazily creates an empty profile. INSERT ... ON CONFLICT DO
// NOTHING makes concurrent first accesses safe: whoever loses the race just
// reads the row the winner wrote.
func (db *DB) EnsureProfile(ctx context.Context, userID int64, role model.Role) (*model.Profile, error) {
	p := model.NewProfile(userID, role)
	skills, details, err := encodeProfile(p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (user_id, role, skills, details, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, role, skills, details, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ensuring %s profile of user %d: %w", role, userID, err)
	}
	return db.GetProfile(ctx, userID, role)
}

// SaveProfile writes the full role record, creating it if necessary.
// IsComplete and CompletionPercentage are stored as given; computing them is
// the caller's job.
func (db *DB) SaveProfile(ctx context.Context, p *model.Profile) error {
	skills, details, err := encodeProfile(p)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (user_id, role, title, company, tagline, bio, skills, details,
			is_complete, completion_percentage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, role) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			tagline = excluded.tagline,
			bio = excluded.bio,
			skills = excluded.skills,
			details = excluded.details,
			is_complete = excluded.is_complete,
			completion_percentage = excluded.completion_percentage,
			updated_at = excluded.updated_at`,
		p.UserID, p.Role, p.Title, p.Company, p.Tagline, p.Bio, skills, details,
		p.IsComplete, p.CompletionPercentage, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving %s profile of user %d: %w", p.Role, p.UserID, err)
	}

	// Read back the identity of the row; on update it predates this call.
	stored, err := db.GetProfile(ctx, p.UserID, p.Role)
	if err != nil {
		return err
	}
	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	return nil
}

// ListProfiles returns every profile a user has, in role order of creation.
func (db *DB) ListProfiles(ctx context.Context, userID int64) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles p WHERE p.user_id = ? ORDER BY p.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles of user %d: %w", userID, err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}
	return profiles, nil
}

// scanProfile reads the profileColumns, plus any extra destinations the
// caller appends after them.
func scanProfile(row rowScanner, extra ...any) (*model.Profile, error) {
	var (
		p       model.Profile
		skills  string
		details string
	)
	dest := []any{
		&p.ID, &p.UserID, &p.Role, &p.Title, &p.Company, &p.Tagline, &p.Bio,
		&skills, &details, &p.IsComplete, &p.CompletionPercentage, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := decodeProfile(&p, skills, details); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeProfile(p *model.Profile) (skills, details string, err error) {
	s := p.Skills
	if s == nil {
		s = []string{}
	}
	sb, err := json.Marshal(s)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding skills: %w", err)
	}

	d := p.Details()
	if d == nil {
		return "", "", apperror.InvalidRole(string(p.Role))
	}
	dj, err := json.Marshal(d)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding %s details: %w", p.Role, err)
	}
	return string(sb), string(dj), nil
}

func decodeProfile(p *model.Profile, skills, details string) error {
	if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
		return fmt.Errorf("sqlite: decoding skills of profile %d: %w", p.ID, err)
	}

	fresh := model.NewProfile(p.UserID, p.Role)
	p.Entrepreneur, p.Investor, p.Partner = fresh.Entrepreneur, fresh.Investor, fresh.Partner
	target := p.Details()
	if target == nil {
		return fmt.Errorf("sqlite: profile %d has unknown role %q", p.ID, p.Role)
	}
	if err := json.Unmarshal([]byte(details), target); err != nil {
		return fmt.Errorf("sqlite: decoding details of profile %d: %w", p.ID, err)
	}
	return nil
}
