package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/repository"
)

var _ repository.DiscoveryRepository = (*DB)(nil)

// ListCandidates runs the discovery query.
//
// The NOT IN subquery is the "never show someone twice" rule: any user the
// requester already swiped on, in this exact role pairing, is excluded. A
// swipe made while wearing a different role does not hide the candidate.
func (db *DB) ListCandidates(ctx context.Context, q repository.CandidateQuery) ([]model.Candidate, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+`, u.name, u.age, u.location, u.photo_url
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.role = ?
		   AND p.is_complete = 1
		   AND p.user_id != ?
		   AND p.user_id NOT IN (
				SELECT s.swiped_id FROM swipes s
				WHERE s.swiper_id = ? AND s.swiper_role = ? AND s.swiped_role = ?
		   )
		 ORDER BY p.id
		 LIMIT ?`,
		q.TargetRole,
		q.UserID,
		q.UserID, q.SwiperRole, q.TargetRole,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing candidates for user %d: %w", q.UserID, err)
	}
	defer rows.Close()

	candidates := make([]model.Candidate, 0, limit)
	for rows.Next() {
		var u model.PublicUser
		p, err := scanProfile(rows, &u.Name, &u.Age, &u.Location, &u.PhotoURL)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning candidate row: %w", err)
		}
		u.ID = p.UserID
		u.Role = p.Role
		candidates = append(candidates, model.Candidate{User: u, Profile: *p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating candidates: %w", err)
	}
	return candidates, nil
}
