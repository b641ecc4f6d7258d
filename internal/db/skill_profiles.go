package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/resume-screener/internal/profiles"
)

const foreignKeyViolation = "23503"

const profileColumns = `user_id, user_email, skills, best_score, last_updated, version`

func scanProfile(row pgx.Row) (*profiles.SkillProfile, error) {
	var p profiles.SkillProfile
	if err := row.Scan(&p.UserID, &p.UserEmail, &p.Skills, &p.BestScore, &p.LastUpdated, &p.Version); err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

// Get retrieves the skill profile for userID, returning nil when absent.
func (db *DB) Get(ctx context.Context, userID uuid.UUID) (*profiles.SkillProfile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM skill_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get skill profile: %w", err)
	}
	return p, nil
}

// PutAtomic writes profile with compare-and-set on its version.
func (db *DB) PutAtomic(ctx context.Context, profile *profiles.SkillProfile) error {
	if profile.Version == 0 {
		return db.insertProfile(ctx, profile)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE skill_profiles
		 SET skills = $1, best_score = $2, last_updated = $3, version = version + 1
		 WHERE user_id = $4 AND version = $5`,
		profile.Skills, profile.BestScore, profile.LastUpdated, profile.UserID, profile.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update skill profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return profiles.ErrConflict
	}
	profile.Version++
	return nil
}

func (db *DB) insertProfile(ctx context.Context, profile *profiles.SkillProfile) error {
	result, err := db.pool.Exec(ctx,
		`INSERT INTO skill_profiles (user_id, user_email, skills, best_score, last_updated, version)
		 VALUES ($1, $2, $3, $4, $5, 1)
		 ON CONFLICT (user_id) DO NOTHING`,
		profile.UserID, profile.UserEmail, profile.Skills, profile.BestScore, profile.LastUpdated,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return &profiles.NotFoundError{Kind: "user", ID: profile.UserID.String()}
		}
		return fmt.Errorf("failed to insert skill profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return profiles.ErrConflict
	}
	profile.Version = 1
	return nil
}

// ListAll streams every skill profile ordered by user ID.
func (db *DB) ListAll(ctx context.Context, fn func(profiles.SkillProfile) error) error {
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM skill_profiles ORDER BY user_id`)
	if err != nil {
		return fmt.Errorf("failed to list skill profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return fmt.Errorf("failed to scan skill profile: %w", err)
		}
		if err := fn(*p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate skill profiles: %w", err)
	}
	return nil
}

// CountProfiles returns the number of stored skill profiles.
func (db *DB) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM skill_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count skill profiles: %w", err)
	}
	return n, nil
}

var (
	_ profiles.Store         = (*DB)(nil)
	_ profiles.UserDirectory = (*DB)(nil)
)
