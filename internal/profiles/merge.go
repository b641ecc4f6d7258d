package profiles

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidateScore rejects NaN, infinities and values outside [MinScore, MaxScore].
func ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return &ValidationError{Field: "score", Message: "must be a finite number"}
	}
	if score < MinScore || score > MaxScore {
		return &ValidationError{Field: "score", Message: "must be between 0 and 100"}
	}
	return nil
}

// Merge folds one analysis result into the user's profile, creating it on the
// first call. Skills are unioned, the best score only ever rises, and
// LastUpdated is always refreshed.
func (s *Service) Merge(ctx context.Context, userID uuid.UUID, userEmail string, incomingSkills []string, incomingScore float64) (*SkillProfile, error) {
	start := s.now()

	if userID == uuid.Nil {
		s.observeMerge(OutcomeInvalid, start)
		return nil, &ValidationError{Field: "userId", Message: "is required"}
	}
	if err := ValidateScore(incomingScore); err != nil {
		s.observeMerge(OutcomeInvalid, start)
		return nil, err
	}

	skills := NormalizeSkills(incomingSkills)
	userEmail = strings.TrimSpace(userEmail)

	var lastErr error
	for attempt := 1; attempt <= MaxMergeAttempts; attempt++ {
		existing, err := s.store.Get(ctx, userID)
		if err != nil {
			s.observeMerge(OutcomeStorageErr, start)
			return nil, &StorageError{Op: "get profile", Err: err}
		}

		var next *SkillProfile
		outcome := OutcomeUpdated
		if existing == nil {
			if userEmail == "" {
				s.observeMerge(OutcomeInvalid, start)
				return nil, &ValidationError{Field: "userEmail", Message: "is required for a new profile"}
			}
			next = &SkillProfile{
				UserID:      userID,
				UserEmail:   userEmail,
				Skills:      unionSkills(nil, skills),
				BestScore:   incomingScore,
				LastUpdated: s.now().UTC(),
			}
			outcome = OutcomeCreated
		} else {
			next = existing.Clone()
			next.Skills = unionSkills(existing.Skills, skills)
			next.BestScore = math.Max(existing.BestScore, incomingScore)
			next.LastUpdated = s.now().UTC()
		}

		err = s.store.PutAtomic(ctx, next)
		if err == nil {
			s.invalidateCache(ctx)
			s.observeMerge(outcome, start)
			s.logger.Debug("merged skill profile",
				zap.String("user_id", userID.String()),
				zap.Int("skills", len(next.Skills)),
				zap.Float64("best_score", next.BestScore),
				zap.Int("attempt", attempt))
			return next, nil
		}
		if !errors.Is(err, ErrConflict) {
			s.observeMerge(OutcomeStorageErr, start)
			return nil, &StorageError{Op: "put profile", Err: err}
		}
		lastErr = err
		s.logger.Debug("profile merge conflict, retrying",
			zap.String("user_id", userID.String()),
			zap.Int("attempt", attempt))
	}

	s.observeMerge(OutcomeStorageErr, start)
	return nil, &StorageError{Op: "put profile", Err: lastErr}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cacheStale.Store(true)
		s.logger.Warn("failed to invalidate search cache, bypassing it", zap.Error(err))
	}
}
