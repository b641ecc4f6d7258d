package profiles

import (
	"bytes"
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Search ranks every profile sharing at least one skill with querySkills.
// Matched skills keep query order. Results are sorted by match count, then
// best score, then user ID. An empty result is not an error.
func (s *Service) Search(ctx context.Context, querySkills []string) ([]CandidateMatch, error) {
	start := s.now()

	query := NormalizeSkills(querySkills)
	if len(query) == 0 {
		s.observeSearch(OutcomeInvalid, 0, start)
		return nil, &ValidationError{Field: "skills", Message: "at least one skill is required"}
	}

	cached, gen, hit, usable := s.cachedResult(ctx, query)
	if hit {
		s.observeSearch(OutcomeOK, len(cached), start)
		return cached, nil
	}

	var candidates []CandidateMatch
	err := s.store.ListAll(ctx, func(p SkillProfile) error {
		matched := matchSkills(query, p.skillSet())
		if len(matched) == 0 {
			return nil
		}
		candidates = append(candidates, CandidateMatch{
			UserID:             p.UserID,
			UserEmail:          p.UserEmail,
			MatchedSkills:      matched,
			MatchedSkillsCount: len(matched),
			HighestATSScore:    p.BestScore,
			LastUpdated:        p.LastUpdated,
		})
		return nil
	})
	if err != nil {
		s.observeSearch(OutcomeStorageErr, 0, start)
		return nil, &StorageError{Op: "list profiles", Err: err}
	}

	results, err := s.resolveNames(ctx, candidates)
	if err != nil {
		s.observeSearch(OutcomeStorageErr, 0, start)
		return nil, err
	}

	RankCandidates(results)

	if usable {
		if err := s.cache.Put(ctx, gen, query, results); err != nil {
			s.logger.Warn("failed to cache search result", zap.Error(err))
		}
	}

	s.observeSearch(OutcomeOK, len(results), start)
	return results, nil
}

// RankCandidates orders matches by count desc, best score desc, user ID asc.
func RankCandidates(matches []CandidateMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.MatchedSkillsCount != b.MatchedSkillsCount {
			return a.MatchedSkillsCount > b.MatchedSkillsCount
		}
		if a.HighestATSScore != b.HighestATSScore {
			return a.HighestATSScore > b.HighestATSScore
		}
		return bytes.Compare(a.UserID[:], b.UserID[:]) < 0
	})
}

// matchSkills walks the query and keeps entries present in the profile.
func matchSkills(query []string, profile map[string]struct{}) []string {
	var matched []string
	for _, q := range query {
		if _, ok := profile[q]; ok {
			matched = append(matched, q)
		}
	}
	return matched
}

// resolveNames fills UserName for every candidate, dropping directory misses.
func (s *Service) resolveNames(ctx context.Context, candidates []CandidateMatch) ([]CandidateMatch, error) {
	found := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i := range candidates {
		g.Go(func() error {
			name, err := s.directory.LookupUserName(gctx, candidates[i].UserID)
			if err != nil {
				if IsNotFound(err) {
					s.logger.Debug("skipping candidate without user record",
						zap.String("user_id", candidates[i].UserID.String()))
					return nil
				}
				return &StorageError{Op: "lookup user name", Err: err}
			}
			candidates[i].UserName = name
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]CandidateMatch, 0, len(candidates))
	for i, c := range candidates {
		if found[i] {
			results = append(results, c)
		}
	}
	return results, nil
}

// cachedResult looks the query up in the cache. usable is false when there is
// no cache, the read failed, or a failed invalidation has not been repaired;
// the caller must not Put in that case.
func (s *Service) cachedResult(ctx context.Context, query []string) (cached []CandidateMatch, gen int64, hit, usable bool) {
	if s.cache == nil {
		return nil, 0, false, false
	}
	if s.cacheStale.Load() {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Debug("search cache still unavailable", zap.Error(err))
			return nil, 0, false, false
		}
		s.cacheStale.Store(false)
	}
	cached, gen, hit, err := s.cache.Get(ctx, query)
	if err != nil {
		s.logger.Warn("search cache read failed", zap.Error(err))
		return nil, 0, false, false
	}
	return cached, gen, hit, true
}
