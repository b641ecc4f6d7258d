// Package profiles merges resume analysis results into per-user skill profiles
// and ranks candidate profiles against an admin's skill query.
package profiles

import (
	"time"

	"github.com/google/uuid"
)

// MinScore and MaxScore bound every ATS score accepted by Merge.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// SkillProfile is the accumulated skill set and best ATS score for one user.
type SkillProfile struct {
	UserID      uuid.UUID `json:"userId"`
	UserEmail   string    `json:"userEmail"`
	Skills      []string  `json:"skills"` // normalized, sorted, unique
	BestScore   float64   `json:"highestAtsScore"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     int64     `json:"-"`
}

// Clone returns a deep copy so callers never share the Skills backing array.
func (p *SkillProfile) Clone() *SkillProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	return &c
}

// skillSet returns the profile's skills as a lookup set.
func (p *SkillProfile) skillSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		set[s] = struct{}{}
	}
	return set
}

// CandidateMatch is one ranked search hit. It is never persisted.
type CandidateMatch struct {
	UserID             uuid.UUID `json:"userId"`
	UserName           string    `json:"userName"`
	UserEmail          string    `json:"userEmail"`
	MatchedSkills      []string  `json:"matchedSkills"`
	MatchedSkillsCount int       `json:"matchedSkillsCount"`
	HighestATSScore    float64   `json:"highestAtsScore"`
	LastUpdated        time.Time `json:"lastUpdated"`
}
