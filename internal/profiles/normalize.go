package profiles

import (
	"sort"
	"strings"
)

// NormalizeSkill lower-cases and trims a single skill.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// NormalizeSkills normalizes every entry, drops blanks and duplicates, and keeps
// first-occurrence order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, raw := range skills {
		s := NormalizeSkill(raw)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseSkillQuery splits a comma-separated admin query into normalized skills.
func ParseSkillQuery(query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return NormalizeSkills(strings.Split(query, ","))
}

// unionSkills returns the sorted set union of two normalized skill lists.
func unionSkills(existing, incoming []string) []string {
	set := make(map[string]struct{}, len(existing)+len(incoming))
	for _, s := range existing {
		set[s] = struct{}{}
	}
	for _, s := range incoming {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
