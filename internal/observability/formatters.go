// Package observability formats search results and profiles for terminal
// output in the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-screener/internal/profiles"
)

const (
	// boxWidth is the width of a printed box, borders included
	boxWidth = 60
	// maxItemsToShow caps how many candidates a box lists
	maxItemsToShow = 10
)

// Printer writes boxed, human-readable summaries.
type Printer struct {
	out      io.Writer
	maxItems int
}

// NewPrinter creates a Printer that writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, maxItems: maxItemsToShow}
}

// WithMaxItems returns a copy of p listing at most n candidates; n <= 0 lists all.
func (p *Printer) WithMaxItems(n int) *Printer {
	cp := *p
	cp.maxItems = n
	return &cp
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

//nolint:errcheck // terminal output; nothing to recover
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, clip(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", inner, clip(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidates prints ranked search results for query.
func (p *Printer) PrintCandidates(query []string, matches []profiles.CandidateMatch) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", strings.Join(query, ", "))

	if len(matches) == 0 {
		sb.WriteString("\nNo candidates matched.")
		p.printBox("CANDIDATES", sb.String())
		return
	}
	fmt.Fprintf(&sb, "Matched candidates: %d\n", len(matches))

	count := len(matches)
	if p.maxItems > 0 {
		count = min(count, p.maxItems)
	}
	for i := 0; i < count; i++ {
		m := matches[i]
		fmt.Fprintf(&sb, "\n#%d  %s <%s>\n", i+1, m.UserName, m.UserEmail)
		fmt.Fprintf(&sb, "    Matched %d/%d: %s\n", m.MatchedSkillsCount, len(query), strings.Join(m.MatchedSkills, ", "))
		fmt.Fprintf(&sb, "    Best ATS score: %.1f  Updated: %s", m.HighestATSScore, formatTime(m.LastUpdated))
	}
	if len(matches) > count {
		fmt.Fprintf(&sb, "\n\n... and %d more", len(matches)-count)
	}

	p.printBox("CANDIDATES", sb.String())
}

// PrintProfile prints one user's accumulated skill profile.
func (p *Printer) PrintProfile(profile *profiles.SkillProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User:     %s\n", profile.UserEmail)
	fmt.Fprintf(&sb, "Best ATS: %.1f\n", profile.BestScore)
	fmt.Fprintf(&sb, "Updated:  %s\n", formatTime(profile.LastUpdated))
	fmt.Fprintf(&sb, "\nSkills (%d):", len(profile.Skills))

	// wrap skills to the box width
	line := ""
	for _, skill := range profile.Skills {
		next := skill
		if line != "" {
			next = line + ", " + skill
		}
		if len([]rune(next)) > boxWidth-6 && line != "" {
			sb.WriteString("\n  " + line + ",")
			next = skill
		}
		line = next
	}
	if line != "" {
		sb.WriteString("\n  " + line)
	}

	p.printBox("SKILL PROFILE", sb.String())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
