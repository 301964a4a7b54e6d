package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Candidate is one appointment offered for selection (cancel/reschedule).
type Candidate struct {
	ID      int64
	EventID string
	Service string
	When    time.Time
}

// Describe renders a candidate the way it is listed to the user:
// "Corte em 20/06/2026 14:30".
func Describe(c Candidate) string {
	return fmt.Sprintf("%s em %s", c.Service, FormatDateTimeBR(c.When))
}

// FormatDateTimeBR renders an instant as dd/mm/yyyy HH:MM.
func FormatDateTimeBR(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// ParseSelection resolves a reply against a candidate list. A bare number is
// a 1-based index; otherwise the text must equal a candidate's description,
// with or without the "em" connective, accents ignored. Returns nil when
// nothing matches.
func ParseSelection(input string, candidates []Candidate) *Candidate {
	text := RemoveAccents(strings.ToLower(strings.TrimSpace(input)))
	if text == "" || len(candidates) == 0 {
		return nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(candidates) {
			return &candidates[n-1]
		}
		return nil
	}

	for i, c := range candidates {
		withEm := RemoveAccents(strings.ToLower(Describe(c)))
		withoutEm := RemoveAccents(strings.ToLower(
			fmt.Sprintf("%s %s", c.Service, FormatDateTimeBR(c.When)),
		))
		if text == withEm || text == withoutEm {
			return &candidates[i]
		}
	}
	return nil
}
