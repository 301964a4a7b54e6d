package dialog

import (
	"fmt"
	"strings"
	"time"

	"github.com/agendazap/agendazap/internal/parser"
)

// weekdayFullNames are the long Portuguese weekday names indexed by
// time.Weekday, used when listing days to the user.
var weekdayFullNames = [7]string{
	"domingo",
	"segunda-feira",
	"terça-feira",
	"quarta-feira",
	"quinta-feira",
	"sexta-feira",
	"sábado",
}

// Service is one bookable catalog entry.
type Service struct {
	ID   int64
	Name string
}

// catalog maps the normalized service utterance to its catalog entry.
var catalog = map[string]Service{
	"corte":       {ID: 1, Name: "Corte"},
	"barba":       {ID: 2, Name: "Barba"},
	"barba+corte": {ID: 3, Name: "Corte + Barba"},
	"corte+barba": {ID: 3, Name: "Corte + Barba"},
}

// NormalizeService resolves a free-text service mention ("Corte", "barba e
// corte", "Corte + Barba") to a catalog entry.
func NormalizeService(name string) (Service, bool) {
	key := parser.RemoveAccents(strings.ToLower(strings.TrimSpace(name)))
	key = strings.ReplaceAll(key, " e ", "+")
	key = strings.ReplaceAll(key, " ", "")
	svc, ok := catalog[key]
	return svc, ok
}

// formatDayBR renders an ISO date as "Sábado (20/06/2026)".
func formatDayBR(date string, tz *time.Location) string {
	day, err := time.ParseInLocation("2006-01-02", date, tz)
	if err != nil {
		return date
	}
	name := weekdayFullNames[day.Weekday()]
	return fmt.Sprintf("%s (%s)", capitalize(name), day.Format("02/01/2006"))
}

// renderDayList renders one page of the day window as a bulleted list.
func renderDayList(dates []string, start int, tz *time.Location) string {
	page := pageOf(dates, start)
	lines := make([]string, 0, len(page))
	for _, d := range page {
		lines = append(lines, "- "+formatDayBR(d, tz))
	}
	return strings.Join(lines, "\n")
}

// renderTimeList renders times as a numbered list so users can answer with
// the index.
func renderTimeList(times []string) string {
	lines := make([]string, 0, len(times))
	for i, h := range times {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, h))
	}
	return strings.Join(lines, "\n")
}

// renderCandidateList renders selectable appointments as a numbered list.
func renderCandidateList(candidates []parser.Candidate) string {
	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, parser.Describe(c)))
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
