package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultErrorMsg is the fixed guidance returned for unparseable day choices.
const DefaultErrorMsg = "Desculpe, não entendi. Por favor, responda com o nome do dia, a data (ex: 20/06) ou digite 'Ver mais dias' para mais opções."

// ChoiceKind discriminates the outcomes of ParseDayChoice.
type ChoiceKind int

const (
	KindInvalid ChoiceKind = iota
	KindShowMore
	KindDate
	KindWeekday
)

// DayChoice is the structured reading of a free-text day phrase.
type DayChoice struct {
	Kind    ChoiceKind
	Date    string       // ISO date, when Kind == KindDate
	Weekday time.Weekday // when Kind == KindWeekday
	Next    bool         // "próxima segunda": skip this week's occurrence
	Message string       // guidance, when Kind == KindInvalid
}

// WeekdayNames are the Portuguese weekday names indexed by time.Weekday.
var WeekdayNames = [7]string{
	"domingo",
	"segunda",
	"terça",
	"quarta",
	"quinta",
	"sexta",
	"sábado",
}

var (
	nextWeekdayPattern = regexp.MustCompile(`^proxim[oa]?\s+(\S+)`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
)

// RemoveAccents strips combining diacritical marks so "sábado" and "sabado"
// compare equal.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ParseDayChoice reads a free-text day phrase. now must already be in the
// scheduling timezone; "hoje" and "amanhã" resolve against it. Rules apply in
// priority order: show-more phrase, today/tomorrow, "próxima <weekday>",
// dd/mm[/yyyy], bare weekday name, otherwise invalid.
func ParseDayChoice(input string, now time.Time) DayChoice {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return DayChoice{Kind: KindInvalid, Message: DefaultErrorMsg}
	}
	normText := RemoveAccents(text)

	if text == "ver mais dias" {
		return DayChoice{Kind: KindShowMore}
	}

	if text == "hoje" {
		return DayChoice{Kind: KindDate, Date: now.Format("2006-01-02")}
	}
	if normText == "amanha" {
		return DayChoice{Kind: KindDate, Date: now.AddDate(0, 0, 1).Format("2006-01-02")}
	}

	if m := nextWeekdayPattern.FindStringSubmatch(normText); m != nil {
		if wd, ok := matchWeekday(m[1]); ok {
			return DayChoice{Kind: KindWeekday, Weekday: wd, Next: true}
		}
	}

	if m := numericDatePattern.FindStringSubmatch(normText); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return DayChoice{Kind: KindDate, Date: fmt.Sprintf("%04d-%02d-%02d", year, month, day)}
	}

	if wd, ok := matchWeekday(normText); ok {
		return DayChoice{Kind: KindWeekday, Weekday: wd}
	}

	return DayChoice{Kind: KindInvalid, Message: DefaultErrorMsg}
}

// matchWeekday resolves an accent-stripped prefix against the weekday names.
func matchWeekday(word string) (time.Weekday, bool) {
	if word == "" {
		return 0, false
	}
	for i, name := range WeekdayNames {
		if strings.HasPrefix(RemoveAccents(name), word) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}
