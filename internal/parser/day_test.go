package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parserNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func TestParseDayChoice(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected DayChoice
	}{
		{"show more", "ver mais dias", DayChoice{Kind: KindShowMore}},
		{"today", "hoje", DayChoice{Kind: KindDate, Date: "2025-06-18"}},
		{"tomorrow accented", "amanhã", DayChoice{Kind: KindDate, Date: "2025-06-19"}},
		{"tomorrow plain", "amanha", DayChoice{Kind: KindDate, Date: "2025-06-19"}},
		{"full date", "12/10/2025", DayChoice{Kind: KindDate, Date: "2025-10-12"}},
		{"date defaults year", "05/07", DayChoice{Kind: KindDate, Date: "2025-07-05"}},
		{"single digit date", "5/7", DayChoice{Kind: KindDate, Date: "2025-07-05"}},
		{"weekday accented", "sábado", DayChoice{Kind: KindWeekday, Weekday: time.Saturday}},
		{"weekday plain", "sabado", DayChoice{Kind: KindWeekday, Weekday: time.Saturday}},
		{"weekday prefix", "seg", DayChoice{Kind: KindWeekday, Weekday: time.Monday}},
		{"next weekday", "próxima segunda", DayChoice{Kind: KindWeekday, Weekday: time.Monday, Next: true}},
		{"next weekday masculine", "proximo sabado", DayChoice{Kind: KindWeekday, Weekday: time.Saturday, Next: true}},
		{"sunday", "domingo", DayChoice{Kind: KindWeekday, Weekday: time.Sunday}},
		{"gibberish", "xyz", DayChoice{Kind: KindInvalid, Message: DefaultErrorMsg}},
		{"empty", "   ", DayChoice{Kind: KindInvalid, Message: DefaultErrorMsg}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseDayChoice(tc.input, parserNow))
		})
	}
}

func TestParseDayChoiceAccentInsensitive(t *testing.T) {
	require.Equal(t, ParseDayChoice("sábado", parserNow), ParseDayChoice("sabado", parserNow))
	require.Equal(t, ParseDayChoice("terça", parserNow), ParseDayChoice("terca", parserNow))
}

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "sabado", RemoveAccents("sábado"))
	assert.Equal(t, "amanha", RemoveAccents("amanhã"))
	assert.Equal(t, "Joao", RemoveAccents("João"))
}
