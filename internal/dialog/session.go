package dialog

import (
	"fmt"
	"time"

	"github.com/agendazap/agendazap/internal/parser"
	"github.com/agendazap/agendazap/internal/schedule"
)

// Step is the conversation's current position. The zero value means no flow
// is in progress.
type Step string

const (
	StepNone                      Step = ""
	StepAwaitingDay               Step = "awaiting_day"
	StepAwaitingTime              Step = "awaiting_time"
	StepAwaitingConfirm           Step = "awaiting_confirm"
	StepAwaitingName              Step = "awaiting_name"
	StepAwaitingCancelSelect      Step = "awaiting_cancelar"
	StepAwaitingCancelConfirm     Step = "awaiting_cancel_confirm"
	StepAwaitingRescheduleSelect  Step = "awaiting_reagendamento"
	StepAwaitingRescheduleTime    Step = "awaiting_reagendamento_time"
	StepAwaitingRescheduleConfirm Step = "awaiting_reagendamento_confirm"
)

// Flow restricts which classified intents may act while a sub-flow runs.
type Flow string

const (
	FlowNone       Flow = ""
	FlowCancel     Flow = "cancelamento"
	FlowReschedule Flow = "reagendamento"
)

// stepTransitions is the closed set of legal step moves. Self-transitions are
// always allowed (re-prompts stay on the same step), and any step may return
// to StepNone when a flow completes or aborts.
var stepTransitions = map[Step][]Step{
	StepNone:                      {StepAwaitingDay, StepAwaitingCancelSelect, StepAwaitingRescheduleSelect},
	StepAwaitingDay:               {StepAwaitingTime},
	StepAwaitingTime:              {StepAwaitingConfirm},
	StepAwaitingConfirm:           {StepAwaitingName},
	StepAwaitingName:              {StepAwaitingConfirm},
	StepAwaitingCancelSelect:      {StepAwaitingCancelConfirm},
	StepAwaitingCancelConfirm:     {},
	StepAwaitingRescheduleSelect:  {StepAwaitingRescheduleTime},
	StepAwaitingRescheduleTime:    {StepAwaitingRescheduleConfirm},
	StepAwaitingRescheduleConfirm: {},
}

// ValidTransition reports whether moving from one step to another is legal.
func ValidTransition(from, to Step) bool {
	if from == to || to == StepNone {
		return true
	}
	for _, next := range stepTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is one user's in-flight conversation, persisted between messages.
type Session struct {
	Step Step `json:"step"`
	Flow Flow `json:"flow"`

	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
	Phone      string `json:"phone"`

	ServiceID int64  `json:"service_id,omitempty"`
	Service   string `json:"service,omitempty"`

	Window     schedule.DayWindow `json:"window,omitempty"`
	DayIndex   int                `json:"day_index"`
	ListedDays []string           `json:"listed_days,omitempty"`
	ChosenDay  string             `json:"chosen_day,omitempty"`
	ChosenTime string             `json:"chosen_time,omitempty"`

	Candidates    []parser.Candidate `json:"candidates,omitempty"`
	TargetID      int64              `json:"target_id,omitempty"`
	TargetEventID string             `json:"target_event_id,omitempty"`
	CurrentWhen   time.Time          `json:"current_when,omitempty"`

	NewDay   string   `json:"new_day,omitempty"`
	NewTimes []string `json:"new_times,omitempty"`
	NewWhen  string   `json:"new_when,omitempty"`

	// ClassifierContext is replayed to the intent classifier on the next turn
	// to keep the agent's conversation context alive.
	ClassifierContext string `json:"classifier_context,omitempty"`
}

// Advance moves the session to the given step, rejecting moves outside the
// transition table.
func (s *Session) Advance(to Step) error {
	if !ValidTransition(s.Step, to) {
		return fmt.Errorf("dialog: illegal step transition %q -> %q", s.Step, to)
	}
	s.Step = to
	return nil
}

// listedDays returns the window page currently shown to the user. The stored
// list wins when present so a selection keeps matching what the user saw.
func (s *Session) listedDays() []string {
	if len(s.ListedDays) > 0 {
		return s.ListedDays
	}
	return pageOf(s.Window.Dates, s.DayIndex)
}

// relistDays refreshes the stored page after the index moves.
func (s *Session) relistDays() {
	s.ListedDays = pageOf(s.Window.Dates, s.DayIndex)
}

const daysPerPage = 6

func pageOf(dates []string, start int) []string {
	if start >= len(dates) {
		return nil
	}
	end := start + daysPerPage
	if end > len(dates) {
		end = len(dates)
	}
	return dates[start:end]
}
