package dialog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agendazap/agendazap/internal/booking"
	"github.com/agendazap/agendazap/internal/clients"
	"github.com/agendazap/agendazap/internal/parser"
	"github.com/agendazap/agendazap/internal/schedule"
)

// Classifier context names replayed between turns so the agent keeps
// slot-filling within the active flow.
const (
	ctxBookingAwaitingDay     = "agendamento_awaiting_data"
	ctxBookingAwaitingTime    = "agendamento_awaiting_time"
	ctxBookingAwaitingConfirm = "aguardando_confirmacao_agendamento"
	ctxRescheduleAwaitingDay  = "reagendamento_awaiting_datahora"
	ctxRescheduleDaySelected  = "reagendamento_datahora_selected"
	ctxRescheduleConfirm      = "aguardando_confirmacao_reagendamento"
)

var looseTimePattern = regexp.MustCompile(`\b(\d{1,2})(?:h|:(\d{2}))?`)

func handleWelcome(ctx context.Context, r *Router, t *turn) (string, error) {
	t.clear = true
	return MsgWelcome, nil
}

// handleChooseService starts a fresh booking: records the service and lists
// the first page of available days.
func handleChooseService(ctx context.Context, r *Router, t *turn) (string, error) {
	if !t.params.Service.Present {
		return MsgServiceNotUnderstood, nil
	}
	svc, ok := NormalizeService(t.params.Service.Value)
	if !ok {
		return serviceNotRecognized(t.params.Service.Value), nil
	}

	window, err := r.schedule.AvailableDaysWindow(ctx, r.daysWindow)
	if err != nil {
		return "", err
	}
	if len(window.Dates) == 0 {
		t.clear = true
		return MsgNoSlots, nil
	}

	old := t.sess
	t.sess = &Session{
		Step:              StepAwaitingDay,
		ClientID:          old.ClientID,
		ClientName:        old.ClientName,
		Phone:             old.Phone,
		Service:           svc.Name,
		ServiceID:         svc.ID,
		Window:            window,
		ClassifierContext: ctxBookingAwaitingDay,
	}
	t.sess.relistDays()

	r.logger.WithSession(t.from).Info("service chosen", "service", svc.Name)
	list := renderDayList(window.Dates, 0, r.schedule.Timezone())
	return "Perfeito! Escolha um dia (segunda a sábado).\n" + list, nil
}

// handleChooseDateTime advances the booking through day and time selection.
func handleChooseDateTime(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Service == "" {
		return MsgChooseServiceFirst, nil
	}
	switch s.Step {
	case StepAwaitingRescheduleTime:
		return handleRescheduleDateTime(ctx, r, t)
	case StepAwaitingDay:
		return r.chooseBookingDay(ctx, t)
	case StepAwaitingTime:
		return r.chooseBookingTime(ctx, t)
	}
	return MsgNoBookingInProgress, nil
}

func (r *Router) chooseBookingDay(ctx context.Context, t *turn) (string, error) {
	s := t.sess
	s.ClassifierContext = ctxBookingAwaitingDay
	tz := r.schedule.Timezone()
	listed := s.listedDays()

	chosen := ""
	if date, ok := paramDate(t); ok {
		chosen = date
	} else {
		choice := parser.ParseDayChoice(t.lower, r.now().In(tz))
		switch choice.Kind {
		case parser.KindShowMore:
			s.DayIndex += daysPerPage
			s.relistDays()
			return "Mais opções de dias:\n" + renderDayList(s.Window.Dates, s.DayIndex, tz), nil
		case parser.KindWeekday:
			if choice.Weekday == schedule.ClosedWeekday {
				s.relistDays()
				return MsgSundayNotAllowed + "\nEscolha um dia disponível:\n" +
					renderDayList(s.Window.Dates, s.DayIndex, tz), nil
			}
			chosen = pickWeekday(listed, choice.Weekday, choice.Next, tz)
		case parser.KindDate:
			if wd, ok := weekdayOf(choice.Date, tz); ok && wd == schedule.ClosedWeekday {
				return MsgSundayNotAllowed + "\nEscolha um dia disponível:\n" +
					renderDayList(s.Window.Dates, s.DayIndex, tz), nil
			}
			if containsString(listed, choice.Date) {
				chosen = choice.Date
			}
		}
	}

	if chosen == "" || !containsString(listed, chosen) {
		ref := chosen
		if ref == "" && len(listed) > 0 {
			ref = listed[0]
		}
		suggestion := r.nearestSuggestion(ctx, t.from, ref+"T00:00:00")
		s.relistDays()
		return "Dia inválido." + suggestion + "\nEscolha um destes:\n" +
			renderDayList(s.Window.Dates, s.DayIndex, tz), nil
	}
	if wd, ok := weekdayOf(chosen, tz); ok && wd == schedule.ClosedWeekday {
		s.relistDays()
		return MsgSundayNotAllowed + "\nEscolha um dia disponível:\n" +
			renderDayList(s.Window.Dates, s.DayIndex, tz), nil
	}

	s.ChosenDay = chosen
	if err := s.Advance(StepAwaitingTime); err != nil {
		return "", err
	}
	s.ClassifierContext = ctxBookingAwaitingTime

	times := renderTimeList(s.Window.Times[chosen])
	return fmt.Sprintf("Ótimo! Horários disponíveis para %s:\n%s", formatDayBR(chosen, tz), times), nil
}

func (r *Router) chooseBookingTime(ctx context.Context, t *turn) (string, error) {
	s := t.sess
	s.ClassifierContext = ctxBookingAwaitingTime
	tz := r.schedule.Timezone()
	times := s.Window.Times[s.ChosenDay]

	hour := r.resolveTime(t, times, s.ChosenDay, true)
	if hour == "" || !containsString(times, hour) {
		ref := hour
		if ref == "" {
			ref = "00:00"
		}
		suggestion := r.nearestSuggestion(ctx, t.from, s.ChosenDay+"T"+ref+":00")
		return "Horário inválido." + suggestion + "\nEscolha um dos seguintes:\n" + renderTimeList(times), nil
	}

	s.ChosenTime = hour
	if err := s.Advance(StepAwaitingConfirm); err != nil {
		return "", err
	}
	s.ClassifierContext = ctxBookingAwaitingConfirm

	summary := formatWhenBR(s.ChosenDay, hour, tz)
	return fmt.Sprintf("Confirmar agendamento de *%s* em *%s* para *%s*?", s.Service, summary, s.ClientName), nil
}

// handleProvideName collects a display name mid-booking and returns to the
// confirmation step.
func handleProvideName(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingName {
		t.clear = true
		return MsgNotAwaitingName, nil
	}
	name := strings.TrimSpace(t.text)
	if utf8.RuneCountInString(name) < 2 {
		return MsgInvalidName, nil
	}
	client, err := r.clients.Rename(ctx, s.ClientID, name)
	if err != nil {
		if errors.Is(err, clients.ErrInvalidName) {
			return MsgInvalidName, nil
		}
		r.logger.WithSession(t.from).Error("rename failed", "error", err)
		return MsgErrorRenaming, nil
	}
	s.ClientName = client.Name
	if err := s.Advance(StepAwaitingConfirm); err != nil {
		return "", err
	}
	s.ClassifierContext = ctxBookingAwaitingConfirm
	return fmt.Sprintf("Nome atualizado para *%s*. Confirma o agendamento?", client.Name), nil
}

// handleConfirmBooking runs the booking transaction once the user confirms.
func handleConfirmBooking(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingConfirm || s.ClientID == 0 {
		return MsgBookingNotConfirmed, nil
	}
	if !isAffirmative(t.lower) {
		t.clear = true
		return MsgBookingNotConfirmed, nil
	}
	if !clients.ValidName(s.ClientName) {
		if err := s.Advance(StepAwaitingName); err != nil {
			return "", err
		}
		return MsgInvalidName, nil
	}

	when := s.ChosenDay + "T" + s.ChosenTime + ":00"
	_, err := r.booking.Book(ctx, booking.BookRequest{
		ClientID:   s.ClientID,
		ClientName: s.ClientName,
		Services:   []string{s.Service},
		When:       when,
	})
	t.clear = true
	if err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			return MsgSlotTaken, nil
		}
		if v, ok := booking.AsValidation(err); ok {
			return v.Message, nil
		}
		r.logger.WithSession(t.from).Error("booking failed", "error", err)
		return MsgErrorBooking, nil
	}

	summary := formatWhenBR(s.ChosenDay, s.ChosenTime, r.schedule.Timezone())
	return fmt.Sprintf(
		"✅ Agendamento confirmado para *%s* em *%s* no nome de *%s*."+
			" Se precisar reagendar ou cancelar, responda 'Reagendar' ou 'Cancelar'.",
		s.Service, summary, s.ClientName,
	), nil
}

// handleCancelStart lists the active appointments and opens the cancel flow.
func handleCancelStart(ctx context.Context, r *Router, t *turn) (string, error) {
	candidates, reply, err := r.loadCandidates(ctx, t)
	if err != nil || reply != "" {
		return reply, err
	}
	if len(candidates) == 0 {
		t.clear = true
		return MsgNothingToCancel, nil
	}

	old := t.sess
	t.sess = &Session{
		Step:       StepAwaitingCancelSelect,
		Flow:       FlowCancel,
		ClientID:   old.ClientID,
		ClientName: old.ClientName,
		Phone:      old.Phone,
		Candidates: candidates,
	}
	return "Qual agendamento deseja cancelar?\n" + renderCandidateList(candidates), nil
}

func handleSelectCancellation(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingCancelSelect {
		return MsgNoCancelRunning, nil
	}
	c := parser.ParseSelection(t.lower, s.Candidates)
	if c == nil {
		return MsgNoCancelRunning, nil
	}
	s.TargetID = c.ID
	s.TargetEventID = c.EventID
	s.Service = c.Service
	s.CurrentWhen = c.When
	if err := s.Advance(StepAwaitingCancelConfirm); err != nil {
		return "", err
	}
	return fmt.Sprintf("Confirma o cancelamento de %s em %s?", c.Service, parser.FormatDateTimeBR(c.When)), nil
}

func handleConfirmCancellation(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingCancelConfirm {
		return MsgNoCancelRunning, nil
	}
	if !isAffirmative(t.lower) {
		t.clear = true
		return MsgCancelNotConfirmed, nil
	}

	err := r.booking.Cancel(ctx, booking.CancelRequest{
		AppointmentID: s.TargetID,
		EventID:       s.TargetEventID,
		ClientID:      s.ClientID,
	})
	t.clear = true
	if err != nil {
		r.logger.WithSession(t.from).Error("cancellation failed", "error", err)
		return MsgErrorCancelling, nil
	}
	return "✅ Agendamento cancelado com sucesso!", nil
}

// handleRescheduleStart lists the active appointments and opens the
// reschedule flow.
func handleRescheduleStart(ctx context.Context, r *Router, t *turn) (string, error) {
	candidates, reply, err := r.loadCandidates(ctx, t)
	if err != nil || reply != "" {
		return reply, err
	}
	if len(candidates) == 0 {
		t.clear = true
		return MsgNothingToReschedule, nil
	}

	old := t.sess
	t.sess = &Session{
		Step:              StepAwaitingRescheduleSelect,
		Flow:              FlowReschedule,
		ClientID:          old.ClientID,
		ClientName:        old.ClientName,
		Phone:             old.Phone,
		Candidates:        candidates,
		ClassifierContext: ctxRescheduleAwaitingDay,
	}
	r.logger.WithSession(t.from).Info("reschedule flow opened", "candidates", len(candidates))
	return "Qual deseja reagendar?\n" + renderCandidateList(candidates), nil
}

func handleConfirmRescheduleStart(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingRescheduleSelect {
		return MsgNoRescheduleRunning, nil
	}
	c := parser.ParseSelection(t.lower, s.Candidates)
	if c == nil {
		return "Opção inválida. Escolha um dos agendamentos abaixo:\n" + renderCandidateList(s.Candidates), nil
	}

	window, err := r.schedule.AvailableDaysWindow(ctx, r.daysWindow)
	if err != nil {
		return "", err
	}
	s.TargetID = c.ID
	s.TargetEventID = c.EventID
	s.Service = c.Service
	s.CurrentWhen = c.When
	s.Window = window
	s.DayIndex = 0
	s.relistDays()
	s.NewDay = ""
	s.NewTimes = nil
	if err := s.Advance(StepAwaitingRescheduleTime); err != nil {
		return "", err
	}
	s.ClassifierContext = ctxRescheduleDaySelected

	r.logger.WithSession(t.from).Info("reschedule target selected", "appointment_id", c.ID)
	return fmt.Sprintf(
		"Você está reagendando %s em %s.\nPara qual dia deseja remarcar?\n%s",
		c.Service, parser.FormatDateTimeBR(c.When), renderDayList(window.Dates, 0, r.schedule.Timezone()),
	), nil
}

// handleRescheduleDateTime runs the two internal phases of the reschedule
// time step: first the day, then the time.
func handleRescheduleDateTime(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingRescheduleTime {
		return MsgNoRescheduleRunning, nil
	}
	if s.NewDay == "" {
		return r.chooseRescheduleDay(ctx, t)
	}
	return r.chooseRescheduleTime(ctx, t)
}

func (r *Router) chooseRescheduleDay(ctx context.Context, t *turn) (string, error) {
	s := t.sess
	s.ClassifierContext = ctxRescheduleDaySelected
	tz := r.schedule.Timezone()
	listed := s.listedDays()

	chosen := ""
	if date, ok := paramDate(t); ok {
		chosen = date
	} else if t.params.Weekday.Present {
		if wd, ok := matchWeekdayName(t.params.Weekday.Value); ok {
			chosen = pickWeekday(listed, wd, false, tz)
		}
	} else {
		choice := parser.ParseDayChoice(t.lower, r.now().In(tz))
		switch choice.Kind {
		case parser.KindShowMore:
			s.DayIndex += daysPerPage
			s.relistDays()
			return "Mais opções de dias:\n" + renderDayList(s.Window.Dates, s.DayIndex, tz), nil
		case parser.KindWeekday:
			chosen = pickWeekday(listed, choice.Weekday, choice.Next, tz)
		case parser.KindDate:
			if containsString(listed, choice.Date) {
				chosen = choice.Date
			}
		}
	}

	if chosen == "" || !containsString(listed, chosen) {
		s.relistDays()
		return "Dia inválido. Escolha um destes:\n" + renderDayList(s.Window.Dates, s.DayIndex, tz), nil
	}

	times, err := r.schedule.AvailableSlots(ctx, chosen)
	if err != nil {
		return "", err
	}
	if len(times) == 0 {
		return MsgNoSlots, nil
	}
	s.NewDay = chosen
	s.NewTimes = times
	return fmt.Sprintf("Horários disponíveis para %s:\n%s", formatDayBR(chosen, tz), renderTimeList(times)), nil
}

func (r *Router) chooseRescheduleTime(ctx context.Context, t *turn) (string, error) {
	s := t.sess
	s.ClassifierContext = ctxRescheduleDaySelected

	hour := r.resolveTime(t, s.NewTimes, s.NewDay, false)
	if hour == "" || !containsString(s.NewTimes, hour) {
		return "Horário inválido. Escolha um dos seguintes:\n" + renderTimeList(s.NewTimes), nil
	}

	s.NewWhen = s.NewDay + "T" + hour + ":00"
	if err := s.Advance(StepAwaitingRescheduleConfirm); err != nil {
		return "", err
	}
	s.ClassifierContext = ctxRescheduleConfirm
	return fmt.Sprintf("Confirma reagendar %s para %s?", s.Service, formatWhenISO(s.NewWhen, r.schedule.Timezone())), nil
}

func handleConfirmReschedule(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	if s.Step != StepAwaitingRescheduleConfirm {
		return MsgNoRescheduleRunning, nil
	}
	r.logger.WithSession(t.from).Info("confirming reschedule", "service", s.Service, "new_when", s.NewWhen)
	if !isAffirmative(t.lower) {
		t.clear = true
		return MsgRescheduleAborted, nil
	}

	_, err := r.booking.Reschedule(ctx, booking.RescheduleRequest{
		AppointmentID: s.TargetID,
		NewWhen:       s.NewWhen,
		EventID:       s.TargetEventID,
		ClientID:      s.ClientID,
	})
	t.clear = true
	if err != nil {
		if v, ok := booking.AsValidation(err); ok {
			return v.Message, nil
		}
		r.logger.WithSession(t.from).Error("reschedule failed", "error", err)
		return MsgErrorReschedule, nil
	}
	return fmt.Sprintf(
		"✅ Horário atualizado! %s agora está marcado para %s.",
		s.Service, formatWhenISO(s.NewWhen, r.schedule.Timezone()),
	), nil
}

// handleDefault re-prompts according to the current step so an unrecognized
// utterance never derails an in-flight flow.
func handleDefault(ctx context.Context, r *Router, t *turn) (string, error) {
	s := t.sess
	tz := r.schedule.Timezone()
	switch s.Step {
	case StepAwaitingDay:
		return "Escolha um dia válido:\n" + renderDayList(s.Window.Dates, s.DayIndex, tz), nil
	case StepAwaitingTime:
		return "Escolha um horário disponível:\n" + renderTimeList(s.Window.Times[s.ChosenDay]), nil
	case StepAwaitingConfirm:
		summary := formatWhenBR(s.ChosenDay, s.ChosenTime, tz)
		return fmt.Sprintf("Confirma o agendamento de *%s* em *%s* para *%s*?", s.Service, summary, s.ClientName), nil
	case StepAwaitingCancelSelect:
		return "Escolha o agendamento que deseja cancelar:\n" + renderCandidateList(s.Candidates), nil
	case StepAwaitingCancelConfirm:
		return fmt.Sprintf("Confirma o cancelamento de %s em %s?", s.Service, parser.FormatDateTimeBR(s.CurrentWhen.In(tz))), nil
	case StepAwaitingRescheduleSelect:
		return "Qual deseja reagendar?\n" + renderCandidateList(s.Candidates), nil
	case StepAwaitingRescheduleTime:
		if s.NewDay == "" {
			return "Informe o dia desejado:\n" + renderDayList(s.Window.Dates, s.DayIndex, tz), nil
		}
		return "Escolha um horário disponível:\n" + renderTimeList(s.NewTimes), nil
	case StepAwaitingRescheduleConfirm:
		return fmt.Sprintf("Confirma reagendar %s para %s?", s.Service, formatWhenISO(s.NewWhen, tz)), nil
	}
	switch s.Flow {
	case FlowReschedule:
		return MsgRescheduleFlowActive, nil
	case FlowCancel:
		return MsgCancelFlowActive, nil
	}
	if t.fulfil != "" {
		return t.fulfil, nil
	}
	return MsgDidNotUnderstand, nil
}

// loadCandidates resolves the client and their active appointments, filtered
// to selectable (non-Sunday) entries. A non-empty reply short-circuits.
func (r *Router) loadCandidates(ctx context.Context, t *turn) ([]parser.Candidate, string, error) {
	client, err := r.clients.FindByPhone(ctx, t.from)
	if err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			t.clear = true
			return nil, MsgClientNotFound, nil
		}
		return nil, "", err
	}
	t.sess.ClientID = client.ID
	t.sess.ClientName = client.Name

	active, err := r.booking.ListActive(ctx, client.ID)
	if err != nil {
		return nil, "", err
	}
	candidates := make([]parser.Candidate, 0, len(active))
	for _, a := range active {
		if a.When.Weekday() == schedule.ClosedWeekday {
			continue
		}
		candidates = append(candidates, parser.Candidate{
			ID:      a.ID,
			EventID: a.EventID,
			Service: a.Services,
			When:    a.When,
		})
	}
	return candidates, "", nil
}

// resolveTime extracts an HH:MM choice from classifier slots or the raw text.
// The booking flow additionally accepts loose phrasings ("primeiro", "de
// manhã", "15h").
func (r *Router) resolveTime(t *turn, times []string, day string, loose bool) string {
	tz := r.schedule.Timezone()

	if t.params.DateTime.Present {
		if dt, err := time.Parse(time.RFC3339, t.params.DateTime.Value); err == nil {
			local := dt.In(tz)
			if local.Format(schedule.DateLayout) == day {
				return local.Format(schedule.TimeLayout)
			}
		}
	} else if t.params.Time.Present {
		if v := t.params.Time.Value; len(v) >= 16 {
			return v[11:16]
		}
	}

	if n, err := strconv.Atoi(t.lower); err == nil {
		if n >= 1 && n <= len(times) {
			return times[n-1]
		}
		return ""
	}
	if !loose {
		return ""
	}

	if strings.Contains(t.lower, "primeiro") && len(times) > 0 {
		return times[0]
	}
	norm := parser.RemoveAccents(t.lower)
	if strings.Contains(norm, "manha") {
		for _, h := range times {
			if hourOf(h) < 12 {
				return h
			}
		}
	}
	if strings.Contains(norm, "tarde") {
		for _, h := range times {
			if hourOf(h) >= 12 {
				return h
			}
		}
	}
	if m := looseTimePattern.FindStringSubmatch(t.lower); m != nil {
		hh := m[1]
		if len(hh) == 1 {
			hh = "0" + hh
		}
		mm := m[2]
		if mm == "" {
			mm = "00"
		}
		return hh + ":" + mm
	}
	return ""
}

// nearestSuggestion renders the closest bookable slot to an invalid choice,
// or empty when availability cannot be computed.
func (r *Router) nearestSuggestion(ctx context.Context, from, isoWhen string) string {
	tz := r.schedule.Timezone()
	requested, err := time.ParseInLocation("2006-01-02T15:04:05", isoWhen, tz)
	if err != nil {
		return ""
	}
	slots, err := r.schedule.AllSlots(ctx, r.daysWindow)
	if err != nil {
		r.logger.WithSession(from).Warn("nearest slot lookup failed", "error", err)
		return ""
	}
	nearest := schedule.NearestSlot(requested, slots)
	if nearest == nil {
		return ""
	}
	return " Próximo horário disponível: " + parser.FormatDateTimeBR(nearest.DateTime) + "."
}

// paramDate reads a date from the classifier's date-time or date slots.
func paramDate(t *turn) (string, bool) {
	v := ""
	switch {
	case t.params.DateTime.Present:
		v = t.params.DateTime.Value
	case t.params.Date.Present:
		v = t.params.Date.Value
	default:
		return "", false
	}
	return strings.SplitN(v, "T", 2)[0], true
}

// pickWeekday resolves a weekday against the listed dates; next skips this
// week's occurrence when a second one is listed.
func pickWeekday(listed []string, wd time.Weekday, next bool, tz *time.Location) string {
	var matches []string
	for _, d := range listed {
		if got, ok := weekdayOf(d, tz); ok && got == wd {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	if next && len(matches) > 1 {
		return matches[1]
	}
	return matches[0]
}

// matchWeekdayName resolves a classifier weekday slot ("sexta-feira") by
// accent-insensitive prefix against the short names.
func matchWeekdayName(value string) (time.Weekday, bool) {
	word := parser.RemoveAccents(strings.ToLower(strings.TrimSpace(value)))
	word = strings.TrimSuffix(word, "-feira")
	for i, name := range parser.WeekdayNames {
		if strings.HasPrefix(parser.RemoveAccents(name), word) && word != "" {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func weekdayOf(date string, tz *time.Location) (time.Weekday, bool) {
	d, err := time.ParseInLocation(schedule.DateLayout, date, tz)
	if err != nil {
		return 0, false
	}
	return d.Weekday(), true
}

func formatWhenBR(day, hour string, tz *time.Location) string {
	dt, err := time.ParseInLocation("2006-01-02T15:04", day+"T"+hour, tz)
	if err != nil {
		return day + " " + hour
	}
	return parser.FormatDateTimeBR(dt)
}

func formatWhenISO(iso string, tz *time.Location) string {
	dt, err := time.ParseInLocation("2006-01-02T15:04:05", iso, tz)
	if err != nil {
		return iso
	}
	return parser.FormatDateTimeBR(dt)
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func hourOf(hhmm string) int {
	h, _ := strconv.Atoi(strings.SplitN(hhmm, ":", 2)[0])
	return h
}
