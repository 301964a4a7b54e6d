package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/agendazap/agendazap/pkg/logging"
)

var calendarTracer = otel.Tracer("agendazap.internal.calendar")

// ErrEventNotFound is returned when the calendar no longer has the event.
var ErrEventNotFound = errors.New("calendar: event not found")

// BusyInterval is an occupied range on the barbershop calendar.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Service is the calendar collaborator as the core sees it.
type Service interface {
	ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error)
	CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// GoogleService talks to a single Google Calendar.
type GoogleService struct {
	svc        *gcal.Service
	calendarID string
	tz         *time.Location
	logger     *logging.Logger
}

// NewGoogleService builds a calendar client from a service-account key file.
func NewGoogleService(ctx context.Context, calendarID, credentialsFile string, tz *time.Location, logger *logging.Logger) (*GoogleService, error) {
	if calendarID == "" {
		return nil, errors.New("calendar: calendar id required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	opts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create client: %w", err)
	}
	return &GoogleService{svc: svc, calendarID: calendarID, tz: tz, logger: logger}, nil
}

// ListBusy returns the events overlapping [start, end), expanded to single events.
func (s *GoogleService) ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error) {
	ctx, span := calendarTracer.Start(ctx, "calendar.list_busy")
	defer span.End()
	span.SetAttributes(attribute.String("agendazap.range_start", start.Format(time.RFC3339)))

	call := s.svc.Events.List(s.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	res, err := call.Do()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}

	busy := make([]BusyInterval, 0, len(res.Items))
	for _, ev := range res.Items {
		interval, ok := s.eventInterval(ev)
		if !ok {
			continue
		}
		busy = append(busy, interval)
	}
	return busy, nil
}

// CreateEvent inserts a 30-minute event and returns its id.
func (s *GoogleService) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	ctx, span := calendarTracer.Start(ctx, "calendar.create_event")
	defer span.End()

	tzName := "UTC"
	if s.tz != nil {
		tzName = s.tz.String()
	}
	event := &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tzName},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tzName},
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	s.logger.Info("calendar event created", "event_id", created.Id, "start", start)
	return created.Id, nil
}

// DeleteEvent removes an event. A missing event maps to ErrEventNotFound.
func (s *GoogleService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := calendarTracer.Start(ctx, "calendar.delete_event")
	defer span.End()

	if eventID == "" {
		return ErrEventNotFound
	}
	err := s.svc.Events.Delete(s.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
			return ErrEventNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("calendar: delete event: %w", err)
	}
	return nil
}

// eventInterval extracts the concrete interval of an event. All-day events
// occupy the whole day in the configured timezone.
func (s *GoogleService) eventInterval(ev *gcal.Event) (BusyInterval, bool) {
	if ev == nil || ev.Start == nil {
		return BusyInterval{}, false
	}
	if ev.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return BusyInterval{}, false
		}
		end := start.Add(30 * time.Minute)
		if ev.End != nil && ev.End.DateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, ev.End.DateTime); err == nil {
				end = parsed
			}
		}
		return BusyInterval{Start: start, End: end}, true
	}
	if ev.Start.Date != "" {
		tz := s.tz
		if tz == nil {
			tz = time.UTC
		}
		day, err := time.ParseInLocation("2006-01-02", ev.Start.Date, tz)
		if err != nil {
			return BusyInterval{}, false
		}
		return BusyInterval{Start: day, End: day.Add(24 * time.Hour)}, true
	}
	return BusyInterval{}, false
}
