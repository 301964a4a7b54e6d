package dialog

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendazap/agendazap/internal/booking"
	"github.com/agendazap/agendazap/internal/clients"
	"github.com/agendazap/agendazap/internal/intent"
	"github.com/agendazap/agendazap/internal/parser"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/pkg/logging"
)

var dialogTracer = otel.Tracer("agendazap.internal.dialog")

// Intent names the classifier agent is trained with.
const (
	intentWelcome                = "welcome_intent"
	intentChooseService          = "escolha_servico"
	intentChooseDateTime         = "escolha_datahora"
	intentProvideName            = "informar_novo_nome"
	intentConfirmBooking         = "confirmar_agendamento"
	intentCancel                 = "cancelar_agendamento"
	intentSelectCancellation     = "selecionar_cancelamento"
	intentConfirmCancellation    = "confirmar_cancelamento"
	intentReschedule             = "reagendar_agendamento"
	intentConfirmRescheduleStart = "confirmar_inicio_reagendamento"
	intentRescheduleDateTime     = "escolha_datahora_reagendamento"
	intentConfirmReschedule      = "confirmar_reagendamento"
)

// flowIntents lists which intents may act while a sub-flow is running. An
// out-of-flow intent is answered with a step re-prompt instead of executing,
// so a misclassified utterance cannot jump flows mid-negotiation.
var flowIntents = map[Flow]map[string]bool{
	FlowReschedule: {
		intentReschedule:             true,
		intentConfirmRescheduleStart: true,
		intentRescheduleDateTime:     true,
		intentConfirmReschedule:      true,
	},
	FlowCancel: {
		intentCancel:              true,
		intentSelectCancellation:  true,
		intentConfirmCancellation: true,
	},
}

var (
	resetPattern       = regexp.MustCompile(`^(cancelar|voltar|reiniciar)`)
	bareNumberPattern  = regexp.MustCompile(`^\d+$`)
	affirmativePattern = regexp.MustCompile(`(?i)^(sim|ok|pode ser|confirmar|confirmado)`)
	flowContextPattern = regexp.MustCompile(`reagendamento|agendamento|cancelamento`)
)

// Router is the dialogue state machine: it resolves the inbound message to a
// handler using the classified intent corrected by session context, runs the
// handler, and persists the resulting session mutation.
type Router struct {
	store      *SessionStore
	classifier intent.Classifier
	clients    *clients.Repository
	schedule   *schedule.Engine
	booking    *booking.Service
	logger     *logging.Logger
	daysWindow int
	now        func() time.Time
}

// NewRouter wires the state machine. daysWindow is how many working days of
// availability each listing covers.
func NewRouter(store *SessionStore, classifier intent.Classifier, clientRepo *clients.Repository, sched *schedule.Engine, bookingSvc *booking.Service, daysWindow int, logger *logging.Logger) *Router {
	if store == nil {
		panic("dialog: session store required")
	}
	if classifier == nil {
		panic("dialog: classifier required")
	}
	if clientRepo == nil {
		panic("dialog: client repository required")
	}
	if sched == nil {
		panic("dialog: schedule engine required")
	}
	if bookingSvc == nil {
		panic("dialog: booking service required")
	}
	if daysWindow <= 0 {
		daysWindow = 14
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		store:      store,
		classifier: classifier,
		clients:    clientRepo,
		schedule:   sched,
		booking:    bookingSvc,
		logger:     logger,
		daysWindow: daysWindow,
		now:        time.Now,
	}
}

// WithClock overrides the clock. Used by tests.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Result is one completed dialogue turn.
type Result struct {
	Reply  string
	Intent string
}

// turn carries one message's working state through a handler.
type turn struct {
	from   string
	text   string
	lower  string
	params intent.Params
	fulfil string
	sess   *Session
	clear  bool
}

type handlerFunc func(ctx context.Context, r *Router, t *turn) (string, error)

var intentHandlers = map[string]handlerFunc{
	intentWelcome:                handleWelcome,
	intentChooseService:          handleChooseService,
	intentChooseDateTime:         handleChooseDateTime,
	intentProvideName:            handleProvideName,
	intentConfirmBooking:         handleConfirmBooking,
	intentCancel:                 handleCancelStart,
	intentSelectCancellation:     handleSelectCancellation,
	intentConfirmCancellation:    handleConfirmCancellation,
	intentReschedule:             handleRescheduleStart,
	intentConfirmRescheduleStart: handleConfirmRescheduleStart,
	intentRescheduleDateTime:     handleRescheduleDateTime,
	intentConfirmReschedule:      handleConfirmReschedule,
}

// HandleMessage processes one inbound message and returns the reply text.
// The identity's session lock is held for the entire turn so concurrent
// messages from the same phone serialize.
func (r *Router) HandleMessage(ctx context.Context, from, text, profileName string) (Result, error) {
	ctx, span := dialogTracer.Start(ctx, "dialog.handle_message")
	defer span.End()
	span.SetAttributes(attribute.String("agendazap.from", from))

	release := r.store.Acquire(from)
	defer release()

	lower := strings.ToLower(strings.TrimSpace(text))
	r.logger.WithSession(from).Info("inbound message", "text", text)

	sess, err := r.store.Load(ctx, from)
	if err != nil {
		span.RecordError(err)
		return Result{Reply: MsgGeneralError}, err
	}

	// A bare number with no conversation running has nothing to index into.
	if bareNumberPattern.MatchString(lower) && sess == nil {
		return Result{Reply: MsgDidNotUnderstand, Intent: intent.Fallback}, nil
	}

	// Escape hatch: a leading reset token always restarts, no classification.
	if resetPattern.MatchString(lower) {
		if err := r.store.Delete(ctx, from); err != nil {
			r.logger.WithSession(from).Warn("session reset failed", "error", err)
		}
		return Result{Reply: MsgWelcome, Intent: intentWelcome}, nil
	}

	client, err := r.clients.FindOrCreate(ctx, from, profileName)
	if err != nil {
		span.RecordError(err)
		r.logger.WithSession(from).Error("client lookup failed", "error", err)
		return Result{Reply: MsgGeneralError}, err
	}

	if sess == nil {
		sess = &Session{}
	}
	priorContext := sess.ClassifierContext

	detected, err := r.classifier.Detect(ctx, from, text, priorContext)
	if err != nil {
		span.RecordError(err)
		r.logger.WithSession(from).Error("intent detection failed", "error", err)
		return Result{Reply: MsgGeneralError}, err
	}
	r.logger.WithSession(from).Info("intent detected", "intent", detected.Intent)

	for _, c := range detected.Contexts {
		if flowContextPattern.MatchString(c) {
			sess.ClassifierContext = c
			break
		}
	}
	sess.ClientID = client.ID
	sess.ClientName = client.Name
	sess.Phone = client.Phone

	name := r.overrideIntent(detected.Intent, lower, sess)
	span.SetAttributes(attribute.String("agendazap.intent", name))

	t := &turn{
		from:   from,
		text:   text,
		lower:  lower,
		params: detected.Params,
		fulfil: detected.Fulfillment,
		sess:   sess,
	}

	var reply string
	if !intentAllowedInFlow(name, sess.Flow) {
		t.fulfil = ""
		reply, err = handleDefault(ctx, r, t)
	} else if h, ok := intentHandlers[name]; ok {
		reply, err = h(ctx, r, t)
	} else {
		reply, err = handleDefault(ctx, r, t)
	}
	if err != nil {
		span.RecordError(err)
		r.logger.WithSession(from).Error("handler failed", "intent", name, "error", err)
		if derr := r.store.Delete(ctx, from); derr != nil {
			r.logger.WithSession(from).Warn("session cleanup failed", "error", derr)
		}
		return Result{Reply: MsgGeneralError, Intent: name}, err
	}

	if t.clear {
		if err := r.store.Delete(ctx, from); err != nil {
			r.logger.WithSession(from).Warn("session delete failed", "error", err)
		}
	} else if err := r.store.Save(ctx, from, t.sess); err != nil {
		span.RecordError(err)
		return Result{Reply: MsgGeneralError, Intent: name}, err
	}

	r.logger.WithSession(from).Info("reply computed", "intent", name)
	return Result{Reply: reply, Intent: name}, nil
}

// overrideIntent corrects the advisory classifier verdict against the current
// step. Confirmation phrasing across the booking, cancel and reschedule flows
// is structurally similar and the agent regularly mixes them up.
func (r *Router) overrideIntent(name, lower string, sess *Session) string {
	if sess.Step == StepAwaitingCancelSelect && name == intent.Fallback {
		return intentSelectCancellation
	}
	if sess.Step == StepAwaitingRescheduleSelect && name == intent.Fallback {
		if parser.ParseSelection(lower, sess.Candidates) != nil {
			return intentConfirmRescheduleStart
		}
	}
	if sess.Step == StepAwaitingRescheduleTime && name == intent.Fallback {
		return intentRescheduleDateTime
	}
	if sess.Step == StepAwaitingRescheduleConfirm && name == intent.Fallback {
		return intentConfirmReschedule
	}
	if sess.Step == StepAwaitingConfirm && name == intent.Fallback {
		return intentConfirmBooking
	}
	if sess.Step == StepAwaitingName && name == intent.Fallback {
		return intentProvideName
	}
	if sess.Step == StepAwaitingRescheduleConfirm && name == intentConfirmRescheduleStart {
		return intentConfirmReschedule
	}
	if sess.Step == StepAwaitingConfirm &&
		(name == intentConfirmRescheduleStart || name == intentConfirmReschedule) {
		return intentConfirmBooking
	}
	if strings.Contains(lower, "cancel") && sess.Flow == FlowNone &&
		(name == intentConfirmReschedule || name == intentConfirmRescheduleStart) {
		return intentCancel
	}
	if sess.Step == StepAwaitingCancelConfirm &&
		(name == intentConfirmReschedule || name == intentConfirmRescheduleStart) {
		return intentConfirmCancellation
	}
	return name
}

func intentAllowedInFlow(name string, flow Flow) bool {
	if flow == FlowNone {
		return true
	}
	allowed, ok := flowIntents[flow]
	if !ok {
		return true
	}
	return allowed[name]
}

func isAffirmative(text string) bool {
	return affirmativePattern.MatchString(strings.TrimSpace(text))
}
