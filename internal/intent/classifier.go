package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	df "google.golang.org/api/dialogflow/v2"
	"google.golang.org/api/option"

	"github.com/agendazap/agendazap/pkg/logging"
)

var intentTracer = otel.Tracer("agendazap.internal.intent")

// Fallback is the intent name the router treats as "classifier had no idea".
const Fallback = "default"

// Param is a single classifier slot with explicit absent handling.
type Param struct {
	Value   string
	Present bool
}

// Params are the named slots the dialogue machine reads. Anything else the
// agent extracts is ignored.
type Params struct {
	Service  Param
	DateTime Param
	Date     Param
	Time     Param
	Weekday  Param
}

// Result is the classifier verdict for one utterance. The intent name is
// advisory only; the router corrects it against session context.
type Result struct {
	Intent      string
	Params      Params
	Fulfillment string
	Contexts    []string
}

// Classifier turns free text into a symbolic intent plus typed slots.
type Classifier interface {
	Detect(ctx context.Context, sessionID, text, priorContext string) (Result, error)
}

// DialogflowClassifier calls a Dialogflow ES agent.
type DialogflowClassifier struct {
	svc       *df.Service
	projectID string
	language  string
	logger    *logging.Logger
}

// NewDialogflowClassifier builds a classifier from a service-account key file.
func NewDialogflowClassifier(ctx context.Context, projectID, language, credentialsFile string, logger *logging.Logger) (*DialogflowClassifier, error) {
	if projectID == "" {
		return nil, errors.New("intent: dialogflow project id required")
	}
	if language == "" {
		language = "pt-BR"
	}
	if logger == nil {
		logger = logging.Default()
	}
	opts := []option.ClientOption{option.WithScopes(df.CloudPlatformScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := df.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("intent: create client: %w", err)
	}
	return &DialogflowClassifier{svc: svc, projectID: projectID, language: language, logger: logger}, nil
}

// Detect runs detectIntent for the session, optionally re-activating a prior
// conversation context so the agent keeps slot-filling within the flow.
func (c *DialogflowClassifier) Detect(ctx context.Context, sessionID, text, priorContext string) (Result, error) {
	ctx, span := intentTracer.Start(ctx, "intent.detect")
	defer span.End()
	span.SetAttributes(attribute.String("agendazap.session", sessionID))

	sessionPath := fmt.Sprintf("projects/%s/agent/sessions/%s", c.projectID, sessionID)
	req := &df.GoogleCloudDialogflowV2DetectIntentRequest{
		QueryInput: &df.GoogleCloudDialogflowV2QueryInput{
			Text: &df.GoogleCloudDialogflowV2TextInput{
				Text:         text,
				LanguageCode: c.language,
			},
		},
	}
	if priorContext != "" {
		req.QueryParams = &df.GoogleCloudDialogflowV2QueryParameters{
			Contexts: []*df.GoogleCloudDialogflowV2Context{{
				Name:          sessionPath + "/contexts/" + priorContext,
				LifespanCount: 5,
			}},
		}
	}

	resp, err := c.svc.Projects.Agent.Sessions.DetectIntent(sessionPath, req).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("intent: detect intent: %w", err)
	}
	qr := resp.QueryResult
	if qr == nil {
		return Result{Intent: Fallback}, nil
	}

	result := Result{
		Intent:      Fallback,
		Fulfillment: qr.FulfillmentText,
		Params:      parseParams(qr.Parameters),
	}
	if qr.Intent != nil && qr.Intent.DisplayName != "" {
		result.Intent = qr.Intent.DisplayName
	}
	for _, oc := range qr.OutputContexts {
		if oc == nil || oc.Name == "" {
			continue
		}
		parts := strings.Split(oc.Name, "/")
		result.Contexts = append(result.Contexts, parts[len(parts)-1])
	}
	return result, nil
}

// parseParams lifts the raw struct the agent returns into typed slots.
func parseParams(raw []byte) Params {
	var fields map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return Params{}
	}
	return Params{
		Service:  paramFrom(fields, "servico"),
		DateTime: paramFrom(fields, "date-time"),
		Date:     paramFrom(fields, "date"),
		Time:     paramFrom(fields, "time"),
		Weekday:  paramFrom(fields, "dia_semana"),
	}
}

func paramFrom(fields map[string]any, key string) Param {
	v, ok := fields[key]
	if !ok {
		return Param{}
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return Param{}
		}
		return Param{Value: val, Present: true}
	case []any:
		// Dialogflow sends list slots for composite entities; first wins.
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				return Param{Value: s, Present: true}
			}
		}
	}
	return Param{}
}
