package dify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"preop-drug-check/internal/platform/httpclient"
	"preop-drug-check/internal/ports/workflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.dify.ai"
	DefaultUser    = "webapp-user"

	runPath      = "/v1/workflows/run"
	responseMode = "blocking"

	unknownAPIError = "Unknown API error"
)

var (
	ErrMissingAPIKey = errors.New("dify: api key required")
	ErrMissingDrug   = errors.New("dify: drug required")
)

// Config del cliente Dify.
type Config struct {
	BaseURL string
	User    string // default "webapp-user"
	Timeout time.Duration

	// Opcional (tests); si es nil se usa el provider global de otel.
	TracerProvider trace.TracerProvider
}

// Client implementa workflow.Runner contra POST /v1/workflows/run.
type Client struct {
	http   *httpclient.Client
	user   string
	tracer trace.Tracer
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dify: %w", err)
	}

	user := strings.TrimSpace(cfg.User)
	if user == "" {
		user = DefaultUser
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		http:   hc,
		user:   user,
		tracer: tp.Tracer("preop-drug-check/dify"),
	}, nil
}

type runInputs struct {
	Drug   string `json:"drug"`
	Opeday string `json:"opeday"`
}

type runRequest struct {
	Inputs       runInputs `json:"inputs"`
	ResponseMode string    `json:"response_mode"`
	User         string    `json:"user"`
}

// runResponse: solo los campos que usamos. outputs es libre según el workflow.
type runResponse struct {
	WorkflowRunID string `json:"workflow_run_id"`
	Data          *struct {
		Status  string         `json:"status"`
		Outputs map[string]any `json:"outputs"`
	} `json:"data"`
}

// Run ejecuta el workflow para un medicamento.
// Una respuesta no-2xx devuelve *workflow.StatusError.
func (c *Client) Run(ctx context.Context, apiKey string, req workflow.Request) (workflow.Output, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return workflow.Output{}, ErrMissingAPIKey
	}
	drug := strings.TrimSpace(req.Drug)
	if drug == "" {
		return workflow.Output{}, ErrMissingDrug
	}
	user := strings.TrimSpace(req.User)
	if user == "" {
		user = c.user
	}

	ctx, span := c.tracer.Start(ctx, "dify.workflows.run", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("drug", drug),
		attribute.String("opeday", req.SurgeryDate),
	)

	body := runRequest{
		Inputs:       runInputs{Drug: drug, Opeday: req.SurgeryDate},
		ResponseMode: responseMode,
		User:         user,
	}

	var resp runResponse
	err := c.http.DoJSON(ctx, http.MethodPost, runPath, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, body, &resp)
	if err != nil {
		err = toStatusError(drug, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var se *workflow.StatusError
		if errors.As(err, &se) {
			span.SetAttributes(attribute.Int("http.status_code", se.StatusCode))
		}
		return workflow.Output{}, err
	}

	out := workflow.Output{RunID: resp.WorkflowRunID}
	if resp.Data != nil {
		if text, ok := resp.Data.Outputs["text"].(string); ok && text != "" {
			out.Text = text
			out.HasText = true
		}
	}
	span.SetAttributes(attribute.Bool("has_text", out.HasText))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// toStatusError convierte *httpclient.HTTPError en *workflow.StatusError.
// Body JSON => message (o "Unknown API error"); body no-JSON => texto de estado HTTP.
func toStatusError(drug string, err error) error {
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}

	return &workflow.StatusError{
		Drug:       drug,
		StatusCode: httpErr.StatusCode,
		Message:    errorMessage(httpErr),
	}
}

// errorMessage: body no-JSON o null => texto de estado; objeto con message => message;
// cualquier otro JSON => "Unknown API error".
func errorMessage(httpErr *httpclient.HTTPError) string {
	var body any
	if err := json.Unmarshal([]byte(httpErr.Body), &body); err != nil || body == nil {
		return httpErr.Status
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return unknownAPIError
	}
	switch m := obj["message"].(type) {
	case nil:
		return unknownAPIError
	case string:
		if m != "" {
			return m
		}
		return unknownAPIError
	case bool:
		if !m {
			return unknownAPIError
		}
		return "true"
	case float64:
		if m == 0 {
			return unknownAPIError
		}
		return fmt.Sprint(m)
	default:
		return fmt.Sprint(m)
	}
}
