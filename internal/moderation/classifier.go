package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"

	"openfeed/internal/config"
	"openfeed/internal/core"
)

const (
	modelName    = "gemini-1.5-flash"
	generatePath = "/v1beta/models/" + modelName + ":generateContent"
)

var classifierLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "openfeed_classifier_request_latency",
		Help:    "Histogram of classifier request latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	},
	[]string{"status_code"},
)

// Classifier asks a generative model whether a prospective post is toxic,
// spam or profane. It is stateless and never retries: any failure, including
// a malformed response, surfaces as ErrModerationUnavailable and the caller
// decides what the submission's fate is.
type Classifier struct {
	Logger  *slog.Logger
	Config  *config.Config
	Secrets *core.Config

	client *resty.Client
}

func (c *Classifier) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "moderation.Classifier")

	c.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ResponseHeaderTimeout: c.Config.ClassifierTimeout,
	})
	c.client.SetBaseURL(c.Secrets.GEMINI_API_URL)
	c.client.SetQueryParam("key", c.Secrets.GEMINI_API_KEY)
	c.client.AddResponseMiddleware(latencyMiddleware)

	return nil
}

func (c *Classifier) Shutdown(_ context.Context) error {
	return c.client.Close()
}

func latencyMiddleware(_ *resty.Client, response *resty.Response) error {
	classifierLatency.
		WithLabelValues(fmt.Sprintf("%d", response.StatusCode())).
		Observe(response.Duration().Seconds())
	return nil
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   *responseSchema `json:"responseSchema,omitempty"`
}

type responseSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]*responseSchema `json:"properties,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// verdictPayload mirrors core.Verdict with pointer fields so a partial model
// response is detectable instead of silently defaulting to false.
type verdictPayload struct {
	IsToxic   *bool `json:"isToxic"`
	IsSpam    *bool `json:"isSpam"`
	IsProfane *bool `json:"isProfane"`
}

var verdictSchema = &responseSchema{
	Type: "OBJECT",
	Properties: map[string]*responseSchema{
		"isToxic":   {Type: "BOOLEAN"},
		"isSpam":    {Type: "BOOLEAN"},
		"isProfane": {Type: "BOOLEAN"},
	},
	Required: []string{"isToxic", "isSpam", "isProfane"},
}

// Classify sends the combined title and content to the model and returns its
// verdict. The call is bounded by the configured classifier timeout.
func (c *Classifier) Classify(ctx context.Context, title, content string) (core.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Config.ClassifierTimeout)
	defer cancel()

	body := generateRequest{
		Contents: []requestContent{
			{Parts: []contentPart{{Text: buildPrompt(title, content)}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   verdictSchema,
		},
	}

	res, err := c.client.R().
		WithContext(ctx).
		SetBody(body).
		SetResult(&generateResponse{}).
		Post(generatePath)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("%w: %w", core.ErrModerationUnavailable, err)
	}
	if res.IsError() {
		return core.Verdict{}, fmt.Errorf("%w: classifier returned status %d", core.ErrModerationUnavailable, res.StatusCode())
	}

	return parseVerdict(res.Result().(*generateResponse))
}

func parseVerdict(res *generateResponse) (core.Verdict, error) {
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return core.Verdict{}, fmt.Errorf("%w: empty classifier response", core.ErrModerationUnavailable)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(res.Candidates[0].Content.Parts[0].Text), &payload); err != nil {
		return core.Verdict{}, fmt.Errorf("%w: malformed verdict: %w", core.ErrModerationUnavailable, err)
	}
	if payload.IsToxic == nil || payload.IsSpam == nil || payload.IsProfane == nil {
		return core.Verdict{}, fmt.Errorf("%w: partial verdict", core.ErrModerationUnavailable)
	}

	return core.Verdict{
		IsToxic:   *payload.IsToxic,
		IsSpam:    *payload.IsSpam,
		IsProfane: *payload.IsProfane,
	}, nil
}

func buildPrompt(title, content string) string {
	fullContent := fmt.Sprintf("Content: %q", content)
	if title != "" {
		fullContent = fmt.Sprintf("Title: %q\n\nContent: %q", title, content)
	}

	return "You are a content moderator. Please analyze the following text and determine if it is toxic, spam, or contains profanity.\n\n" +
		fullContent +
		"\n\nPlease be strict and flag any content that could be harmful, offensive, or inappropriate. Check both the title and content thoroughly."
}
