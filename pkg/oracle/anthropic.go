package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

const (
	// DefaultModel is the default Claude model
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultBaseURL is the Anthropic API endpoint
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// APIVersion is the required Anthropic API version header
	APIVersion = "2023-06-01"

	DefaultMaxTokens = 4096
	DefaultTimeout   = 120 * time.Second

	providerAnthropic = "anthropic"
)

// maxResponseBytes caps how much of a response body is read.
var maxResponseBytes int64 = 10 << 20 // 10 MB

// AnthropicConfig holds client configuration. Zero values take defaults.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string
	Timeout     time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Anthropic is an Oracle backed by the Anthropic Messages API.
type Anthropic struct {
	cfg    AnthropicConfig
	http   *http.Client
	logger *log.Logger
}

// NewAnthropic creates a client.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Anthropic{cfg: cfg, http: hc, logger: logger}
}

// Model returns the configured model name.
func (a *Anthropic) Model() string { return a.cfg.Model }

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Synthesize sends one Messages request and parses the reply as a fragment.
func (a *Anthropic) Synthesize(ctx context.Context, req Request) (graph.Graph, error) {
	if a.cfg.APIKey == "" {
		return graph.Graph{}, errs.New(errs.ErrCodeOracleTransport, "anthropic api key not configured (set ANTHROPIC_API_KEY)")
	}

	body, err := json.Marshal(messagesRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		System:      SystemPrompt,
		Messages:    []message{{Role: "user", Content: UserPrompt(req)}},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeInternal, err, "marshal request")
	}

	hooks := observability.Oracle()
	hooks.OnRequest(ctx, providerAnthropic, a.cfg.Model, string(req.Kind))
	a.logger.Debug("oracle request", "kind", req.Kind, "target", req.TargetNodeID, "model", a.cfg.Model, "bytes", len(body))
	start := time.Now()

	resp, status, err := a.post(ctx, body)
	if err != nil {
		hooks.OnError(ctx, providerAnthropic, a.cfg.Model, err)
		return graph.Graph{}, err
	}
	hooks.OnResponse(ctx, providerAnthropic, a.cfg.Model, status, resp.Usage.InputTokens, resp.Usage.OutputTokens, time.Since(start))

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	a.logger.Debug("oracle response", "stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens, "elapsed", time.Since(start))

	if resp.StopReason == "max_tokens" {
		a.logger.Warn("oracle reply truncated at max_tokens", "max_tokens", a.cfg.MaxTokens)
	}

	frag, err := ParseFragment(text.String())
	if err != nil {
		hooks.OnError(ctx, providerAnthropic, a.cfg.Model, err)
		return graph.Graph{}, err
	}
	return frag, nil
}

func (a *Anthropic) post(ctx context.Context, body []byte) (*messagesResponse, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, 0, errs.Wrap(errs.ErrCodeInternal, err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)
	httpReq.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := a.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, errs.Wrap(errs.ErrCodeTimeout, err, "oracle call timed out")
		}
		return nil, 0, errs.Wrap(errs.ErrCodeOracleTransport, err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, resp.StatusCode, errs.Wrap(errs.ErrCodeOracleTransport, err, "read response")
	}
	if int64(len(respBody)) > maxResponseBytes {
		return nil, resp.StatusCode, errs.New(errs.ErrCodeOracleTransport, "response exceeds %d bytes", maxResponseBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, errs.New(errs.ErrCodeOracleTransport, "api request failed with status %d: %s", resp.StatusCode, excerpt(string(respBody)))
	}

	var out messagesResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, resp.StatusCode, errs.Wrap(errs.ErrCodeOracleTransport, err, "decode response")
	}
	if len(out.Content) == 0 {
		return nil, resp.StatusCode, errs.New(errs.ErrCodeOracleTransport, "empty response (stop_reason %q)", out.StopReason)
	}
	return &out, resp.StatusCode, nil
}

var _ Oracle = (*Anthropic)(nil)
