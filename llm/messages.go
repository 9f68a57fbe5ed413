package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pagegen-server/pagecache/domain"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultMessagesURL     = "https://api.anthropic.com/v1/messages"
	DefaultMessagesModel   = "claude-3-5-sonnet-20240620"
	DefaultMessagesVersion = "2023-06-01"

	backendMessages = "messages"

	// limite de leitura da resposta (páginas grandes + JSON).
	maxResponseBytes = 8 << 20
)

type MessagesOptions struct {
	URL         string
	APIKey      string
	Model       string
	Version     string
	MaxTokens   int
	Temperature float64

	// Timeout por tentativa HTTP.
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// HTTPClient base (ex.: httptest). nil = cliente novo com Timeout.
	HTTPClient *http.Client
	Prompts    *PromptBuilder
	Logger     *zap.Logger
}

// MessagesGenerator chama uma API HTTP no formato Messages.
// Retry com backoff (429/5xx/erros de rede) fica aqui, no colaborador.
type MessagesGenerator struct {
	client *retryablehttp.Client
	opts   MessagesOptions
}

func NewMessagesGenerator(opts MessagesOptions) *MessagesGenerator {
	if opts.URL == "" {
		opts.URL = DefaultMessagesURL
	}
	if opts.Model == "" {
		opts.Model = DefaultMessagesModel
	}
	if opts.Version == "" {
		opts.Version = DefaultMessagesVersion
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	if opts.Temperature == 0 {
		opts.Temperature = 1.0
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 1 * time.Second
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 30 * time.Second
	}
	if opts.Prompts == nil {
		opts.Prompts = NewPromptBuilder()
	}
	opts.Logger = logger(opts.Logger)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &MessagesGenerator{
		client: &retryablehttp.Client{
			HTTPClient:   httpClient,
			Logger:       leveledZap{opts.Logger.Sugar()},
			RetryWaitMin: opts.RetryWaitMin,
			RetryWaitMax: opts.RetryWaitMax,
			RetryMax:     opts.RetryMax,
			CheckRetry:   retryablehttp.DefaultRetryPolicy,
			Backoff:      retryablehttp.DefaultBackoff,
			// devolve a última resposta em vez de "giving up after N attempts",
			// para podermos ler o corpo de erro.
			ErrorHandler: retryablehttp.PassthroughErrorHandler,
		},
		opts: opts,
	}
}

type messagesRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	Messages    []messagesMessage `json:"messages"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *MessagesGenerator) Generate(ctx context.Context) (string, error) {
	category, prompt := g.opts.Prompts.Build()
	if prompt == "" {
		return "", g.fail("empty prompt", nil)
	}

	log := g.opts.Logger.With(zap.String("category", category))
	log.Info("starting webpage generation")
	start := time.Now()

	body, err := json.Marshal(messagesRequest{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
		Messages:    []messagesMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", g.fail("failed to build message", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.opts.URL, bytes.NewReader(body))
	if err != nil {
		return "", g.fail("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", g.opts.Version)
	if g.opts.APIKey != "" {
		req.Header.Set("x-api-key", g.opts.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		reason := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		return "", g.fail(reason, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", g.fail("failed to read response", err)
	}

	var out messagesResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		reason := fmt.Sprintf("http status %d", resp.StatusCode)
		if decodeErr == nil && out.Error != nil {
			return "", g.fail(reason+": "+out.Error.Type, errors.New(out.Error.Message))
		}
		return "", g.fail(reason, nil)
	}
	if decodeErr != nil {
		return "", g.fail("invalid response body", decodeErr)
	}

	text, err := g.outputText(out)
	if err != nil {
		return "", err
	}
	log.Info("webpage generation complete",
		zap.Duration("webpageGenerationTime", time.Since(start)),
		zap.String("stopReason", out.StopReason))
	return text, nil
}

func (g *MessagesGenerator) outputText(out messagesResponse) (string, error) {
	if len(out.Content) == 0 {
		return "", g.fail("no content in message", nil)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", g.fail("content is not text", nil)
	}
	return sb.String(), nil
}

func (g *MessagesGenerator) fail(reason string, err error) error {
	return &domain.GenerationFailure{
		Backend: backendMessages + "(" + g.opts.Model + ")",
		Reason:  reason,
		Err:     err,
	}
}

// leveledZap adapta zap para retryablehttp.LeveledLogger.
type leveledZap struct{ s *zap.SugaredLogger }

func (l leveledZap) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledZap) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l leveledZap) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledZap) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
