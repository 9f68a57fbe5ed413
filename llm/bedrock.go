package llm

import (
	"context"
	"time"

	"pagegen-server/pagecache/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBedrockRegion  = "us-east-1"
	DefaultBedrockModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"

	backendBedrock = "bedrock"
)

// ConverseAPI é o subconjunto do cliente bedrockruntime usado aqui.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type BedrockGenerator struct {
	Client      ConverseAPI
	ModelID     string
	Temperature float32
	// Timeout por chamada. 0 = sem timeout além do ctx.
	Timeout time.Duration
	Prompts *PromptBuilder
	Logger  *zap.Logger
}

// NewBedrockGenerator carrega a config padrão da AWS (env, shared config,
// IMDS) para a região informada.
func NewBedrockGenerator(ctx context.Context, region, modelID string) (*BedrockGenerator, error) {
	if region == "" {
		region = DefaultBedrockRegion
	}
	if modelID == "" {
		modelID = DefaultBedrockModelID
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &BedrockGenerator{
		Client:      bedrockruntime.NewFromConfig(cfg),
		ModelID:     modelID,
		Temperature: 1.0,
		Prompts:     NewPromptBuilder(),
	}, nil
}

func (g *BedrockGenerator) Generate(ctx context.Context) (string, error) {
	category, prompt := g.prompts().Build()
	if prompt == "" {
		return "", g.fail("empty prompt", nil)
	}

	log := logger(g.Logger).With(zap.String("category", category))
	log.Info("starting webpage generation")
	start := time.Now()

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	out, err := g.Client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(g.ModelID),
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(g.Temperature),
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
	})
	if err != nil {
		return "", g.fail(converseReason(err), err)
	}

	text, err := g.outputText(out)
	if err != nil {
		return "", err
	}
	log.Info("webpage generation complete", zap.Duration("webpageGenerationTime", time.Since(start)))
	return text, nil
}

func (g *BedrockGenerator) outputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil || out.Output == nil {
		return "", g.fail("no output", nil)
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", g.fail("output not a message", nil)
	}
	if len(msg.Value.Content) == 0 {
		return "", g.fail("no content in message", nil)
	}
	text, ok := msg.Value.Content[0].(*types.ContentBlockMemberText)
	if !ok {
		return "", g.fail("content is not text", nil)
	}
	return text.Value, nil
}

func (g *BedrockGenerator) prompts() *PromptBuilder {
	if g.Prompts == nil {
		return NewPromptBuilder()
	}
	return g.Prompts
}

func (g *BedrockGenerator) fail(reason string, err error) error {
	return &domain.GenerationFailure{
		Backend: backendBedrock + "(" + g.ModelID + ")",
		Reason:  reason,
		Err:     err,
	}
}

func converseReason(err error) string {
	var timeout *types.ModelTimeoutException
	if errors.As(err, &timeout) {
		return "Model took too long"
	}
	var notReady *types.ModelNotReadyException
	if errors.As(err, &notReady) {
		return "Model is not ready"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	// erro do serviço sem mapeamento vs. falha antes de chegar no serviço
	// (rede, credenciais).
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return "Unknown"
	}
	return "Unknown service error"
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
