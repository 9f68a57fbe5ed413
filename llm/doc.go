// Package llm implementa o colaborador externo domain.Generator.
//
// Backends:
//   - BedrockGenerator: AWS Bedrock Converse (aws-sdk-go-v2)
//   - MessagesGenerator: API HTTP no formato Messages, com retry via go-retryablehttp
//   - FixtureGenerator: páginas fixas com latência artificial, para dev e testes
//
// Todos escolhem uma categoria aleatória e montam o prompt com PromptBuilder.
// Falhas são sempre *domain.GenerationFailure.
package llm
