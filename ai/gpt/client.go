package gpt

import (
	"Concierge/internal/config"
	"context"
	"errors"
	"github.com/sashabaranov/go-openai"
	"net/http"
	"time"
)

// API is the part of the Assistants v2 surface used by the package.
// *openai.Client satisfies it.
type API interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error)
	ModifyAssistant(ctx context.Context, assistantID string, request openai.AssistantRequest) (openai.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error)
	ListAssistants(ctx context.Context, limit *int, order *string, after *string, before *string) (openai.AssistantsList, error)

	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)

	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	CancelRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID string, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)

	ListFiles(ctx context.Context) (openai.FilesList, error)
	DeleteFile(ctx context.Context, fileID string) error
	ListVectorStores(ctx context.Context, pagination openai.Pagination) (openai.VectorStoresList, error)
	DeleteVectorStore(ctx context.Context, vectorStoreID string) (openai.VectorStoreDeleteResponse, error)
}

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrUnknownFunction = errors.New("unknown function")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrNoResponse      = errors.New("no assistant response")
	ErrNoAssistant     = errors.New("assistant is deleted")
)

func NewClient(conf *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(conf.OpenAI.ApiKey)
	if conf.OpenAI.OrgId != "" {
		clientConfig.OrgID = conf.OpenAI.OrgId
	}
	if conf.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = conf.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// IsNotFound reports whether the remote service answered 404.
func IsNotFound(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusNotFound
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusNotFound
	}
	return false
}

type Options struct {
	Model               string
	Temperature         float32
	TopP                float32
	MaxPromptTokens     int
	MaxCompletionTokens int
	PollInterval        time.Duration
	RunTimeout          time.Duration
	MaxRetries          int
	RetryDelay          time.Duration
	HistoryLength       int
}

func OptionsFromConfig(conf *config.Config) Options {
	return Options{
		Model:               conf.OpenAI.Model,
		Temperature:         conf.OpenAI.Temperature,
		TopP:                conf.OpenAI.TopP,
		MaxPromptTokens:     conf.OpenAI.MaxPromptTokens,
		MaxCompletionTokens: conf.OpenAI.MaxCompletionTokens,
		PollInterval:        conf.OpenAI.PollInterval,
		RunTimeout:          conf.OpenAI.RunTimeout,
		MaxRetries:          conf.OpenAI.MaxRetries,
		HistoryLength:       conf.OpenAI.HistoryLength,
	}
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Temperature == 0 {
		o.Temperature = 1
	}
	if o.TopP == 0 {
		o.TopP = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = 2 * time.Minute
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.HistoryLength <= 0 {
		o.HistoryLength = DefaultHistoryLength
	}
	return o
}

const (
	DefaultModel         = "gpt-3.5-turbo-0125"
	DefaultHistoryLength = 25
)
