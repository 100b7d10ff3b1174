package gpt

import (
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Assistant owns one remote assistant and the runs made against it.
type Assistant struct {
	api      API
	registry *Registry
	opts     Options
	profile  entity.Profile
	remote   *openai.Assistant
	mutex    sync.RWMutex
	log      *slog.Logger
}

// NewAssistant reuses the remote assistant named by profile.Id when it still
// exists and creates a new one otherwise.
func NewAssistant(ctx context.Context, api API, profile entity.Profile, registry *Registry, opts Options, log *slog.Logger) (*Assistant, error) {
	opts = opts.withDefaults()
	if registry == nil {
		registry = NewRegistry(log)
	}
	if profile.Model == "" {
		profile.Model = opts.Model
	}
	if profile.Temperature == 0 {
		profile.Temperature = opts.Temperature
	}
	if profile.TopP == 0 {
		profile.TopP = opts.TopP
	}
	if len(profile.Tools) == 0 {
		profile.Tools = []string{entity.ToolFileSearch}
	}

	a := &Assistant{
		api:      api,
		registry: registry,
		opts:     opts,
		profile:  profile,
		log:      log.With(sl.Module("assistant"), slog.String("name", profile.Name)),
	}

	if profile.Id != "" {
		remote, err := api.RetrieveAssistant(ctx, profile.Id)
		if err == nil {
			a.remote = &remote
			a.log.With(slog.String("id", remote.ID)).Info("using existing assistant")
			return a, nil
		}
		if !IsNotFound(err) {
			return nil, fmt.Errorf("retrieve assistant: %w", err)
		}
		a.log.With(slog.String("id", profile.Id)).Warn("assistant not found, creating new")
	}

	request, err := a.request(profile.Tools, profile.VectorStoreId)
	if err != nil {
		return nil, err
	}
	remote, err := api.CreateAssistant(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}
	a.remote = &remote
	a.profile.Id = remote.ID
	a.profile.CreatedAt = time.Unix(remote.CreatedAt, 0)
	a.profile.UpdatedAt = time.Now()
	a.log.With(slog.String("id", remote.ID)).Info("assistant created")

	return a, nil
}

func (a *Assistant) request(tools []string, vectorStoreId string) (openai.AssistantRequest, error) {
	name := a.profile.Name
	instructions := a.profile.Instructions
	temperature := a.profile.Temperature
	topP := a.profile.TopP

	assistantTools := make([]openai.AssistantTool, 0, len(tools))
	fileSearch := false
	for _, tool := range tools {
		switch tool {
		case entity.ToolFileSearch:
			fileSearch = true
			assistantTools = append(assistantTools, openai.AssistantTool{Type: openai.AssistantToolTypeFileSearch})
		case entity.ToolCodeInterpreter:
			assistantTools = append(assistantTools, openai.AssistantTool{Type: openai.AssistantToolTypeCodeInterpreter})
		default:
			return openai.AssistantRequest{}, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
		}
	}
	assistantTools = append(assistantTools, a.registry.Tools()...)

	request := openai.AssistantRequest{
		Model:        a.profile.Model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        assistantTools,
		Temperature:  &temperature,
		TopP:         &topP,
	}
	if fileSearch && vectorStoreId != "" {
		request.ToolResources = &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{VectorStoreIDs: []string{vectorStoreId}},
		}
	}
	return request, nil
}

// UpdateToolSet replaces the remote tool set and file search resources.
// The local copy changes only when the remote update succeeds.
func (a *Assistant) UpdateToolSet(ctx context.Context, tools []string, vectorStoreId string) error {
	id := a.ID()
	if id == "" {
		return ErrNoAssistant
	}

	a.mutex.RLock()
	request, err := a.request(tools, vectorStoreId)
	a.mutex.RUnlock()
	if err != nil {
		return err
	}

	remote, err := a.api.ModifyAssistant(ctx, id, request)
	if err != nil {
		return fmt.Errorf("modify assistant: %w", err)
	}

	a.mutex.Lock()
	a.remote = &remote
	a.profile.Tools = append([]string(nil), tools...)
	a.profile.VectorStoreId = vectorStoreId
	a.profile.UpdatedAt = time.Now()
	a.mutex.Unlock()

	a.log.With(
		slog.Any("tools", tools),
		slog.String("vector_store", vectorStoreId),
	).Info("tool set updated")
	return nil
}

// Delete removes the remote assistant. A missing remote counts as deleted.
func (a *Assistant) Delete(ctx context.Context) (bool, error) {
	id := a.ID()
	if id == "" {
		return false, ErrNoAssistant
	}

	deleted := true
	resp, err := a.api.DeleteAssistant(ctx, id)
	if err != nil {
		if !IsNotFound(err) {
			return false, fmt.Errorf("delete assistant: %w", err)
		}
	} else {
		deleted = resp.Deleted
	}

	if deleted {
		a.mutex.Lock()
		a.remote = nil
		a.profile.Id = ""
		a.mutex.Unlock()
		a.log.With(slog.String("id", id)).Info("assistant deleted")
	}
	return deleted, nil
}

func (a *Assistant) ID() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	if a.remote == nil {
		return ""
	}
	return a.remote.ID
}

func (a *Assistant) Name() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.profile.Name
}

func (a *Assistant) Profile() entity.Profile {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	profile := a.profile
	profile.Tools = append([]string(nil), a.profile.Tools...)
	return profile
}

func (a *Assistant) Functions() []string {
	return a.registry.Names()
}

// Characteristics renders the remote assistant as key/value pairs.
func (a *Assistant) Characteristics() map[string]string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.remote == nil {
		return map[string]string{}
	}
	remote := a.remote
	chars := map[string]string{
		"id":         remote.ID,
		"model":      remote.Model,
		"created_at": time.Unix(remote.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
	if remote.Name != nil {
		chars["name"] = *remote.Name
	}
	if remote.Instructions != nil {
		chars["instructions"] = *remote.Instructions
	}
	if remote.Temperature != nil {
		chars["temperature"] = strconv.FormatFloat(float64(*remote.Temperature), 'f', -1, 32)
	}
	if remote.TopP != nil {
		chars["top_p"] = strconv.FormatFloat(float64(*remote.TopP), 'f', -1, 32)
	}

	tools := make([]string, 0, len(remote.Tools))
	for _, tool := range remote.Tools {
		if tool.Type == openai.AssistantToolTypeFunction && tool.Function != nil {
			tools = append(tools, tool.Function.Name)
			continue
		}
		tools = append(tools, string(tool.Type))
	}
	chars["tools"] = strings.Join(tools, ", ")

	if remote.ToolResources != nil && remote.ToolResources.FileSearch != nil {
		chars["vector_store_ids"] = strings.Join(remote.ToolResources.FileSearch.VectorStoreIDs, ", ")
	}
	return chars
}
