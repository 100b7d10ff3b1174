package gpt

import (
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notFound() error {
	return &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "not found"}
}

func testOptions() Options {
	return Options{
		PollInterval: time.Millisecond,
		RetryDelay:   time.Millisecond,
		RunTimeout:   time.Second,
	}
}

// fakeAPI is an in-memory stand-in for the Assistants endpoints.
type fakeAPI struct {
	mutex  sync.Mutex
	nextId int

	assistants         map[string]openai.Assistant
	createdAssistants  []openai.AssistantRequest
	modifiedAssistants []openai.AssistantRequest
	modifyErr          error
	deleteAssistantErr error
	deletedAssistants  []string

	threads         map[string]bool
	messages        map[string][]openai.Message
	messageRequests []openai.MessageRequest
	deleteThreadErr error

	createRunErrs  []error
	runRequests    []openai.RunRequest
	runs           []openai.Run
	retrieveCalls  int
	retrieveErr    error
	submitted      []openai.SubmitToolOutputsRequest
	submitResponse openai.Run
	submitErr      error
	cancelled      []string

	files          []openai.File
	deletedFiles   []string
	deleteFileErrs map[string]error

	stores        []openai.VectorStore
	deletedStores []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		assistants:     make(map[string]openai.Assistant),
		threads:        make(map[string]bool),
		messages:       make(map[string][]openai.Message),
		deleteFileErrs: make(map[string]error),
	}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextId++
	return fmt.Sprintf("%s_%d", prefix, f.nextId)
}

func (f *fakeAPI) CreateAssistant(_ context.Context, request openai.AssistantRequest) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.createdAssistants = append(f.createdAssistants, request)
	assistant := assistantFromRequest(f.id("asst"), request)
	f.assistants[assistant.ID] = assistant
	return assistant, nil
}

func (f *fakeAPI) RetrieveAssistant(_ context.Context, assistantID string) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	assistant, ok := f.assistants[assistantID]
	if !ok {
		return openai.Assistant{}, notFound()
	}
	return assistant, nil
}

func (f *fakeAPI) ModifyAssistant(_ context.Context, assistantID string, request openai.AssistantRequest) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.modifiedAssistants = append(f.modifiedAssistants, request)
	if f.modifyErr != nil {
		return openai.Assistant{}, f.modifyErr
	}
	assistant := assistantFromRequest(assistantID, request)
	f.assistants[assistantID] = assistant
	return assistant, nil
}

func (f *fakeAPI) DeleteAssistant(_ context.Context, assistantID string) (openai.AssistantDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.deleteAssistantErr != nil {
		return openai.AssistantDeleteResponse{}, f.deleteAssistantErr
	}
	f.deletedAssistants = append(f.deletedAssistants, assistantID)
	delete(f.assistants, assistantID)
	return openai.AssistantDeleteResponse{ID: assistantID, Deleted: true}, nil
}

func (f *fakeAPI) ListAssistants(_ context.Context, limit *int, _ *string, _ *string, _ *string) (openai.AssistantsList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.AssistantsList
	for _, assistant := range f.assistants {
		if limit != nil && len(list.Assistants) == *limit {
			break
		}
		list.Assistants = append(list.Assistants, assistant)
	}
	return list, nil
}

func (f *fakeAPI) CreateThread(_ context.Context, _ openai.ThreadRequest) (openai.Thread, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	id := f.id("thread")
	f.threads[id] = true
	return openai.Thread{ID: id}, nil
}

func (f *fakeAPI) DeleteThread(_ context.Context, threadID string) (openai.ThreadDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.deleteThreadErr != nil {
		return openai.ThreadDeleteResponse{}, f.deleteThreadErr
	}
	if !f.threads[threadID] {
		return openai.ThreadDeleteResponse{}, notFound()
	}
	delete(f.threads, threadID)
	return openai.ThreadDeleteResponse{ID: threadID, Deleted: true}, nil
}

func (f *fakeAPI) CreateMessage(_ context.Context, threadID string, request openai.MessageRequest) (openai.Message, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.messageRequests = append(f.messageRequests, request)
	msg := textMessage(f.id("msg"), request.Role, request.Content, len(f.messages[threadID]))
	f.messages[threadID] = append(f.messages[threadID], msg)
	return msg, nil
}

// addMessage appends a message as the newest one of the thread.
func (f *fakeAPI) addMessage(threadID string, msg openai.Message) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.messages[threadID] = append(f.messages[threadID], msg)
}

func (f *fakeAPI) ListMessage(_ context.Context, threadID string, limit *int, order *string, _ *string, _ *string, runID *string) (openai.MessagesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	stored := make([]openai.Message, 0, len(f.messages[threadID]))
	for _, msg := range f.messages[threadID] {
		if runID != nil && (msg.RunID == nil || *msg.RunID != *runID) {
			continue
		}
		stored = append(stored, msg)
	}
	messages := make([]openai.Message, 0, len(stored))
	if order != nil && *order == "asc" {
		messages = append(messages, stored...)
	} else {
		for i := len(stored) - 1; i >= 0; i-- {
			messages = append(messages, stored[i])
		}
	}
	if limit != nil && len(messages) > *limit {
		messages = messages[:*limit]
	}
	return openai.MessagesList{Messages: messages}, nil
}

func (f *fakeAPI) CreateRun(_ context.Context, threadID string, request openai.RunRequest) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.runRequests = append(f.runRequests, request)
	if len(f.createRunErrs) > 0 {
		err := f.createRunErrs[0]
		f.createRunErrs = f.createRunErrs[1:]
		if err != nil {
			return openai.Run{}, err
		}
	}
	return openai.Run{ID: "run_1", ThreadID: threadID, AssistantID: request.AssistantID, Status: openai.RunStatusQueued}, nil
}

// RetrieveRun walks through f.runs and keeps answering with the last one.
func (f *fakeAPI) RetrieveRun(_ context.Context, _ string, _ string) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.retrieveErr != nil {
		return openai.Run{}, f.retrieveErr
	}
	if len(f.runs) == 0 {
		return openai.Run{ID: "run_1", Status: openai.RunStatusInProgress}, nil
	}
	i := f.retrieveCalls
	if i >= len(f.runs) {
		i = len(f.runs) - 1
	}
	f.retrieveCalls++
	return f.runs[i], nil
}

func (f *fakeAPI) CancelRun(_ context.Context, _ string, runID string) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return openai.Run{ID: runID, Status: openai.RunStatusCancelling}, nil
}

func (f *fakeAPI) SubmitToolOutputs(_ context.Context, _ string, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.submitted = append(f.submitted, request)
	if f.submitErr != nil {
		return openai.Run{}, f.submitErr
	}
	if f.submitResponse.ID == "" {
		return openai.Run{ID: runID, Status: openai.RunStatusQueued}, nil
	}
	return f.submitResponse, nil
}

func (f *fakeAPI) ListFiles(_ context.Context) (openai.FilesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return openai.FilesList{Files: append([]openai.File(nil), f.files...)}, nil
}

func (f *fakeAPI) DeleteFile(_ context.Context, fileID string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.deleteFileErrs[fileID]; err != nil {
		return err
	}
	f.deletedFiles = append(f.deletedFiles, fileID)
	return nil
}

func (f *fakeAPI) ListVectorStores(_ context.Context, pagination openai.Pagination) (openai.VectorStoresList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	stores := append([]openai.VectorStore(nil), f.stores...)
	if pagination.Limit != nil && len(stores) > *pagination.Limit {
		stores = stores[:*pagination.Limit]
	}
	return openai.VectorStoresList{VectorStores: stores}, nil
}

func (f *fakeAPI) DeleteVectorStore(_ context.Context, vectorStoreID string) (openai.VectorStoreDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.deletedStores = append(f.deletedStores, vectorStoreID)
	return openai.VectorStoreDeleteResponse{ID: vectorStoreID, Deleted: true}, nil
}

func assistantFromRequest(id string, request openai.AssistantRequest) openai.Assistant {
	return openai.Assistant{
		ID:            id,
		CreatedAt:     time.Now().Unix(),
		Name:          request.Name,
		Model:         request.Model,
		Instructions:  request.Instructions,
		Tools:         request.Tools,
		ToolResources: request.ToolResources,
		Temperature:   request.Temperature,
		TopP:          request.TopP,
	}
}

func textMessage(id, role, text string, createdAt int) openai.Message {
	return openai.Message{
		ID:        id,
		Role:      role,
		CreatedAt: createdAt,
		Content: []openai.MessageContent{{
			Type: "text",
			Text: &openai.MessageText{Value: text},
		}},
	}
}
