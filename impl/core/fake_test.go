package core

import (
	"Concierge/entity"
	"Concierge/internal/config"
	"bytes"
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

func testConfig() *config.Config {
	conf := &config.Config{}
	conf.OpenAI.Model = "gpt-3.5-turbo-0125"
	conf.OpenAI.Temperature = 1
	conf.OpenAI.TopP = 1
	conf.OpenAI.PollInterval = time.Millisecond
	conf.OpenAI.RunTimeout = time.Second
	conf.OpenAI.MaxRetries = 2
	conf.OpenAI.HistoryLength = 25
	conf.Assistant.Name = "Concierge"
	conf.Assistant.Instructions = "Answer from the files."
	conf.Assistant.Tools = []string{entity.ToolFileSearch}
	conf.VectorStore.Name = "Vector_Storage"
	conf.VectorStore.LifetimeDays = 1
	conf.Maintenance.MaxAgeDays = 2
	conf.Maintenance.Hour = 21
	return conf
}

func notFound() error {
	return &openai.APIError{HTTPStatusCode: http.StatusNotFound, Message: "not found"}
}

// fakeOpenAI answers every run with a completed status and the next scripted
// reply. Tool calls queued in toolCalls are requested once before completing.
type fakeOpenAI struct {
	mutex  sync.Mutex
	nextId int

	assistants   map[string]openai.Assistant
	modified     []openai.AssistantRequest
	threads      map[string][]openai.Message
	replies      []string
	toolCalls    []openai.ToolCall
	toolOutputs  []openai.ToolOutput
	runs         map[string]openai.Run
	stores       map[string]openai.VectorStore
	storeFiles   map[string][]string
	files        map[string]openai.File
	deleted      []string
	failRun      bool
	silent       bool
	createdStore int
}

func newFakeOpenAI() *fakeOpenAI {
	return &fakeOpenAI{
		assistants: make(map[string]openai.Assistant),
		threads:    make(map[string][]openai.Message),
		runs:       make(map[string]openai.Run),
		stores:     make(map[string]openai.VectorStore),
		storeFiles: make(map[string][]string),
		files:      make(map[string]openai.File),
	}
}

func (f *fakeOpenAI) id(prefix string) string {
	f.nextId++
	return fmt.Sprintf("%s_%d", prefix, f.nextId)
}

func (f *fakeOpenAI) CreateAssistant(_ context.Context, request openai.AssistantRequest) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	assistant := openai.Assistant{
		ID:            f.id("asst"),
		CreatedAt:     time.Now().Unix(),
		Name:          request.Name,
		Model:         request.Model,
		Instructions:  request.Instructions,
		Tools:         request.Tools,
		ToolResources: request.ToolResources,
	}
	f.assistants[assistant.ID] = assistant
	return assistant, nil
}

func (f *fakeOpenAI) RetrieveAssistant(_ context.Context, id string) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	assistant, ok := f.assistants[id]
	if !ok {
		return openai.Assistant{}, notFound()
	}
	return assistant, nil
}

func (f *fakeOpenAI) ModifyAssistant(_ context.Context, id string, request openai.AssistantRequest) (openai.Assistant, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.modified = append(f.modified, request)
	assistant := f.assistants[id]
	assistant.Tools = request.Tools
	assistant.ToolResources = request.ToolResources
	f.assistants[id] = assistant
	return assistant, nil
}

func (f *fakeOpenAI) DeleteAssistant(_ context.Context, id string) (openai.AssistantDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.assistants, id)
	f.deleted = append(f.deleted, id)
	return openai.AssistantDeleteResponse{ID: id, Deleted: true}, nil
}

func (f *fakeOpenAI) ListAssistants(context.Context, *int, *string, *string, *string) (openai.AssistantsList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.AssistantsList
	for _, assistant := range f.assistants {
		list.Assistants = append(list.Assistants, assistant)
	}
	return list, nil
}

func (f *fakeOpenAI) CreateThread(context.Context, openai.ThreadRequest) (openai.Thread, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	id := f.id("thread")
	f.threads[id] = nil
	return openai.Thread{ID: id}, nil
}

func (f *fakeOpenAI) DeleteThread(_ context.Context, id string) (openai.ThreadDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, ok := f.threads[id]; !ok {
		return openai.ThreadDeleteResponse{}, notFound()
	}
	delete(f.threads, id)
	f.deleted = append(f.deleted, id)
	return openai.ThreadDeleteResponse{ID: id, Deleted: true}, nil
}

func (f *fakeOpenAI) CreateMessage(_ context.Context, threadId string, request openai.MessageRequest) (openai.Message, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, ok := f.threads[threadId]; !ok {
		return openai.Message{}, notFound()
	}
	msg := f.message(request.Role, request.Content)
	f.threads[threadId] = append(f.threads[threadId], msg)
	return msg, nil
}

func (f *fakeOpenAI) message(role, text string) openai.Message {
	return openai.Message{
		ID:      f.id("msg"),
		Role:    role,
		Content: []openai.MessageContent{{Type: "text", Text: &openai.MessageText{Value: text}}},
	}
}

func (f *fakeOpenAI) ListMessage(_ context.Context, threadId string, limit *int, _ *string, _ *string, _ *string, runId *string) (openai.MessagesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	stored := f.threads[threadId]
	var list openai.MessagesList
	for i := len(stored) - 1; i >= 0; i-- {
		if limit != nil && len(list.Messages) == *limit {
			break
		}
		if runId != nil && (stored[i].RunID == nil || *stored[i].RunID != *runId) {
			continue
		}
		list.Messages = append(list.Messages, stored[i])
	}
	return list, nil
}

func (f *fakeOpenAI) CreateRun(_ context.Context, threadId string, request openai.RunRequest) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	run := openai.Run{ID: f.id("run"), ThreadID: threadId, AssistantID: request.AssistantID, Status: openai.RunStatusQueued}
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeOpenAI) RetrieveRun(_ context.Context, threadId string, runId string) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	run := f.runs[runId]
	if run.Status != openai.RunStatusQueued {
		return run, nil
	}

	switch {
	case f.failRun:
		run.Status = openai.RunStatusFailed
		run.LastError = &openai.RunLastError{Code: openai.RunErrorServerError, Message: "model unavailable"}
	case len(f.toolCalls) > 0:
		run.Status = openai.RunStatusRequiresAction
		run.RequiredAction = &openai.RunRequiredAction{
			Type:              openai.RequiredActionTypeSubmitToolOutputs,
			SubmitToolOutputs: &openai.SubmitToolOutputs{ToolCalls: f.toolCalls},
		}
		f.toolCalls = nil
	default:
		run.Status = openai.RunStatusCompleted
		if f.silent {
			break
		}
		reply := "no reply scripted"
		if len(f.replies) > 0 {
			reply = f.replies[0]
			f.replies = f.replies[1:]
		}
		msg := f.message("assistant", reply)
		msg.RunID = &run.ID
		f.threads[threadId] = append(f.threads[threadId], msg)
	}
	f.runs[runId] = run
	return run, nil
}

func (f *fakeOpenAI) CancelRun(_ context.Context, _ string, runId string) (openai.Run, error) {
	return openai.Run{ID: runId, Status: openai.RunStatusCancelling}, nil
}

func (f *fakeOpenAI) SubmitToolOutputs(_ context.Context, _ string, runId string, request openai.SubmitToolOutputsRequest) (openai.Run, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.toolOutputs = append(f.toolOutputs, request.ToolOutputs...)
	run := f.runs[runId]
	run.Status = openai.RunStatusQueued
	run.RequiredAction = nil
	f.runs[runId] = run
	return run, nil
}

func (f *fakeOpenAI) ListFiles(context.Context) (openai.FilesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.FilesList
	for _, file := range f.files {
		list.Files = append(list.Files, file)
	}
	return list, nil
}

func (f *fakeOpenAI) DeleteFile(_ context.Context, id string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.files, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOpenAI) CreateFile(_ context.Context, request openai.FileRequest) (openai.File, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	file := openai.File{ID: f.id("file"), FileName: request.FileName, Purpose: request.Purpose, CreatedAt: time.Now().Unix()}
	f.files[file.ID] = file
	return file, nil
}

func (f *fakeOpenAI) CreateFileBytes(_ context.Context, request openai.FileBytesRequest) (openai.File, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	file := openai.File{ID: f.id("file"), FileName: request.Name, Purpose: string(request.Purpose), CreatedAt: time.Now().Unix()}
	f.files[file.ID] = file
	return file, nil
}

func (f *fakeOpenAI) CreateVectorStore(_ context.Context, request openai.VectorStoreRequest) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.createdStore++
	store := openai.VectorStore{
		ID:           f.id("vs"),
		Name:         request.Name,
		Status:       "completed",
		CreatedAt:    time.Now().Unix(),
		ExpiresAfter: request.ExpiresAfter,
	}
	f.stores[store.ID] = store
	return store, nil
}

func (f *fakeOpenAI) RetrieveVectorStore(_ context.Context, id string) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	store, ok := f.stores[id]
	if !ok {
		return openai.VectorStore{}, notFound()
	}
	store.FileCounts.Total = len(f.storeFiles[id])
	return store, nil
}

func (f *fakeOpenAI) ModifyVectorStore(_ context.Context, id string, request openai.VectorStoreRequest) (openai.VectorStore, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	store := f.stores[id]
	store.Name = request.Name
	store.ExpiresAfter = request.ExpiresAfter
	f.stores[id] = store
	return store, nil
}

func (f *fakeOpenAI) DeleteVectorStore(_ context.Context, id string) (openai.VectorStoreDeleteResponse, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, ok := f.stores[id]; !ok {
		return openai.VectorStoreDeleteResponse{}, notFound()
	}
	delete(f.stores, id)
	f.deleted = append(f.deleted, id)
	return openai.VectorStoreDeleteResponse{ID: id, Deleted: true}, nil
}

func (f *fakeOpenAI) ListVectorStores(context.Context, openai.Pagination) (openai.VectorStoresList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.VectorStoresList
	for _, store := range f.stores {
		list.VectorStores = append(list.VectorStores, store)
	}
	return list, nil
}

func (f *fakeOpenAI) CreateVectorStoreFile(_ context.Context, storeId string, request openai.VectorStoreFileRequest) (openai.VectorStoreFile, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.storeFiles[storeId] = append(f.storeFiles[storeId], request.FileID)
	return openai.VectorStoreFile{ID: request.FileID, VectorStoreID: storeId, Status: "completed"}, nil
}

func (f *fakeOpenAI) RetrieveVectorStoreFile(_ context.Context, storeId string, fileId string) (openai.VectorStoreFile, error) {
	return openai.VectorStoreFile{ID: fileId, VectorStoreID: storeId, Status: "completed"}, nil
}

func (f *fakeOpenAI) ListVectorStoreFiles(_ context.Context, storeId string, _ openai.Pagination) (openai.VectorStoreFilesList, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var list openai.VectorStoreFilesList
	for _, id := range f.storeFiles[storeId] {
		list.VectorStoreFiles = append(list.VectorStoreFiles, openai.VectorStoreFile{ID: id})
	}
	return list, nil
}

type fakeRepository struct {
	mutex         sync.Mutex
	profiles      map[string]entity.Profile
	conversations map[string]entity.Conversation
	keys          map[string]string
	replies       []entity.Reply
	contacts      []entity.Contact
	questions     []entity.Question
	archive       map[string][]byte
	archiveMeta   map[string]entity.FileMetadata
	saveErr       error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles:      make(map[string]entity.Profile),
		conversations: make(map[string]entity.Conversation),
		keys:          make(map[string]string),
		archive:       make(map[string][]byte),
		archiveMeta:   make(map[string]entity.FileMetadata),
	}
}

func (r *fakeRepository) CheckApiKey(key string) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	username, ok := r.keys[key]
	if !ok {
		return "", fmt.Errorf("api key not found")
	}
	return username, nil
}

func (r *fakeRepository) GenerateApiKey(username string) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	key := "key-" + username
	r.keys[key] = username
	return key, nil
}

func (r *fakeRepository) UpsertProfile(profile *entity.Profile) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.profiles[profile.Name] = *profile
	return nil
}

func (r *fakeRepository) GetProfile(name string) (*entity.Profile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	profile, ok := r.profiles[name]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (r *fakeRepository) UpsertConversation(conversation *entity.Conversation) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.conversations[conversation.UserId] = *conversation
	return nil
}

func (r *fakeRepository) GetConversation(userId string) (*entity.Conversation, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	conversation, ok := r.conversations[userId]
	if !ok {
		return nil, nil
	}
	return &conversation, nil
}

func (r *fakeRepository) DeleteConversation(userId string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.conversations, userId)
	return nil
}

func (r *fakeRepository) SaveReply(reply *entity.Reply) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *fakeRepository) SaveContact(contact *entity.Contact) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.contacts = append(r.contacts, *contact)
	return nil
}

func (r *fakeRepository) SaveQuestion(question *entity.Question) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.questions = append(r.questions, *question)
	return nil
}

type eventSink struct {
	mutex  sync.Mutex
	events []entity.RunEvent
}

func (s *eventSink) Publish(event entity.RunEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = append(s.events, event)
}

func (s *eventSink) types() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var types []string
	for _, event := range s.events {
		types = append(types, event.Type)
	}
	return types
}

func (r *fakeRepository) ArchiveFile(filename string, reader io.Reader, meta entity.FileMetadata) (string, int64, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", 0, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	id := fmt.Sprintf("archive_%d_%s", len(r.archive)+1, filename)
	r.archive[id] = data
	r.archiveMeta[id] = meta
	return id, int64(len(data)), nil
}

func (r *fakeRepository) ArchivedFile(id string) (string, entity.FileMetadata, io.ReadCloser, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	data, ok := r.archive[id]
	if !ok {
		return "", entity.FileMetadata{}, nil, fmt.Errorf("archive %s not found", id)
	}
	return id, r.archiveMeta[id], io.NopCloser(bytes.NewReader(data)), nil
}

type notes struct {
	mutex    sync.Mutex
	messages []string
}

func (n *notes) SendMessage(msg string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.messages = append(n.messages, msg)
}
