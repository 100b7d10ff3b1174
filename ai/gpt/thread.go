package gpt

import (
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strings"
)

func (a *Assistant) NewThread(ctx context.Context) (string, error) {
	thread, err := a.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	a.log.With(slog.String("thread", thread.ID)).Debug("created new thread")
	return thread.ID, nil
}

// DeleteThread removes a remote thread. A missing thread is not an error.
func (a *Assistant) DeleteThread(ctx context.Context, threadId string) error {
	_, err := a.api.DeleteThread(ctx, threadId)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

// SendMessage posts a user message. Every attached file is offered to file search.
func (a *Assistant) SendMessage(ctx context.Context, threadId, content string, fileIds []string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}

	request := openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: content,
	}
	for _, fileId := range fileIds {
		request.Attachments = append(request.Attachments, openai.ThreadAttachment{
			FileID: fileId,
			Tools:  []openai.ThreadAttachmentTool{{Type: string(openai.AssistantToolTypeFileSearch)}},
		})
	}

	msg, err := a.api.CreateMessage(ctx, threadId, request)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return msg.ID, nil
}
