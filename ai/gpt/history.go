package gpt

import (
	"Concierge/entity"
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"regexp"
	"strings"
	"time"
)

var citationRe = regexp.MustCompile(`【\d+:\d+†[^】]+】`)

// History returns the latest limit messages of the thread, oldest first.
func (a *Assistant) History(ctx context.Context, threadId string, limit int) ([]entity.HistoryMessage, error) {
	if limit <= 0 {
		limit = a.opts.HistoryLength
	}
	order := "desc"
	list, err := a.api.ListMessage(ctx, threadId, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	history := make([]entity.HistoryMessage, 0, len(list.Messages))
	for i := len(list.Messages) - 1; i >= 0; i-- {
		history = append(history, a.historyMessage(list.Messages[i]))
	}
	return history, nil
}

// LatestResponse returns the newest assistant message posted by the run. An
// empty runId looks at the whole thread.
func (a *Assistant) LatestResponse(ctx context.Context, threadId, runId string) (entity.HistoryMessage, error) {
	limit := 20
	order := "desc"
	var filter *string
	if runId != "" {
		filter = &runId
	}
	list, err := a.api.ListMessage(ctx, threadId, &limit, &order, nil, nil, filter)
	if err != nil {
		return entity.HistoryMessage{}, fmt.Errorf("list messages: %w", err)
	}
	for _, msg := range list.Messages {
		if msg.Role == entity.RoleAssistant {
			return a.historyMessage(msg), nil
		}
	}
	return entity.HistoryMessage{}, ErrNoResponse
}

func (a *Assistant) historyMessage(msg openai.Message) entity.HistoryMessage {
	author := entity.UserAuthor
	if msg.Role == entity.RoleAssistant {
		author = a.Name()
	}
	return entity.HistoryMessage{
		Id:        msg.ID,
		Role:      msg.Role,
		Author:    author,
		Text:      MessageText(msg),
		CreatedAt: time.Unix(int64(msg.CreatedAt), 0),
	}
}

// MessageText renders the first content part of a message.
func MessageText(msg openai.Message) string {
	if len(msg.Content) == 0 {
		return ""
	}
	part := msg.Content[0]
	switch {
	case part.Text != nil:
		return strings.TrimSpace(citationRe.ReplaceAllString(part.Text.Value, ""))
	case part.ImageFile != nil:
		return fmt.Sprintf("[image %s]", part.ImageFile.FileID)
	case part.ImageURL != nil:
		return fmt.Sprintf("[image %s]", part.ImageURL.URL)
	}
	return ""
}
