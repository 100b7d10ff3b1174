package core

import (
	"Concierge/ai/gpt"
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ComposeResponse posts the user's message to their thread, runs the
// assistant and returns its newest reply.
func (c *Core) ComposeResponse(ctx context.Context, userId, message string, attachments []string) (*entity.Reply, error) {
	assistant := c.getAssistant()
	if assistant == nil {
		return nil, ErrNotReady
	}

	c.locker.Lock(userId)
	defer c.locker.Unlock(userId)

	log := c.log.With(slog.String("user", userId))

	threadId, err := c.threadFor(ctx, assistant, userId)
	if err != nil {
		return nil, err
	}

	_, err = assistant.SendMessage(ctx, threadId, message, attachments)
	if gpt.IsNotFound(err) {
		log.With(slog.String("thread", threadId)).Warn("thread is gone, starting a new one")
		threadId, err = c.newThread(ctx, assistant, userId)
		if err != nil {
			return nil, err
		}
		_, err = assistant.SendMessage(ctx, threadId, message, attachments)
	}
	if err != nil {
		return nil, err
	}

	run, err := assistant.Run(ctx, threadId, gpt.RunOptions{
		UserId:   userId,
		Observer: c.publish,
	})
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	latest, err := assistant.LatestResponse(ctx, threadId, run.ID)
	if err != nil {
		return nil, err
	}

	reply := &entity.Reply{
		UserId:    userId,
		ThreadId:  threadId,
		RunId:     run.ID,
		Question:  message,
		Text:      latest.Text,
		CreatedAt: time.Now(),
	}

	c.publish(entity.RunEvent{
		Type:     entity.EventReply,
		UserId:   userId,
		ThreadId: threadId,
		RunId:    run.ID,
		Text:     reply.Text,
	})

	if c.repo != nil {
		if err = c.repo.SaveReply(reply); err != nil {
			log.Error("saving reply", sl.Err(err))
		}
	}

	log.With(
		slog.String("thread", threadId),
		slog.Int("text_length", len(reply.Text)),
	).Debug("reply composed")
	return reply, nil
}

// History returns the formatted recent messages of the user's thread.
func (c *Core) History(ctx context.Context, userId string) ([]entity.HistoryMessage, error) {
	assistant := c.getAssistant()
	if assistant == nil {
		return nil, ErrNotReady
	}

	threadId, err := c.lookupThread(userId)
	if err != nil {
		return nil, err
	}
	if threadId == "" {
		return []entity.HistoryMessage{}, nil
	}
	return assistant.History(ctx, threadId, c.conf.OpenAI.HistoryLength)
}

// ResetConversation deletes the user's thread so the next message starts fresh.
func (c *Core) ResetConversation(ctx context.Context, userId string) error {
	assistant := c.getAssistant()
	if assistant == nil {
		return ErrNotReady
	}

	c.locker.Lock(userId)
	defer c.locker.Unlock(userId)

	threadId, err := c.lookupThread(userId)
	if err != nil {
		return err
	}
	if threadId == "" {
		return nil
	}

	if err = assistant.DeleteThread(ctx, threadId); err != nil {
		return err
	}

	c.mutex.Lock()
	delete(c.threads, userId)
	c.mutex.Unlock()

	if c.repo != nil {
		if err = c.repo.DeleteConversation(userId); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
	}

	c.log.With(
		slog.String("user", userId),
		slog.String("thread", threadId),
	).Info("reset conversation")
	return nil
}

func (c *Core) threadFor(ctx context.Context, assistant *gpt.Assistant, userId string) (string, error) {
	threadId, err := c.lookupThread(userId)
	if err != nil {
		return "", err
	}
	if threadId != "" {
		return threadId, nil
	}
	return c.newThread(ctx, assistant, userId)
}

func (c *Core) lookupThread(userId string) (string, error) {
	if c.repo == nil {
		c.mutex.RLock()
		defer c.mutex.RUnlock()
		return c.threads[userId], nil
	}

	conversation, err := c.repo.GetConversation(userId)
	if err != nil {
		return "", fmt.Errorf("get conversation: %w", err)
	}
	if conversation == nil {
		return "", nil
	}
	return conversation.ThreadId, nil
}

func (c *Core) newThread(ctx context.Context, assistant *gpt.Assistant, userId string) (string, error) {
	threadId, err := assistant.NewThread(ctx)
	if err != nil {
		return "", err
	}

	if c.repo == nil {
		c.mutex.Lock()
		c.threads[userId] = threadId
		c.mutex.Unlock()
		return threadId, nil
	}

	err = c.repo.UpsertConversation(&entity.Conversation{
		UserId:    userId,
		ThreadId:  threadId,
		Assistant: assistant.Name(),
	})
	if err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}
	return threadId, nil
}

func (c *Core) publish(event entity.RunEvent) {
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}
