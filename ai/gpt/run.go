package gpt

import (
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"context"
	"fmt"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"time"
)

// RunObserver receives status changes and function calls of a run.
type RunObserver func(event entity.RunEvent)

type RunOptions struct {
	UserId              string
	MaxPromptTokens     int
	MaxCompletionTokens int
	Observer            RunObserver
}

// RunError reports a run that ended in a failed terminal state.
type RunError struct {
	RunId   string
	Status  openai.RunStatus
	Code    string
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run %s %s", e.RunId, e.Status)
	}
	return fmt.Sprintf("run %s %s: %s", e.RunId, e.Status, e.Message)
}

func newRunError(run openai.Run) *RunError {
	runErr := &RunError{RunId: run.ID, Status: run.Status}
	if run.LastError != nil {
		runErr.Code = string(run.LastError.Code)
		runErr.Message = run.LastError.Message
	}
	return runErr
}

// Run starts a run of the assistant on the thread and polls it to a terminal
// state, dispatching requested function calls on the way.
func (a *Assistant) Run(ctx context.Context, threadId string, opts RunOptions) (openai.Run, error) {
	assistantId := a.ID()
	if assistantId == "" {
		return openai.Run{}, ErrNoAssistant
	}
	if opts.MaxPromptTokens == 0 {
		opts.MaxPromptTokens = a.opts.MaxPromptTokens
	}
	if opts.MaxCompletionTokens == 0 {
		opts.MaxCompletionTokens = a.opts.MaxCompletionTokens
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.RunTimeout)
	defer cancel()
	ctx = WithUserID(ctx, opts.UserId)

	log := a.log.With(
		slog.String("thread", threadId),
		slog.String("user", opts.UserId),
	)

	var lastErr error
	for attempt := 0; attempt < a.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, a.opts.RetryDelay); err != nil {
				return openai.Run{}, err
			}
		}

		run, err := a.api.CreateRun(ctx, threadId, openai.RunRequest{
			AssistantID:         assistantId,
			MaxPromptTokens:     opts.MaxPromptTokens,
			MaxCompletionTokens: opts.MaxCompletionTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return openai.Run{}, ctx.Err()
			}
			log.With(slog.Int("attempt", attempt+1)).Error("creating run", sl.Err(err))
			lastErr = err
			continue
		}

		return a.poll(ctx, threadId, run, opts, log.With(slog.String("run", run.ID)))
	}

	return openai.Run{}, fmt.Errorf("create run after %d attempts: %w", a.opts.MaxRetries, lastErr)
}

func (a *Assistant) poll(ctx context.Context, threadId string, run openai.Run, opts RunOptions, log *slog.Logger) (openai.Run, error) {
	notify := func(event entity.RunEvent) {
		if opts.Observer == nil {
			return
		}
		event.UserId = opts.UserId
		event.ThreadId = threadId
		event.RunId = run.ID
		opts.Observer(event)
	}

	status := run.Status
	notify(entity.RunEvent{Type: entity.EventRunStatus, Status: string(status)})

	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()

	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			log.Debug("run completed")
			return run, nil
		case openai.RunStatusRequiresAction:
			next, err := a.submitToolOutputs(ctx, threadId, run, notify, log)
			if err != nil {
				a.cancelRun(threadId, run.ID, log)
				if ctx.Err() != nil {
					return run, ctx.Err()
				}
				return run, err
			}
			run = next
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusIncomplete:
			runErr := newRunError(run)
			log.With(slog.String("status", string(run.Status))).Error("run failed", sl.Err(runErr))
			return run, runErr
		default:
			// queued, in_progress or cancelling
		}

		select {
		case <-ctx.Done():
			a.cancelRun(threadId, run.ID, log)
			return run, ctx.Err()
		case <-ticker.C:
		}

		next, err := a.api.RetrieveRun(ctx, threadId, run.ID)
		if err != nil {
			a.cancelRun(threadId, run.ID, log)
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			return run, fmt.Errorf("retrieve run: %w", err)
		}
		run = next

		if run.Status != status {
			status = run.Status
			log.With(slog.String("status", string(status))).Debug("run status")
			notify(entity.RunEvent{Type: entity.EventRunStatus, Status: string(status)})
		}
	}
}

func (a *Assistant) submitToolOutputs(ctx context.Context, threadId string, run openai.Run, notify func(entity.RunEvent), log *slog.Logger) (openai.Run, error) {
	action := run.RequiredAction
	if action == nil || action.Type != openai.RequiredActionTypeSubmitToolOutputs || action.SubmitToolOutputs == nil {
		return run, nil
	}

	outputs := make([]openai.ToolOutput, 0, len(action.SubmitToolOutputs.ToolCalls))
	for _, call := range action.SubmitToolOutputs.ToolCalls {
		// failures are logged by the registry and answered with a fallback
		output, _ := a.registry.Dispatch(ctx, call)
		notify(entity.RunEvent{
			Type:     entity.EventFunctionCall,
			Function: call.Function.Name,
			Text:     output,
		})
		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     output,
		})
	}

	next, err := a.api.SubmitToolOutputs(ctx, threadId, run.ID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return run, fmt.Errorf("submit tool outputs: %w", err)
	}
	return next, nil
}

func (a *Assistant) cancelRun(threadId, runId string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := a.api.CancelRun(ctx, threadId, runId); err != nil {
		log.Warn("cancelling run", sl.Err(err))
		return
	}
	log.Info("run cancelled")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
