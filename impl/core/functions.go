package core

import (
	"Concierge/ai/gpt"
	"Concierge/entity"
	"Concierge/internal/lib/validate"
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	functionSuccess = "True"
	functionFailure = "False"
)

type clientEmailArgs struct {
	ClientEmail       string `json:"client_email" validate:"required,email" jsonschema:"description=The email address the client shared"`
	ClientCompanyName string `json:"client_company_name" validate:"max=256" jsonschema:"description=The company the client works for"`
}

type unanswerableArgs struct {
	Question string `json:"question" validate:"required" jsonschema:"description=The question that could not be answered from the available files"`
}

func (c *Core) builtinFunctions() []gpt.Function {
	return []gpt.Function{
		gpt.NewFunction("record_client_email",
			"Saves a client's email address and company name so the team can follow up.",
			c.recordClientEmail, functionFailure),
		gpt.NewFunction("unanswerable_question",
			"Records a question the assistant could not answer.",
			c.recordUnanswerable, functionFailure),
	}
}

func (c *Core) recordClientEmail(ctx context.Context, args clientEmailArgs) (string, error) {
	args.ClientEmail = strings.TrimSpace(args.ClientEmail)
	args.ClientCompanyName = strings.TrimSpace(args.ClientCompanyName)
	if err := validate.Struct(args); err != nil {
		return "", err
	}

	contact := &entity.Contact{
		Email:       args.ClientEmail,
		CompanyName: args.ClientCompanyName,
		UserId:      gpt.UserIDFrom(ctx),
		CreatedAt:   time.Now(),
	}

	c.log.With(
		slog.String("user", contact.UserId),
		slog.String("company", contact.CompanyName),
	).Info("client email received")

	if c.repo != nil {
		if err := c.repo.SaveContact(contact); err != nil {
			return "", err
		}
	}
	return functionSuccess, nil
}

func (c *Core) recordUnanswerable(ctx context.Context, args unanswerableArgs) (string, error) {
	args.Question = strings.TrimSpace(args.Question)
	if err := validate.Struct(args); err != nil {
		return "", err
	}
	text := args.Question

	question := &entity.Question{
		Text:      text,
		UserId:    gpt.UserIDFrom(ctx),
		CreatedAt: time.Now(),
	}

	c.log.With(
		slog.String("user", question.UserId),
		slog.String("question", text),
	).Info("unanswerable question")

	if c.repo != nil {
		if err := c.repo.SaveQuestion(question); err != nil {
			return "", err
		}
	}
	return functionSuccess, nil
}
