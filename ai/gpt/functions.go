package gpt

import (
	"Concierge/internal/lib/sl"
	"context"
	"encoding/json"
	"fmt"
	"github.com/invopop/jsonschema"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var functionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Function is a callable the remote model may request during a run.
type Function interface {
	Name() string
	Definition() openai.FunctionDefinition
	Call(ctx context.Context, arguments string) (string, error)
}

// Fallback is implemented by functions that answer with a fixed value when
// their call fails.
type Fallback interface {
	Fallback() string
}

type typedFunction[A any] struct {
	name        string
	description string
	fallback    string
	parameters  json.RawMessage
	fn          func(ctx context.Context, args A) (string, error)
}

// NewFunction builds a Function whose parameters schema is reflected from A.
// The model's arguments are decoded into A before fn is called.
func NewFunction[A any](name, description string, fn func(ctx context.Context, args A) (string, error), fallback string) Function {
	return &typedFunction[A]{
		name:        name,
		description: description,
		fallback:    fallback,
		parameters:  reflectParameters(reflect.TypeOf((*A)(nil)).Elem()),
		fn:          fn,
	}
}

func (f *typedFunction[A]) Name() string {
	return f.name
}

func (f *typedFunction[A]) Fallback() string {
	return f.fallback
}

func (f *typedFunction[A]) Definition() openai.FunctionDefinition {
	return openai.FunctionDefinition{
		Name:        f.name,
		Description: f.description,
		Parameters:  f.parameters,
	}
}

func (f *typedFunction[A]) Call(ctx context.Context, arguments string) (string, error) {
	var args A
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("decode arguments: %w", err)
		}
	}
	return f.fn(ctx, args)
}

// reflectParameters inlines the schema of t. The root is not expanded from
// the definitions since unnamed structs never get a definition.
func reflectParameters(t reflect.Type) json.RawMessage {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
		Anonymous:                 true,
	}
	schema := reflector.ReflectFromType(t)
	if schema == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	schema.Version = ""
	schema.ID = ""
	schema.Definitions = nil

	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

// Registry maps function names to the functions an assistant exposes.
type Registry struct {
	mutex     sync.RWMutex
	functions map[string]Function
	log       *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		functions: make(map[string]Function),
		log:       log.With(sl.Module("functions")),
	}
}

func (r *Registry) Register(functions ...Function) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, fn := range functions {
		name := fn.Name()
		if !functionNameRe.MatchString(name) {
			return fmt.Errorf("invalid function name %q", name)
		}
		if _, ok := r.functions[name]; ok {
			return fmt.Errorf("function %q already registered", name)
		}
		r.functions[name] = fn
	}
	return nil
}

// Names returns registered function names in lexical order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Tools() []openai.AssistantTool {
	names := r.Names()

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tools := make([]openai.AssistantTool, 0, len(names))
	for _, name := range names {
		def := r.functions[name].Definition()
		tools = append(tools, openai.AssistantTool{
			Type:     openai.AssistantToolTypeFunction,
			Function: &def,
		})
	}
	return tools
}

// Dispatch runs the requested function and returns the output to submit.
// Failed calls answer with the function's fallback value.
func (r *Registry) Dispatch(ctx context.Context, call openai.ToolCall) (string, error) {
	name := call.Function.Name

	r.mutex.RLock()
	fn, ok := r.functions[name]
	r.mutex.RUnlock()

	log := r.log.With(
		slog.String("function", name),
		slog.String("args", call.Function.Arguments),
	)

	if !ok {
		log.Warn("unknown function requested")
		return fmt.Sprintf("unknown function %s", name), ErrUnknownFunction
	}

	log.Debug("calling function")
	output, err := fn.Call(ctx, call.Function.Arguments)
	if err != nil {
		log.Error("function call", sl.Err(err))
		if fb, ok := fn.(Fallback); ok {
			return fb.Fallback(), err
		}
		return fmt.Sprintf("error calling %s: %v", name, err), err
	}
	return output, nil
}

type ctxKey int

const userIdKey ctxKey = iota

// WithUserID carries the calling user to registered functions.
func WithUserID(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func UserIDFrom(ctx context.Context) string {
	userId, _ := ctx.Value(userIdKey).(string)
	return userId
}
