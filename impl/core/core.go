package core

import (
	"Concierge/ai/gpt"
	"Concierge/ai/vectorstore"
	"Concierge/entity"
	"Concierge/internal/config"
	"Concierge/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)

	UpsertProfile(profile *entity.Profile) error
	GetProfile(name string) (*entity.Profile, error)

	UpsertConversation(conversation *entity.Conversation) error
	GetConversation(userId string) (*entity.Conversation, error)
	DeleteConversation(userId string) error

	SaveReply(reply *entity.Reply) error
	SaveContact(contact *entity.Contact) error
	SaveQuestion(question *entity.Question) error

	ArchiveFile(filename string, reader io.Reader, meta entity.FileMetadata) (string, int64, error)
	ArchivedFile(id string) (string, entity.FileMetadata, io.ReadCloser, error)
}

// OpenAI is the remote surface used by the assistant and its vector store.
type OpenAI interface {
	gpt.API
	vectorstore.API
}

type Publisher interface {
	Publish(event entity.RunEvent)
}

// Notifier receives short reports for the operator.
type Notifier interface {
	SendMessage(msg string)
}

var ErrNotReady = errors.New("assistant is not initialized")

type Core struct {
	conf      *config.Config
	api       OpenAI
	repo      Repository
	publisher Publisher
	notifier  Notifier
	assistant *gpt.Assistant
	storage   *vectorstore.Storage
	locker    *gpt.LockThreads
	threads   map[string]string
	authKey   string
	keys      map[string]string
	mutex     sync.RWMutex
	log       *slog.Logger
}

func New(conf *config.Config, log *slog.Logger) *Core {
	return &Core{
		conf:    conf,
		locker:  gpt.NewLockThreads(),
		threads: make(map[string]string),
		keys:    make(map[string]string),
		log:     log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetOpenAI(api OpenAI) {
	c.api = api
}

func (c *Core) SetPublisher(publisher Publisher) {
	c.publisher = publisher
}

func (c *Core) SetNotifier(notifier Notifier) {
	c.notifier = notifier
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

// Init prepares the vector store and the assistant, then schedules the daily
// maintenance when it is enabled.
func (c *Core) Init(ctx context.Context) error {
	if c.api == nil {
		return fmt.Errorf("openai client is not set")
	}

	profile, err := c.loadProfile()
	if err != nil {
		return err
	}

	storage, err := c.openStorage(ctx, profile.VectorStoreId)
	if err != nil {
		return err
	}

	if c.conf.Maintenance.Enabled {
		report, err := c.cleanup(ctx, profile.Id, storage)
		if err != nil {
			c.log.Error("startup maintenance", sl.Err(err))
		} else {
			c.log.With(slog.Any("report", report)).Info("startup maintenance")
		}
	}

	storeChanged := profile.VectorStoreId != storage.ID()
	profile.VectorStoreId = storage.ID()

	registry := gpt.NewRegistry(c.log)
	if err = registry.Register(c.builtinFunctions()...); err != nil {
		return fmt.Errorf("register functions: %w", err)
	}

	assistant, err := gpt.NewAssistant(ctx, c.api, *profile, registry, gpt.OptionsFromConfig(c.conf), c.log)
	if err != nil {
		return err
	}
	if storeChanged && assistant.ID() == profile.Id {
		current := assistant.Profile()
		if err = assistant.UpdateToolSet(ctx, current.Tools, storage.ID()); err != nil {
			return err
		}
	}

	c.mutex.Lock()
	c.storage = storage
	c.assistant = assistant
	c.mutex.Unlock()

	c.saveProfile()

	if c.conf.Maintenance.Enabled {
		go c.maintenanceLoop(ctx)
	}

	c.log.With(
		slog.String("assistant", assistant.ID()),
		slog.String("vector_store", storage.ID()),
	).Info("core initialized")
	return nil
}

func (c *Core) loadProfile() (*entity.Profile, error) {
	name := c.conf.Assistant.Name
	if c.repo != nil {
		stored, err := c.repo.GetProfile(name)
		if err != nil {
			c.log.With(slog.String("name", name)).Error("loading profile", sl.Err(err))
		}
		if stored != nil {
			return stored, nil
		}
	}

	instructions := c.conf.Assistant.Instructions
	if c.conf.Assistant.InstructionsFile != "" {
		data, err := os.ReadFile(c.conf.Assistant.InstructionsFile)
		if err != nil {
			return nil, fmt.Errorf("read instructions: %w", err)
		}
		instructions = string(data)
	}

	return &entity.Profile{
		Name:         name,
		Model:        c.conf.OpenAI.Model,
		Instructions: instructions,
		Temperature:  c.conf.OpenAI.Temperature,
		TopP:         c.conf.OpenAI.TopP,
		Tools:        append([]string(nil), c.conf.Assistant.Tools...),
		CreatedAt:    time.Now(),
	}, nil
}

func (c *Core) openStorage(ctx context.Context, id string) (*vectorstore.Storage, error) {
	if id != "" {
		storage, err := vectorstore.Open(ctx, c.api, id, c.log)
		if err == nil {
			var attrs entity.VectorStoreAttributes
			attrs, err = storage.Attributes(ctx)
			if err == nil && attrs.Status != "expired" {
				return storage, nil
			}
		}
		c.log.With(slog.String("id", id)).Warn("stored vector store unavailable", sl.Err(err))
	}

	storage, err := vectorstore.FindOrCreate(ctx, c.api,
		c.conf.VectorStore.Name,
		c.conf.VectorStore.LifetimeDays,
		c.conf.Assistant.SeedFiles,
		c.log)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	return storage, nil
}

func (c *Core) saveProfile() {
	if c.repo == nil {
		return
	}
	assistant := c.getAssistant()
	if assistant == nil {
		return
	}
	profile := assistant.Profile()
	if err := c.repo.UpsertProfile(&profile); err != nil {
		c.log.With(slog.String("name", profile.Name)).Error("saving profile", sl.Err(err))
	}
}

func (c *Core) getAssistant() *gpt.Assistant {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.assistant
}

func (c *Core) getStorage() *vectorstore.Storage {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.storage
}

func (c *Core) maintenanceLoop(ctx context.Context) {
	for {
		next := nextRun(time.Now(), c.conf.Maintenance.Hour)
		c.log.With(
			slog.Time("nextRun", next),
		).Info("next maintenance")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := c.RunMaintenance(ctx); err != nil {
			c.log.Error("scheduled maintenance", sl.Err(err))
		}
	}
}

// nextRun is the next moment at the given hour strictly after now.
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
