package repository

import (
	"Concierge/internal/config"
	"Concierge/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log/slog"
)

const (
	apiKeysCollection       = "api-keys"
	profilesCollection      = "assistant"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
	contactsCollection      = "contacts"
	questionsCollection     = "questions"
)

// MongoDB opens a fresh connection for every call and closes it when done.
type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

// NewMongoClient returns nil when mongo is disabled in the config.
func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	clientOptions := options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port))
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	return &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	if err := connection.Disconnect(m.ctx); err != nil {
		m.log.Debug("mongodb disconnect", sl.Err(err))
	}
}

// collection connects and returns the named collection together with the
// function that releases the connection.
func (m *MongoDB) collection(name string) (*mongo.Collection, func(), error) {
	connection, err := m.connect()
	if err != nil {
		return nil, nil, err
	}
	release := func() { m.disconnect(connection) }
	return connection.Database(m.database).Collection(name), release, nil
}

// findError turns a missing document into a nil error.
func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find error: %w", err)
}
