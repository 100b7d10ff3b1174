package repository

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"log/slog"
)

var ErrKeyNotFound = errors.New("api key not found")

type apiKey struct {
	Username string `bson:"username"`
	Key      string `bson:"key"`
}

// CheckApiKey returns the owner of key.
func (m *MongoDB) CheckApiKey(key string) (string, error) {
	collection, release, err := m.collection(apiKeysCollection)
	if err != nil {
		return "", err
	}
	defer release()

	var result apiKey
	err = collection.FindOne(m.ctx, bson.D{{Key: "key", Value: key}}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("mongodb find api key: %w", err)
	}
	if result.Username == "" {
		return "", ErrKeyNotFound
	}
	return result.Username, nil
}

func (m *MongoDB) keyOf(username string) (string, error) {
	collection, release, err := m.collection(apiKeysCollection)
	if err != nil {
		return "", err
	}
	defer release()

	var result apiKey
	err = collection.FindOne(m.ctx, bson.D{{Key: "username", Value: username}}).Decode(&result)
	if err != nil {
		return "", m.findError(err)
	}
	return result.Key, nil
}

// GenerateApiKey returns the existing key of the user or stores a new one.
func (m *MongoDB) GenerateApiKey(username string) (string, error) {
	existing, err := m.keyOf(username)
	if err != nil {
		return "", fmt.Errorf("failed to get existing API key: %w", err)
	}
	if existing != "" {
		return existing, nil
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("uuid generation error: %w", err)
	}

	collection, release, err := m.collection(apiKeysCollection)
	if err != nil {
		return "", err
	}
	defer release()

	record := apiKey{Username: username, Key: id.String()}
	if _, err = collection.InsertOne(m.ctx, record); err != nil {
		return "", fmt.Errorf("mongodb insert error: %w", err)
	}

	m.log.With(slog.String("username", username)).Info("api key generated")
	return record.Key, nil
}
