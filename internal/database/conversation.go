package repository

import (
	"Concierge/entity"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

func (m *MongoDB) UpsertConversation(conversation *entity.Conversation) error {
	collection, release, err := m.collection(conversationsCollection)
	if err != nil {
		return err
	}
	defer release()

	now := time.Now()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	conversation.UpdatedAt = now
	filter := bson.D{{Key: "user_id", Value: conversation.UserId}}
	update := bson.M{"$set": conversation}

	_, err = collection.UpdateOne(m.ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert conversation: %w", err)
	}
	return nil
}

// GetConversation returns nil without error when the user has no conversation.
func (m *MongoDB) GetConversation(userId string) (*entity.Conversation, error) {
	collection, release, err := m.collection(conversationsCollection)
	if err != nil {
		return nil, err
	}
	defer release()
	filter := bson.D{{Key: "user_id", Value: userId}}

	var conversation entity.Conversation
	err = collection.FindOne(m.ctx, filter).Decode(&conversation)
	if err != nil {
		return nil, m.findError(err)
	}
	return &conversation, nil
}

func (m *MongoDB) DeleteConversation(userId string) error {
	collection, release, err := m.collection(conversationsCollection)
	if err != nil {
		return err
	}
	defer release()
	_, err = collection.DeleteOne(m.ctx, bson.D{{Key: "user_id", Value: userId}})
	if err != nil {
		return fmt.Errorf("mongodb delete conversation: %w", err)
	}
	return nil
}
