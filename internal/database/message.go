package repository

import (
	"Concierge/entity"
	"fmt"
)

// SaveReply appends an assistant reply to the message log.
func (m *MongoDB) SaveReply(reply *entity.Reply) error {
	collection, release, err := m.collection(messagesCollection)
	if err != nil {
		return err
	}
	defer release()

	if _, err = collection.InsertOne(m.ctx, reply); err != nil {
		return fmt.Errorf("mongodb insert message: %w", err)
	}
	return nil
}
