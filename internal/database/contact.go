package repository

import (
	"Concierge/entity"
	"fmt"
)

func (m *MongoDB) SaveContact(contact *entity.Contact) error {
	return m.insert(contactsCollection, contact)
}

func (m *MongoDB) SaveQuestion(question *entity.Question) error {
	return m.insert(questionsCollection, question)
}

func (m *MongoDB) insert(name string, document interface{}) error {
	collection, release, err := m.collection(name)
	if err != nil {
		return err
	}
	defer release()

	if _, err = collection.InsertOne(m.ctx, document); err != nil {
		return fmt.Errorf("mongodb insert into %s: %w", name, err)
	}
	return nil
}
