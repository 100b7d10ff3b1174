package repository

import (
	"Concierge/entity"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

func (m *MongoDB) UpsertProfile(profile *entity.Profile) error {
	collection, release, err := m.collection(profilesCollection)
	if err != nil {
		return err
	}
	defer release()

	profile.UpdatedAt = time.Now()
	filter := bson.D{{Key: "name", Value: profile.Name}}
	update := bson.D{{Key: "$set", Value: profile}}

	opts := options.Update().SetUpsert(true)
	result, err := collection.UpdateOne(m.ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert profile: %w", err)
	}

	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return fmt.Errorf("no documents matched for upsert")
	}

	return nil
}

// GetProfile returns nil without error when no profile is stored under name.
func (m *MongoDB) GetProfile(name string) (*entity.Profile, error) {
	collection, release, err := m.collection(profilesCollection)
	if err != nil {
		return nil, err
	}
	defer release()

	filter := bson.D{{Key: "name", Value: name}}
	var profile entity.Profile
	err = collection.FindOne(m.ctx, filter).Decode(&profile)
	if err != nil {
		return nil, m.findError(err)
	}
	return &profile, nil
}
