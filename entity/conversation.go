package entity

import "time"

// Conversation binds a caller to the remote thread holding its messages.
type Conversation struct {
	UserId    string    `json:"user_id" bson:"user_id"`
	ThreadId  string    `json:"thread_id" bson:"thread_id"`
	Assistant string    `json:"assistant" bson:"assistant"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
