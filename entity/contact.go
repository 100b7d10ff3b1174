package entity

import "time"

// Contact is an email left by a client during a conversation.
type Contact struct {
	Email       string    `json:"email" bson:"email"`
	CompanyName string    `json:"company_name" bson:"company_name"`
	UserId      string    `json:"user_id" bson:"user_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Question is a user question the assistant could not answer.
type Question struct {
	Text      string    `json:"text" bson:"text"`
	UserId    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
