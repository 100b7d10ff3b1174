package entity

import (
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	UserAuthor = "User"
)

type HistoryMessage struct {
	Id        string    `json:"id"`
	Role      string    `json:"role"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (m HistoryMessage) String() string {
	return fmt.Sprintf("%s: %s", m.Author, m.Text)
}

// Reply is one answered exchange, also kept as the message log.
type Reply struct {
	UserId    string    `json:"user_id" bson:"user_id"`
	ThreadId  string    `json:"thread_id" bson:"thread_id"`
	RunId     string    `json:"run_id" bson:"run_id"`
	Question  string    `json:"question" bson:"question"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
