package entity

import "time"

const (
	ToolFileSearch      = "file_search"
	ToolCodeInterpreter = "code_interpreter"
)

// Profile is the locally persisted description of a remote assistant.
type Profile struct {
	Name          string    `json:"name" bson:"name" validate:"required"`
	Id            string    `json:"id" bson:"id"`
	Model         string    `json:"model" bson:"model"`
	Instructions  string    `json:"instructions" bson:"instructions"`
	Temperature   float32   `json:"temperature" bson:"temperature"`
	TopP          float32   `json:"top_p" bson:"top_p"`
	Tools         []string  `json:"tools" bson:"tools"`
	VectorStoreId string    `json:"vector_store_id" bson:"vector_store_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// HasTool reports whether the built-in tool is enabled on the profile.
func (p *Profile) HasTool(name string) bool {
	for _, tool := range p.Tools {
		if tool == name {
			return true
		}
	}
	return false
}

type AssistantInfo struct {
	Profile         Profile           `json:"profile"`
	Characteristics map[string]string `json:"characteristics"`
	Functions       []string          `json:"functions"`
}
