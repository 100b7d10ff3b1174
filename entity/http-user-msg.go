package entity

import (
	"Concierge/internal/lib/validate"
	"errors"
	"net/http"
	"strings"
)

type HttpUserMsg struct {
	UserId      string   `json:"user_id" validate:"required,max=128"`
	Message     string   `json:"message" validate:"required,max=32768"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,max=10,dive,required"`
}

func (m *HttpUserMsg) Bind(_ *http.Request) error {
	m.UserId = strings.TrimSpace(m.UserId)
	m.Message = strings.TrimSpace(m.Message)
	return validate.Struct(m)
}

type HttpUserRef struct {
	UserId string `json:"user_id" validate:"required,max=128"`
}

func (u *HttpUserRef) Bind(_ *http.Request) error {
	u.UserId = strings.TrimSpace(u.UserId)
	return validate.Struct(u)
}

// ToolSet selects the assistant's built-in tools. An empty vector store id
// keeps the one in use.
type ToolSet struct {
	Tools         []string `json:"tools" validate:"dive,oneof=file_search code_interpreter"`
	VectorStoreId string   `json:"vector_store_id,omitempty"`
}

func (t *ToolSet) Bind(_ *http.Request) error {
	return validate.Struct(t)
}

var ErrEmptyUpdate = errors.New("nothing to update")

// VectorStoreUpdate changes the name or the lifetime of the store. A field
// left out keeps its current value.
type VectorStoreUpdate struct {
	Name         string `json:"name,omitempty" validate:"omitempty,max=256"`
	LifetimeDays int    `json:"lifetime_days,omitempty" validate:"omitempty,min=1,max=365"`
}

func (v *VectorStoreUpdate) Bind(_ *http.Request) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" && v.LifetimeDays == 0 {
		return ErrEmptyUpdate
	}
	return validate.Struct(v)
}

// VectorStoreCreate names a new store. Empty fields take the configured defaults.
type VectorStoreCreate struct {
	Name         string `json:"name,omitempty" validate:"omitempty,max=256"`
	LifetimeDays int    `json:"lifetime_days,omitempty" validate:"omitempty,min=1,max=365"`
}

func (v *VectorStoreCreate) Bind(_ *http.Request) error {
	v.Name = strings.TrimSpace(v.Name)
	return validate.Struct(v)
}

type KeyRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

func (k *KeyRequest) Bind(_ *http.Request) error {
	return validate.Struct(k)
}
