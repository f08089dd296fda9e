package entity

import (
	"strings"
	"time"
)

// Entity is one stored domain record.
type Entity struct {
	ID          int64     `json:"id"`
	Type        Type      `json:"type"`
	TenantID    int64     `json:"tenant_id"`
	ClientID    int64     `json:"client_id,omitempty"`
	Code        string    `json:"code,omitempty"`
	Name        string    `json:"name,omitempty"`
	Title       string    `json:"title,omitempty"`
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	AssignedTo  int64     `json:"assigned_to,omitempty"`
	CreatedBy   int64     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Field returns the value of a searchable column.
func (e Entity) Field(name string) string {
	switch name {
	case FieldCode:
		return e.Code
	case FieldName:
		return e.Name
	case FieldTitle:
		return e.Title
	case FieldEmail:
		return e.Email
	case FieldDescription:
		return e.Description
	}
	return ""
}

// Label returns the most human-readable identifier of the record.
func (e Entity) Label() string {
	for _, v := range []string{e.Name, e.Title, e.Code, e.Email} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return string(e.Type)
}

// ClientKey returns the client the record belongs to; a client is its own.
func (e Entity) ClientKey() int64 {
	if e.Type == Client {
		return e.ID
	}
	return e.ClientID
}

// Touched returns the last modification time, falling back to creation time.
func (e Entity) Touched() time.Time {
	if !e.UpdatedAt.IsZero() {
		return e.UpdatedAt
	}
	return e.CreatedAt
}

// IsSearchableField reports whether name is one of the shared text columns.
func IsSearchableField(name string) bool {
	switch name {
	case FieldCode, FieldName, FieldTitle, FieldEmail, FieldDescription:
		return true
	}
	return false
}
