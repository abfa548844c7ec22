package service

import (
	"errors"
	"strings"
)

var (
	ErrForbidden          = errors.New("forbidden: insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type AuditEntry struct {
	ActorID      string
	ActorRole    string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      string
}
