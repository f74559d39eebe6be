package api

import (
	"time"

	"quill/internal/models"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Code      string             `json:"code,omitempty"`
	ErrorCode int                `json:"error_code,omitempty"`
	Fields    []FieldErrorDetail `json:"fields,omitempty"`
}

// FieldErrorDetail names one invalid request field.
type FieldErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	DBPath        string         `json:"db_path,omitempty"`
	SchemaVersion int            `json:"schema_version"`
	Alive         map[string]int `json:"alive"`
	Deleted       map[string]int `json:"deleted"`
	Users         int            `json:"users"`
	Media         int            `json:"media"`
}

// IDsRequest carries the selection for bulk admin actions.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// BulkActionResponse reports how many rows a bulk action changed.
type BulkActionResponse struct {
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// PurgeResponse reports a hard delete.
type PurgeResponse struct {
	Entity      string   `json:"entity"`
	ID          string   `json:"id"`
	Deleted     bool     `json:"deleted"`
	PurgedFiles []string `json:"purged_files"`
}

// AuthLoginRequest defines payload for browser/session login.
type AuthLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMeResponse reports current auth state for the caller.
type AuthMeResponse struct {
	Authenticated bool         `json:"authenticated"`
	AuthType      string       `json:"auth_type,omitempty"`
	Staff         bool         `json:"staff"`
	Admin         bool         `json:"admin"`
	User          *models.User `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

// AuthLoginResponse is returned by POST /v1/auth/login. The token is the same
// value set in the session cookie, for non-browser clients.
type AuthLoginResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}
