package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultWorkflow is used when the caller supplies no workflow hint
const DefaultWorkflow = "general"

// Context carries the caller's identity and hints for one call.
// Zero ids mean "absent"; it is never persisted.
type Context struct {
	TenantID         int64  `json:"tenant_id"`
	UserID           int64  `json:"user_id"`
	SelectedClientID int64  `json:"selected_client_id,omitempty"`
	Workflow         string `json:"workflow,omitempty"`
}

// HasTenant reports whether the call is tenant-scoped.
func (c Context) HasTenant() bool {
	return c.TenantID != 0
}

// HasUser reports whether the call carries an authenticated user.
func (c Context) HasUser() bool {
	return c.UserID != 0
}

// HasClient reports whether a client is selected.
func (c Context) HasClient() bool {
	return c.SelectedClientID != 0
}

// WorkflowOrDefault returns the lower-cased workflow hint or DefaultWorkflow.
func (c Context) WorkflowOrDefault() string {
	w := strings.ToLower(strings.TrimSpace(c.Workflow))
	if w == "" {
		return DefaultWorkflow
	}
	return w
}

// Key serializes the context deterministically for cache keys.
func (c Context) Key() string {
	return fmt.Sprintf("t%d.u%d.c%d.w%s", c.TenantID, c.UserID, c.SelectedClientID, c.WorkflowOrDefault())
}

// LearningKey identifies the situation a command ran in for contextual
// suggestions: the workflow and the selected client. It never contains ':'.
func (c Context) LearningKey() string {
	return fmt.Sprintf("%s@%d", strings.ReplaceAll(c.WorkflowOrDefault(), ":", "_"), c.SelectedClientID)
}

// Map renders the context as the string map carried by parsed commands.
func (c Context) Map() map[string]string {
	m := make(map[string]string, 4)
	if c.TenantID != 0 {
		m["tenant_id"] = strconv.FormatInt(c.TenantID, 10)
	}
	if c.UserID != 0 {
		m["user_id"] = strconv.FormatInt(c.UserID, 10)
	}
	if c.SelectedClientID != 0 {
		m["client_id"] = strconv.FormatInt(c.SelectedClientID, 10)
	}
	if w := strings.TrimSpace(c.Workflow); w != "" {
		m["workflow"] = w
	}
	return m
}
