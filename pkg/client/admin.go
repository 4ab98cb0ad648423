package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/crowncreative/portal/pkg/domain"
)

// --- Admin ---

// CreateClientRequest is the payload for an admin-created client account.
type CreateClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListUsers searches users by name/email substring and role.
func (c *Client) ListUsers(ctx context.Context, search string, role domain.Role) ([]domain.User, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if role != "" {
		params.Set("role", string(role))
	}
	path := "/api/admin/users"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var users []domain.User
	if err := c.get(ctx, path, &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// GetUser fetches a single user.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/admin/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	path := "/api/admin/users/" + url.PathEscape(id) + "/role?" + url.Values{"role": {string(role)}}.Encode()
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("client.UpdateUserRole: %w", err)
	}
	return nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	return nil
}

// CreateClient creates a client account on someone's behalf.
func (c *Client) CreateClient(ctx context.Context, req CreateClientRequest) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/api/admin/users/create-client", req, &u); err != nil {
		return nil, fmt.Errorf("client.CreateClient: %w", err)
	}
	return &u, nil
}

// Stats returns dashboard aggregates.
func (c *Client) Stats(ctx context.Context) (*domain.AdminStats, error) {
	var s domain.AdminStats
	if err := c.get(ctx, "/api/admin/stats", &s); err != nil {
		return nil, fmt.Errorf("client.Stats: %w", err)
	}
	return &s, nil
}

// --- Client projects ---

// ClientProjectUpdate patches a client's project board. Nil fields are left
// unchanged.
type ClientProjectUpdate struct {
	StatusText         *string           `json:"status_text,omitempty"`
	ProgressPercentage *int              `json:"progress_percentage,omitempty"`
	NextSteps          []domain.NextStep `json:"next_steps,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
}

// ProjectFileRequest attaches an uploaded asset to a client project board.
type ProjectFileRequest struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	PublicID    string `json:"public_id"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	UploadedBy  string `json:"uploaded_by"`
	Description string `json:"description,omitempty"`
}

// CheckOperator asks whether the caller may use the client-project workspace.
func (c *Client) CheckOperator(ctx context.Context) (*domain.OperatorCheck, error) {
	var oc domain.OperatorCheck
	if err := c.get(ctx, "/api/client-projects/check-admin", &oc); err != nil {
		return nil, fmt.Errorf("client.CheckOperator: %w", err)
	}
	return &oc, nil
}

// ListClients returns every client with a summary of their board.
func (c *Client) ListClients(ctx context.Context) ([]domain.ClientOverview, error) {
	var clients []domain.ClientOverview
	if err := c.get(ctx, "/api/client-projects/admin/clients", &clients); err != nil {
		return nil, fmt.Errorf("client.ListClients: %w", err)
	}
	return clients, nil
}

// GetClientProject fetches a client's board, creating it on first access.
func (c *Client) GetClientProject(ctx context.Context, userID string) (*domain.ClientProject, error) {
	var p domain.ClientProject
	if err := c.get(ctx, "/api/client-projects/admin/client/"+url.PathEscape(userID), &p); err != nil {
		return nil, fmt.Errorf("client.GetClientProject: %w", err)
	}
	return &p, nil
}

// UpdateClientProject patches a client's board.
func (c *Client) UpdateClientProject(ctx context.Context, userID string, upd ClientProjectUpdate) (*domain.ClientProject, error) {
	var p domain.ClientProject
	if err := c.doRequest(ctx, http.MethodPut, "/api/client-projects/admin/client/"+url.PathEscape(userID), upd, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateClientProject: %w", err)
	}
	return &p, nil
}

// AddNextStep appends a checklist item to a client's board.
func (c *Client) AddNextStep(ctx context.Context, userID, text string) (*domain.NextStep, error) {
	path := "/api/client-projects/admin/client/" + url.PathEscape(userID) + "/next-step?" + url.Values{"text": {text}}.Encode()
	var resp struct {
		Step domain.NextStep `json:"step"`
	}
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("client.AddNextStep: %w", err)
	}
	return &resp.Step, nil
}

// RemoveNextStep deletes a checklist item from a client's board.
func (c *Client) RemoveNextStep(ctx context.Context, userID, stepID string) error {
	path := "/api/client-projects/admin/client/" + url.PathEscape(userID) + "/next-step/" + url.PathEscape(stepID)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.RemoveNextStep: %w", err)
	}
	return nil
}

// GetMyProject returns the caller's own board.
func (c *Client) GetMyProject(ctx context.Context) (*domain.ClientProject, error) {
	var p domain.ClientProject
	if err := c.get(ctx, "/api/client-projects/my-project", &p); err != nil {
		return nil, fmt.Errorf("client.GetMyProject: %w", err)
	}
	return &p, nil
}

// ToggleNextStep marks one of the caller's checklist items done or not done.
func (c *Client) ToggleNextStep(ctx context.Context, stepID string, completed bool) error {
	path := "/api/client-projects/my-project/next-step/" + url.PathEscape(stepID) + "?" + url.Values{"completed": {boolParam(completed)}}.Encode()
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("client.ToggleNextStep: %w", err)
	}
	return nil
}

// UploadProjectFile attaches an uploaded asset to a client's board.
func (c *Client) UploadProjectFile(ctx context.Context, userID string, req ProjectFileRequest) (*domain.ProjectFile, error) {
	var f domain.ProjectFile
	if err := c.post(ctx, "/api/client-projects/files/"+url.PathEscape(userID), req, &f); err != nil {
		return nil, fmt.Errorf("client.UploadProjectFile: %w", err)
	}
	return &f, nil
}

// ListProjectFiles returns files attached to a client's board.
func (c *Client) ListProjectFiles(ctx context.Context, userID string) ([]domain.ProjectFile, error) {
	var files []domain.ProjectFile
	if err := c.get(ctx, "/api/client-projects/files/"+url.PathEscape(userID), &files); err != nil {
		return nil, fmt.Errorf("client.ListProjectFiles: %w", err)
	}
	return files, nil
}

// DeleteProjectFile removes a file from a client's board.
func (c *Client) DeleteProjectFile(ctx context.Context, fileID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/client-projects/files/"+url.PathEscape(fileID), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteProjectFile: %w", err)
	}
	return nil
}
