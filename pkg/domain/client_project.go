package domain

// NextStep is one checklist item on a client's project board.
type NextStep struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ClientProject is the operator-maintained status board for one client.
type ClientProject struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	UserName           string     `json:"user_name,omitempty"`
	UserEmail          string     `json:"user_email,omitempty"`
	StatusText         string     `json:"status_text"`
	ProgressPercentage int        `json:"progress_percentage"`
	NextSteps          []NextStep `json:"next_steps"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          Time       `json:"created_at"`
	UpdatedAt          Time       `json:"updated_at"`
}

// WithStepToggled returns a copy with the given step's completion set.
// The second result is false when the step is unknown.
func (p ClientProject) WithStepToggled(stepID string, completed bool) (ClientProject, bool) {
	steps := make([]NextStep, len(p.NextSteps))
	copy(steps, p.NextSteps)
	for i := range steps {
		if steps[i].ID == stepID {
			steps[i].Completed = completed
			p.NextSteps = steps
			return p, true
		}
	}
	return p, false
}

// ClientOverview is one row in the operator's client list.
type ClientOverview struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	StatusText         string `json:"status_text,omitempty"`
	ProgressPercentage int    `json:"progress_percentage,omitempty"`
	HasProject         bool   `json:"has_project"`
	CreatedAt          Time   `json:"created_at"`
}

// ProjectFile is a file attached to a client project board.
type ProjectFile struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id"`
	UserID       string `json:"user_id"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	UploadedBy   string `json:"uploaded_by"` // "admin" or "client"
	UploaderName string `json:"uploader_name,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    Time   `json:"created_at"`
}
