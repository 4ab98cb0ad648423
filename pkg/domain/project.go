package domain

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectActive     ProjectStatus = "active"
	ProjectPaused     ProjectStatus = "paused"
	ProjectDelivered  ProjectStatus = "delivered"
)

// ProjectStatuses lists every project status.
var ProjectStatuses = []ProjectStatus{ProjectNotStarted, ProjectActive, ProjectPaused, ProjectDelivered}

// Milestone is one entry in a project timeline.
type Milestone struct {
	Milestone     string `json:"milestone"`
	Status        string `json:"status"` // "pending", "in_progress", "completed"
	DueDate       string `json:"due_date,omitempty"`
	CompletedDate string `json:"completed_date,omitempty"`
}

// Project is the delivery record created when an order is paid.
type Project struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name,omitempty"`
	UserEmail string        `json:"user_email,omitempty"`
	Title     string        `json:"title"`
	Status    ProjectStatus `json:"status"`
	Timeline  []Milestone   `json:"timeline"`
	CreatedAt Time          `json:"created_at"`
}

// Progress returns completed milestones over total.
func (p Project) Progress() (done, total int) {
	for _, m := range p.Timeline {
		if m.Status == "completed" {
			done++
		}
	}
	return done, len(p.Timeline)
}
