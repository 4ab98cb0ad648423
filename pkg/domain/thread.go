package domain

// Thread is a conversation between a client and the studio.
type Thread struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	Subject      string `json:"subject"`
	LastMessage  string `json:"last_message,omitempty"`
	MessageCount int    `json:"message_count"`
	CreatedAt    Time   `json:"created_at"`
	UpdatedAt    Time   `json:"updated_at"`
}

// Message is a single message in a thread.
type Message struct {
	ID          string   `json:"id"`
	ThreadID    string   `json:"thread_id"`
	SenderID    string   `json:"sender_id"`
	SenderName  string   `json:"sender_name,omitempty"`
	SenderRole  Role     `json:"sender_role"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
	CreatedAt   Time     `json:"created_at"`
}
