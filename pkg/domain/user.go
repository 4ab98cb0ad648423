package domain

// Role is a user's primary role on the portal.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User is an authenticated portal identity.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt Time   `json:"created_at"`
}

// IsAdmin reports whether u holds the admin role. It is the one place the
// admin rule is defined; views and the route guard all go through it.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// OperatorCheck is the server's answer to "may this identity use the
// client-project workspace".
type OperatorCheck struct {
	IsOperator bool   `json:"is_ccc_admin"`
	Email      string `json:"email"`
}
