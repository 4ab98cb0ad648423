package domain

// IntakeType selects the questionnaire a client fills in.
type IntakeType string

const (
	IntakeBranding  IntakeType = "branding"
	IntakeWebsite   IntakeType = "website"
	IntakeMarketing IntakeType = "marketing"
	IntakeAI        IntakeType = "ai"
)

// IntakeTypes lists every questionnaire type.
var IntakeTypes = []IntakeType{IntakeBranding, IntakeWebsite, IntakeMarketing, IntakeAI}

// ValidIntakeType returns true if t is a known questionnaire type.
func ValidIntakeType(t IntakeType) bool {
	for _, it := range IntakeTypes {
		if it == t {
			return true
		}
	}
	return false
}

// IntakeQuestions are the prompts shown for each questionnaire, keyed by the
// answer field the backend stores.
var IntakeQuestions = map[IntakeType][]IntakeQuestion{
	IntakeBranding: {
		{Key: "business_name", Prompt: "What is your business name?"},
		{Key: "industry", Prompt: "What industry are you in?"},
		{Key: "target_audience", Prompt: "Describe your target audience"},
		{Key: "brand_personality", Prompt: "What personality should your brand convey?"},
		{Key: "competitors", Prompt: "Who are your main competitors?"},
		{Key: "colors", Prompt: "Any color preferences?"},
		{Key: "inspiration", Prompt: "Share any brands or designs you admire"},
	},
	IntakeWebsite: {
		{Key: "current_website", Prompt: "Do you have a current website? (URL)"},
		{Key: "goals", Prompt: "What are the main goals for your website?"},
		{Key: "pages", Prompt: "What pages do you need?"},
		{Key: "features", Prompt: "Any specific features needed?"},
		{Key: "content", Prompt: "Do you have content ready (text, images)?"},
		{Key: "timeline", Prompt: "What is your ideal timeline?"},
		{Key: "inspiration", Prompt: "Share websites you like"},
	},
	IntakeMarketing: {
		{Key: "current_efforts", Prompt: "What marketing are you currently doing?"},
		{Key: "goals", Prompt: "What are your marketing goals?"},
		{Key: "target_platforms", Prompt: "Which platforms do you want to focus on?"},
		{Key: "budget", Prompt: "What is your monthly marketing budget?"},
		{Key: "competitors", Prompt: "Who are your competitors?"},
		{Key: "unique_value", Prompt: "What makes you different from competitors?"},
	},
	IntakeAI: {
		{Key: "current_tools", Prompt: "What tools/apps do you currently use?"},
		{Key: "pain_points", Prompt: "What repetitive tasks take up your time?"},
		{Key: "automation_goals", Prompt: "What would you like to automate?"},
		{Key: "team_size", Prompt: "How many people are on your team?"},
		{Key: "budget", Prompt: "What is your budget for AI/automation tools?"},
		{Key: "experience", Prompt: "Have you used AI tools before?"},
	},
}

// IntakeQuestion is one field of a questionnaire.
type IntakeQuestion struct {
	Key    string
	Prompt string
}

// Intake is a submitted questionnaire.
type Intake struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	UserName  string         `json:"user_name,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	OrderID   string         `json:"order_id,omitempty"`
	Type      IntakeType     `json:"type"`
	Answers   map[string]any `json:"answers"`
	CreatedAt Time           `json:"created_at"`
}

// Label returns the display name of the questionnaire type.
func (t IntakeType) Label() string {
	switch t {
	case IntakeBranding:
		return "Branding"
	case IntakeWebsite:
		return "Website"
	case IntakeMarketing:
		return "Marketing"
	case IntakeAI:
		return "AI Integration"
	}
	return string(t)
}
