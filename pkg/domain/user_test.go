package domain

import "testing"

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil", nil, false},
		{"client", &User{Role: RoleClient}, false},
		{"admin", &User{Role: RoleAdmin}, true},
		{"unknown role", &User{Role: "owner"}, false},
		{"empty role", &User{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceTypeFor(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"video/mp4", ResourceVideo},
		{"video/quicktime", ResourceVideo},
		{"image/png", ResourceImage},
		{"application/pdf", ResourceImage},
		{"", ResourceImage},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := ResourceTypeFor(tt.mime); got != tt.want {
				t.Errorf("ResourceTypeFor(%q) = %q, want %q", tt.mime, got, tt.want)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{2048, "2 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1572864, "1.5 MB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWithStepToggled(t *testing.T) {
	p := ClientProject{NextSteps: []NextStep{{ID: "s1", Text: "Send logo"}, {ID: "s2", Text: "Review"}}}
	got, ok := p.WithStepToggled("s2", true)
	if !ok {
		t.Fatal("WithStepToggled(s2) = not found")
	}
	if !got.NextSteps[1].Completed {
		t.Error("s2 not completed")
	}
	if p.NextSteps[1].Completed {
		t.Error("original project mutated")
	}
	if _, ok := p.WithStepToggled("nope", true); ok {
		t.Error("unknown step reported found")
	}
}

func TestValidIntakeType(t *testing.T) {
	for _, it := range IntakeTypes {
		if !ValidIntakeType(it) {
			t.Errorf("ValidIntakeType(%q) = false", it)
		}
		if len(IntakeQuestions[it]) == 0 {
			t.Errorf("no questions for %q", it)
		}
	}
	if ValidIntakeType("seo") {
		t.Error("ValidIntakeType(seo) = true")
	}
	if !ValidTier(TierDigitAll) || ValidTier("platinum") {
		t.Error("ValidTier mismatch")
	}
}
