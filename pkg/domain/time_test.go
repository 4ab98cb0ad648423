package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2025-03-01T10:20:30Z"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"naive micros", `"2025-03-01T10:20:30.123456"`, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC)},
		{"naive seconds", `"2025-03-01T10:20:30"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"date only", `"2025-03-01"`, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
		{"empty", `""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got.Time, tt.want)
			}
		})
	}
}

func TestTimeUnmarshal_Invalid(t *testing.T) {
	var got Time
	if err := json.Unmarshal([]byte(`"yesterday"`), &got); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
	if err := json.Unmarshal([]byte(`12`), &got); err == nil {
		t.Error("expected error for number")
	}
}

func TestTimeInStruct(t *testing.T) {
	var u User
	raw := `{"id":"u1","name":"Ada","email":"ada@example.com","role":"admin","created_at":"2024-12-31T23:59:59.5"}`
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if u.CreatedAt.Year() != 2024 || u.CreatedAt.Nanosecond() != 500000000 {
		t.Errorf("CreatedAt = %v", u.CreatedAt.Time)
	}
	if !u.IsAdmin() {
		t.Error("IsAdmin() = false for admin role")
	}
}
