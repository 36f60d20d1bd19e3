package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDueDateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string // RFC3339, empty means nil
		wantErr bool
	}{
		{"date only", `"2025-06-15"`, "2025-06-15T00:00:00Z", false},
		{"rfc3339", `"2025-06-15T14:30:00Z"`, "2025-06-15T14:30:00Z", false},
		{"rfc3339 offset", `"2025-06-15T14:30:00+03:00"`, "2025-06-15T14:30:00+03:00", false},
		{"null", `null`, "", false},
		{"empty string", `""`, "", false},
		{"garbage", `"next tuesday"`, "", true},
		{"number", `1718450000`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DueDate
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if tt.want == "" {
				if d.Ptr() != nil {
					t.Errorf("got %v, want nil", d.Ptr())
				}
				return
			}
			want, _ := time.Parse(time.RFC3339, tt.want)
			if d.Ptr() == nil || !d.Ptr().Equal(want) {
				t.Errorf("got %v, want %v", d.Ptr(), want)
			}
		})
	}
}
