package store

import "testing"

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultDatabaseURL},
		{"postgresql://u:p@db:5432/app", "postgres://u:p@db:5432/app?sslmode=disable"},
		{"postgres://u:p@db/app?connect_timeout=5", "postgres://u:p@db/app?connect_timeout=5&sslmode=disable"},
		{"postgres://u:p@db/app?sslmode=require", "postgres://u:p@db/app?sslmode=require"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeDatabaseURL(tt.in); got != tt.want {
				t.Errorf("NormalizeDatabaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
