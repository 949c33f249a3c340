package validation

import "testing"

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "valid email", email: "test@example.com", want: true},
		{name: "subdomain", email: "user@mail.example.com", want: true},
		{name: "plus tag", email: "user+tag@example.com", want: true},
		{name: "missing @", email: "testexample.com", want: false},
		{name: "missing domain", email: "test@", want: false},
		{name: "missing local part", email: "@example.com", want: false},
		{name: "no dot in domain", email: "a@localhost", want: false},
		{name: "two @", email: "a@b@c.com", want: false},
		{name: "spaces", email: "test @example.com", want: false},
		{name: "trailing space", email: "test@example.com ", want: false},
		{name: "empty", email: "", want: false},
		{name: "not an email", email: "not-an-email", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmail(tt.email); got != tt.want {
				t.Errorf("IsEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
