package util

import "testing"

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Anna Schmidt", want: "Anna_Schmidt"},
		{in: "Zoë Müller-Straße", want: "Zoe_MullerStrasse"},
		{in: "  José   Núñez ", want: "Jose_Nunez"},
		{in: "Chioma O'Neil 3rd", want: "Chioma_ONeil_rd"},
		{in: "!!!", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeName(tt.in); got != tt.want {
				t.Fatalf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("United  Kingdom"); got != "united_kingdom" {
		t.Fatalf("unexpected slug %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	got, err := SanitizeFileName(" jd/role.pdf ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "jd_role.pdf" {
		t.Fatalf("unexpected name %q", got)
	}
}
