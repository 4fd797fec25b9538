package utils

import "testing"

func TestSanitizeEmail(t *testing.T) {
	got, err := SanitizeEmail("  Owner@PetalWorks.COM ")
	if err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if got != "owner@petalworks.com" {
		t.Errorf("got %q", got)
	}

	for _, bad := range []string{"", "not-an-email", "a@b", "user@.com"} {
		if _, err := SanitizeEmail(bad); err == nil {
			t.Errorf("accepted invalid email %q", bad)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  Rose Bouquet  "); got != "Rose Bouquet" {
		t.Errorf("got %q", got)
	}
	got := SanitizeInput("<b>bold</b>")
	if got == "<b>bold</b>" {
		t.Errorf("HTML not escaped: %q", got)
	}
}
