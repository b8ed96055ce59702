package ui

import (
	"testing"

	"github.com/somnolab/somno/internal/usleep"
)

func TestThemeByName(t *testing.T) {
	if got := ThemeByName("light"); got.Name != "light" {
		t.Fatalf("ThemeByName(light) = %q", got.Name)
	}
	if got := ThemeByName("  Dark "); got.Name != "dark" {
		t.Fatalf("ThemeByName normalizes case and spacing, got %q", got.Name)
	}
	for _, name := range []string{"", "solarized", "?"} {
		if got := ThemeByName(name); got.Name != "dark" {
			t.Errorf("ThemeByName(%q) = %q, want dark fallback", name, got.Name)
		}
	}
}

func TestStatusStyle(t *testing.T) {
	s := ThemeByName("dark").Styles()
	if got := s.statusStyle(usleep.StatusSuccess); got.GetForeground() != s.Success.GetForeground() {
		t.Errorf("success status uses the wrong style")
	}
	if got := s.statusStyle(usleep.StatusFailed); got.GetForeground() != s.Danger.GetForeground() {
		t.Errorf("failed status uses the wrong style")
	}
	if got := s.statusStyle(usleep.StatusQueued); got.GetForeground() != s.Status.GetForeground() {
		t.Errorf("queued status should use the plain style")
	}
}
