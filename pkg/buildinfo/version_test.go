package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	got := Template()
	for _, want := range []string{Version, Commit, Date, "{{.Name}}"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got, want := UserAgent(), "conceptmap/"+Version; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
