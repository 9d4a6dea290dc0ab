package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "crossplot/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} "+Version) {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(got, "commit "+shortCommit()) {
		t.Errorf("Template() = %q, want commit %s", got, shortCommit())
	}
}

func TestShortCommit(t *testing.T) {
	saved := Commit
	defer func() { Commit = saved }()

	tests := []struct {
		commit string
		want   string
	}{
		{"none", "none"},
		{"0123456789abcdef0123", "0123456789ab"},
	}
	for _, tt := range tests {
		Commit = tt.commit
		if got := shortCommit(); got != tt.want {
			t.Errorf("shortCommit(%q) = %q, want %q", tt.commit, got, tt.want)
		}
	}
}
