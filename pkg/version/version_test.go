package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	GitCommit = "abc123"
	defer func() { GitCommit = "" }()

	info := GetVersionInfo()
	for _, want := range []string{"web-server version 0.1.0", "Git commit: abc123", "Go version:", "Platform:"} {
		if !strings.Contains(info, want) {
			t.Errorf("Expected version info to contain %q, got: %s", want, info)
		}
	}
	if strings.Contains(info, "Build date") {
		t.Errorf("Build date should be omitted when unset, got: %s", info)
	}
}
