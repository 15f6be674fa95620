package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion := Version
	origCommit := Commit
	origBuildTime := BuildTime
	defer func() {
		Version = origVersion
		Commit = origCommit
		BuildTime = origBuildTime
	}()

	Version = "1.2.3"
	Commit = "abc1234"
	BuildTime = "2026-01-15T10:00:00Z"

	result := String()

	if !strings.Contains(result, "1.2.3") {
		t.Errorf("String() = %q, should contain version", result)
	}
	if !strings.Contains(result, "abc1234") {
		t.Errorf("String() = %q, should contain commit", result)
	}
	if !strings.Contains(result, "built 2026-01-15T10:00:00Z") {
		t.Errorf("String() = %q, should contain build time", result)
	}
}
