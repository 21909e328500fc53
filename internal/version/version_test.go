package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version, GitCommit = "v1.2.3", "unknown"
	if got := String(); got != "v1.2.3" {
		t.Fatalf("String() = %q", got)
	}

	GitCommit = "abc123"
	if got := String(); got != "v1.2.3 (abc123)" {
		t.Fatalf("String() = %q", got)
	}
}
