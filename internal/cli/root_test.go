package cli

import (
	"testing"

	"github.com/diffdeck/diffdeck/internal/watch"
)

func TestRun_TooManyArgumentsIsUsageError(t *testing.T) {
	rootCmd.SetArgs([]string{"one", "two", "three"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if code := Run(); code != ExitUsageError {
		t.Errorf("expected exit code %d for too many arguments, got %d", ExitUsageError, code)
	}
}

func TestModeForTarget(t *testing.T) {
	tests := []struct {
		target string
		want   watch.Mode
	}{
		{"working", watch.ModeWorking},
		{".", watch.ModeWorking},
		{"staged", watch.ModeStaging},
		{"HEAD", watch.ModeCommit},
		{"main", watch.ModeCommit},
		{"v1.2.0", watch.ModeCommit},
	}

	for _, tt := range tests {
		if got := modeForTarget(tt.target); got != tt.want {
			t.Errorf("modeForTarget(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}
