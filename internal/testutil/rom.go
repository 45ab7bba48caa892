// Package testutil gates ROM-dependent tests behind environment
// variables, the same mechanism the CLI test harness this codebase's
// upstream project ships (--rom-path/--skip-rom-tests/--verbose) would
// otherwise provide, expressed the way Go's own test tooling does it:
// through `go test`'s existing flag set plus env vars TestMain reads,
// rather than a bespoke test-runner binary.
package testutil

import (
	"os"
	"testing"
)

// Environment variables controlling ROM-dependent test behavior.
const (
	EnvROMPath       = "YAZE_TEST_ROM_PATH"
	EnvSkipROMTests  = "YAZE_SKIP_ROM_TESTS"
	EnvVerboseTests  = "YAZE_VERBOSE_TESTS"
	defaultROMPath   = "zelda3.sfc"
)

// RequireROM returns the path to a real ROM for tests that need one,
// skipping the test when YAZE_SKIP_ROM_TESTS is set or no ROM is
// available at the configured (or default) path.
func RequireROM(t *testing.T) string {
	t.Helper()

	if os.Getenv(EnvSkipROMTests) != "" {
		t.Skip("skipping ROM-dependent test: " + EnvSkipROMTests + " is set")
	}

	path := os.Getenv(EnvROMPath)
	if path == "" {
		path = defaultROMPath
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("skipping ROM-dependent test: no ROM at %q (set %s to override)", path, EnvROMPath)
	}
	return path
}

// Verbose reports whether YAZE_VERBOSE_TESTS is set, for tests that log
// extra detail only when asked.
func Verbose() bool {
	return os.Getenv(EnvVerboseTests) != ""
}
