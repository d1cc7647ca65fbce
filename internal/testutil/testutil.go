// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequireFFmpeg skips the test if no ffmpeg binary is found in PATH or at
// the path given by the STORYREEL_EXPORT_FFMPEG_BINARY environment variable.
func RequireFFmpeg(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("STORYREEL_EXPORT_FFMPEG_BINARY")
	if exe == "" {
		exe = "ffmpeg"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("ffmpeg binary not available (%q not in PATH); set STORYREEL_EXPORT_FFMPEG_BINARY to override", exe)
	}

	return path
}

// RequireEnv skips the test unless the named environment variable is set,
// returning its value. Used to gate tests that call paid provider APIs.
func RequireEnv(tb testing.TB, name string) string {
	tb.Helper()

	v := os.Getenv(name)
	if v == "" {
		tb.Skipf("%s not set; skipping live provider test", name)
	}

	return v
}
