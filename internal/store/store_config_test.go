package store

import (
	"strings"
	"testing"
	"time"
)

func TestPoolSettingsFromEnv(t *testing.T) {
	tests := []struct {
		raw      string
		wantInt  int
		wantLife time.Duration
	}{
		{raw: "", wantInt: 3, wantLife: 2 * time.Minute},
		{raw: "4", wantInt: 4, wantLife: 4 * time.Second},
		{raw: "45s", wantInt: 3, wantLife: 45 * time.Second},
		{raw: "0", wantInt: 3, wantLife: 2 * time.Minute},
		{raw: "-5", wantInt: 3, wantLife: 2 * time.Minute},
		{raw: "bad", wantInt: 3, wantLife: 2 * time.Minute},
	}

	for _, tc := range tests {
		t.Run("raw="+tc.raw, func(t *testing.T) {
			t.Setenv(maxOpenConnsEnvKey, tc.raw)
			t.Setenv(connMaxLifetimeEnvKey, tc.raw)
			if got := intFromEnv(maxOpenConnsEnvKey, 3); got != tc.wantInt {
				t.Fatalf("intFromEnv(%q) = %d, want %d", tc.raw, got, tc.wantInt)
			}
			if got := durationFromEnv(connMaxLifetimeEnvKey, 2*time.Minute); got != tc.wantLife {
				t.Fatalf("durationFromEnv(%q) = %v, want %v", tc.raw, got, tc.wantLife)
			}
		})
	}
}

func TestSQLiteDSNCarriesPragmas(t *testing.T) {
	dsn, err := sqliteDSN("/tmp/blog.db")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if !strings.HasPrefix(dsn, "file:") || !strings.Contains(dsn, "foreign_keys") || !strings.Contains(dsn, "busy_timeout") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if _, err := sqliteDSN(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
