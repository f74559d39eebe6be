package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdirTemp(t *testing.T, dir string) {
	t.Helper()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty db path, got %q", cfg.DBPath)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Media.MaxUploadBytes != 2*1024*1024 {
		t.Fatalf("expected 2 MiB upload limit, got %d", cfg.Media.MaxUploadBytes)
	}
	if strings.Join(cfg.Media.AllowedFormats, ",") != "jpeg,png,webp" {
		t.Fatalf("unexpected default formats %v", cfg.Media.AllowedFormats)
	}
	if cfg.Media.GCMinAge.Duration != time.Hour {
		t.Fatalf("expected 1h gc min age, got %s", cfg.Media.GCMinAge)
	}
	if cfg.Blog.PageSize != 6 || cfg.Blog.FeaturedCount != 3 || cfg.Blog.RelatedCount != 3 {
		t.Fatalf("unexpected blog defaults %+v", cfg.Blog)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	writeConfig(t, path, `api_url = "http://localhost:9999"
log_level = "warn"

[media]
gc_min_age = "90m"
allowed_formats = ["png"]

[blog]
page_size = 12
`)

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://localhost:9999" {
		t.Fatalf("expected api_url 'http://localhost:9999', got %q", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.Media.GCMinAge.Duration != 90*time.Minute {
		t.Fatalf("expected 90m gc min age, got %s", cfg.Media.GCMinAge)
	}
	if len(cfg.Media.AllowedFormats) != 1 || cfg.Media.AllowedFormats[0] != "png" {
		t.Fatalf("expected png only, got %v", cfg.Media.AllowedFormats)
	}
	if cfg.Blog.PageSize != 12 {
		t.Fatalf("expected page size 12, got %d", cfg.Blog.PageSize)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/.quill.toml", &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("defaults should be preserved")
	}
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	writeConfig(t, path, "[media]\ngc_min_age = \"soon\"\n")

	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error for bad duration")
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range []string{
		"api_url",
		"db_path",
		"log_level",
		"log_file",
		"media.root",
		"media.max_upload_bytes",
		"media.allowed_formats",
		"media.gc_batch_size",
		"media.gc_min_age",
		"blog.page_size",
	} {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Config{
		APIURL:   "http://test:1234",
		DBPath:   "/tmp/test.db",
		LogLevel: "warn",
		Media: MediaConfig{
			Root:           "/srv/media",
			MaxUploadBytes: 123,
			AllowedFormats: []string{"jpeg", "png"},
			GCBatchSize:    789,
			GCMinAge:       Duration{30 * time.Minute},
		},
		Blog: BlogConfig{PageSize: 9},
	}

	tests := map[string]string{
		"api_url":                "http://test:1234",
		"db_path":                "/tmp/test.db",
		"log_level":              "warn",
		"media.root":             "/srv/media",
		"media.max_upload_bytes": "123",
		"media.allowed_formats":  "jpeg,png",
		"media.gc_batch_size":    "789",
		"media.gc_min_age":       "30m0s",
		"blog.page_size":         "9",
	}
	for key, want := range tests {
		got, err := cfg.Get(key)
		if err != nil || got != want {
			t.Fatalf("Get(%q) = %q (err: %v), want %q", key, got, err, want)
		}
	}
	if _, err := cfg.Get("invalid"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.toml")
	if err := SetKey(path, "api_url", "http://127.0.0.1:9000"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9000" {
		t.Fatalf("expected api_url set, got %q", cfg.APIURL)
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	writeConfig(t, path, "log_level = \"info\"\napi_url = \"http://keep\"\n")

	if err := SetKey(path, "log_level", "error"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected 'error', got %q", cfg.LogLevel)
	}
	if cfg.APIURL != "http://keep" {
		t.Fatalf("expected preserved api_url 'http://keep', got %q", cfg.APIURL)
	}
}

func TestSetKeyInvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.toml")
	if err := SetKey(path, "invalid_key", "value"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestSetNestedMediaKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.toml")
	if err := SetKey(path, "media.gc_batch_size", "321"); err != nil {
		t.Fatalf("set batch size: %v", err)
	}
	if err := SetKey(path, "media.gc_min_age", "120"); err != nil {
		t.Fatalf("set min age: %v", err)
	}
	if err := SetKey(path, "media.allowed_formats", "JPG, png, bmp"); err != nil {
		t.Fatalf("set formats: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Media.GCBatchSize != 321 {
		t.Fatalf("expected gc_batch_size 321, got %d", cfg.Media.GCBatchSize)
	}
	if cfg.Media.GCMinAge.Duration != 2*time.Minute {
		t.Fatalf("expected bare seconds parsed, got %s", cfg.Media.GCMinAge)
	}
	if strings.Join(cfg.Media.AllowedFormats, ",") != "jpeg,png" {
		t.Fatalf("expected normalized formats, got %v", cfg.Media.AllowedFormats)
	}
}

func TestSetKeyRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	for key, value := range map[string]string{
		"media.gc_batch_size":   "0",
		"blog.page_size":        "many",
		"media.gc_min_age":      "later",
		"media.allowed_formats": "bmp,tiff",
	} {
		if err := SetKey(path, key, value); err == nil {
			t.Fatalf("expected error for %s=%q", key, value)
		}
	}
}

func TestConfigDirOverridePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)

	globalPath, err := GlobalPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if globalPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected global path: %s", globalPath)
	}

	projectPath, err := ProjectPath()
	if err != nil {
		t.Fatalf("project path: %v", err)
	}
	if projectPath != filepath.Join(dir, configFileName) {
		t.Fatalf("unexpected project path: %s", projectPath)
	}
}

func TestLoadConfigDirOverride(t *testing.T) {
	configDir := t.TempDir()
	writeConfig(t, filepath.Join(configDir, configFileName), "log_level = \"warn\"\napi_url = \"http://127.0.0.1:9001\"\n")

	workspace := t.TempDir()
	writeConfig(t, filepath.Join(workspace, configFileName), "log_level = \"error\"\n")
	chdirTemp(t, workspace)

	t.Setenv(configDirEnvKey, configDir)
	t.Setenv(dbPathEnvKey, "")
	t.Setenv(apiURLEnvKey, "")
	t.Setenv(mediaRootEnvKey, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected config-dir log level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.APIURL != "http://127.0.0.1:9001" {
		t.Fatalf("expected config-dir api_url override, got %q", cfg.APIURL)
	}
	if cfg.DBPath != filepath.Join(workspace, DefaultDBFileName) {
		t.Fatalf("expected default workspace db path, got %q", cfg.DBPath)
	}
	if cfg.Media.Root != filepath.Join(workspace, DefaultMediaDir) {
		t.Fatalf("expected media root next to db, got %q", cfg.Media.Root)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv(apiURLEnvKey, "http://example.com:8080")
	t.Setenv(dbPathEnvKey, "/tmp/override.db")
	t.Setenv(mediaRootEnvKey, "/tmp/media")
	t.Setenv(mediaAllowedFormatsEnvKey, "png")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://example.com:8080" {
		t.Fatalf("expected env override for API URL, got %q", cfg.APIURL)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected env override for DB path, got %q", cfg.DBPath)
	}
	if cfg.Media.Root != "/tmp/media" {
		t.Fatalf("expected env override for media root, got %q", cfg.Media.Root)
	}
	if strings.Join(cfg.Media.AllowedFormats, ",") != "png" {
		t.Fatalf("expected env override for formats, got %v", cfg.Media.AllowedFormats)
	}
}

func TestLoadFallsBackToDefaultsWhenConfiguredEmpty(t *testing.T) {
	homeDir := t.TempDir()
	workspace := t.TempDir()
	writeConfig(t, filepath.Join(homeDir, configFileName), "log_level = \"\"\n\n[blog]\npage_size = 0\n\n[media]\nallowed_formats = []\n")
	chdirTemp(t, workspace)

	t.Setenv("HOME", homeDir)
	t.Setenv(configDirEnvKey, "")
	t.Setenv(trustProjectConfigEnvKey, "")
	t.Setenv(mediaAllowedFormatsEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Blog.PageSize != DefaultBlogPage {
		t.Fatalf("expected default page size, got %d", cfg.Blog.PageSize)
	}
	if len(cfg.Media.AllowedFormats) != 3 {
		t.Fatalf("expected default formats, got %v", cfg.Media.AllowedFormats)
	}
}

func TestLoadIgnoresProjectConfigByDefault(t *testing.T) {
	homeDir := t.TempDir()
	workspace := t.TempDir()
	writeConfig(t, filepath.Join(homeDir, configFileName), "log_level = \"warn\"\n")
	writeConfig(t, filepath.Join(workspace, configFileName), "log_level = \"error\"\n")
	chdirTemp(t, workspace)

	t.Setenv("HOME", homeDir)
	t.Setenv(configDirEnvKey, "")
	t.Setenv(trustProjectConfigEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected global log level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.TrustedProjectConfigPath != "" {
		t.Fatalf("expected no trusted project config path, got %q", cfg.TrustedProjectConfigPath)
	}
}

func TestLoadAppliesProjectConfigWhenTrusted(t *testing.T) {
	homeDir := t.TempDir()
	workspace := t.TempDir()
	writeConfig(t, filepath.Join(homeDir, configFileName), "log_level = \"warn\"\n")
	writeConfig(t, filepath.Join(workspace, configFileName), "log_level = \"error\"\n")
	chdirTemp(t, workspace)

	t.Setenv("HOME", homeDir)
	t.Setenv(configDirEnvKey, "")
	t.Setenv(trustProjectConfigEnvKey, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected trusted project log level 'error', got %q", cfg.LogLevel)
	}
	expectedPath := filepath.Join(workspace, configFileName)
	if cfg.TrustedProjectConfigPath != expectedPath {
		t.Fatalf("expected trusted project config path %q, got %q", expectedPath, cfg.TrustedProjectConfigPath)
	}
}

func TestLoadDoesNotTrustProjectConfigOnInvalidEnvValue(t *testing.T) {
	homeDir := t.TempDir()
	workspace := t.TempDir()
	writeConfig(t, filepath.Join(homeDir, configFileName), "log_level = \"warn\"\n")
	writeConfig(t, filepath.Join(workspace, configFileName), "log_level = \"error\"\n")
	chdirTemp(t, workspace)

	t.Setenv("HOME", homeDir)
	t.Setenv(configDirEnvKey, "")
	t.Setenv(trustProjectConfigEnvKey, "definitely-not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected global log level with invalid trust env, got %q", cfg.LogLevel)
	}
	if cfg.TrustedProjectConfigPath != "" {
		t.Fatalf("expected no trusted project config path with invalid trust env, got %q", cfg.TrustedProjectConfigPath)
	}
}
