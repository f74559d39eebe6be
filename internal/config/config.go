package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:7474"
	DefaultDBFileName  = ".quill.db"
	DefaultMediaDir    = "quill-media"
	DefaultLogLevel    = "debug"
	DefaultLogMaxSize  = 10
	DefaultLogBackups  = 3
	DefaultBlogPage    = 6
	DefaultBlogFeature = 3
	DefaultBlogRelated = 3

	DefaultMediaMaxUploadBytes  int64 = 2 * 1024 * 1024
	DefaultMediaMultipartMemory int64 = 4 * 1024 * 1024
	DefaultMediaGCBatchSize           = 500
	DefaultMediaGCMinAge              = time.Hour

	configFileName           = ".quill.toml"
	configDirEnvKey          = "QUILL_CONFIG_DIR"
	trustProjectConfigEnvKey = "QUILL_TRUST_PROJECT_CONFIG"

	apiURLEnvKey              = "QUILL_API_URL"
	dbPathEnvKey              = "QUILL_DB"
	mediaRootEnvKey           = "QUILL_MEDIA_ROOT"
	mediaAllowedFormatsEnvKey = "QUILL_MEDIA_ALLOWED_FORMATS"
)

var defaultMediaFormats = []string{"jpeg", "png", "webp"}

// Duration is a time.Duration that reads from TOML strings like "90m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// MediaConfig defines runtime configuration for uploaded images.
type MediaConfig struct {
	Root               string   `toml:"root"`
	MaxUploadBytes     int64    `toml:"max_upload_bytes"`
	MultipartMaxMemory int64    `toml:"multipart_max_memory"`
	AllowedFormats     []string `toml:"allowed_formats"`
	GCBatchSize        int      `toml:"gc_batch_size"`
	GCMinAge           Duration `toml:"gc_min_age"`
}

// BlogConfig defines listing sizes for the public blog endpoints.
type BlogConfig struct {
	PageSize      int `toml:"page_size"`
	FeaturedCount int `toml:"featured_count"`
	RelatedCount  int `toml:"related_count"`
}

// Config defines runtime configuration for quill.
type Config struct {
	APIURL                   string      `toml:"api_url"`
	DBPath                   string      `toml:"db_path"`
	LogLevel                 string      `toml:"log_level"`
	LogFile                  string      `toml:"log_file"`
	LogMaxSizeMB             int         `toml:"log_max_size_mb"`
	LogMaxBackups            int         `toml:"log_max_backups"`
	Media                    MediaConfig `toml:"media"`
	Blog                     BlogConfig  `toml:"blog"`
	TrustedProjectConfigPath string      `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:        DefaultAPIURL,
		DBPath:        "",
		LogLevel:      DefaultLogLevel,
		LogMaxSizeMB:  DefaultLogMaxSize,
		LogMaxBackups: DefaultLogBackups,
		Media: MediaConfig{
			MaxUploadBytes:     DefaultMediaMaxUploadBytes,
			MultipartMaxMemory: DefaultMediaMultipartMemory,
			AllowedFormats:     append([]string(nil), defaultMediaFormats...),
			GCBatchSize:        DefaultMediaGCBatchSize,
			GCMinAge:           Duration{DefaultMediaGCMinAge},
		},
		Blog: BlogConfig{
			PageSize:      DefaultBlogPage,
			FeaturedCount: DefaultBlogFeature,
			RelatedCount:  DefaultBlogRelated,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"log_file",
	"log_max_size_mb",
	"log_max_backups",
	"media.root",
	"media.max_upload_bytes",
	"media.multipart_max_memory",
	"media.allowed_formats",
	"media.gc_batch_size",
	"media.gc_min_age",
	"blog.page_size",
	"blog.featured_count",
	"blog.related_count",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "log_max_size_mb":
		return strconv.Itoa(c.LogMaxSizeMB), nil
	case "log_max_backups":
		return strconv.Itoa(c.LogMaxBackups), nil
	case "media.root":
		return c.Media.Root, nil
	case "media.max_upload_bytes":
		return strconv.FormatInt(c.Media.MaxUploadBytes, 10), nil
	case "media.multipart_max_memory":
		return strconv.FormatInt(c.Media.MultipartMaxMemory, 10), nil
	case "media.allowed_formats":
		return strings.Join(c.Media.AllowedFormats, ","), nil
	case "media.gc_batch_size":
		return strconv.Itoa(c.Media.GCBatchSize), nil
	case "media.gc_min_age":
		return c.Media.GCMinAge.String(), nil
	case "blog.page_size":
		return strconv.Itoa(c.Blog.PageSize), nil
	case "blog.featured_count":
		return strconv.Itoa(c.Blog.FeaturedCount), nil
	case "blog.related_count":
		return strconv.Itoa(c.Blog.RelatedCount), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if root := strings.TrimSpace(os.Getenv(mediaRootEnvKey)); root != "" {
		cfg.Media.Root = root
	}
	if raw := strings.TrimSpace(os.Getenv(mediaAllowedFormatsEnvKey)); raw != "" {
		cfg.Media.AllowedFormats = splitCSV(raw)
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "media.max_upload_bytes", "media.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "media.gc_batch_size", "blog.page_size", "blog.featured_count", "blog.related_count",
		"log_max_size_mb", "log_max_backups":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "media.gc_min_age":
		parsed, err := parseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be a duration like 90m: %w", key, err)
		}
		return parsed.String(), nil
	case "media.allowed_formats":
		formats := normalizeFormats(splitCSV(value))
		if len(formats) == 0 {
			return nil, fmt.Errorf("%s must list at least one of %s", key, strings.Join(defaultMediaFormats, ","))
		}
		return formats, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = DefaultLogMaxSize
	}
	if c.LogMaxBackups <= 0 {
		c.LogMaxBackups = DefaultLogBackups
	}
	if strings.TrimSpace(c.Media.Root) == "" && c.DBPath != "" {
		c.Media.Root = filepath.Join(filepath.Dir(c.DBPath), DefaultMediaDir)
	}
	if c.Media.MaxUploadBytes <= 0 {
		c.Media.MaxUploadBytes = DefaultMediaMaxUploadBytes
	}
	if c.Media.MultipartMaxMemory <= 0 {
		c.Media.MultipartMaxMemory = DefaultMediaMultipartMemory
	}
	if c.Media.GCBatchSize <= 0 {
		c.Media.GCBatchSize = DefaultMediaGCBatchSize
	}
	if c.Media.GCMinAge.Duration < 0 {
		c.Media.GCMinAge = Duration{DefaultMediaGCMinAge}
	}
	c.Media.AllowedFormats = normalizeFormats(c.Media.AllowedFormats)
	if len(c.Media.AllowedFormats) == 0 {
		c.Media.AllowedFormats = append([]string(nil), defaultMediaFormats...)
	}
	if c.Blog.PageSize <= 0 {
		c.Blog.PageSize = DefaultBlogPage
	}
	if c.Blog.FeaturedCount <= 0 {
		c.Blog.FeaturedCount = DefaultBlogFeature
	}
	if c.Blog.RelatedCount <= 0 {
		c.Blog.RelatedCount = DefaultBlogRelated
	}
}

// normalizeFormats lowercases, maps "jpg" to "jpeg", and drops unknown or repeated formats.
func normalizeFormats(rawValues []string) []string {
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		format := strings.ToLower(strings.TrimSpace(raw))
		if format == "jpg" {
			format = "jpeg"
		}
		if !isKnownFormat(format) {
			continue
		}
		if _, ok := seen[format]; ok {
			continue
		}
		seen[format] = struct{}{}
		out = append(out, format)
	}
	return out
}

func isKnownFormat(format string) bool {
	for _, known := range defaultMediaFormats {
		if known == format {
			return true
		}
	}
	return false
}
