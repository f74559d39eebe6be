package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"quill/internal/config"
)

var readmeEnvKeys = []string{
	"QUILL_API_URL",
	"QUILL_DB",
	"QUILL_MEDIA_ROOT",
	"QUILL_MEDIA_ALLOWED_FORMATS",
	"QUILL_HTTP_TIMEOUT",
	"QUILL_LOG_LEVEL",
	"QUILL_CONFIG_DIR",
	"QUILL_TRUST_PROJECT_CONFIG",
	"QUILL_DB_MAX_OPEN_CONNS",
	"QUILL_DB_MAX_IDLE_CONNS",
	"QUILL_DB_CONN_MAX_LIFETIME",
	"QUILL_API_TOKEN",
	"QUILL_ADMIN_TOKEN",
	"QUILL_SESSION",
	"QUILL_ALLOW_REMOTE",
}

func TestReadmeMatchesCLI(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "README.md"))
	if err != nil {
		t.Fatalf("read README.md: %v", err)
	}
	readme := string(data)

	t.Run("config keys", func(t *testing.T) {
		documented, err := documentedConfigKeys(readme)
		if err != nil {
			t.Fatal(err)
		}
		allowed := uniqueSorted(config.AllowedKeys())
		if !slices.Equal(documented, allowed) {
			t.Fatalf("README config keys mismatch\ndocumented: %v\nallowed:    %v", documented, allowed)
		}
	})

	t.Run("commands", func(t *testing.T) {
		documented, err := documentedCommands(readme)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.Default()
		actual := leafCommandPaths(newRootCmd(&cfg))
		if missing, extra := diff(actual, documented), diff(documented, actual); len(missing)+len(extra) > 0 {
			t.Fatalf("README command mismatch\nmissing in README: %v\nextra in README:   %v", missing, extra)
		}
	})

	t.Run("environment", func(t *testing.T) {
		documented := uniqueSorted(regexp.MustCompile(`QUILL_[A-Z0-9_]+`).FindAllString(readme, -1))
		if missing := diff(readmeEnvKeys, documented); len(missing) > 0 {
			t.Fatalf("README missing environment keys: %v", missing)
		}
	})
}

// documentedConfigKeys reads the backticked key of each bullet that follows
// the "Supported config keys:" line.
func documentedConfigKeys(readme string) ([]string, error) {
	_, section, ok := strings.Cut(readme, "Supported config keys:")
	if !ok {
		return nil, fmt.Errorf("missing 'Supported config keys:' section")
	}

	var keys []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			if len(keys) > 0 {
				break
			}
			continue
		}
		parts := strings.SplitN(line, "`", 3)
		if len(parts) < 3 || parts[1] == "" {
			return nil, fmt.Errorf("config key bullet without backticked key: %q", line)
		}
		keys = append(keys, parts[1])
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no config keys documented")
	}
	return uniqueSorted(keys), nil
}

// documentedCommands reads command paths from the first bash block under
// "## Commands", stopping each line at the first argument or flag.
func documentedCommands(readme string) ([]string, error) {
	_, section, ok := strings.Cut(readme, "## Commands")
	if !ok {
		return nil, fmt.Errorf("missing '## Commands' section")
	}
	_, fenced, ok := strings.Cut(section, "```bash")
	if !ok {
		return nil, fmt.Errorf("missing bash block in Commands section")
	}
	block, _, ok := strings.Cut(fenced, "```")
	if !ok {
		return nil, fmt.Errorf("unterminated Commands block")
	}

	var paths []string
	for _, line := range strings.Split(block, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "quill" {
			continue
		}
		var words []string
		for _, field := range fields[1:] {
			if strings.ContainsAny(field[:1], "#<[-") || strings.ContainsAny(field, `"'`) {
				break
			}
			words = append(words, field)
		}
		if len(words) > 0 {
			paths = append(paths, strings.Join(words, " "))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no commands documented")
	}
	return uniqueSorted(paths), nil
}

func leafCommandPaths(root *cobra.Command) []string {
	var paths []string
	var walk func(cmd *cobra.Command, prefix []string)
	walk = func(cmd *cobra.Command, prefix []string) {
		children := visibleChildren(cmd)
		if len(children) == 0 && len(prefix) > 0 {
			paths = append(paths, strings.Join(prefix, " "))
		}
		for _, child := range children {
			walk(child, append(slices.Clone(prefix), child.Name()))
		}
	}
	walk(root, nil)
	return uniqueSorted(paths)
}

func visibleChildren(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// diff returns the values of a missing from b.
func diff(a, b []string) []string {
	var out []string
	for _, value := range a {
		if !slices.Contains(b, value) {
			out = append(out, value)
		}
	}
	return uniqueSorted(out)
}

func uniqueSorted(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
