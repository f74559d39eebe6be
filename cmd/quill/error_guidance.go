package main

import (
	"context"
	"errors"
	"net"

	"quill/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		for _, field := range apiErr.Fields {
			lines = append(lines, "  "+field.Field+": "+field.Message)
		}
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: run `quill login` and export QUILL_SESSION, or set QUILL_API_TOKEN.")
		case "forbidden":
			lines = append(lines, "hint: this action needs a staff session or QUILL_ADMIN_TOKEN.")
		case "resource_exhausted":
			lines = append(lines, "hint: retry shortly; uploads, media gc and login attempts are rate limited.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify QUILL_API_URL points to a quill server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase QUILL_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a quill server is running at QUILL_API_URL.",
			"hint: start local server manually with: quill srv",
			"hint: you can increase QUILL_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
