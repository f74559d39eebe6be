package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"quill/internal/api"
	"quill/internal/config"
)

const (
	probeTimeout       = 500 * time.Millisecond
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
)

// localServer is a `quill srv` child started for the length of one command.
type localServer struct {
	cmd *exec.Cmd
}

func (s *localServer) stop() {
	if s == nil || s.cmd == nil || s.cmd.Process == nil {
		return
	}
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
}

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	client := api.NewClient(cfg.APIURL)
	local, err := ensureServer(client, cfg)
	if err != nil {
		return err
	}
	defer local.stop()
	return fn(client)
}

// ensureServer returns nil when a server already answers at the configured
// URL. Only an unreachable address triggers a local start; any other probe
// failure is reported as is.
func ensureServer(client *api.Client, cfg *config.Config) (*localServer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	err := client.Ping(ctx)
	cancel()
	if err == nil {
		return nil, nil
	}
	if !isUnreachable(err) {
		return nil, err
	}

	local, err := startLocalServer(cfg)
	if err != nil {
		return nil, fmt.Errorf("start local server: %w", err)
	}
	if err := waitForServer(client, serverStartTimeout); err != nil {
		local.stop()
		return nil, err
	}
	return local, nil
}

func startLocalServer(cfg *config.Config) (*localServer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(),
		"QUILL_DB="+cfg.DBPath,
		"QUILL_API_URL="+cfg.APIURL,
	)
	if cfg.Media.Root != "" {
		cmd.Env = append(cmd.Env, "QUILL_MEDIA_ROOT="+cfg.Media.Root)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &localServer{cmd: cmd}, nil
}

func waitForServer(client *api.Client, timeout time.Duration) error {
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*serverPollInterval)
		err := client.Ping(ctx)
		cancel()
		switch {
		case err == nil:
			return nil
		case !isUnreachable(err):
			// Something else owns the port.
			return err
		}

		select {
		case <-deadline:
			return errors.New("server did not start in time")
		case <-ticker.C:
		}
	}
}

func isUnreachable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
