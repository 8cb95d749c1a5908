package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web application until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}
	metadata, err := r.openMetadata()
	if err != nil {
		return err
	}

	views, err := web.NewViews(r.config.Credentials.TMDB.ImageBaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	handler := web.NewHandler(store, metadata, views, shared.WithLogger(r.logger, "component", "web"))
	router := web.NewRouter(handler, shared.WithLogger(r.logger, "component", "http"))
	srv := server.NewServer(r.config.Server.Addr(), router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr(), err)
	}

	home := browseURL(ln.Addr())
	r.writePlain("Listening on %s\n", home)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(home); err != nil {
			r.logger.Warn("could not open browser", "url", home, "error", err)
		}
	}

	return srv.Serve(ctx, ln)
}

// Status requests /healthz from a running server and reports the result.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	base := cmd.String("url")
	if base == "" {
		base = "http://" + r.config.Server.Addr()
	}
	target := strings.TrimRight(base, "/") + "/healthz"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", shared.ErrServiceUnavailable, target, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("%w: invalid health response: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ %s is %s\n", base, health.Status)
}

// browseURL turns a listener address into a URL a local browser can reach.
func browseURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}

	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
