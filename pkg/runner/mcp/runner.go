package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/benchquest/pkg/app"
	"tableflip.dev/benchquest/pkg/logging"
	"tableflip.dev/benchquest/pkg/metrics"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

const shutdownTimeout = 5 * time.Second

// Runner coordinates MCP server startup.
type Runner struct {
	Session *app.Session
	Name    string
	Version string

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string

	// Metrics is served at /metrics on the HTTP transport. Nil creates one.
	Metrics *metrics.Collector
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Session == nil {
		return errors.New("mcp runner requires a session")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	name := r.Name
	if name == "" {
		name = "benchquest"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Build research protocols, track quests and the lab companion, and keep the research journal via MCP."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(r.Session)
	registerResources(srv, svc)
	registerTools(srv, svc)

	// Timers keep counting while the server is up.
	if !r.Session.Ticking() {
		r.Session.StartTicking(ctx)
		defer r.Session.StopTicking()
	}

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

func (r Runner) router(srv *server.MCPServer, collector *metrics.Collector) (http.Handler, string) {
	path := r.HTTPEndpointPath
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(collector.Middleware)
	router.Handle(path, server.NewStreamableHTTPServer(srv))
	router.Method(http.MethodGet, "/metrics", collector.Handler())
	return router, path
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	if (r.HTTPServerCert != "" && r.HTTPServerKey == "") || (r.HTTPServerCert == "" && r.HTTPServerKey != "") {
		return errors.New("both http tls cert and key must be provided")
	}

	collector := r.Metrics
	if collector == nil {
		collector = metrics.New()
	}
	collector.Register(r.Session.Bus, r.Session.Quests.Level())
	defer collector.Unregister()

	handler, path := r.router(srv, collector)

	listenAddr := r.HTTPListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}
	logging.FromContext(ctx).Info("mcp listening", "addr", ln.Addr().String(), "path", path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if r.HTTPServerCert != "" && r.HTTPServerKey != "" {
			err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
		} else {
			err = httpSrv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
