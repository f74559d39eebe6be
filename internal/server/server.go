package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quill/internal/blobstore"
	"quill/internal/store"
)

const (
	apiTokenEnvKey       = "QUILL_API_TOKEN"
	adminTokenEnvKey     = "QUILL_ADMIN_TOKEN"
	allowRemoteEnvKey    = "QUILL_ALLOW_REMOTE"
	readHeaderTimeout    = 5 * time.Second
	readTimeout          = 30 * time.Second
	writeTimeout         = 60 * time.Second
	idleTimeout          = 60 * time.Second
	shutdownTimeout      = 10 * time.Second
	uploadConcurrency    = 4
	gcConcurrency        = 1
	loginMaxAttempts     = 5
	loginWindow          = 10 * time.Minute
	loginBlockFor        = 15 * time.Minute
	formMaxAttempts      = 10
	formWindow           = time.Minute
	formBlockFor         = 5 * time.Minute
	defaultMultipartBody = 4 << 20
)

// Store is everything the HTTP layer reads and writes.
type Store interface {
	store.BlogStore
	store.MediaStore
	store.AccountStore
	Info(ctx context.Context) (*store.Info, error)
}

// MediaOptions bounds uploads and orphan cleanup.
type MediaOptions struct {
	MaxUploadBytes     int64
	MultipartMaxMemory int64
	AllowedFormats     []string
	GCBatchSize        int
	GCMinAge           time.Duration
}

// BlogOptions sizes the public listings.
type BlogOptions struct {
	PageSize      int
	FeaturedCount int
	RelatedCount  int
}

// Options carries runtime settings resolved from config.
type Options struct {
	DBPath string
	Media  MediaOptions
	Blog   BlogOptions
}

// Server wraps HTTP handlers for the quill API.
type Server struct {
	addr       string
	store      Store
	opts       Options
	logger     *slog.Logger
	apiToken   string
	adminToken string

	authService     *AuthService
	auditService    *AuditService
	taxonomyService *TaxonomyService
	articleService  *ArticleService
	commentService  *CommentService
	accountService  *AccountService
	mediaService    *MediaService

	loginLimiter  *attemptLimiter
	formLimiter   *attemptLimiter
	uploadLimiter chan struct{}
	gcLimiter     chan struct{}
}

// New creates a new server instance.
func New(addr string, st Store, blobs blobstore.BlobStore, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Media.MultipartMaxMemory <= 0 {
		opts.Media.MultipartMaxMemory = defaultMultipartBody
	}

	mediaService := NewMediaService(st, blobs, logger)
	mediaService.ConfigurePolicy(opts.Media.MaxUploadBytes, opts.Media.AllowedFormats, opts.Media.GCBatchSize, opts.Media.GCMinAge)
	articleService := NewArticleService(st, st, mediaService)
	articleService.ConfigureListing(opts.Blog.PageSize, opts.Blog.FeaturedCount, opts.Blog.RelatedCount)

	return &Server{
		addr:            addr,
		store:           st,
		opts:            opts,
		logger:          logger,
		apiToken:        strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken:      strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
		authService:     NewAuthService(st),
		auditService:    NewAuditService(st, mediaService),
		taxonomyService: NewTaxonomyService(st),
		articleService:  articleService,
		commentService:  NewCommentService(st, st),
		accountService:  NewAccountService(st, mediaService, logger),
		mediaService:    mediaService,
		loginLimiter:    newAttemptLimiter(loginMaxAttempts, loginWindow, loginBlockFor),
		formLimiter:     newAttemptLimiter(formMaxAttempts, formWindow, formBlockFor),
		uploadLimiter:   make(chan struct{}, uploadConcurrency),
		gcLimiter:       make(chan struct{}, gcConcurrency),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully when ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log().Info("starting server", "addr", ln.Addr().String())
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log().Info("stopping server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := tooManyRequests(fmt.Errorf("too many concurrent %s requests", name))
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
