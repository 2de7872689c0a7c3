package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/regintel/riskscan/internal/cache"
	"github.com/regintel/riskscan/internal/govern"
	"github.com/regintel/riskscan/internal/pipeline"
	"github.com/regintel/riskscan/internal/server"
)

var (
	serveAddr     string
	resolverURL   string
	allowAll      bool
	rateRequests  int
	rateWindow    time.Duration
	serveMaxBytes int64
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP service",
	Long: `Serve exposes the analysis pipeline over HTTP:
- POST /api/v1/analyze accepts a multipart workbook upload
- Callers are rate limited per network identity
- Entitlement comes from the X-Entitled header or the resolver service
- GET /healthz reports liveness

Example:
  riskscan serve
  riskscan serve --addr :9000 --allow-all
  riskscan serve --resolver-url https://entitlements.internal`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&resolverURL, "resolver-url", "", "entitlement resolver base URL")
	serveCmd.Flags().BoolVar(&allowAll, "allow-all", false, "treat every caller as entitled (development only)")
	serveCmd.Flags().IntVar(&rateRequests, "rate-requests", 25, "allowed requests per caller per window")
	serveCmd.Flags().DurationVar(&rateWindow, "rate-window", 10*time.Minute, "rate limit window")
	serveCmd.Flags().Int64Var(&serveMaxBytes, "max-bytes", 12*1024*1024, "max upload bytes to accept")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Server.Addr = serveAddr
	cfg.Limits.RateMaxRequests = rateRequests
	cfg.Limits.RateWindow = rateWindow
	cfg.Limits.MaxFileBytes = serveMaxBytes
	if resolverURL != "" {
		cfg.Entitlement.ResolverURL = resolverURL
	}
	if allowAll {
		cfg.Entitlement.AllowAll = true
	}

	log := newLogger(cfg)

	var entitler govern.Entitler
	switch {
	case cfg.Entitlement.AllowAll:
		entitler = govern.StaticEntitler(true)
	case cfg.Entitlement.ResolverURL != "":
		entitler = govern.NewResolverClient(cfg.Entitlement,
			cache.NewMemoryCache(cfg.Entitlement.CacheTTL, 2*cfg.Entitlement.CacheTTL))
	default:
		// No resolver and no allow-all: only header assertions can grant
		// access, which suits deployments behind an auth proxy.
		entitler = govern.StaticEntitler(false)
		log.Warn("no entitlement resolver configured; only X-Entitled assertions are honored")
	}

	pipe := pipeline.New(cfg, log)
	limiter := govern.NewRateLimiter(cfg.Limits.RateMaxRequests, cfg.Limits.RateWindow)
	governor := govern.NewGovernor(cfg, limiter, entitler, pipe, log)
	srv := server.New(cfg, governor, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	log.Info("server started", "addr", srv.Addr(), "ai_enabled", cfg.LLM.Provider != "")

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
