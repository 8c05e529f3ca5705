package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/resume-scorer/internal/httpserver"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/metrics"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "listen port (default from PORT or server.port)")
	serveCmd.Flags().Bool("no-llm", false, "disable LLM enhancement for every request")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve(cmd *cobra.Command) {
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if noLLM, _ := cmd.Flags().GetBool("no-llm"); noLLM {
		config.LLM.Enabled = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p, err := buildPipeline(ctx, config, m, logger)
	if err != nil {
		logger.Fatal("building the analysis pipeline", zap.Error(err))
	}

	srv := httpserver.New(httpserver.Config{
		Version:          version,
		MaxUploadMB:      config.Server.MaxUploadMB,
		RateLimitPerMin:  config.Server.RateLimitPerMin,
		CORSAllowOrigins: config.Server.CORSAllowOrigins,
		LLM:              p.llm,
	}, p.analyzer, m, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           srv.Router(),
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting the resume-scorer",
			zap.String("version", version),
			zap.Int("port", config.Server.Port),
			zap.Bool("llm_enabled", p.llm.Enabled),
			zap.String("llm_server_type", p.llm.ServerType),
			zap.String("encoder_provider", config.Encoder.Provider),
		)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
