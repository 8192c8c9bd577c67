package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/config"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/server"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/telemetry"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "fagrader",
		Short:         "Grade finite automata and regular expression answers",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newServeCmd(), newCheckCmd(), newValidateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the grading HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting fagrader",
		"version", Version,
		"port", cfg.Server.Port,
		"questions", cfg.QuestionsPath,
		"config", configPath,
	)

	shutdownTracing, err := telemetry.Setup(telemetry.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Exporter:    cfg.Telemetry.Exporter,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	var questions []grading.Question
	if cfg.QuestionsPath != "" {
		questions, err = config.LoadQuestions(cfg.QuestionsPath)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
	}
	bank := server.NewQuestionBank(questions, logger)
	grader := grading.NewGrader(grading.Config{
		MaxWordsScanned: cfg.Grading.MaxWordsScanned,
		Seed:            cfg.Grading.Seed,
	}, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := server.NewHandler(bank, grader, cfg.Server.GradeTimeout, logger)
	router := server.NewRouter(handler, server.RouterOptions{
		ServiceName:  cfg.Telemetry.ServiceName,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "questions", bank.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
