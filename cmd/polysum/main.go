package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localrivet/polysum"
	"github.com/localrivet/polysum/internal/config"
	"github.com/localrivet/polysum/internal/logger"
)

// Run modes
const (
	modeStdio = "stdio"
	modeHTTP  = "http"
	modeWatch = "watch"
	modeFile  = "file"
)

func main() {
	mode := flag.String("mode", modeStdio, "run mode: stdio, http, watch or file")
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	file := flag.String("file", "", "document to summarize in file mode")
	size := flag.String("size", "", "summary size in file mode: short, medium or long")
	owner := flag.String("owner", "cli", "owner id the file mode summary is stored under")
	flag.Parse()

	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	if err := run(*mode, *configPath, *file, *size, *owner); err != nil {
		logger.LogError(err)
		os.Exit(1)
	}
}

func run(mode, configPath, file, size, owner string) error {
	cfg, err := config.LoadConfigWithPath(configPath)
	if err != nil {
		return err
	}

	slogger := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	appLogger := logger.GetDefaultLogger().WithContext("main")
	appLogger.Info("polysum starting in %s mode", mode)

	srv, err := polysum.NewServer(polysum.ServerOptions{Config: cfg, Logger: slogger})
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.LogError(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeStdio:
		return srv.Start()

	case modeHTTP:
		return srv.StartHTTP(ctx)

	case modeWatch:
		return srv.Watch(ctx)

	case modeFile:
		if file == "" {
			return errors.New("file mode needs -file")
		}
		out, err := srv.SummarizeFile(ctx, owner, file, size)
		if err != nil {
			return err
		}
		for _, sentence := range out.Result.Sentences {
			fmt.Println(sentence)
		}
		if len(out.Result.Degradations) > 0 {
			appLogger.Warn("summary degraded: %v", out.Result.Degradations)
		}
		appLogger.Info("stored summary %s", out.Record.ID)
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
