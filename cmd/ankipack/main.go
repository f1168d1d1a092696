package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/config"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/deckbuild"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/deckfile"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/gitsource"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/logger"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/web"
)

func main() {
	// 1. Define and parse command-line flags
	fs := pflag.NewFlagSet("ankipack", pflag.ExitOnError)
	config.RegisterFlags(fs)
	deckPath := fs.String("deck", "", "Path to the YAML deck definition")
	outPath := fs.String("out", "", "Output package path (default: <parent>.apkg)")
	repoURL := fs.String("repo", "", "Git repository holding the deck definition; --deck is relative to it")
	reposDir := fs.String("repos-dir", "repos", "Directory for git checkouts")
	serve := fs.Bool("serve", false, "Run the HTTP server instead of building a single package")
	fs.Parse(os.Args[1:])

	// 2. Load configuration
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(os.Stdout, cfg.LogLevel)

	svc := deckbuild.NewService(deckbuild.Options{
		TempDir:          cfg.Build.TempDir,
		InsertWorkers:    cfg.Build.InsertWorkers,
		PackageTimeout:   cfg.Package.Timeout,
		CompressionLevel: cfg.Package.CompressionLevel,
		Logger:           log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		if err := runServer(ctx, cfg.Server.Addr, svc, log); err != nil {
			log.Error("server has failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *deckPath == "" {
		fmt.Fprintln(os.Stderr, "--deck is required unless --serve is set")
		os.Exit(2)
	}

	// 3. Resolve the definition, checking out the repository first if asked
	path := *deckPath
	if *repoURL != "" {
		checkout := filepath.Join(*reposDir, repoDirName(*repoURL))
		if err := gitsource.Sync(ctx, *repoURL, checkout); err != nil {
			log.Error("failed to sync deck repository", "url", *repoURL, "error", err)
			os.Exit(1)
		}
		path = filepath.Join(checkout, *deckPath)
	}

	deck, err := deckfile.Load(path)
	if err != nil {
		log.Error("failed to load deck definition", "path", path, "error", err)
		os.Exit(1)
	}

	// 4. Build and write the package
	data, err := svc.BuildDeck(ctx, deck)
	if err != nil {
		log.Error("failed to build package", "error", err)
		os.Exit(1)
	}

	out := *outPath
	if out == "" {
		out = deck.ParentName + ".apkg"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Error("failed to write package", "path", out, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d sets, %d cards, %d bytes).\n", out, len(deck.Sets), deck.CardCount(), len(data))
}

func runServer(ctx context.Context, addr string, svc *deckbuild.Service, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewServer(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// repoDirName turns a repository URL into a stable directory name.
func repoDirName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	for _, sep := range []string{"://", "@", ":", "/"} {
		name = strings.ReplaceAll(name, sep, "_")
	}
	return name
}
