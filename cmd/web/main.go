package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Brambles-cat/VoteValidator/cmd/web/internal/web"
	"github.com/Brambles-cat/VoteValidator/internal/config"
	"github.com/Brambles-cat/VoteValidator/internal/metadata"
	"github.com/Brambles-cat/VoteValidator/pkg/youtube"
	"github.com/Brambles-cat/VoteValidator/pkg/ytdlp"
)

// Extractors yt-dlp is allowed to use. Anything outside this list fails
// deterministically instead of falling through to the generic scraper.
var allowedExtractors = []string{
	"twitter", "Newgrounds", "lbry", "TikTok", "PeerTube",
	"vimeo", "BiliBili", "dailymotion", "generic",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	yt := youtube.NewClient(conf.YouTubeAPIKey, "")

	ydl := ytdlp.New()
	ydl.Path = conf.YTDLPPath
	ydl.AllowedExtractors = allowedExtractors

	fetcher := metadata.NewFetcher(yt, ydl, metadata.NewCache(), conf.FetchWorkers)

	e, err := web.NewWebserver(fetcher)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
