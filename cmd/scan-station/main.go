package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/scan-station/internal/session"
	"github.com/zombor/scan-station/internal/station"
	"github.com/zombor/scan-station/internal/workbook"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("scan-station")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		exportDir       = fs.StringLong("export-dir", "", "Directory to keep a copy of every export in (optional)")
		notificationTTL = fs.DurationLong("notification-ttl", session.DefaultNotificationTTL, "How long notifications stay on screen")
		dateFormat      = fs.StringLong("date-format", session.DefaultLayout.DateFormat, "Go time layout for the Date column")
		timeFormat      = fs.StringLong("time-format", session.DefaultLayout.TimeFormat, "Go time layout for the Time column")
		timezone        = fs.StringLong("timezone", "Local", "IANA time zone for displayed and exported times")
		authUser        = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel        = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SCAN_STATION"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	location, err := time.LoadLocation(*timezone)
	if err != nil {
		slog.Error("Invalid timezone", "timezone", *timezone, "error", err)
		os.Exit(1)
	}
	layout := session.Layout{
		DateFormat: *dateFormat,
		TimeFormat: *timeFormat,
		Location:   location,
	}

	// Initialize export archive
	var archive workbook.Storage
	if *exportDir != "" {
		slog.Info("Initializing export archive...", "path", *exportDir)
		store, err := workbook.NewLocalStorage(*exportDir)
		if err != nil {
			slog.Error("Failed to initialize export archive", "error", err)
			os.Exit(1)
		}
		archive = store
	}

	// Initialize session and service
	sess := session.New(session.NewNotifier(*notificationTTL))
	service := station.NewService(sess, workbook.NewXLSX(), archive, layout)

	// Initialize server
	basicAuth := station.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := station.NewServer(service, basicAuth)

	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Scan station ready", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if err := server.Run(ctx, addr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutting down...")
}
