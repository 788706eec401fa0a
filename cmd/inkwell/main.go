package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/store"
	"inkwell/internal/web"
)

const usage = `Usage: inkwell [command] [flags]

Commands:
  serve              run the blog server (default)
  init-db            create the database tables if they do not exist
  make-admin EMAIL   grant the admin role to the user with EMAIL
`

func main() {
	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}
	switch command {
	case "serve", "init-db", "make-admin":
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to the YAML config file")
	addr := fs.String("addr", "", "Listen address (overrides the config file)")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		infoLog.Printf("Failed to load config: %v, using defaults", err)
		cfg = config.Defaults()
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			cfg.DatabaseURL = dbURL
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if cfg.DatabaseURL == "" {
		errorLog.Fatal("No database configured: set database_url in the config file or the DATABASE_URL environment variable")
	}

	ctx := context.Background()
	db, err := store.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		errorLog.Fatalf("Could not initialize database: %v", err)
	}
	defer db.Close()

	switch command {
	case "serve":
		if err := serve(infoLog, errorLog, cfg, db); err != nil {
			errorLog.Fatal(err)
		}
	case "init-db":
		if err := db.CreateTables(ctx); err != nil {
			errorLog.Fatalf("Could not create tables: %v", err)
		}
		infoLog.Println("Initialized the database.")
	case "make-admin":
		if fs.NArg() != 1 {
			errorLog.Fatal("Usage: inkwell make-admin EMAIL")
		}
		if err := makeAdmin(ctx, db, fs.Arg(0)); err != nil {
			errorLog.Fatal(err)
		}
		infoLog.Printf("Granted the admin role to %s.", fs.Arg(0))
	}
}

func serve(infoLog, errorLog *log.Logger, cfg *config.Config, db *store.Database) error {
	location, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("invalid display_timezone %q: %w", cfg.DisplayTimezone, err)
	}

	app, err := web.NewApp(infoLog, errorLog, db, location, time.Duration(cfg.SessionHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("could not build the application: %w", err)
	}

	srv := &http.Server{
		Addr:     cfg.Addr,
		ErrorLog: errorLog,
		Handler:  app.Routes(),

		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	infoLog.Printf("Starting server on %s", cfg.Addr)
	return srv.ListenAndServe()
}

func makeAdmin(ctx context.Context, db *store.Database, email string) error {
	user, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user with email %q", email)
		}
		return err
	}
	user.IsAdmin = true
	return db.UpdateUser(ctx, user)
}
