package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/config"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/handlers"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/model"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/store"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/verdict"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so deferred closes always happen.
func run() error {
	// Get the project root directory
	execPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// If running from cmd/server, go up two levels
	if filepath.Base(execPath) == "server" {
		execPath = filepath.Join(execPath, "../..")
	}

	cfg, err := config.Load(execPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	engine, err := verdict.NewEngine(cfg.Engine())
	if err != nil {
		return fmt.Errorf("invalid decision engine config: %w", err)
	}

	log.Printf("Loading model from: %s", cfg.ModelPath)

	modelServer, err := model.NewServer(cfg.ModelPath, cfg.MetadataPath)
	if err != nil {
		return fmt.Errorf("failed to initialize model server: %w", err)
	}
	defer modelServer.Close()

	if err := engine.ValidateModel(modelServer.Metadata.Classes); err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}

	opts := handlers.Options{MaxUploadBytes: cfg.MaxUploadMB << 20}
	if cfg.DatabaseURL != "" {
		db, err := openDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := store.NewRecordRepo(db)
		if err := migrate(repo); err != nil {
			return err
		}

		images, err := store.NewImageStore(cfg.ImageDir)
		if err != nil {
			return fmt.Errorf("failed to open image store: %w", err)
		}
		opts.Records, opts.Images = repo, images
	} else {
		log.Println("DATABASE_URL not set, predictions will not be stored")
	}

	handler := handlers.NewHandler(modelServer, engine, opts)
	mux := http.NewServeMux()
	handler.Register(mux)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Classes: %v", engine.Labels())
	log.Printf("Rejection threshold: %.2f", engine.Threshold())
	log.Println("Endpoints:")
	log.Println("  GET  /health        - Health check")
	log.Println("  GET  /classes       - Label set")
	log.Println("  POST /predict       - Raw tensor prediction")
	log.Println("  POST /predict/image - Predict from image upload")
	log.Println("  POST /classify      - Verdict from a probability vector")
	if handler.Persisting() {
		log.Println("  /api/admin/...      - Dataset administration")
	}

	if err := http.ListenAndServe(":"+cfg.Port, handlers.CORS(mux)); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func migrate(repo *store.RecordRepo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Println("db connected")
	return db, nil
}
