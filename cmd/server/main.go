package main

import (
	"context"
	"crypto/cipher"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proposaldesk-backend/internal/api"
	"proposaldesk-backend/internal/auth"
	"proposaldesk-backend/internal/config"
	"proposaldesk-backend/internal/credstore"
	"proposaldesk-backend/internal/crypto"
	"proposaldesk-backend/internal/handlers"
	"proposaldesk-backend/internal/llm"
	"proposaldesk-backend/internal/pdf"
	"proposaldesk-backend/internal/realtime"
	"proposaldesk-backend/internal/services"
	"proposaldesk-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log.Println("Starting ProposalDesk Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v\n", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Credential Cache, LLM, Services)
	pgStore := postgres.NewPostgresStore(dbpool)
	log.Println("Postgres store initialized.")

	var aead cipher.AEAD
	if len(cfg.EncryptionKey) > 0 {
		aead, err = crypto.NewAESGCM(cfg.EncryptionKey)
		if err != nil {
			log.Fatalf("FATAL: Failed to create AES-GCM cipher: %v", err)
		}
		log.Println("AES-GCM cipher initialized.")
	} else {
		log.Println("WARN: ENCRYPTION_KEY not set; credential store records are not encrypted.")
	}

	creds, err := credstore.Open(cfg.CredStorePath, aead)
	if err != nil {
		log.Fatalf("FATAL: Failed to open credential store: %v", err)
	}
	defer creds.Close()
	log.Println("Credential store opened.")

	model, err := llm.NewModel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create LLM model: %v", err)
	}
	log.Printf("LLM model initialized (%s/%s).", cfg.LLMProvider, model.Model())

	var verifier auth.GoogleTokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
		log.Println("Google token verifier initialized.")
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set; Google sign-in is disabled.")
	}

	hub := realtime.NewHub()
	policy := services.GenerationPolicy{
		Timeout: cfg.GenerationTimeout,
		Retries: cfg.GenerationRetries,
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(pgStore, creds, verifier, cfg)
	log.Println("AuthService initialized.")
	chatService := services.NewChatService(pgStore, hub)
	log.Println("ChatService initialized.")
	proposalService := services.NewProposalService(model, policy)
	log.Println("ProposalService initialized.")
	quotationService := services.NewQuotationService(model, pgStore, policy, cfg.CompanyName, cfg.CompanyTagline)
	log.Println("QuotationService initialized.")

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	quotationHandler := handlers.NewQuotationHandler(quotationService, pdf.NewRenderer(cfg.DownloadsDir))
	chatHandler := handlers.NewChatHandler(chatService)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		AuthHandler:      authHandler,
		ProposalHandler:  proposalHandler,
		QuotationHandler: quotationHandler,
		ChatHandler:      chatHandler,
		Config:           cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Write timeout is deliberately absent: websocket subscriptions
		// outlive any fixed budget. Per-route timeouts cover the REST surface.
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
