package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	HTTPPort        string
	TokenExpiration time.Duration

	// SupportEmail is the reserved account that receives the support
	// role at sign-in. Every other account is a client.
	SupportEmail string

	// GoogleClientID is the OAuth audience expected on Google ID tokens.
	// Google sign-in is disabled when empty.
	GoogleClientID string

	// LLM settings for the proposal/quotation generators.
	LLMProvider       string // "googleai", "openai" or "ollama"
	LLMModel          string
	GoogleAIKey       string
	OpenAIKey         string
	OllamaHost        string
	GenerationTimeout time.Duration
	GenerationRetries int

	// CredStorePath is the bbolt file caching signed-in identities.
	CredStorePath string
	// EncryptionKey encrypts cached identities at rest (32 bytes, AES-256).
	EncryptionKey []byte

	CompanyName    string
	CompanyTagline string
	DownloadsDir   string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	tokenExpStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	tokenExpHours, err := strconv.Atoi(tokenExpStr)
	if err != nil {
		log.Printf("Warning: Invalid JWT_EXPIRATION_HOURS '%s', using default 24h. Error: %v", tokenExpStr, err)
		tokenExpHours = 24
	}

	genTimeoutStr := getEnv("GENERATION_TIMEOUT_SECONDS", "30")
	genTimeoutSecs, err := strconv.Atoi(genTimeoutStr)
	if err != nil || genTimeoutSecs <= 0 {
		log.Printf("Warning: Invalid GENERATION_TIMEOUT_SECONDS '%s', using default 30s.", genTimeoutStr)
		genTimeoutSecs = 30
	}

	genRetriesStr := getEnv("GENERATION_RETRIES", "2")
	genRetries, err := strconv.Atoi(genRetriesStr)
	if err != nil || genRetries < 0 {
		log.Printf("Warning: Invalid GENERATION_RETRIES '%s', using default 2.", genRetriesStr)
		genRetries = 2
	}

	// Encryption key is optional; the credential store falls back to
	// plaintext records when unset (development only).
	var encryptionKey []byte
	if hexKey := getEnv("ENCRYPTION_KEY", ""); hexKey != "" {
		encryptionKey, err = decodeHexKey(hexKey)
		if err != nil {
			log.Fatalf("FATAL: Invalid ENCRYPTION_KEY: %v", err)
		}
	}

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "default-super-secret-key"), // CHANGE THIS IN PRODUCTION!
		DatabaseURL:       dbURL,
		TokenExpiration:   time.Hour * time.Duration(tokenExpHours),
		SupportEmail:      getEnv("SUPPORT_EMAIL", "support@example.com"),
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		LLMProvider:       getEnv("LLM_PROVIDER", "googleai"),
		LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
		GoogleAIKey:       getEnv("GOOGLE_AI_API_KEY", ""),
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		GenerationTimeout: time.Duration(genTimeoutSecs) * time.Second,
		GenerationRetries: genRetries,
		CredStorePath:     getEnv("CRED_STORE_PATH", "data/credentials.bolt"),
		EncryptionKey:     encryptionKey,
		CompanyName:       getEnv("COMPANY_NAME", "Cehpoint E-Learning & Cyber Security Solutions"),
		CompanyTagline:    getEnv("COMPANY_TAGLINE", "A Secure Choice for Your Career and Our World"),
		DownloadsDir:      getEnv("DOWNLOADS_DIR", "downloads"),
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, LLM=%s/%s", cfg.HTTPPort, cfg.TokenExpiration, cfg.LLMProvider, cfg.LLMModel)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}
