package api

import (
	"log"
	"net/http"
	"time"

	"proposaldesk-backend/internal/config"
	"proposaldesk-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler      *handlers.AuthHandler
	ProposalHandler  *handlers.ProposalHandler
	QuotationHandler *handlers.QuotationHandler
	ChatHandler      *handlers.ChatHandler
	Config           *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:19006"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1/auth", func(r chi.Router) {
		if deps.AuthHandler == nil {
			panic("AuthHandler dependency is nil in router setup")
		}
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.Post("/google", deps.AuthHandler.HandleGoogleLogin)
	})

	// --- Authenticated Routes (JWT Required) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

		r.Post("/auth/logout", deps.AuthHandler.HandleLogout)

		// Generator and record routes run under a request timeout; the
		// generators also enforce their own per-attempt budget.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(2 * time.Minute))

			if deps.ProposalHandler != nil {
				r.Post("/proposals", deps.ProposalHandler.HandleGenerateProposal)
			} else {
				log.Println("WARN: ProposalHandler dependency is nil, skipping /v1/proposals routes.")
			}

			if deps.QuotationHandler != nil {
				r.Route("/quotations", func(r chi.Router) {
					r.Post("/", deps.QuotationHandler.HandleGenerateQuotation)
					r.Get("/", deps.QuotationHandler.HandleListQuotations)
					r.Get("/{quotationID}", deps.QuotationHandler.HandleGetQuotation)
					r.Post("/{quotationID}/accept", deps.QuotationHandler.HandleAcceptQuotation)
					r.Get("/{quotationID}/document", deps.QuotationHandler.HandleGetQuotationDocument)
					r.Get("/{quotationID}/document.pdf", deps.QuotationHandler.HandleDownloadQuotationPDF)
				})
			} else {
				log.Println("WARN: QuotationHandler dependency is nil, skipping /v1/quotations routes.")
			}
		})

		if deps.ChatHandler != nil {
			// REST chat surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(30 * time.Second))
				r.Get("/conversations", deps.ChatHandler.HandleListConversations)
				r.Get("/conversations/{conversationID}/messages", deps.ChatHandler.HandleGetConversationMessages)
				r.Post("/conversations/{conversationID}/messages", deps.ChatHandler.HandleSendToConversation)
				r.Get("/messages", deps.ChatHandler.HandleGetMyMessages)
				r.Post("/messages", deps.ChatHandler.HandleSendMyMessage)
			})

			// Websocket routes live outside the timeout middleware; a
			// subscription stays open until the peer goes away.
			r.Get("/conversations/ws", deps.ChatHandler.HandleRosterSocket)
			r.Get("/conversations/{conversationID}/ws", deps.ChatHandler.HandleConversationSocket)
			r.Get("/messages/ws", deps.ChatHandler.HandleMySocket)
		} else {
			log.Println("WARN: ChatHandler dependency is nil, skipping chat routes.")
		}
	})

	return r
}
