package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/foldax/insights-backend/authenticator"
	"github.com/foldax/insights-backend/controllers"
	"github.com/foldax/insights-backend/database"
	"github.com/foldax/insights-backend/metrics"
	authmiddleware "github.com/foldax/insights-backend/middleware"
	"github.com/foldax/insights-backend/repositories"
	"github.com/foldax/insights-backend/services"
)

func main() {
	// Load environment variables from .env file; absent in production
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize database; an unreachable store is fatal, the process
	// must not accept traffic without it
	dbPath := getEnv("DATABASE_PATH", "insights.db")
	if err := database.InitializeDatabase(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Initialize repositories and services
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(repos)

	// Provider registry, built once and injected. Missing credentials
	// are not fatal here; the affected provider fails per request.
	providers := authenticator.NewRegistry(
		authenticator.NewGoogleProvider(authenticator.GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),
		}),
		authenticator.NewLinkedInProvider(authenticator.LinkedInConfig{
			ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
			CallbackURL:  getEnv("LINKEDIN_CALLBACK_URL", "http://localhost:5000/api/auth/linkedin/callback"),
		}),
	)

	collector := metrics.NewCollector()

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:8080")
	useHTTPS := os.Getenv("USE_HTTPS") == "true"

	ctrl := controllers.NewControllers(srvs, providers, repos.LoginEvent, collector, controllers.AuthConfig{
		SuccessURL:    frontendURL + "/dashboard",
		FailureURL:    frontendURL + "/login",
		SecureCookies: useHTTPS,
	})

	limiter := authmiddleware.NewRateLimiter(authmiddleware.DefaultRateLimiterConfig())
	defer limiter.Stop()

	r, err := setupRouter(ctrl, srvs, collector, limiter, frontendURL, useHTTPS)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	port := getEnv("PORT", "5000")

	fmt.Printf("Insights backend starting on port %s\n", port)
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Providers: %v\n", providers.Names())

	log.Fatal(http.ListenAndServe(":"+port, r))
}

// setupRouter configures all routes
func setupRouter(
	ctrl *controllers.Controllers,
	srvs *services.Services,
	collector *metrics.Collector,
	limiter *authmiddleware.RateLimiter,
	frontendURL string,
	useHTTPS bool,
) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth callbacks
	r.Use(chimiddleware.Compress(5))
	r.Use(limiter.Middleware())

	// The SPA is served from another origin and sends the session
	// cookie cross-site
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	// Cookie session carrying only the in-flight OAuth state
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "insights_oauth",
		Secure:      useHTTPS,
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Backend is running")
	})
	r.Get("/metrics", collector.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"status": "OK", "timestamp": %q}`, time.Now().UTC().Format(time.RFC3339))
		})

		// Authentication routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/status", ctrl.Auth.Status)
			r.Post("/logout", ctrl.Auth.Logout)
			r.Get("/{provider}", ctrl.Auth.Login)
			r.Get("/{provider}/callback", ctrl.Auth.Callback)

			r.Group(func(r chi.Router) {
				r.Use(authmiddleware.RequireAuth(srvs.Session))
				r.Get("/me", ctrl.Auth.Me)
			})
		})

		// PUBLIC health endpoints
		r.Get("/analytics/health", ctrl.Analytics.Health)
		r.Get("/posts/health", ctrl.Posts.Health)
		r.Get("/users/health", ctrl.Users.Health)

		// PROTECTED dashboard routes
		r.Group(func(r chi.Router) {
			r.Use(authmiddleware.RequireAuth(srvs.Session))

			r.Get("/analytics/linkedin", ctrl.Analytics.LinkedIn)
			r.Post("/posts", ctrl.Posts.Create)
			r.Get("/users/profile", ctrl.Users.Profile)
		})
	})

	return r, nil
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
