package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/receiptcheck/backend/src/config"
	"github.com/username/receiptcheck/backend/src/database"
	"github.com/username/receiptcheck/backend/src/handlers"
	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter *rate.Limiter

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.CORSAllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Receiptcheck backend server starting...")

	limiter = rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	store, err := database.NewStore(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing listing cache...")
	listingCache := cache.New(config.Cfg.ListingCacheTTL, 2*config.Cfg.ListingCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	ofdClient := services.NewOFDClient(config.Cfg.OFDBaseURL, config.Cfg.OFDTimeout)
	ingestService := services.NewIngestService(store, ofdClient, listingCache)
	ticketService := services.NewTicketService(store, listingCache)
	categoryService := services.NewCategoryService(store, listingCache)

	qrcodeHandler := handlers.NewQRCodeHandler(ingestService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/qrcode", qrcodeHandler.HandleScan)
	apiRouter.HandleFunc("POST /api/tickets", ticketHandler.HandleListTickets)
	apiRouter.HandleFunc("POST /api/tickets/clear", ticketHandler.HandleClearTickets)
	apiRouter.HandleFunc("POST /api/categories/list", categoryHandler.HandleListCategories)
	apiRouter.HandleFunc("POST /api/categories/update", categoryHandler.HandleUpdateCategory)
	apiRouter.HandleFunc("GET /api/categories/uncategorized", categoryHandler.HandleUncategorized)

	rootMux.Handle("/api/", apiRouter)

	fileServer := http.FileServer(http.Dir(config.Cfg.PublicDir))
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("API path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/healthz" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Receiptcheck backend is running"})
			return
		}
		fileServer.ServeHTTP(w, r)
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(handlers.RequestLoggingMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr, "tls", config.Cfg.TLSCertPath != "")
	if config.Cfg.TLSCertPath != "" {
		err = server.ListenAndServeTLS(config.Cfg.TLSCertPath, config.Cfg.TLSKeyPath)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
