package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"divenludo/internal/store"
	"divenludo/internal/words"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logInfo("Starting Divenludo in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	dict, err := words.Load(WordsFile, AcceptedWordsFile)
	if err != nil {
		logFatal("Failed to load words: %v", err)
	}
	logInfo("Loaded %d words from dictionary, %d accepted guesses", dict.Len(), dict.AcceptedLen())

	sessionTimeout := getEnvDuration("SESSION_TIMEOUT", 2*time.Hour)
	st, err := openStore(sessionTimeout)
	if err != nil {
		logFatal("Failed to open session store: %v", err)
	}

	app := NewApp(dict, st, sessionTimeout)
	app.IsProduction = isProduction

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.startCleanup(ctx, getEnvDuration("CLEANUP_INTERVAL", 30*time.Minute))

	router := newRouter(app)
	startServer(router)
}

// openStore selects the durable backend from the environment: sqlite,
// file (default), or memory for throwaway runs.
func openStore(sessionTimeout time.Duration) (store.Store, error) {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "sqlite":
		dsn := os.Getenv("SQLITE_DSN")
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		logInfo("Using sqlite session store at %s", dsn)
		return store.OpenSQLite(dsn)
	case "memory":
		logInfo("Using in-memory session store")
		return store.NewMemoryStore(), nil
	case "", "file":
		logInfo("Using file session store in %s", SessionDir)
		return store.NewFileStore(SessionDir, sessionTimeout), nil
	default:
		logWarn("Unknown STORE_BACKEND %q, using file store", backend)
		return store.NewFileStore(SessionDir, sessionTimeout), nil
	}
}

// newRouter builds the gin engine with middleware and the API routes.
func newRouter(app *App) *gin.Engine {
	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(requestIDMiddleware())
	router.Use(cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.POST(RouteSessions, app.rateLimitMiddleware(), app.createSessionHandler)
	router.GET(RouteSessionByID, app.getSessionHandler)
	router.GET(RouteSessionGuesses, app.listGuessesHandler)
	router.POST(RouteSessionGuesses, app.rateLimitMiddleware(), app.guessHandler)
	router.GET(RouteHealthz, app.healthzHandler)

	return router
}

// startServer runs the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
