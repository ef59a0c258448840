package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"divenludo/internal/game"
	"divenludo/internal/store"
	"divenludo/internal/words"
)

// App holds the shared state for the service: the dictionary, the game
// engine, the durable store, and an in-memory cache of live sessions.
type App struct {
	Dict   *words.Dictionary
	Engine *game.Engine
	Store  store.Store

	Sessions     map[string]*game.Session
	SessionMutex sync.RWMutex

	SessionTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	LimiterMap     map[string]*rate.Limiter
	LimiterMutex   sync.Mutex

	StartTime    time.Time
	IsProduction bool
}

// NewApp wires the engine to its dictionary collaborators and the store.
func NewApp(dict *words.Dictionary, st store.Store, sessionTimeout time.Duration) *App {
	return &App{
		Dict: dict,
		Engine: &game.Engine{
			SelectStartWord:  dict.SelectStartWord,
			IsAcceptableWord: dict.IsAccepted,
		},
		Store:          st,
		Sessions:       make(map[string]*game.Session),
		SessionTimeout: sessionTimeout,
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		LimiterMap:     make(map[string]*rate.Limiter),
		StartTime:      time.Now(),
	}
}

// createSession starts a new session with a fresh target word and
// persists it.
func (app *App) createSession(ctx context.Context) (*game.Session, error) {
	s := app.Engine.NewSession()

	app.SessionMutex.Lock()
	app.Sessions[s.ID] = s
	app.SessionMutex.Unlock()

	if err := app.Store.Save(ctx, s); err != nil {
		return nil, err
	}
	logInfo("New session %s created with word: %s (hint: %s)", s.ID, s.TargetWord, s.Hint)
	return s, nil
}

// getSession returns the live session for an id, loading it from the
// store on a cache miss.
func (app *App) getSession(ctx context.Context, id string) (*game.Session, error) {
	app.SessionMutex.RLock()
	s, exists := app.Sessions[id]
	app.SessionMutex.RUnlock()
	if exists {
		return s, nil
	}

	s, err := app.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.ErrSessionNotFound
		}
		return nil, err
	}

	app.SessionMutex.Lock()
	// Another request may have loaded it in the meantime; keep the first
	// copy so both callers share one session (and one submit mutex).
	if cached, ok := app.Sessions[id]; ok {
		s = cached
	} else {
		app.Sessions[id] = s
	}
	app.SessionMutex.Unlock()

	logInfo("Loaded session %s from store", id)
	return s, nil
}

// submitGuess runs the state machine for one guess and persists the
// accepted result. Rejections are returned untouched and unpersisted.
func (app *App) submitGuess(ctx context.Context, id, guessText string) (*game.GuessRecord, *game.Session, error) {
	s, err := app.getSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rec, err := app.Engine.Submit(s, guessText)
	if err != nil {
		return nil, s, err
	}

	if err := app.Store.Save(ctx, s); err != nil {
		// The guess is already recorded in memory; persistence is an
		// external step, so surface the failure without undoing it.
		logWarn("Failed to persist session %s: %v", s.ID, err)
	}
	return rec, s, nil
}

// listGuesses returns the ordered guess records for a session.
func (app *App) listGuesses(ctx context.Context, id string) ([]game.GuessRecord, error) {
	s, err := app.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Ledger.Records(), nil
}

// startCleanup evicts idle sessions from the cache and the store at the
// given interval until ctx is done.
func (app *App) startCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.evictIdleSessions()
				if removed, err := app.Store.CleanupExpired(ctx, app.SessionTimeout); err != nil {
					logWarn("Session cleanup failed: %v", err)
				} else if removed > 0 {
					logInfo("Session cleanup removed %d stored sessions", removed)
				}
			}
		}
	}()
}

// evictIdleSessions drops cached sessions whose last update is older than
// the session timeout. The stored copy is handled by CleanupExpired.
func (app *App) evictIdleSessions() {
	cutoff := time.Now().Add(-app.SessionTimeout)
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	for id, s := range app.Sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(app.Sessions, id)
		}
	}
}
