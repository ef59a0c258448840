package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"divenludo/internal/game"
	"divenludo/internal/store"
	"divenludo/internal/words"
)

// Test constants
const (
	TestTargetWord = "CRANE"
	TestTargetHint = "A tall wading bird"
)

func testApp() *App {
	dict := words.New(
		[]words.Entry{{Word: TestTargetWord, Hint: TestTargetHint}},
		[]string{"SLATE", "TRACE", "BRAVE", "GRADE", "PLANE", "SHALE", "STARE"},
	)
	app := NewApp(dict, store.NewMemoryStore(), 2*time.Hour)
	app.RateLimitRPS = 1000
	app.RateLimitBurst = 1000
	return app
}

func testRouter(app *App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newRouter(app)
}

func createTestSession(t *testing.T, router *gin.Engine) sessionView {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sessions", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /sessions returned status %d, want 201", w.Code)
	}
	var view sessionView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode session response: %v", err)
	}
	return view
}

func postGuess(t *testing.T, router *gin.Engine, sessionID, guess string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"guess": guess})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sessions/"+sessionID+"/guesses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// TestCreateSessionHandler checks a new session starts in progress with a
// hidden target word.
func TestCreateSessionHandler(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)

	if view.Status != game.StatusInProgress {
		t.Errorf("new session status = %v, want %v", view.Status, game.StatusInProgress)
	}
	if view.TargetWord != "" {
		t.Error("target word must not be exposed while in progress")
	}
	if view.Hint != TestTargetHint {
		t.Errorf("hint = %q, want %q", view.Hint, TestTargetHint)
	}
	if view.AttemptsUsed != 0 || view.MaxAttempts != game.MaxAttempts {
		t.Errorf("attempts = %d/%d, want 0/%d", view.AttemptsUsed, view.MaxAttempts, game.MaxAttempts)
	}
}

// TestGetSessionHandler checks session retrieval and not-found handling.
func TestGetSessionHandler(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/sessions/"+view.ID, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /sessions/:id returned status %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/sessions/no-such-session", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET unknown session returned status %d, want 404", w.Code)
	}
}

// TestGuessHandlerWinFlow checks the full win walkthrough over HTTP.
func TestGuessHandlerWinFlow(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)

	for _, guess := range []string{"SLATE", "TRACE"} {
		w := postGuess(t, router, view.ID, guess)
		if w.Code != http.StatusOK {
			t.Fatalf("guess %s returned status %d, want 200", guess, w.Code)
		}
	}

	w := postGuess(t, router, view.ID, "CRANE")
	if w.Code != http.StatusOK {
		t.Fatalf("winning guess returned status %d, want 200", w.Code)
	}
	var resp struct {
		Record  game.GuessRecord `json:"record"`
		Session sessionView      `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode guess response: %v", err)
	}
	if !game.AllCorrect(resp.Record.Tags) {
		t.Error("winning record should be all correct")
	}
	if resp.Session.Status != game.StatusWon {
		t.Errorf("session status = %v, want %v", resp.Session.Status, game.StatusWon)
	}
	if resp.Session.TargetWord != TestTargetWord {
		t.Error("target word should be revealed once the session is terminal")
	}
}

// TestGuessHandlerRejections checks rejection status codes.
func TestGuessHandlerRejections(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)

	tests := []struct {
		guess    string
		wantCode int
		comment  string
	}{
		{"CRAN", http.StatusUnprocessableEntity, "invalid shape"},
		{"ZZZZZ", http.StatusUnprocessableEntity, "not an acceptable word"},
	}
	for _, tt := range tests {
		w := postGuess(t, router, view.ID, tt.guess)
		if w.Code != tt.wantCode {
			t.Errorf("%s: guess %q returned status %d, want %d", tt.comment, tt.guess, w.Code, tt.wantCode)
		}
	}

	if w := postGuess(t, router, "no-such-session", "SLATE"); w.Code != http.StatusNotFound {
		t.Errorf("guess on unknown session returned status %d, want 404", w.Code)
	}

	// Missing body.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sessions/"+view.ID+"/guesses", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty guess body returned status %d, want 400", w.Code)
	}
}

// TestGuessHandlerLossAndTerminal checks the loss flow and that a guess
// against a finished session is rejected with a conflict.
func TestGuessHandlerLossAndTerminal(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)

	wrong := []string{"SLATE", "TRACE", "BRAVE", "GRADE", "PLANE", "SHALE"}
	var last struct {
		Session sessionView `json:"session"`
	}
	for _, guess := range wrong {
		w := postGuess(t, router, view.ID, guess)
		if w.Code != http.StatusOK {
			t.Fatalf("guess %s returned status %d, want 200", guess, w.Code)
		}
		if err := json.Unmarshal(w.Body.Bytes(), &last); err != nil {
			t.Fatalf("failed to decode guess response: %v", err)
		}
	}
	if last.Session.Status != game.StatusLost {
		t.Errorf("session status after %d wrong guesses = %v, want %v", len(wrong), last.Session.Status, game.StatusLost)
	}

	if w := postGuess(t, router, view.ID, "STARE"); w.Code != http.StatusConflict {
		t.Errorf("guess on lost session returned status %d, want 409", w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/sessions/"+view.ID+"/guesses", nil)
	router.ServeHTTP(w, req)
	var listing struct {
		Records []game.GuessRecord `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode guesses listing: %v", err)
	}
	if len(listing.Records) != game.MaxAttempts {
		t.Errorf("ledger length = %d, want %d (unchanged by rejected guess)", len(listing.Records), game.MaxAttempts)
	}
}

// TestListGuessesHandler checks ordered, repeatable reads.
func TestListGuessesHandler(t *testing.T) {
	router := testRouter(testApp())
	view := createTestSession(t, router)
	for _, guess := range []string{"SLATE", "TRACE"} {
		if w := postGuess(t, router, view.ID, guess); w.Code != http.StatusOK {
			t.Fatalf("guess %s returned status %d", guess, w.Code)
		}
	}

	read := func() []string {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/sessions/"+view.ID+"/guesses", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET guesses returned status %d, want 200", w.Code)
		}
		var listing struct {
			Records []game.GuessRecord `json:"records"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
			t.Fatalf("failed to decode listing: %v", err)
		}
		texts := make([]string, len(listing.Records))
		for i, rec := range listing.Records {
			texts[i] = rec.Text
		}
		return texts
	}

	first := read()
	second := read()
	if len(first) != 2 || first[0] != "SLATE" || first[1] != "TRACE" {
		t.Errorf("records = %v, want [SLATE TRACE]", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("repeated reads differ at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

// TestSessionLoadedFromStore checks a session survives a cache wipe.
func TestSessionLoadedFromStore(t *testing.T) {
	app := testApp()
	router := testRouter(app)
	view := createTestSession(t, router)
	if w := postGuess(t, router, view.ID, "SLATE"); w.Code != http.StatusOK {
		t.Fatalf("guess returned status %d", w.Code)
	}

	// Drop the in-memory cache; the next read must hit the store.
	app.SessionMutex.Lock()
	app.Sessions = make(map[string]*game.Session)
	app.SessionMutex.Unlock()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/sessions/"+view.ID, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET after cache wipe returned status %d, want 200", w.Code)
	}
	var restored sessionView
	if err := json.Unmarshal(w.Body.Bytes(), &restored); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if restored.AttemptsUsed != 1 {
		t.Errorf("restored attempts = %d, want 1", restored.AttemptsUsed)
	}
}

// TestHealthzHandler checks the health endpoint.
func TestHealthzHandler(t *testing.T) {
	router := testRouter(testApp())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET /healthz returned status %d, want 200", w.Code)
	}
}

// TestRateLimitMiddleware checks rate limiting blocks excessive requests.
func TestRateLimitMiddleware(t *testing.T) {
	app := testApp()
	app.RateLimitRPS = 1
	app.RateLimitBurst = 2
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(app.rateLimitMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	blocked := false
	for range 5 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/limited", nil)
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			blocked = true
		}
	}
	if !blocked {
		t.Error("rate limiter never blocked a burst of requests")
	}
}

// TestGetLimiterReuse checks limiters are cached per key.
func TestGetLimiterReuse(t *testing.T) {
	app := testApp()
	first := app.getLimiter("1.2.3.4")
	second := app.getLimiter("1.2.3.4")
	if first != second {
		t.Error("expected the same limiter instance for one key")
	}
}
