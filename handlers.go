package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"divenludo/internal/game"
)

// sessionView is the guesser-facing session shape. The target word is
// included only once the session is terminal.
type sessionView struct {
	ID           string             `json:"id"`
	Status       game.Status        `json:"status"`
	Hint         string             `json:"hint,omitempty"`
	AttemptsUsed int                `json:"attemptsUsed"`
	MaxAttempts  int                `json:"maxAttempts"`
	TargetWord   string             `json:"targetWord,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	Records      []game.GuessRecord `json:"records"`
}

// guessRequest is the submit-guess payload.
type guessRequest struct {
	Guess string `json:"guess" binding:"required"`
}

func newSessionView(s *game.Session) sessionView {
	sj := s.ToJSON()
	v := sessionView{
		ID:           sj.ID,
		Status:       sj.Status,
		Hint:         sj.Hint,
		AttemptsUsed: len(sj.Records),
		MaxAttempts:  game.MaxAttempts,
		CreatedAt:    sj.CreatedAt,
		UpdatedAt:    sj.UpdatedAt,
		Records:      sj.Records,
	}
	if sj.Status != game.StatusInProgress {
		v.TargetWord = sj.TargetWord
	}
	return v
}

// rejectionStatus maps a submit rejection to an HTTP status.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrSessionTerminal):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidShape),
		errors.Is(err, game.ErrNotAcceptableWord),
		errors.Is(err, game.ErrDuplicateGuess):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// createSessionHandler starts a new session with a fresh target word.
func (app *App) createSessionHandler(c *gin.Context) {
	s, err := app.createSession(c.Request.Context())
	if err != nil {
		logWarn("Failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, newSessionView(s))
}

// getSessionHandler returns the current state of a session.
func (app *App) getSessionHandler(c *gin.Context) {
	s, err := app.getSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(rejectionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newSessionView(s))
}

// listGuessesHandler returns the ordered guess records for a session.
func (app *App) listGuessesHandler(c *gin.Context) {
	records, err := app.listGuesses(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(rejectionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// guessHandler processes a guess submission and returns the new record
// plus the updated session state. Rejections come back as typed messages,
// never as panics or ledger mutations.
func (app *App) guessHandler(c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guess is required"})
		return
	}

	rec, s, err := app.submitGuess(c.Request.Context(), c.Param("id"), req.Guess)
	if err != nil {
		c.JSON(rejectionStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":  rec,
		"session": newSessionView(s),
	})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"env":            map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"words_loaded":   app.Dict.Len(),
		"accepted_words": app.Dict.AcceptedLen(),
		"uptime":         formatUptime(uptime),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
