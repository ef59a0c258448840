package main

// Route constants
const (
	RouteSessions       = "/sessions"
	RouteSessionByID    = "/sessions/:id"
	RouteSessionGuesses = "/sessions/:id/guesses"
	RouteHealthz        = "/healthz"
)

// Data file locations
const (
	WordsFile         = "data/words.json"
	AcceptedWordsFile = "data/accepted_words.json"
	SessionDir        = "data/sessions"
	DefaultSQLiteDSN  = "data/divenludo.db"
)

// Context key constants
type contextKey string

const (
	requestIDKey contextKey = "request_id"
)
