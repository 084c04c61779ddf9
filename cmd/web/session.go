package main

import "time"

const (
	// gameSessionKey maps the scs session to the id of the visitor's game.Session.
	gameSessionKey = "gameSessionID"
	// sessionLifetime is a day, like the daily case. Games idle for longer are evicted with their cookie.
	sessionLifetime = 24 * time.Hour
)
