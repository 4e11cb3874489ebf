package config

import (
	"time"

	"github.com/playops/playops-admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Redis     Redis
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Auth holds authentication tuning.
type Auth struct {
	// MinPasswordLength is the minimum accepted password length on
	// registration and password change.
	MinPasswordLength int
	// LoginRateLimit is the number of login attempts allowed per email within
	// LoginRateWindow. Zero disables throttling.
	LoginRateLimit int
	// LoginRateWindow is the fixed throttling window.
	LoginRateWindow time.Duration
}

// Redis holds the connection settings for the login throttle backend.
// An empty Addr disables redis entirely.
type Redis struct {
	Addr     string
	Password string
	DB       int
}
