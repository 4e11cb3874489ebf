package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/dsn"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/web"
	"github.com/playops/playops-admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.PlayerNote{},
		&models.SupportTicket{},
		&models.TicketReply{},
		&models.Bonus{},
		&models.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	if err := seed(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	sessions := session.New(openSessionStorage(cfg))
	authService := auth.NewService(db, sessions, openThrottle(cfg), cfg.Webserver.Session.ExpiryTime)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, authService),
	}
}

// openDialector selects the gorm driver by the configured engine. Dev mode
// runs on an in-memory sqlite database instead.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DevMode {
		log.Warn().Msg("dev mode enabled: using in-memory sqlite database")
		return sqlite.Open(":memory:")
	}

	if cfg.DB.GormEngine == "postgres" {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// openSessionStorage selects the fiber storage backend holding session state.
// Sessions survive restarts on mysql and postgres; dev mode keeps them in
// process memory.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DevMode {
		return sessionmemory.New()
	}

	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name),
			Table: "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}

// openThrottle wires the redis-backed login throttle. An empty redis address
// or a zero rate limit disables throttling.
func openThrottle(cfg *config.Config) *auth.Throttle {
	if cfg.Redis.Addr == "" || cfg.Auth.LoginRateLimit <= 0 {
		log.Info().Msg("login throttling disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return auth.NewThrottle(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
}
