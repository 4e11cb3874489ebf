package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	accesslog "github.com/playops/playops-admin/internal/logger/adapter/fiber"
	"github.com/playops/playops-admin/internal/web/handler/admin/adminuser"
	"github.com/playops/playops-admin/internal/web/handler/admin/bonus"
	"github.com/playops/playops-admin/internal/web/handler/admin/note"
	"github.com/playops/playops-admin/internal/web/handler/admin/player"
	"github.com/playops/playops-admin/internal/web/handler/admin/role"
	"github.com/playops/playops-admin/internal/web/handler/admin/settings"
	"github.com/playops/playops-admin/internal/web/handler/admin/ticket"
	"github.com/playops/playops-admin/internal/web/handler/dashboard"
	"github.com/playops/playops-admin/internal/web/handler/login"
	"github.com/playops/playops-admin/internal/web/handler/logout"
	"github.com/playops/playops-admin/internal/web/handler/profile"
	"github.com/playops/playops-admin/internal/web/handler/register"
)

// CheckAlivePath answers load balancer health checks.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// errorHandler renders chain errors as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, authService *auth.Service) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if authService == nil {
		panic("auth service cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			ReadTimeout:    30 * time.Second,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   errorHandler,
		},
	)

	// access logging
	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	// restore the cookie session into fiber.Locals (anonymous requests pass)
	app.Use(auth.Middleware(authService.Sessions()))

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg, authService)

	if err := register.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init register handler")
	}

	if err := profile.Handler.Init(app, cfg, authService); err != nil {
		log.Fatal().Err(err).Msg("failed to init profile handler")
	}

	dashboard.Handler.Init(app, cfg, db)
	player.Handler.Init(app, cfg, db, authService)
	note.Handler.Init(app, cfg, db)
	ticket.Handler.Init(app, cfg, db)
	bonus.Handler.Init(app, cfg, db)
	role.Handler.Init(app, cfg, db)
	adminuser.Handler.Init(app, cfg, db, authService)
	settings.Handler.Init(app, cfg, db)

	return service
}
