package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/config"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/controller"
	circuitbreaker "github.com/alimikegami/healthcare-microservices/users-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/infrastructure/identity"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/infrastructure/tracing"
	localmiddleware "github.com/alimikegami/healthcare-microservices/users-service/internal/middleware"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/repository"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/service"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type App struct {
	DB     *sqlx.DB
	Config *config.Config
	Server *echo.Echo

	scheduler gocron.Scheduler
}

func (app *App) Start() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	e := echo.New()
	app.Server = e

	traceProvider, err := tracing.InitTracing(app.Config.TracingConfig, app.Config.Environment)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
	}()

	tracer := traceProvider.Tracer(tracing.ServiceName)

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			// add the context to the request
			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	e.GET("/running", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})

	var groups service.GroupSynchronizer = identity.NoopGroupClient{}
	if app.Config.GroupSyncEnabled() {
		groups = identity.CreateGroupClient(app.Config.AuthzConfig, circuitbreaker.CreateCircuitBreaker("identity-groups"))
	} else {
		logger.Warn().Msg("Identity group synchronization is disabled")
	}

	publisher := kafka.CreateEventPublisher(kafka.CreateKafkaProducer(app.Config))

	repo := repository.CreateClinicianRepository(app.DB)
	svc := service.CreateNewService(repo, *app.Config, permission.Default(), groups, publisher)

	g := e.Group("", localmiddleware.Authenticate(app.Config.JWTSecret, app.Config.IgnoreJWTValidation))
	controller.CreateController(g, svc)

	if err := app.scheduleExpirySweep(svc); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule expiry sweep")
	}

	if err := e.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// scheduleExpirySweep deactivates temporary accounts past their contract
// expiry on every tick.
func (app *App) scheduleExpirySweep(svc service.ClinicianService) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			app.Config.ExpirySweepInterval,
		),
		gocron.NewTask(
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), app.Config.ExpirySweepInterval)
				defer cancel()

				if _, err := svc.DeactivateExpiredClinicians(ctx); err != nil {
					log.Error().Err(err).Str("component", "scheduleExpirySweep").Msg("")
				}
			},
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.Start()
	app.scheduler = s

	return nil
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.scheduler != nil {
		if err := app.scheduler.Shutdown(); err != nil {
			log.Error().Err(err).Str("component", "StopServer").Msg("")
		}
	}

	return app.Server.Shutdown(ctx)
}
