package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rolescope/backend/internal/queue"
	mid "github.com/rolescope/backend/internal/server/middleware"
	"github.com/rolescope/backend/internal/session"
	"github.com/rolescope/backend/internal/util"
	"github.com/rolescope/backend/pkg/logger"
	"github.com/rolescope/backend/pkg/store"
	"github.com/rolescope/backend/pkg/store/memory"
	storepgx "github.com/rolescope/backend/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storage store.SnapshotStorage
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, snapshots are kept in memory only")
		storage = memory.New()
	} else {
		runMigrations(databaseURL)

		conn, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		storage = storepgx.NewSnapshotDBStorage(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	queues := []string{"scan_complete_queue"}
	err = queue.SetupQueues(ch, queues)
	if err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	sessionTTL := time.Duration(util.GetEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute
	sessions := session.NewManager(storage, sessionTTL)
	sessions.StartJanitor(ctx, time.Minute)

	// Rebind open sessions when the worker stores a fresh snapshot.
	go watchSnapshotReady(ctx, ch, sessions)

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	e.Use(mid.AppContextMiddleware(storage, sessions, ch, &k, masterAPIKey, masterUserID, masterUserRole))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func watchSnapshotReady(ctx context.Context, ch *amqp091.Channel, sessions *session.Manager) {
	msgs, err := queue.SubscribeTopic(ch, "snapshot_ready")
	if err != nil {
		logger.Error("Failed to subscribe to snapshot_ready", "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ready queue.SnapshotReadyMsg
			if err := json.Unmarshal(msg.Body, &ready); err != nil {
				logger.Warn("Dropping malformed snapshot_ready message", "err", err)
				continue
			}
			if err := sessions.RebindProject(ctx, ready.ProjectID); err != nil {
				logger.Error("Failed to rebind sessions", "project_id", ready.ProjectID, "err", err)
			}
		}
	}
}

func runMigrations(databaseURL string) {
	migrationsDir := util.GetEnvString("MIGRATIONS_DIR", "migrations")
	m, err := migrate.New("file://"+migrationsDir, databaseURL)
	if err != nil {
		logger.Fatal("Failed to open migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	logger.Info("Migrations up to date")
}
