package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/rolescope/backend/internal/session"
	"github.com/rolescope/backend/pkg/store"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

type App struct {
	Store          store.SnapshotStorage
	Sessions       *session.Manager
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	storage store.SnapshotStorage,
	sessions *session.Manager,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	masterAPIKey string,
	masterUserID int64,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				Store:          storage,
				Sessions:       sessions,
				Queue:          queue,
				Key:            key,
				MasterAPIKey:   masterAPIKey,
				MasterUserID:   masterUserID,
				MasterUserRole: masterUserRole,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
