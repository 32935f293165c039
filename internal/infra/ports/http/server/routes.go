package server

import (
	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/application/config"
	"github.com/lingopeer/lingopeer/internal/infra/ports/http/handlers"
	"github.com/lingopeer/lingopeer/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		v1.Use(middleware.IdentityMiddleware(cfg.JWTSecret, cfg.Debug))
		{
			v1.GET("/ice", iceHandler.IceServers)

			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/rooms", roomHandler.ListRooms)
			v1.POST("/rooms", roomHandler.CreateRoom)
		}
	}

	return e
}
