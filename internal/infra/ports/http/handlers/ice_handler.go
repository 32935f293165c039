package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/application/config"
)

// IceHandler hands clients the ICE server list for the peer-to-peer media
// path. The coordinator itself never touches media.
type IceHandler struct {
	cfg *config.Config
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg}
}

func (h *IceHandler) IceServers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"iceServers": h.cfg.IceServers})
}
