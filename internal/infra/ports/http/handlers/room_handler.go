package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/domain/models"
	"github.com/lingopeer/lingopeer/internal/infra/postgres/repository"
)

type RoomHandler struct {
	roomRepo        repository.RoomRepository
	defaultCapacity int
}

func NewRoomHandler(roomRepo repository.RoomRepository, defaultCapacity int) *RoomHandler {
	return &RoomHandler{roomRepo: roomRepo, defaultCapacity: defaultCapacity}
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.roomRepo.ListActiveRooms(c.Request().Context())
	if err != nil {
		slog.Error("list rooms", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list rooms"})
	}

	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req models.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.Capacity <= 0 {
		req.Capacity = h.defaultCapacity
	}

	room := &models.Room{
		RoomID:    uuid.NewString(),
		Name:      req.Name,
		Capacity:  req.Capacity,
		Permanent: req.Permanent,
	}

	if err := h.roomRepo.CreateRoom(c.Request().Context(), room); err != nil {
		slog.Error("create room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
	}

	return c.JSON(http.StatusCreated, room)
}
