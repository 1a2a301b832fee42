package handlers

import (
	"net/http"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService services.IRoomService
}

func NewRoomHandler(roomService services.IRoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	rooms := router.Group("/rooms", auth)
	rooms.GET("/", h.ListRooms)
	rooms.GET("/:room_id", h.GetRoomDetails)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(h.roomService.ListRooms()))
}

func (h *RoomHandler) GetRoomDetails(c *gin.Context) {
	details, err := h.roomService.GetRoomDetails(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(details))
}
