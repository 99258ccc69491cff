package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"parkshare/internal/domain/spaces"
	domainuser "parkshare/internal/domain/user"
)

type SpaceHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	ListOwned(c *gin.Context)
}

type SpaceHandler struct {
	Catalog spaces.Catalog
	Logger  *slog.Logger
}

type spaceResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Size            string    `json:"size"`
	Kind            string    `json:"kind"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	Currency        string    `json:"currency"`
	IsActive        bool      `json:"is_active"`
	Timezone        string    `json:"timezone"`
	CreatedAt       time.Time `json:"created_at"`
}

func (h SpaceHandler) List(c *gin.Context) {
	list, err := h.Catalog.List(c.Request.Context(), true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		filtered := list[:0]
		for _, space := range list {
			if strings.EqualFold(space.City, city) {
				filtered = append(filtered, space)
			}
		}
		list = filtered
	}
	c.JSON(http.StatusOK, newSpaceListResponse(list))
}

func (h SpaceHandler) Get(c *gin.Context) {
	space, err := h.Catalog.ByID(c.Request.Context(), spaces.SpaceID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSpaceResponse(space))
}

func (h SpaceHandler) ListOwned(c *gin.Context) {
	actor, ok := requireActor(c, domainuser.RoleOwner)
	if !ok {
		return
	}
	list, err := h.Catalog.ListByOwner(c.Request.Context(), spaces.OwnerID(actor.ID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSpaceListResponse(list))
}

func (h SpaceHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, spaces.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if h.Logger != nil {
		h.Logger.Error("space lookup failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func newSpaceResponse(space *spaces.ParkingSpace) spaceResponse {
	return spaceResponse{
		ID:              string(space.ID),
		OwnerID:         string(space.OwnerID),
		Title:           space.Title,
		Address:         space.Address,
		City:            space.City,
		Size:            string(space.Size),
		Kind:            string(space.Kind),
		HourlyRateCents: space.HourlyRateCents,
		Currency:        space.Currency,
		IsActive:        space.IsActive,
		Timezone:        space.Timezone,
		CreatedAt:       space.CreatedAt,
	}
}

func newSpaceListResponse(list []*spaces.ParkingSpace) gin.H {
	out := make([]spaceResponse, 0, len(list))
	for _, space := range list {
		out = append(out, newSpaceResponse(space))
	}
	return gin.H{"spaces": out}
}

var _ SpaceHTTP = SpaceHandler{}
