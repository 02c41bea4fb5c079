package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/favorite"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/response"
)

type FavoriteHandler struct {
	base
	Svc *favorite.Service
}

func NewFavoriteHandler(svc *favorite.Service, logger *logrus.Logger, rec metrics.Recorder) *FavoriteHandler {
	return &FavoriteHandler{base: newBase("favorite", logger, rec), Svc: svc}
}

type favoriteResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	EventID   string `json:"event_id"`
}

func toFavoriteResponse(f entity.Favorite) favoriteResponse {
	return favoriteResponse{ID: f.ID, AccountID: f.AccountID, EventID: f.EventID}
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	f, err := h.Svc.AddFavorite(c.Request.Context(), actorID(c), c.Param("eventId"))
	h.observe("add", err)
	if err != nil {
		h.fail(c, "add", err)
		return
	}
	response.Success(c, http.StatusCreated, toFavoriteResponse(f), "favorite added", nil)
}

func (h *FavoriteHandler) List(c *gin.Context) {
	items, err := h.Svc.ListFavorites(c.Request.Context(), actorID(c))
	h.observe("list", err)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	out := make([]favoriteResponse, 0, len(items))
	for _, f := range items {
		out = append(out, toFavoriteResponse(f))
	}
	response.Success(c, http.StatusOK, out, "favorites", map[string]any{"count": len(out)})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	id := c.Param("favoriteId")
	existed, err := h.Svc.RemoveFavorite(c.Request.Context(), actorID(c), id)
	if err == nil && !existed {
		err = apperr.NotFoundf("favorite %s", id)
	}
	h.observe("remove", err)
	if err != nil {
		h.fail(c, "remove", err)
		return
	}
	c.Status(http.StatusNoContent)
}
