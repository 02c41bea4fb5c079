package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/event"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/response"
)

const maxSearchSize = 50

type EventHandler struct {
	base
	Svc *event.Service
}

func NewEventHandler(svc *event.Service, logger *logrus.Logger, rec metrics.Recorder) *EventHandler {
	return &EventHandler{base: newBase("event", logger, rec), Svc: svc}
}

// eventRequest is shared by create and update. A blank event_id keeps the current
// one on update. A blank author becomes the caller on create and stays as
// stored on update.
type eventRequest struct {
	ID           string    `json:"event_id" binding:"max=128"`
	Title        string    `json:"title" binding:"required,max=200"`
	Description  string    `json:"description"`
	Status       string    `json:"status" binding:"max=64"`
	StreamingURL string    `json:"streaming_url" binding:"omitempty,url"`
	StartAt      time.Time `json:"start_at" binding:"required"`
	EndAt        time.Time `json:"end_at" binding:"required"`
	Category     string    `json:"category" binding:"max=64"`
	Author       string    `json:"author" binding:"max=128"`
}

func (r eventRequest) toEntity() entity.Event {
	return entity.Event{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       r.Status,
		StreamingURL: r.StreamingURL,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		Category:     r.Category,
		Author:       r.Author,
	}
}

type eventResponse struct {
	ID           string    `json:"event_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	StreamingURL string    `json:"streaming_url"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	Author       string    `json:"author"`
	Category     string    `json:"category"`
}

func toEventResponse(e entity.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Status:       e.Status,
		StreamingURL: e.StreamingURL,
		StartAt:      e.StartAt,
		EndAt:        e.EndAt,
		Author:       e.Author,
		Category:     e.Category,
	}
}

func toEventResponses(items []entity.Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	e, err := h.Svc.CreateEvent(c.Request.Context(), actorID(c), req.toEntity())
	h.observe("create", err)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	response.Success(c, http.StatusCreated, toEventResponse(e), "event created", nil)
}

func (h *EventHandler) Update(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	e, err := h.Svc.UpdateEvent(c.Request.Context(), actorID(c), c.Param("id"), req.toEntity())
	h.observe("update", err)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "event updated", nil)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	existed, err := h.Svc.DeleteEvent(c.Request.Context(), actorID(c), id)
	if err == nil && !existed {
		err = apperr.NotFoundf("event %s", id)
	}
	h.observe("delete", err)
	if err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) Get(c *gin.Context) {
	id := c.Param("id")
	e, found, err := h.Svc.FindEventByID(c.Request.Context(), id)
	if err == nil && !found {
		err = apperr.NotFoundf("event %s", id)
	}
	h.observe("get", err)
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "event", nil)
}

func (h *EventHandler) List(c *gin.Context) {
	items, err := h.Svc.FindAllEvents(c.Request.Context())
	h.observe("list", err)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	out := toEventResponses(items)
	response.Success(c, http.StatusOK, out, "events", map[string]any{"count": len(out)})
}

// Search runs a full-text query over title, description and category.
// GET /events/search?q=concert&size=10
func (h *EventHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchSize {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"size": "must be between 1 and 50"})
			return
		}
		size = n
	}
	items, err := h.Svc.SearchEvents(c.Request.Context(), q, size)
	h.observe("search", err)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	out := toEventResponses(items)
	response.Success(c, http.StatusOK, out, "events", map[string]any{"count": len(out), "query": q})
}
