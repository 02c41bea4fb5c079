package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/account"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/response"
)

type AccountHandler struct {
	base
	Svc *account.Service
}

func NewAccountHandler(svc *account.Service, logger *logrus.Logger, rec metrics.Recorder) *AccountHandler {
	return &AccountHandler{base: newBase("account", logger, rec), Svc: svc}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"max=64"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateAccountRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,max=64"`
	Role     *string `json:"role" binding:"omitempty,role"`
	Password *string `json:"password" binding:"omitempty,pwd"`
}

func (r updateAccountRequest) patch() account.Patch {
	p := account.Patch{Email: r.Email, Username: r.Username, Password: r.Password}
	if r.Role != nil {
		role := entity.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(a entity.Account) accountResponse {
	return accountResponse{ID: a.ID, Email: a.Email, Username: a.Username, Role: a.Role.String(), CreatedAt: a.CreatedAt}
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// Register creates an account. Anonymous callers get a member account; an
// admin caller may create admins.
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	a, err := h.Svc.Register(c.Request.Context(), actorID(c), account.NewAccount{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	h.observe("register", err)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	response.Success(c, http.StatusCreated, toAccountResponse(a), "account created", nil)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	h.observe("login", err)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer"}, "login successful", nil)
}

func (h *AccountHandler) List(c *gin.Context) {
	items, err := h.Svc.ListAccounts(c.Request.Context())
	h.observe("list", err)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	out := make([]accountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAccountResponse(a))
	}
	response.Success(c, http.StatusOK, out, "accounts", map[string]any{"count": len(out)})
}

func (h *AccountHandler) Get(c *gin.Context) {
	id := c.Param("id")
	a, found, err := h.Svc.GetAccount(c.Request.Context(), id)
	if err == nil && !found {
		err = apperr.NotFoundf("account %s", id)
	}
	h.observe("get", err)
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "account", nil)
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	a, err := h.Svc.UpdateAccountAs(c.Request.Context(), actorID(c), c.Param("id"), req.patch())
	h.observe("update", err)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "account updated", nil)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	existed, err := h.Svc.DeleteAccountAs(c.Request.Context(), actorID(c), id)
	if err == nil && !existed {
		err = apperr.NotFoundf("account %s", id)
	}
	h.observe("delete", err)
	if err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
