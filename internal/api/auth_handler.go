package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/shipstores/internal/models"
)

// LoginRequest represents a login attempt. VesselID is omitted for
// cross-vessel administrator accounts.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	VesselID *uint  `json:"vessel_id"`
}

// LoginResponse carries the issued token and the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Server) handleLogin(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-login")
	defer h.tracer.EndTransaction(txn)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password, req.VesselID)
	if err != nil {
		h.tracer.RecordError(txn, err)
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *Server) handleMe(c *gin.Context) {
	scope := scopeFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":   scope.UserID,
		"role":      scope.Role,
		"vessel_id": scope.VesselID,
	})
}

// ChangePasswordRequest carries a new password.
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Server) handleChangeOwnPassword(c *gin.Context) {
	scope := scopeFrom(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), scope, scope.UserID, req.Password); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Server) handleSetCrewPassword(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteValidationError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), scope, id, req.Password); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
