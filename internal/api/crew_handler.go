package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/shipstores/internal/services"
)

// CrewRequest represents a new vessel account.
type CrewRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required,oneof=crew captain"`
	Password string `json:"password" binding:"required,min=8"`
	VesselID *uint  `json:"vessel_id"`
}

// CrewUpdateRequest represents changes to an existing account.
type CrewUpdateRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required,oneof=crew captain"`
}

func (h *Server) handleListCrew(c *gin.Context) {
	scope := scopeFrom(c)

	users, err := h.users.ListCrew(c.Request.Context(), scope, uintQueryPtr(c, "vessel_id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Server) handleCreateCrew(c *gin.Context) {
	scope := scopeFrom(c)

	var req CrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	user, err := h.users.CreateCrew(c.Request.Context(), scope, services.CrewInput{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		Password: req.Password,
		VesselID: req.VesselID,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Server) handleUpdateCrew(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteValidationError(c, err)
		return
	}

	var req CrewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	user, err := h.users.UpdateCrew(c.Request.Context(), scope, id, req.FullName, req.Role)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Server) handleSetCrewActive(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteValidationError(c, err)
		return
	}

	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	if err := h.users.SetCrewActive(c.Request.Context(), scope, id, *req.Active); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
