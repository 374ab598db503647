package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/services"
)

// VesselRequest represents the writable fields of a vessel.
type VesselRequest struct {
	Name       string  `json:"name" binding:"required"`
	IMONumber  *string `json:"imo_number" binding:"omitempty,imo"`
	Flag       *string `json:"flag"`
	VesselType *string `json:"vessel_type"`
	Email      *string `json:"email" binding:"omitempty,email"`
}

func (r VesselRequest) toInput() services.VesselInput {
	return services.VesselInput{
		Name:       r.Name,
		IMONumber:  r.IMONumber,
		Flag:       r.Flag,
		VesselType: r.VesselType,
		Email:      r.Email,
	}
}

// RegistrationRequest registers a vessel with its first captain.
type RegistrationRequest struct {
	Vessel          VesselRequest `json:"vessel" binding:"required"`
	CaptainUsername string        `json:"captain_username" binding:"required"`
	CaptainFullName string        `json:"captain_full_name"`
	CaptainPassword string        `json:"captain_password" binding:"required,min=8"`
}

func (h *Server) handleListActiveVessels(c *gin.Context) {
	vessels, err := h.vessels.ListActive(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vessels": vessels})
}

func (h *Server) handleListVessels(c *gin.Context) {
	scope := scopeFrom(c)

	vessels, err := h.vessels.List(c.Request.Context(), scope)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vessels": vessels})
}

func (h *Server) handleGetVessel(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	vessel, err := h.vessels.Get(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, vessel)
}

func (h *Server) handleGetVesselStats(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	stats, err := h.vessels.Stats(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Server) handleRegisterVessel(c *gin.Context) {
	scope := scopeFrom(c)

	txn := h.tracer.StartTransaction("api-register-vessel")
	defer h.tracer.EndTransaction(txn)

	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	vessel, err := h.vessels.Register(c.Request.Context(), scope, services.RegistrationInput{
		Vessel:          req.Vessel.toInput(),
		CaptainUsername: req.CaptainUsername,
		CaptainFullName: req.CaptainFullName,
		CaptainPassword: req.CaptainPassword,
	})
	if err != nil {
		h.tracer.RecordError(txn, err)
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vessel)
}

func (h *Server) handleUpdateVessel(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req VesselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	vessel, err := h.vessels.Update(c.Request.Context(), scope, id, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, vessel)
}

func (h *Server) handleSetVesselActive(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	if err := h.vessels.SetActive(c.Request.Context(), scope, id, *req.Active); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
