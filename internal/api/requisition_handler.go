package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/services"
)

// RequisitionLineRequest is one requested line.
type RequisitionLineRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// RequisitionRequest represents a draft create or update.
type RequisitionRequest struct {
	VesselID   *uint                    `json:"vessel_id"`
	SupplierID *uint                    `json:"supplier_id"`
	Notes      *string                  `json:"notes"`
	Lines      []RequisitionLineRequest `json:"lines"`
}

func (r RequisitionRequest) toInput() services.RequisitionInput {
	input := services.RequisitionInput{
		VesselID:   r.VesselID,
		SupplierID: r.SupplierID,
		Notes:      r.Notes,
	}
	if r.Lines != nil {
		input.Lines = make([]services.LineInput, len(r.Lines))
		for i, l := range r.Lines {
			input.Lines[i] = services.LineInput{ItemID: l.ItemID, Quantity: l.Quantity}
		}
	}
	return input
}

func (h *Server) handleListRequisitions(c *gin.Context) {
	scope := scopeFrom(c)
	page, pageSize := paging(c)

	filter := repositories.RequisitionFilter{
		SupplierID: uintQueryPtr(c, "supplier_id"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			WriteError(c, err)
			return
		}
		filter.Status = &status
	}

	result, err := h.requisitions.List(c.Request.Context(), scope, filter, page, pageSize)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Server) handleCreateRequisition(c *gin.Context) {
	scope := scopeFrom(c)

	var req RequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	requisition, err := h.requisitions.Create(c.Request.Context(), scope, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requisition)
}

func (h *Server) handleGetRequisition(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	requisition, err := h.requisitions.Get(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func (h *Server) handleUpdateRequisition(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req RequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	requisition, err := h.requisitions.UpdateDraft(c.Request.Context(), scope, id, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func (h *Server) handleDeleteRequisition(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	if err := h.requisitions.Delete(c.Request.Context(), scope, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StatusChangeRequest requests a lifecycle transition.
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Server) handleChangeRequisitionStatus(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	requisition, err := h.requisitions.ChangeStatus(c.Request.Context(), scope, id, req.Status)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

func (h *Server) handleAddRequisitionItem(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req RequisitionLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	requisition, err := h.requisitions.AddItem(c.Request.Context(), scope, id, req.ItemID, req.Quantity)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}

// ReceiveRequest posts a receipt quantity against a line. Quantity is a
// pointer so a zero value reaches the receipt rules instead of failing
// binding.
type ReceiveRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Server) handleReceiveRequisitionLine(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}
	lineID, err := uintParam(c, "lineID")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	requisition, err := h.requisitions.ReceiveLine(c.Request.Context(), scope, id, lineID, *req.Quantity)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, requisition)
}
