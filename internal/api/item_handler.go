package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/services"
)

// ItemRequest represents the writable fields of a catalogue item.
type ItemRequest struct {
	Name           string  `json:"name" binding:"required"`
	DescShort      *string `json:"desc_short"`
	Description    *string `json:"description"`
	CatalogueNr    *string `json:"catalogue_nr"`
	Unit           string  `json:"unit" binding:"required"`
	ManufacturerID *uint   `json:"manufacturer_id"`
	SupplierID     *uint   `json:"supplier_id"`
	CategoryID     *uint   `json:"category_id"`
	TagIDs         []uint  `json:"tag_ids"`
}

func (r ItemRequest) toInput() services.ItemInput {
	return services.ItemInput{
		Name:           r.Name,
		DescShort:      r.DescShort,
		Description:    r.Description,
		CatalogueNr:    r.CatalogueNr,
		Unit:           r.Unit,
		ManufacturerID: r.ManufacturerID,
		SupplierID:     r.SupplierID,
		CategoryID:     r.CategoryID,
		TagIDs:         r.TagIDs,
	}
}

func (h *Server) handleListItems(c *gin.Context) {
	scope := scopeFrom(c)
	page, pageSize := paging(c)

	flags := domain.VisibilityFlags{
		ShowVesselInactive: boolQuery(c, "show_vessel_inactive"),
		ShowGlobalInactive: boolQuery(c, "show_global_inactive"),
	}
	filter := repositories.ItemFilter{
		Search:         c.Query("search"),
		CategoryID:     uintQueryPtr(c, "category_id"),
		ManufacturerID: uintQueryPtr(c, "manufacturer_id"),
		SupplierID:     uintQueryPtr(c, "supplier_id"),
		TagIDs:         uintListQuery(c, "tag_id"),
	}

	result, err := h.items.List(c.Request.Context(), scope, flags, filter, page, pageSize)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Server) handleGetItem(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	item, err := h.items.Get(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Server) handleCreateItem(c *gin.Context) {
	scope := scopeFrom(c)

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	item, err := h.items.Create(c.Request.Context(), scope, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Server) handleUpdateItem(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	item, err := h.items.Update(c.Request.Context(), scope, id, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Server) handleUploadItemImage(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		WriteValidationError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		WriteError(c, err)
		return
	}
	defer src.Close()

	relPath, err := h.assets.Save("items", file.Filename, src)
	if err != nil {
		WriteError(c, err)
		return
	}

	item, err := h.items.UpdateImage(c.Request.Context(), scope, id, relPath)
	if err != nil {
		// The record stays authoritative; orphaned files are cleaned up.
		h.assets.Remove(relPath)
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Server) handleDeleteItemImage(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	relPath, err := h.items.RemoveImage(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	if relPath != "" {
		h.assets.Remove(relPath)
	}
	c.Status(http.StatusNoContent)
}

// ActiveRequest carries a visibility toggle.
type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
	// VesselID is honored only for super_admin callers on vessel toggles.
	VesselID *uint `json:"vessel_id"`
}

func (h *Server) handleSetItemGlobalActive(c *gin.Context) {
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

	if err := h.items.SetGlobalActive(c.Request.Context(), scope, id, *req.Active); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Server) handleSetItemVesselActive(c *gin.Context) {
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

	if err := h.items.SetVesselActive(c.Request.Context(), scope, id, req.VesselID, *req.Active); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Server) handleRecentlyOrderedItems(c *gin.Context) {
	scope := scopeFrom(c)

	items, err := h.items.RecentlyOrdered(c.Request.Context(), scope, uintQueryPtr(c, "vessel_id"), intQuery(c, "limit", 10))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
