package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/services"
)

// CompanyRequest represents the writable fields of a directory company.
type CompanyRequest struct {
	Name           string  `json:"name" binding:"required"`
	Website        *string `json:"website" binding:"omitempty,url"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	Comments       *string `json:"comments"`
	IsManufacturer bool    `json:"is_manufacturer"`
	IsSupplier     bool    `json:"is_supplier"`
}

func (r CompanyRequest) toInput() services.CompanyInput {
	return services.CompanyInput{
		Name:           r.Name,
		Website:        r.Website,
		Email:          r.Email,
		Phone:          r.Phone,
		Comments:       r.Comments,
		IsManufacturer: r.IsManufacturer,
		IsSupplier:     r.IsSupplier,
	}
}

func (h *Server) handleListCompanies(c *gin.Context) {
	scope := scopeFrom(c)
	page, pageSize := paging(c)

	filter := repositories.CompanyFilter{
		ManufacturersOnly: boolQuery(c, "manufacturers_only"),
		SuppliersOnly:     boolQuery(c, "suppliers_only"),
		Search:            c.Query("search"),
	}

	result, err := h.companies.List(c.Request.Context(), scope, filter, page, pageSize)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Server) handleGetCompany(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	company, err := h.companies.Get(c.Request.Context(), scope, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Server) handleCreateCompany(c *gin.Context) {
	scope := scopeFrom(c)

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	company, err := h.companies.Create(c.Request.Context(), scope, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Server) handleUpdateCompany(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	company, err := h.companies.Update(c.Request.Context(), scope, id, req.toInput())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Server) handleUploadCompanyLogo(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	file, err := c.FormFile("logo")
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

	relPath, err := h.assets.Save("logos", file.Filename, src)
	if err != nil {
		WriteError(c, err)
		return
	}

	company, err := h.companies.UpdateLogo(c.Request.Context(), scope, id, relPath)
	if err != nil {
		h.assets.Remove(relPath)
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
