package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/shipstores/internal/services"
)

func (h *Server) handleListCategories(c *gin.Context) {
	scope := scopeFrom(c)

	categories, err := h.reference.ListCategories(c.Request.Context(), scope)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryRequest represents a new item category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (h *Server) handleCreateCategory(c *gin.Context) {
	scope := scopeFrom(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	category, err := h.reference.CreateCategory(c.Request.Context(), scope, req.Name)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Server) handleListTags(c *gin.Context) {
	scope := scopeFrom(c)

	tags, err := h.reference.ListTags(c.Request.Context(), scope)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// TagRequest represents the writable fields of a tag.
type TagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

func (h *Server) handleCreateTag(c *gin.Context) {
	scope := scopeFrom(c)

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	tag, err := h.reference.CreateTag(c.Request.Context(), scope, services.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Server) handleUpdateTag(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteValidationError(c, err)
		return
	}

	tag, err := h.reference.UpdateTag(c.Request.Context(), scope, id, services.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Server) handleDeleteTag(c *gin.Context) {
	scope := scopeFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}

	if err := h.reference.DeleteTag(c.Request.Context(), scope, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
