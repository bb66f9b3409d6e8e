package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

type BlocklistHandler struct {
	blocklistService *service.BlocklistService
}

type createSiteRequest struct {
	Domain string `json:"domain"`
}

type toggleSiteRequest struct {
	IsEnabled *bool `json:"isEnabled"`
}

func NewBlocklistHandler(blocklistService *service.BlocklistService) *BlocklistHandler {
	return &BlocklistHandler{blocklistService: blocklistService}
}

func (h *BlocklistHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	sites, apiErr := h.blocklistService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *BlocklistHandler) Create(c *gin.Context) {
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	site, apiErr := h.blocklistService.Create(c.Request.Context(), userID, req.Domain)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *BlocklistHandler) SetEnabled(c *gin.Context) {
	var req toggleSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsEnabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_is_enabled", "message": "isEnabled must be a boolean"},
		})
		return
	}

	userID := middleware.UserID(c)
	site, apiErr := h.blocklistService.SetEnabled(c.Request.Context(), userID, c.Param("id"), *req.IsEnabled)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *BlocklistHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.blocklistService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
