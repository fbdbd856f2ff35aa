// internal/interfaces/http/handlers/listing.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/listing"
	"gorm.io/gorm"
)

// ListingHandler handles storefront listing endpoints
type ListingHandler struct {
	listingService *listing.Service
	config         *config.Config
}

// NewListingHandler creates a new listing handler
func NewListingHandler(db *gorm.DB, cfg *config.Config) *ListingHandler {
	return &ListingHandler{
		listingService: listing.NewService(db, cfg),
		config:         cfg,
	}
}

// GetListings handles GET /listings. active=false includes deactivated rows.
func (h *ListingHandler) GetListings(c *gin.Context) {
	activeOnly := c.DefaultQuery("active", "true") != "false"

	displays, err := h.listingService.List(activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listings retrieved successfully",
		"data":    displays,
	})
}

// GetListing handles GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	display, err := h.listingService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing retrieved successfully",
		"data":    display,
	})
}

// CreateListing handles POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req listing.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	display, err := h.listingService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Listing created successfully",
		"data":    display,
	})
}

// UpdateListing handles PATCH /listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req listing.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	display, err := h.listingService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing updated successfully",
		"data":    display,
	})
}

// UnlistListing handles POST /listings/:id/unlist
func (h *ListingHandler) UnlistListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.listingService.Unlist(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deactivated successfully",
	})
}

// DeleteListing handles DELETE /listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.listingService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deleted successfully",
	})
}
