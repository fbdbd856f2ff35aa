// internal/interfaces/http/handlers/calendar.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/calendar"
	"github.com/your-org/easystock-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CalendarHandler handles festival and custom-event endpoints
type CalendarHandler struct {
	calendarService *calendar.Service
	config          *config.Config
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(db *gorm.DB, cfg *config.Config) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendar.NewService(db, cfg),
		config:          cfg,
	}
}

// GetFestivals handles GET /festivals
func (h *CalendarHandler) GetFestivals(c *gin.Context) {
	festivals, err := h.calendarService.ListFestivals()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Festivals retrieved successfully",
		"data":    festivals,
	})
}

// GetUpcomingFestivals handles GET /festivals/upcoming
func (h *CalendarHandler) GetUpcomingFestivals(c *gin.Context) {
	festivals, err := h.calendarService.UpcomingFestivals()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Upcoming festivals retrieved successfully",
		"data":    festivals,
	})
}

// GetFestival handles GET /festivals/:id
func (h *CalendarHandler) GetFestival(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	festival, err := h.calendarService.GetFestival(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Festival retrieved successfully",
		"data":    festival,
	})
}

// CreateFestival handles POST /festivals
func (h *CalendarHandler) CreateFestival(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req calendar.FestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	festival, err := h.calendarService.CreateFestival(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Festival created successfully",
		"data":    festival,
	})
}

// UpdateFestival handles PUT /festivals/:id
func (h *CalendarHandler) UpdateFestival(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req calendar.FestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	festival, err := h.calendarService.UpdateFestival(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Festival updated successfully",
		"data":    festival,
	})
}

// DeleteFestival handles DELETE /festivals/:id
func (h *CalendarHandler) DeleteFestival(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.calendarService.DeleteFestival(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Festival deleted successfully",
	})
}

// BulkCreateBestSellers handles POST /best-sellers/bulk_create
func (h *CalendarHandler) BulkCreateBestSellers(c *gin.Context) {
	var req calendar.BulkUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	records, err := h.calendarService.BulkUpsertBestSellers(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Best seller records saved successfully",
		"data":    records,
	})
}

// GetFestivalForecast handles GET /best-sellers/festival_forecast
func (h *CalendarHandler) GetFestivalForecast(c *gin.Context) {
	festivalID, err := strconv.ParseUint(c.Query("festival_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "festival_id is required"})
		return
	}

	forecast, err := h.calendarService.Forecast(uint(festivalID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Festival forecast retrieved successfully",
		"data":    forecast,
	})
}

// GetFestivalCategoryAnalysis handles GET /best-sellers/category_analysis
func (h *CalendarHandler) GetFestivalCategoryAnalysis(c *gin.Context) {
	festivalID, err := strconv.ParseUint(c.Query("festival_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "festival_id is required"})
		return
	}

	analysis, err := h.calendarService.CategoryAnalysis(uint(festivalID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category analysis retrieved successfully",
		"data":    analysis,
	})
}

// GetEvents handles GET /custom-events and GET /custom-events/calendar
func (h *CalendarHandler) GetEvents(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	events, err := h.calendarService.ListEvents(userID, c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Events retrieved successfully",
		"data":    events,
	})
}

// GetUpcomingEvents handles GET /custom-events/upcoming
func (h *CalendarHandler) GetUpcomingEvents(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	events, err := h.calendarService.UpcomingEvents(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Upcoming events retrieved successfully",
		"data":    events,
	})
}

// CreateEvent handles POST /custom-events
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req calendar.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	event, err := h.calendarService.CreateEvent(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"data":    event,
	})
}

// UpdateEvent handles PUT /custom-events/:id
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req calendar.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	event, err := h.calendarService.UpdateEvent(id, &req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"data":    event,
	})
}

// DeleteEvent handles DELETE /custom-events/:id
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.calendarService.DeleteEvent(id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully",
	})
}
