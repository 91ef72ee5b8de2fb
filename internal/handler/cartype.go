package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transit/internal/service"
)

// CarTypeHandler handles HTTP requests for the car class registry.
type CarTypeHandler struct {
	carTypeService *service.CarTypeService
}

// NewCarTypeHandler creates a new CarTypeHandler.
func NewCarTypeHandler(carTypeService *service.CarTypeService) *CarTypeHandler {
	return &CarTypeHandler{carTypeService: carTypeService}
}

// RegisterCarTypeRequest is the HTTP request body for registering a car class.
type RegisterCarTypeRequest struct {
	Class       string `json:"class"`
	Description string `json:"description,omitempty"`
}

// Register handles POST /v1/car-types
func (h *CarTypeHandler) Register(c *gin.Context) {
	var req RegisterCarTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.carTypeService.Register(c.Request.Context(), req.Class, req.Description); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Activate handles POST /v1/car-types/:class/activate
func (h *CarTypeHandler) Activate(c *gin.Context) {
	if err := h.carTypeService.Activate(c.Request.Context(), c.Param("class")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deactivate handles POST /v1/car-types/:class/deactivate
func (h *CarTypeHandler) Deactivate(c *gin.Context) {
	if err := h.carTypeService.Deactivate(c.Request.Context(), c.Param("class")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActiveClasses handles GET /v1/car-types/active
func (h *CarTypeHandler) ActiveClasses(c *gin.Context) {
	classes, err := h.carTypeService.ActiveClasses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"classes": classes})
}
