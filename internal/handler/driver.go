package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/service"
)

// DriverHandler handles HTTP requests for drivers, their sessions, position
// telemetry and fee schedules.
type DriverHandler struct {
	driverService  *service.DriverService
	sessionService *service.SessionService
	feeService     *service.FeeService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	sessionService *service.SessionService,
	feeService *service.FeeService,
) *DriverHandler {
	return &DriverHandler{
		driverService:  driverService,
		sessionService: sessionService,
		feeService:     feeService,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name string `json:"name"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Occupied bool   `json:"occupied"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name: req.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, DriverResponse{
		ID:       driver.ID,
		Name:     driver.Name,
		Status:   string(driver.Status),
		Occupied: driver.Occupied,
	})
}

// UpdatePositionRequest is the HTTP request body for a position sample.
type UpdatePositionRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdatePosition handles POST /v1/drivers/:id/position
func (h *DriverHandler) UpdatePosition(c *gin.Context) {
	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.UpdatePosition(c.Request.Context(), service.UpdatePositionRequest{
		DriverID: c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatusRequest is the HTTP request body for changing a driver's status.
type SetStatusRequest struct {
	Status string `json:"status"` // ACTIVE or INACTIVE
}

// SetStatus handles POST /v1/drivers/:id/status
func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status := domain.DriverStatus(req.Status)
	if status != domain.DriverStatusActive && status != domain.DriverStatusInactive {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver status"})
		return
	}

	if err := h.driverService.SetDriverStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogInRequest is the HTTP request body for opening a work session.
type LogInRequest struct {
	CarClass string `json:"car_class"`
}

// SessionResponse is the HTTP representation of a driver session.
type SessionResponse struct {
	ID         string `json:"id"`
	DriverID   string `json:"driver_id"`
	CarClass   string `json:"car_class"`
	LoggedInAt string `json:"logged_in_at"`
}

// LogIn handles POST /v1/drivers/:id/login
func (h *DriverHandler) LogIn(c *gin.Context) {
	var req LogInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.sessionService.LogIn(c.Request.Context(), c.Param("id"), req.CarClass)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		ID:         session.ID,
		DriverID:   session.DriverID,
		CarClass:   session.CarClass,
		LoggedInAt: formatTime(session.LoggedInAt),
	})
}

// LogOut handles POST /v1/drivers/:id/logout
func (h *DriverHandler) LogOut(c *gin.Context) {
	if err := h.sessionService.LogOut(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFeeRequest is the HTTP request body for a driver fee schedule.
type SetFeeRequest struct {
	FeeType string  `json:"fee_type"` // FLAT or PERCENTAGE
	Amount  float64 `json:"amount"`
	MinFee  float64 `json:"min_fee,omitempty"`
}

// SetFee handles PUT /v1/drivers/:id/fee
func (h *DriverHandler) SetFee(c *gin.Context) {
	var req SetFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	feeType := domain.FeeType(req.FeeType)
	if feeType != domain.FeeTypeFlat && feeType != domain.FeeTypePercentage {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid fee type"})
		return
	}

	err := h.feeService.SetSchedule(c.Request.Context(), &domain.DriverFeeSchedule{
		DriverID: c.Param("id"),
		FeeType:  feeType,
		Amount:   req.Amount,
		MinFee:   req.MinFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
