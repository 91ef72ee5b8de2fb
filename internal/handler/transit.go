package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// TransitHandler handles HTTP requests for transits.
type TransitHandler struct {
	transitService *service.TransitService
	invoiceService *service.InvoiceService
	transitRepo    repository.TransitRepository
}

// NewTransitHandler creates a new TransitHandler.
func NewTransitHandler(
	transitService *service.TransitService,
	invoiceService *service.InvoiceService,
	transitRepo repository.TransitRepository,
) *TransitHandler {
	return &TransitHandler{
		transitService: transitService,
		invoiceService: invoiceService,
		transitRepo:    transitRepo,
	}
}

// AddressRequest is the HTTP representation of a new address.
type AddressRequest struct {
	Country        string `json:"country,omitempty"`
	City           string `json:"city"`
	Street         string `json:"street"`
	BuildingNumber string `json:"building_number,omitempty"`
}

func (a AddressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		Country:        a.Country,
		City:           a.City,
		Street:         a.Street,
		BuildingNumber: a.BuildingNumber,
	}
}

// CreateTransitRequest is the HTTP request body for requesting a transit.
type CreateTransitRequest struct {
	ClientID    string         `json:"client_id"`
	CarClass    string         `json:"car_class,omitempty"`
	Pickup      AddressRequest `json:"pickup"`
	Destination AddressRequest `json:"destination"`
}

// DriverActionRequest identifies the driver performing a transit action.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteTransitRequest is the HTTP request body for completing a transit.
type CompleteTransitRequest struct {
	DriverID    string          `json:"driver_id"`
	Destination *AddressRequest `json:"destination,omitempty"`
}

// ChangeAddressRequest is the HTTP request body for address changes.
type ChangeAddressRequest struct {
	Address AddressRequest `json:"address"`
}

// TransitResponse is the HTTP representation of a transit.
type TransitResponse struct {
	ID                string   `json:"id"`
	Status            string   `json:"status"`
	ClientID          string   `json:"client_id"`
	PickupID          string   `json:"pickup_id"`
	DestinationID     string   `json:"destination_id"`
	CarClass          string   `json:"car_class,omitempty"`
	AssignedDriverID  string   `json:"assigned_driver_id,omitempty"`
	ProposedDriverIDs []string `json:"proposed_driver_ids,omitempty"`
	AwaitingResponses int      `json:"awaiting_responses"`
	DistanceKm        float64  `json:"distance_km"`
	Price             float64  `json:"price"`
	DriverFee         float64  `json:"driver_fee,omitempty"`
	RequestedAt       string   `json:"requested_at"`
	PublishedAt       string   `json:"published_at,omitempty"`
	AcceptedAt        string   `json:"accepted_at,omitempty"`
	StartedAt         string   `json:"started_at,omitempty"`
	CompletedAt       string   `json:"completed_at,omitempty"`
}

func toTransitResponse(t *domain.Transit) TransitResponse {
	return TransitResponse{
		ID:                t.ID,
		Status:            string(t.Status),
		ClientID:          t.ClientID,
		PickupID:          t.PickupID,
		DestinationID:     t.DestinationID,
		CarClass:          t.CarClass,
		AssignedDriverID:  t.AssignedDriverID,
		ProposedDriverIDs: t.ProposedDriverIDs,
		AwaitingResponses: t.AwaitingResponses,
		DistanceKm:        t.DistanceKm,
		Price:             t.Price,
		DriverFee:         t.DriverFee,
		RequestedAt:       formatTime(t.RequestedAt),
		PublishedAt:       formatTime(t.PublishedAt),
		AcceptedAt:        formatTime(t.AcceptedAt),
		StartedAt:         formatTime(t.StartedAt),
		CompletedAt:       formatTime(t.CompletedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Create handles POST /v1/transits
func (h *TransitHandler) Create(c *gin.Context) {
	var req CreateTransitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.Create(c.Request.Context(), service.CreateTransitRequest{
		ClientID:    req.ClientID,
		CarClass:    req.CarClass,
		Pickup:      req.Pickup.toInput(),
		Destination: req.Destination.toInput(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransitResponse(transit))
}

// Get handles GET /v1/transits/:id
func (h *TransitHandler) Get(c *gin.Context) {
	transit, err := h.transitService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// GetAll handles GET /v1/transits
func (h *TransitHandler) GetAll(c *gin.Context) {
	transits, err := h.transitRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransitResponse, 0, len(transits))
	for _, t := range transits {
		response = append(response, toTransitResponse(t))
	}
	respondJSON(c, http.StatusOK, response)
}

// Publish handles POST /v1/transits/:id/publish
func (h *TransitHandler) Publish(c *gin.Context) {
	transit, err := h.transitService.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// Accept handles POST /v1/transits/:id/accept
func (h *TransitHandler) Accept(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.AcceptBy(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// Reject handles POST /v1/transits/:id/reject
func (h *TransitHandler) Reject(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.transitService.RejectBy(c.Request.Context(), c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Start handles POST /v1/transits/:id/start
func (h *TransitHandler) Start(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.Start(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// Complete handles POST /v1/transits/:id/complete
func (h *TransitHandler) Complete(c *gin.Context) {
	var req CompleteTransitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	completeReq := service.CompleteTransitRequest{
		TransitID: c.Param("id"),
		DriverID:  req.DriverID,
	}
	if req.Destination != nil {
		input := req.Destination.toInput()
		completeReq.Destination = &input
	}

	transit, err := h.transitService.Complete(c.Request.Context(), completeReq)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// Cancel handles POST /v1/transits/:id/cancel
func (h *TransitHandler) Cancel(c *gin.Context) {
	transit, err := h.transitService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// ChangePickup handles POST /v1/transits/:id/change-pickup
func (h *TransitHandler) ChangePickup(c *gin.Context) {
	var req ChangeAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.ChangePickup(c.Request.Context(), c.Param("id"), req.Address.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// ChangeDestination handles POST /v1/transits/:id/change-destination
func (h *TransitHandler) ChangeDestination(c *gin.Context) {
	var req ChangeAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.ChangeDestination(c.Request.Context(), c.Param("id"), req.Address.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// InvoiceResponse is the HTTP representation of an invoice.
type InvoiceResponse struct {
	ID        string  `json:"id"`
	TransitID string  `json:"transit_id"`
	Amount    float64 `json:"amount"`
	PayerName string  `json:"payer_name,omitempty"`
	IssuedAt  string  `json:"issued_at"`
}

// GetInvoice handles GET /v1/transits/:id/invoice
func (h *TransitHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetByTransitID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, InvoiceResponse{
		ID:        invoice.ID,
		TransitID: invoice.TransitID,
		Amount:    invoice.Amount,
		PayerName: invoice.PayerName,
		IssuedAt:  formatTime(invoice.IssuedAt),
	})
}
