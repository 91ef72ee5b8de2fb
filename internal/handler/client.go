package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	clientRepo repository.ClientRepository
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientRepo repository.ClientRepository) *ClientHandler {
	return &ClientHandler{clientRepo: clientRepo}
}

// RegisterClientRequest is the HTTP request body for registering a client.
type RegisterClientRequest struct {
	Name string `json:"name"`
}

// ClientResponse is the HTTP representation of a client.
type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Register handles POST /v1/clients/register
func (h *ClientHandler) Register(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	client := &domain.Client{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := h.clientRepo.Create(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		CreatedAt: formatTime(client.CreatedAt),
	})
}

// Get handles GET /v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clientRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		CreatedAt: formatTime(client.CreatedAt),
	})
}
