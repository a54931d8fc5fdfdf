package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
	"github.com/invoiceapp/backend/internal/interfaces/http/dto"
)

// maxImportFileSize caps uploaded CSV files at 5 MiB
const maxImportFileSize = 5 << 20

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *billingapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *billingapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// CreateClientRequest represents a request to create a client
// @Description Request body for creating a client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200" example:"Acme Corp"`
	Email   string `json:"email" binding:"required,email,max=200" example:"billing@acme.test"`
	Company string `json:"company" binding:"max=200" example:"Acme Corporation Ltd"`
	Address string `json:"address" binding:"max=500" example:"1 Main St"`
	Phone   string `json:"phone" binding:"max=50" example:"+1 555 0100"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// UpdateClientRequest represents a request to update a client
// @Description Request body for updating a client
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Email   string `json:"email" binding:"required,email,max=200"`
	Company string `json:"company" binding:"max=200"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=50"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// ListClientsQuery holds query parameters for listing clients
type ListClientsQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Create a new client for the authenticated owner
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body CreateClientRequest true "Client creation request"
// @Success      201 {object} dto.Response{data=billingapp.ClientDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), billingapp.CreateClientInput{
		OwnerID: ownerID,
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Address: req.Address,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Description  Update an existing client's details
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body UpdateClientRequest true "Client update request"
// @Success      200 {object} dto.Response{data=billingapp.ClientDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), billingapp.UpdateClientInput{
		OwnerID:  ownerID,
		ClientID: clientID,
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Address:  req.Address,
		Phone:    req.Phone,
		Notes:    req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Description  Retrieve a single client owned by the caller
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.ClientDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), ownerID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Description  List the caller's clients with search and pagination
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search in name, email and company"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.ClientDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.clientService.List(c.Request.Context(), billingapp.ListClientsInput{
		OwnerID:  ownerID,
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Delete a client; rejected while unpaid invoices reference it
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), ownerID, clientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ImportCSV godoc
// @ID           importClients
// @Summary      Import clients from CSV
// @Description  Bulk-create clients from an uploaded CSV file with name and email columns
// @Tags         clients
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} dto.Response{data=dto.ClientImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/import [post]
func (h *ClientHandler) ImportCSV(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing CSV file upload")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "CSV file exceeds the 5 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.clientService.ImportCSV(c.Request.Context(), ownerID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ClientImportResponse{
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		SkippedRows:  result.SkippedRows,
		ErrorRows:    result.ErrorRows,
		Errors:       result.Errors,
		IsTruncated:  result.IsTruncated,
	})
}
