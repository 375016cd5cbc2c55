package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quotesync-io/quotesync/internal/adapters/http/dto"
	"github.com/quotesync-io/quotesync/internal/app"
	"github.com/quotesync-io/quotesync/internal/domain"
)

// QuoteHandler handles quote and category HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Source    string `json:"source"`
	UpdatedAt int64  `json:"updatedAt"`
}

// AddQuoteRequest is the request body for creating a quote.
type AddQuoteRequest struct {
	Text     string `json:"text" validate:"notempty"`
	Category string `json:"category" validate:"notempty"`
}

// SetFilterRequest is the request body for selecting the category filter.
type SetFilterRequest struct {
	Category string `json:"category"`
}

// ImportResponse reports how many records an import added.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// toQuoteResponse converts a domain record to an HTTP response.
func toQuoteResponse(q domain.QuoteRecord) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Category:  q.Category,
		Source:    string(q.Source),
		UpdatedAt: q.UpdatedAt,
	}
}

// toQuoteResponses converts a slice of domain records.
func toQuoteResponses(records []domain.QuoteRecord) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(records))
	for _, q := range records {
		out = append(out, toQuoteResponse(q))
	}

	return out
}

// ListQuotes handles GET /api/v1/quotes
// Returns all quotes, narrowed by the optional category query parameter.
// Without the parameter, the persisted category filter applies.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	category := h.effectiveCategory(c)

	quotes := h.service.ListQuotes(c.Request.Context(), category)

	c.JSON(http.StatusOK, gin.H{
		"quotes": toQuoteResponses(quotes),
		"count":  len(quotes),
	})
}

// AddQuote handles POST /api/v1/quotes
// Creates a locally-authored quote. Duplicate text/category pairs are
// rejected with 409.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"invalid quote payload",
			dto.ValidationErrors(err),
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Returns a random quote from the pool, narrowed by the optional
// category query parameter, and records it as the last-viewed quote.
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	quote, err := h.service.RandomQuote(c.Request.Context(), h.effectiveCategory(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// GetCurrentQuote handles GET /api/v1/quotes/current
// Returns the last quote served by the random endpoint, or a fresh
// random pick when none has been served yet.
func (h *QuoteHandler) GetCurrentQuote(c *gin.Context) {
	quote, err := h.service.CurrentQuote(c.Request.Context(), h.effectiveCategory(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// GetQuoteByID handles GET /api/v1/quotes/:id
// Returns a specific quote by its identifier.
func (h *QuoteHandler) GetQuoteByID(c *gin.Context) {
	quote, err := h.service.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id
// Removes a quote. Deleting an unknown id is a no-op and still returns 204.
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	err := h.service.DeleteQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportQuotes handles GET /api/v1/quotes/export
// Streams the full collection as an indented JSON document.
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	document, err := h.service.ExportQuotes(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quotes.json"`)
	c.Data(http.StatusOK, "application/json", document)
}

// ImportQuotes handles POST /api/v1/quotes/import
// Accepts a JSON document (a bare array or a {"quotes": [...]} envelope)
// and merges its records into the collection, skipping duplicates.
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	document, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"reading request body: "+err.Error(),
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	imported, err := h.service.ImportQuotes(c.Request.Context(), document)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{Imported: imported})
}

// ListCategories handles GET /api/v1/categories
// Returns the sorted category index, headed by the catch-all entry.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.service.Categories(c.Request.Context()),
	})
}

// GetFilter handles GET /api/v1/categories/filter
// Returns the currently selected category filter.
func (h *QuoteHandler) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"category": h.service.SelectedFilter(c.Request.Context()),
	})
}

// SetFilter handles PUT /api/v1/categories/filter
// Persists the selected category filter. The category must exist in the
// current index.
func (h *QuoteHandler) SetFilter(c *gin.Context) {
	var req SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid filter payload",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	if err := h.service.SetFilter(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": req.Category,
	})
}

// effectiveCategory resolves the category for read endpoints: an explicit
// query parameter wins, otherwise the persisted filter applies.
func (h *QuoteHandler) effectiveCategory(c *gin.Context) string {
	if category, ok := c.GetQuery("category"); ok {
		return category
	}

	return h.service.SelectedFilter(c.Request.Context())
}

// RegisterQuoteRoutes registers quote and category routes on the given
// router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.GET("/current", h.GetCurrentQuote)
	quotes.GET("/export", h.ExportQuotes)
	quotes.POST("/import", h.ImportQuotes)
	quotes.GET("/:id", h.GetQuoteByID)
	quotes.DELETE("/:id", h.DeleteQuote)

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/filter", h.GetFilter)
	categories.PUT("/filter", h.SetFilter)
}
