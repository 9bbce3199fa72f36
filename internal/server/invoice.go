package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
)

// SubmitInvoice implements the POST /api/invoices wire contract: a full
// JSON-serialized document comes in, derived fields are recomputed
// server-side, and the computed document goes back out. When the caller
// accepts application/pdf the rendered artifact is returned instead.
func (s *Server) SubmitInvoice(c *gin.Context) {
	var doc invoicedomain.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	computed, err := s.invoiceSvc.Submit(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if wantsPDF(c) {
		result, err := s.invoiceSvc.Render(c.Request.Context(), computed)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		writeExport(c, result)
		return
	}

	c.JSON(http.StatusCreated, documentResponse(computed))
}

func wantsPDF(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "application/pdf")
}
