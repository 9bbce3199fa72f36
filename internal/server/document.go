package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/format"
)

// maxLogoBytes caps logo uploads. MIME-type filtering is the only content
// validation; undecodable images fail soft at export time.
const maxLogoBytes = 5 << 20

func (s *Server) CreateDocument(c *gin.Context) {
	doc, err := s.invoiceSvc.Create(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, documentResponse(doc))
}

func (s *Server) GetDocument(c *gin.Context) {
	doc, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) UpdateDocument(c *gin.Context) {
	var req invoicedomain.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.invoiceSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) AddItem(c *gin.Context) {
	doc, err := s.invoiceSvc.AddItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, documentResponse(doc))
}

func (s *Server) UpdateItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req invoicedomain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.invoiceSvc.UpdateItem(c.Request.Context(), c.Param("id"), itemID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) RemoveItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	doc, err := s.invoiceSvc.RemoveItem(c.Request.Context(), c.Param("id"), itemID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		AbortWithError(c, newValidationError("logo", "required", "logo file is required"))
		return
	}
	if file.Size > maxLogoBytes {
		AbortWithError(c, newValidationError("logo", "too_large", "logo exceeds the size limit"))
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		AbortWithError(c, newValidationError("logo", "invalid_type", "logo must be an image"))
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxLogoBytes))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.invoiceSvc.SetLogo(c.Request.Context(), c.Param("id"), mimeType, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) RemoveLogo(c *gin.Context) {
	doc, err := s.invoiceSvc.ClearLogo(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, documentResponse(doc))
}

func (s *Server) ExportDocument(c *gin.Context) {
	result, err := s.invoiceSvc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeExport(c, result)
}

func writeExport(c *gin.Context, result invoicedomain.ExportResult) {
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func itemIDParam(c *gin.Context) (int64, bool) {
	itemID, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		AbortWithError(c, newValidationError("itemID", "invalid_id", "invalid item id"))
		return 0, false
	}
	return itemID, true
}

// documentResponse pairs the raw document with locale-aware currency strings
// for the derived totals, the way the form displayed them.
func documentResponse(doc invoicedomain.Document) gin.H {
	return gin.H{
		"data": doc,
		"display": gin.H{
			"subtotal":       format.Money(doc.Subtotal, doc.CurrencyCode),
			"taxTotal":       format.Money(doc.TaxTotal, doc.CurrencyCode),
			"discountAmount": format.Money(doc.DiscountAmount, doc.CurrencyCode),
			"total":          format.Money(doc.Total, doc.CurrencyCode),
		},
	}
}
