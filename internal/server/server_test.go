package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/invoicekit/internal/invoice/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, doc invoicedomain.Document) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

// docEnvelope mirrors the response shape: the raw document plus the
// locale-formatted totals.
type docEnvelope struct {
	Data    invoicedomain.Document `json:"data"`
	Display map[string]string      `json:"display"`
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := invoiceservice.NewService(invoiceservice.ServiceParam{
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Renderer: stubRenderer{},
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	s := NewServer(Param{
		Engine:     engine,
		Cfg:        config.Config{},
		Log:        zap.NewNop(),
		InvoiceSvc: svc,
	})
	s.RegisterAPIRoutes()
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) docEnvelope {
	t.Helper()
	var env docEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createDocument(t *testing.T, engine *gin.Engine) invoicedomain.Document {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/documents", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeEnvelope(t, w).Data
}

func TestCreateDocumentDefaults(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/documents", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.NotZero(t, env.Data.ID)
	assert.Equal(t, invoicedomain.DefaultCurrency, env.Data.CurrencyCode)
	require.Len(t, env.Data.LineItems, 1)
	assert.Equal(t, "$0.00", env.Display["total"])
}

func TestGetDocumentErrors(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodGet, "/api/documents/123456789", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/documents/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDocumentRejectsUnknownCurrency(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	w := doJSON(t, engine, http.MethodPut, "/api/documents/"+doc.ID.String(),
		map[string]any{"currencyCode": "XXX"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error.Type)
}

func TestUpdateItemCoercesBadQuantity(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	w := doJSON(t, engine, http.MethodPut, "/api/documents/"+doc.ID.String()+"/items/1",
		map[string]any{"quantity": "abc", "unitPrice": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.Len(t, env.Data.LineItems, 1)
	assert.Zero(t, env.Data.LineItems[0].Quantity)
	assert.Equal(t, invoicedomain.Number(10), env.Data.LineItems[0].UnitPrice)
	assert.Zero(t, env.Data.LineItems[0].Amount)
	assert.Equal(t, "$0.00", env.Display["subtotal"])
}

func TestRemoveLastItemKeepsOne(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	w := doJSON(t, engine, http.MethodDelete, "/api/documents/"+doc.ID.String()+"/items/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeEnvelope(t, w).Data.LineItems, 1)
}

func TestRemoveItemInvalidID(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	w := doJSON(t, engine, http.MethodDelete, "/api/documents/"+doc.ID.String()+"/items/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddAndUpdateItemsRecomputeTotals(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)
	base := "/api/documents/" + doc.ID.String()

	w := doJSON(t, engine, http.MethodPut, base+"/items/1",
		map[string]any{"description": "Design", "quantity": 2, "unitPrice": 10, "taxPercent": 10})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, base+"/items", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	require.Len(t, env.Data.LineItems, 2)

	w = doJSON(t, engine, http.MethodPut, base+"/items/"+strconv.FormatInt(env.Data.LineItems[1].ID, 10),
		map[string]any{"description": "Hosting", "unitPrice": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPut, base, map[string]any{"discountPercentage": 10})
	require.Equal(t, http.StatusOK, w.Code)

	env = decodeEnvelope(t, w)
	assert.InDelta(t, 25.0, env.Data.Subtotal, 1e-9)
	assert.InDelta(t, 2.0, env.Data.TaxTotal, 1e-9)
	assert.InDelta(t, 2.5, env.Data.DiscountAmount, 1e-9)
	assert.InDelta(t, 24.5, env.Data.Total, 1e-9)
	assert.Equal(t, "$24.50", env.Display["total"])
}

func TestExportDocumentHeaders(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	w := doJSON(t, engine, http.MethodPut, "/api/documents/"+doc.ID.String(),
		map[string]any{"invoiceNumber": "2024-001"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/documents/"+doc.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Invoice-2024-001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-stub", w.Body.String())
}

func TestSubmitInvoiceComputesTotals(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"invoiceNumber": "2024-001",
		"lineItems": []map[string]any{
			{"description": "Design", "quantity": 2, "unitPrice": 10, "taxPercent": 10},
			{"description": "Hosting", "quantity": "1", "unitPrice": "5"},
		},
		"discountPercentage": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.InDelta(t, 25.0, env.Data.Subtotal, 1e-9)
	assert.InDelta(t, 2.0, env.Data.TaxTotal, 1e-9)
	assert.InDelta(t, 2.5, env.Data.DiscountAmount, 1e-9)
	assert.InDelta(t, 24.5, env.Data.Total, 1e-9)
	assert.Equal(t, invoicedomain.DefaultCurrency, env.Data.CurrencyCode)
}

func TestSubmitInvoiceRequiresItems(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"lineItems": []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitInvoiceReturnsPDFWhenAccepted(t *testing.T) {
	engine := newTestServer(t)

	body, err := json.Marshal(map[string]any{
		"lineItems": []map[string]any{
			{"description": "Design", "quantity": 1, "unitPrice": 10},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="Invoice-`))
	assert.Equal(t, "%PDF-stub", w.Body.String())
}

func TestUploadLogo(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="logo"; filename="logo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID.String()+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.NotEmpty(t, env.Data.Issuer.Logo)
	assert.Equal(t, "image/png", env.Data.Issuer.LogoMIME)

	w = doJSON(t, engine, http.MethodDelete, "/api/documents/"+doc.ID.String()+"/logo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeEnvelope(t, w).Data.Issuer.Logo)
}

func TestUploadLogoRejectsNonImage(t *testing.T) {
	engine := newTestServer(t)
	doc := createDocument(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="logo"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID.String()+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMapError(t *testing.T) {
	status, payload := mapError(invoicedomain.ErrDocumentNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)

	status, payload = mapError(invoicedomain.ErrEmptyLineItems)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", payload.Type)

	status, payload = mapError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Type)
}
