package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiwoo-hwang/receipt-budget/internal/auth"
	"github.com/jiwoo-hwang/receipt-budget/internal/entity"
	"github.com/jiwoo-hwang/receipt-budget/internal/export"
	"github.com/jiwoo-hwang/receipt-budget/internal/learning"
	"github.com/jiwoo-hwang/receipt-budget/internal/ocr"
	"github.com/jiwoo-hwang/receipt-budget/internal/parser"
	"github.com/jiwoo-hwang/receipt-budget/internal/repository"
)

type stubScanner struct {
	res ocr.Result
	err error
}

func (s *stubScanner) Scan(context.Context, []byte) (ocr.Result, error) {
	return s.res, s.err
}

type testEnv struct {
	router  *gin.Engine
	scanner *stubScanner
	store   *learning.Store
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := repository.Open(repository.Config{Path: filepath.Join(dir, "ledger.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.Migrate(db))

	store, err := learning.Open(filepath.Join(dir, "learning.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	budgetRepo := repository.NewBudgetRepository(db)
	txRepo := repository.NewTransactionRepository(db, budgetRepo, nil)

	scanner := &stubScanner{}
	tokens := auth.TokenService{Secret: []byte("test-secret"), Issuer: "test", Duration: time.Hour}
	srv := New(nil, scanner, parser.New(store, parser.Config{}), store,
		txRepo, budgetRepo, export.NewService(txRepo, nil), tokens)

	router := gin.New()
	srv.RegisterRoutes(router)

	token, _, err := tokens.Sign("u1", "", "")
	require.NoError(t, err)

	return &testEnv{router: router, scanner: scanner, store: store, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, path, bytes.NewBuffer(data), "application/json")
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "receipt.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type scanResponse struct {
	Status      string             `json:"status"`
	Receipt     parser.Fields      `json:"receipt"`
	Transaction entity.Transaction `json:"transaction"`
}

func TestRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScanCreatesTransaction(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{
		Lines:    []string{"가맹점 스타박스", "2024.03.15 14:30", "합계 5,000"},
		ROIBrand: "스타박스",
	}

	body, contentType := multipartImage(t)
	rec := env.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "스타벅스", resp.Receipt.Merchant)
	require.NotNil(t, resp.Receipt.TotalAmount)
	assert.EqualValues(t, 5000, *resp.Receipt.TotalAmount)
	assert.Equal(t, "2024-03-15 14:30", resp.Receipt.Date)
	assert.Equal(t, "카페", resp.Receipt.Category)
	assert.Equal(t, "스타박스", resp.Transaction.OCRStore)

	list := env.do(t, http.MethodGet, "/api/transactions", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	var txs []entity.Transaction
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "스타벅스", txs[0].Store)
}

func TestScanROIAmountAndDateFallbacks(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{
		Lines:     []string{"어서오세요"},
		ROIAmount: 7000,
	}

	body, contentType := multipartImage(t)
	rec := env.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Transaction.Amount)
	assert.EqualValues(t, 7000, *resp.Transaction.Amount)
	assert.Equal(t, time.Now().Format("2006-01-02"), resp.Transaction.Date)
	assert.Equal(t, parser.DefaultCategory, resp.Transaction.Category)
}

func TestScanWithoutImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/scan", nil, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrectionTeachesNormalizer(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{
		Lines:    []string{"가맹점 스타박스", "합계 5,000"},
		ROIBrand: "스타박스",
	}

	body, contentType := multipartImage(t)
	rec := env.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	patch := env.doJSON(t, http.MethodPatch, "/api/transactions/"+resp.Transaction.ID.String(), gin.H{
		"field":        "store",
		"value":        "스타벅스",
		"ocr_original": "스타박스",
	})
	require.Equal(t, http.StatusOK, patch.Code)

	// The correction is durable and wins over every other rule.
	corrected, ok := env.store.Lookup("스타박스")
	assert.True(t, ok)
	assert.Equal(t, "스타벅스", corrected)
	n := parser.NewNormalizer(env.store, parser.DefaultFuzzyThreshold)
	assert.Equal(t, "스타벅스", n.Normalize("스타박스"))
}

func TestCorrectionRejectsUnknownField(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{Lines: []string{"가맹점 스타벅스", "합계 5,000"}}

	body, contentType := multipartImage(t)
	rec := env.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	patch := env.doJSON(t, http.MethodPatch, "/api/transactions/"+resp.Transaction.ID.String(), gin.H{
		"field": "user_id",
		"value": "someone-else",
	})
	assert.Equal(t, http.StatusBadRequest, patch.Code)
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{Lines: []string{"가맹점 스타벅스", "합계 5,000"}}

	body, contentType := multipartImage(t)
	rec := env.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp scanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	del := env.do(t, http.MethodDelete, "/api/transactions/"+resp.Transaction.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, del.Code)

	// Gone from the list, and a second delete is a 404.
	list := env.do(t, http.MethodGet, "/api/transactions", nil, "")
	var txs []entity.Transaction
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &txs))
	assert.Empty(t, txs)

	again := env.do(t, http.MethodDelete, "/api/transactions/"+resp.Transaction.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestBudgetAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{Lines: []string{"가맹점 스타벅스", "2024.03.15", "합계 5,000"}}

	body, contentType := multipartImage(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/scan", body, contentType).Code)

	set := env.doJSON(t, http.MethodPost, "/api/budget", gin.H{"budget": 100000})
	require.Equal(t, http.StatusOK, set.Code)

	get := env.do(t, http.MethodGet, "/api/budget", nil, "")
	require.Equal(t, http.StatusOK, get.Code)
	assert.JSONEq(t, `{"budget":100000}`, get.Body.String())

	rec := env.do(t, http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats entity.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 5000, stats.TotalSpent)
	assert.EqualValues(t, 1, stats.TransactionCount)
	assert.EqualValues(t, 95000, stats.RemainingBudget)
	assert.EqualValues(t, 5000, stats.CategoryStats["카페"])
	assert.EqualValues(t, 5000, stats.MonthlyStats["2024-03"])
}

func TestBudgetRejectsNonPositive(t *testing.T) {
	env := newTestEnv(t)

	for _, budget := range []int64{0, -100} {
		rec := env.doJSON(t, http.MethodPost, "/api/budget", gin.H{"budget": budget})
		assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("budget=%d", budget))
	}
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.res = ocr.Result{Lines: []string{"가맹점 스타벅스", "합계 5,000"}}

	body, contentType := multipartImage(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/scan", body, contentType).Code)

	rec := env.do(t, http.MethodGet, "/api/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestLearningDump(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Record("스타박스", "스타벅스"))

	rec := env.do(t, http.MethodGet, "/api/learning", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1,"corrections":{"스타박스":"스타벅스"}}`, rec.Body.String())
}
