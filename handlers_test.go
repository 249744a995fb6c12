package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// helper to perform requests carrying the session cookie
func performRequest(r http.Handler, method, path string, body io.Reader, cookies []*http.Cookie, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessionSecret = []byte("test-secret")
	_ = os.Setenv("UPLOAD_BASE", t.TempDir())
	r := gin.New()
	setupRoutes(r)
	return r
}

func TestManualFlow(t *testing.T) {
	r := setupTestRouter(t)

	// 1. No receipt yet
	resp := performRequest(r, http.MethodGet, "/receipts", nil, nil, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any receipt, got %d", resp.Code)
	}

	// 2. Manual entry skeleton; keep the session cookie from here on
	resp = performRequest(r, http.MethodPost, "/receipts/manual", nil, nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("manual entry failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}

	// 3. Review submission with reconciled totals
	review := map[string]any{
		"items": []map[string]any{
			{"name": "Burger", "quantity": 1, "price": 10.00},
			{"name": "Fries", "quantity": 1, "price": 3.50},
		},
		"subtotal": 13.50, "tax": 1.00, "tip": 2.00, "total": 16.50,
	}
	body, _ := json.Marshal(review)
	resp = performRequest(r, http.MethodPut, "/receipts", bytes.NewBuffer(body), cookies, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("review failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Totals that do not reconcile name the field and keep session data
	review["total"] = 17.00
	body, _ = json.Marshal(review)
	resp = performRequest(r, http.MethodPut, "/receipts", bytes.NewBuffer(body), cookies, "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched total, got %d", resp.Code)
	}
	var verr map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &verr)
	if verr["field"] != "total" {
		t.Fatalf("expected field=total got %+v", verr)
	}
	resp = performRequest(r, http.MethodGet, "/receipts", nil, cookies, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("session receipt lost after failed validation: %d", resp.Code)
	}

	// 5. Roster
	body, _ = json.Marshal(map[string]any{"people": []string{"ana", "ben"}})
	resp = performRequest(r, http.MethodPut, "/receipts/people", bytes.NewBuffer(body), cookies, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("set people failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Assignment + split
	body, _ = json.Marshal(map[string][]string{
		"Burger": {"ana"},
		"Fries":  {"ana", "ben"},
	})
	resp = performRequest(r, http.MethodPost, "/receipts/assignments", bytes.NewBuffer(body), cookies, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("assignments failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Costs map[string]string `json:"costs"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if out.Costs["ana"] != "14.36" || out.Costs["ben"] != "2.14" {
		t.Fatalf("unexpected costs %+v", out.Costs)
	}

	// 7. Results endpoint repeats the ledger
	resp = performRequest(r, http.MethodGet, "/receipts/costs", nil, cookies, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("costs failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestUploadReceipt(t *testing.T) {
	r := setupTestRouter(t)

	orig := extractLines
	extractLines = func(ctx context.Context, path string) ([]string, error) {
		return []string{"5.33 TAX", "TOTAL $47.93", "CHICKEN BURGER $8.79", "2 GREY GOOSE LIME $19.38"}, nil
	}
	defer func() { extractLines = orig }()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("receipt", "dinner.png")
	_, _ = w.Write([]byte("image bytes irrelevant under stub"))
	_ = mw.Close()
	resp := performRequest(r, http.MethodPost, "/receipts", buf, nil, mw.FormDataContentType())
	if resp.Code != http.StatusOK {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var dto receiptDTO
	_ = json.Unmarshal(resp.Body.Bytes(), &dto)
	if len(dto.Items) != 3 {
		t.Fatalf("expected 3 items got %+v", dto.Items)
	}
	if dto.Subtotal != 28.17 || dto.Tax != 5.33 || dto.Total != 47.93 {
		t.Fatalf("unexpected totals %+v", dto)
	}
}

func TestUploadRejectsBadExtension(t *testing.T) {
	r := setupTestRouter(t)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("receipt", "receipt.pdf")
	_, _ = w.Write([]byte("%PDF-1.4"))
	_ = mw.Close()
	resp := performRequest(r, http.MethodPost, "/receipts", buf, nil, mw.FormDataContentType())
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pdf upload, got %d", resp.Code)
	}
}

func TestAssignmentsRequireRoster(t *testing.T) {
	r := setupTestRouter(t)

	resp := performRequest(r, http.MethodPost, "/receipts/manual", nil, nil, "")
	cookies := resp.Result().Cookies()

	body, _ := json.Marshal(map[string][]string{"Burger": {"ana"}})
	resp = performRequest(r, http.MethodPost, "/receipts/assignments", bytes.NewBuffer(body), cookies, "application/json")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 without roster, got %d", resp.Code)
	}
}
