package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

const computeRequestBody = `
context:
  taxYear: 2026
  now: "2026-06-15T10:00:00Z"
  userStatus: freelance
  fiscalRegime: micro
  vatRegime: franchise
anchor:
  amount: 1000000
  monthIndex: 1
operations:
  - id: op-2026
    year: 2026
    entries:
      - id: facture
        nature: INCOME
        scope: pro
        label: Facture client
        amountTtc: 500000
        vatRate: 2000
        date: "2026-02-10"
        category: prestation
        periodicity: yearly
`

func TestHandleCompute(t *testing.T) {
	handler := NewHandler(nil, 0, "")

	req := httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(computeRequestBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}

	var resp computeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Snapshot == nil {
		t.Fatal("expected a snapshot in the response")
	}
	if resp.Snapshot.Metadata.RulesetYear != 2026 {
		t.Errorf("rulesetYear = %d, expected 2026", resp.Snapshot.Metadata.RulesetYear)
	}
	if resp.Snapshot.LedgerFinal.ByMonth[1].Income != 500000 {
		t.Errorf("february income = %d, expected 500000", resp.Snapshot.LedgerFinal.ByMonth[1].Income)
	}
	if resp.Dashboard == nil {
		t.Error("expected the year dashboard in the response")
	}
	if resp.Duration == "" {
		t.Error("expected a duration in the response")
	}
}

func TestHandleComputeMethodNotAllowed(t *testing.T) {
	handler := NewHandler(nil, 0, "")

	req := httptest.NewRequest(http.MethodGet, "/api/compute", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", rec.Code)
	}
}

func TestHandleComputeInvalidYAML(t *testing.T) {
	handler := NewHandler(nil, 0, "")

	req := httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader("{not yaml: ["))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestHandleComputeFiscalError(t *testing.T) {
	handler := NewHandler(nil, 0, "")

	// Unknown tax year: the ruleset lookup fails with a client-input error.
	body := strings.Replace(computeRequestBody, "taxYear: 2026", "taxYear: 2031", 1)
	body = strings.Replace(body, "year: 2026", "year: 2031", 1)
	body = strings.Replace(body, `date: "2026-02-10"`, `date: "2031-02-10"`, 1)
	body = strings.Replace(body, `now: "2026-06-15T10:00:00Z"`, `now: "2031-06-15T10:00:00Z"`, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, expected 422: %s", rec.Code, rec.Body.String())
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "RULESET_NOT_FOUND" {
		t.Errorf("error code = %s, expected RULESET_NOT_FOUND", resp.Code)
	}
}

func TestHandleComputeBodyTooLarge(t *testing.T) {
	handler := NewHandler(nil, 16, "")

	req := httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(computeRequestBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, expected 413", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(nil, 0, "9.9.9")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "9.9.9" {
		t.Errorf("version = %s, expected 9.9.9", resp["version"])
	}
}

func TestHandleVersionDefault(t *testing.T) {
	handler := NewHandler(nil, 0, "  ")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != constants.EngineVersion {
		t.Errorf("version = %s, expected the engine default %s", resp["version"], constants.EngineVersion)
	}
}
