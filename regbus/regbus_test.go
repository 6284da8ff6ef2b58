package regbus

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer() *Server {
	return NewServer(0)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetRegister(t *testing.T) {
	srv := newTestServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/regs", CreateRegisterRequest{
		Name: "pc", Width: 32, Initial: "0x10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Hex != "00000010" {
		t.Errorf("hex = %q, want 00000010", created.Hex)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/regs/pc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
}

func TestCreateDuplicateConflicts(t *testing.T) {
	srv := newTestServer()
	req := CreateRegisterRequest{Name: "r0", Width: 8}
	doJSON(t, srv, http.MethodPost, "/api/v1/regs", req)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/regs", req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAssignThenFlip(t *testing.T) {
	srv := newTestServer()
	doJSON(t, srv, http.MethodPost, "/api/v1/regs", CreateRegisterRequest{Name: "acc", Width: 8})

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/regs/acc/assign", AssignRequest{Value: "0x22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var afterAssign RegisterResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &afterAssign)
	if afterAssign.Hex != "00" || !afterAssign.HasNext || afterAssign.NextHex != "22" {
		t.Fatalf("after assign = %+v, want current 00, scheduled 22", afterAssign)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/regs/acc/flip", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("flip: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var afterFlip RegisterResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &afterFlip)
	if afterFlip.Hex != "22" {
		t.Errorf("after flip hex = %q, want 22", afterFlip.Hex)
	}
}

func TestFlipWithoutAssignErrors(t *testing.T) {
	srv := newTestServer()
	doJSON(t, srv, http.MethodPost, "/api/v1/regs", CreateRegisterRequest{Name: "x", Width: 8})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/regs/x/flip", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetUnknownRegisterNotFound(t *testing.T) {
	srv := newTestServer()
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/regs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"", "http://localhost:3000", "https://127.0.0.1:8080", "file://local"}
	for _, o := range allowed {
		if !isAllowedOrigin(o) {
			t.Errorf("isAllowedOrigin(%q) = false, want true", o)
		}
	}
	denied := []string{"http://evil.example.com", "https://attacker.test"}
	for _, o := range denied {
		if isAllowedOrigin(o) {
			t.Errorf("isAllowedOrigin(%q) = true, want false", o)
		}
	}
}
