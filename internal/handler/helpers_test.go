package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const testJWTSecret = "test-secret-key-for-handler-tests"

func customerAccount() auth.Account {
	return auth.Account{UserID: uuid.New(), Role: enum.UserRoleCustomer, ProfileID: uuid.New()}
}

func supplierAccount() auth.Account {
	return auth.Account{UserID: uuid.New(), Role: enum.UserRoleSupplier, ProfileID: uuid.New()}
}

func adminAccount() auth.Account {
	return auth.Account{UserID: uuid.New(), Role: enum.UserRoleAdmin}
}

func numeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

// doRequest sends body as JSON. A nil acct sends no Authorization header.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, acct *auth.Account) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if acct != nil {
		token, err := auth.GenerateToken(testJWTSecret, *acct)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list response: %v (body: %s)", err, rr.Body.String())
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	resp := decodeResponse(t, rr)
	if resp["error"] != want {
		t.Errorf("expected error %q, got %v", want, resp["error"])
	}
}
