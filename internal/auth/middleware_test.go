package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, _, err := ts.Generate("agent-1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var gotClient string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClient, _ = ClientIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(ts)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantClient string
	}{
		{name: "valid bearer", header: "Bearer " + token, wantStatus: http.StatusNoContent, wantClient: "agent-1"},
		{name: "lowercase scheme", header: "bearer " + token, wantStatus: http.StatusNoContent, wantClient: "agent-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClient = ""
			req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantClient, gotClient)
		})
	}
}
