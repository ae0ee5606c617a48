package metabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRowField(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		keys []string
		want string
	}{
		{"first key wins", Row{"Guru": "Jane", "Teacher": "John"}, []string{"Guru", "Teacher"}, "Jane"},
		{"falls through empty", Row{"Guru": "  ", "Teacher": "John"}, []string{"Guru", "Teacher"}, "John"},
		{"trims", Row{"Kelas": " 7 "}, []string{"Kelas"}, "7"},
		{"integral float", Row{"Kelas": float64(7)}, []string{"Kelas"}, "7"},
		{"fractional float", Row{"Nilai": 7.5}, []string{"Nilai"}, "7.5"},
		{"nil value skipped", Row{"Kelas": nil}, []string{"Kelas"}, ""},
		{"missing keys", Row{}, []string{"Kelas", "Grade"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Field(tt.keys...); got != tt.want {
				t.Errorf("Field(%v) = %q, want %q", tt.keys, got, tt.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/session" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"token-123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin", "secret")
	token, err := c.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "token-123" {
		t.Errorf("token = %q, want token-123", token)
	}
}

func TestAuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin", "wrong")
	_, err := c.Authenticate(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", authErr.StatusCode)
	}
}

func TestFetchCardRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/card/42/query/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Metabase-Session"); got != "tok" {
			t.Errorf("session header = %q, want tok", got)
		}
		w.Write([]byte(`[{"ID Sesi":"S1","Kelas":7},{"ID Sesi":"S2","Kelas":"8"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p")
	rows, err := c.FetchCardRows(context.Background(), "tok", 42)
	if err != nil {
		t.Fatalf("FetchCardRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Field("ID Sesi") != "S1" || rows[1].Field("Kelas") != "8" {
		t.Errorf("rows not decoded in order: %v", rows)
	}
}

func TestFetchCardRowsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"malformed body", http.StatusOK, `{"not":"an array"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "u", "p")
			_, err := c.FetchCardRows(context.Background(), "tok", 1)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %v", err)
			}
		})
	}
}
