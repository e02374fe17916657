package profile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/PickleLadder/internal/api/apiutil"
	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/testutil"
)

func serve(t *testing.T, handler http.HandlerFunc, method string, body any, user *authz.AuthUser) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	r := httptest.NewRequest(method, "/api/v1/me", &buf)
	if user != nil {
		r = r.WithContext(authz.ContextWithUser(r.Context(), user))
	}
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec
}

func TestProfileRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	InitHandlers(database, "us")
	t.Cleanup(func() { InitHandlers(nil, "") })

	stored := testutil.CreateUser(t, database, "Alice", "Anders", false)
	user := &authz.AuthUser{ID: stored.ID}

	rec := serve(t, HandleUpdateProfile, http.MethodPut, profileRequest{FirstName: " Alicia ", LastName: "Anders", Phone: "(201) 555-0123"}, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, HandleGetProfile, http.MethodGet, nil, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", rec.Code, rec.Body.String())
	}
	var got profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FirstName != "Alicia" || got.Phone != "+12015550123" || got.PhoneDisplay != "(201) 555-0123" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if got.Email != stored.Email.String {
		t.Fatalf("email = %q, want %q", got.Email, stored.Email.String)
	}

	rec = serve(t, HandleUpdateProfile, http.MethodPut, profileRequest{FirstName: "Alicia", LastName: "Anders"}, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear phone status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Phone != "" {
		t.Fatalf("phone should be cleared, got %q", got.Phone)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	database := testutil.NewTestDB(t)
	InitHandlers(database, "US")
	t.Cleanup(func() { InitHandlers(nil, "") })
	user := &authz.AuthUser{ID: testutil.CreateUser(t, database, "Bea", "Brooks", false).ID}

	tests := []struct {
		name  string
		req   profileRequest
		field string
	}{
		{name: "missing first name", req: profileRequest{FirstName: "  ", LastName: "Brooks"}, field: "firstName"},
		{name: "bad phone", req: profileRequest{FirstName: "Bea", Phone: "12"}, field: "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, HandleUpdateProfile, http.MethodPut, tt.req, user)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body apiutil.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Field != tt.field {
				t.Fatalf("expected field %q, got %+v (%v)", tt.field, body, err)
			}
		})
	}

	if rec := serve(t, HandleGetProfile, http.MethodGet, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
}
