package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

func newTestClient(serverURL string) *CookidooClient {
	c := NewCookidooClient(serverURL, "nl-NL")
	c.SetCredential(&models.SessionCredential{AuthToken: "tok", ProxySession: "proxy"})
	return c
}

func TestCookidooClient(t *testing.T) {
	t.Run("CreateRecipe", func(t *testing.T) {
		t.Run("Sends Session Headers", func(t *testing.T) {
			var serverURL string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/created-recipes/nl-NL" {
					t.Errorf("expected locale-scoped path, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Cookie"); got != "v-locale=nl-NL; v-authenticated=true; v-token=tok; _oauth2_proxy=proxy" {
					t.Errorf("unexpected cookie header %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("expected JSON content type, got %q", got)
				}
				if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
					t.Errorf("expected XMLHttpRequest marker, got %q", got)
				}
				if got := r.Header.Get("Origin"); got != serverURL {
					t.Errorf("expected origin %q, got %q", serverURL, got)
				}

				var body map[string]string
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode request body: %v", err)
				}
				if body["name"] != "Cashewnoedels" {
					t.Errorf("expected recipe name in body, got %q", body["name"])
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"id": "r-1"})
			}))
			defer server.Close()
			serverURL = server.URL

			c := newTestClient(server.URL)
			id, err := c.CreateRecipe(context.Background(), "Cashewnoedels")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "r-1" {
				t.Errorf("expected id r-1, got %q", id)
			}
		})

		t.Run("Schema Mismatch", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).CreateRecipe(context.Background(), "X")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})

		t.Run("Login Page Instead Of JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html>sign in to continue</html>"))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).CreateRecipe(context.Background(), "X")
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for a non-JSON body, got %v", err)
			}
		})

		t.Run("API Error Carries Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "name too long"}`))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).CreateRecipe(context.Background(), "X")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			var aerr *APIError
			if !errors.As(err, &aerr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if aerr.Status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", aerr.Status)
			}
			if !strings.Contains(aerr.Body, "name too long") {
				t.Errorf("expected body snippet in error, got %q", aerr.Body)
			}
		})

		t.Run("Unauthenticated", func(t *testing.T) {
			c := NewCookidooClient("http://localhost", "nl-NL")
			_, err := c.CreateRecipe(context.Background(), "X")
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("UpdateRecipe", func(t *testing.T) {
		t.Run("Patches Recipe Fields", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPatch {
					t.Errorf("expected PATCH, got %s", r.Method)
				}
				if r.URL.Path != "/created-recipes/nl-NL/r-1" {
					t.Errorf("expected recipe path, got %s", r.URL.Path)
				}

				raw, _ := io.ReadAll(r.Body)
				var body map[string]any
				if err := json.Unmarshal(raw, &body); err != nil {
					t.Fatalf("failed to decode patch body: %v", err)
				}
				if body["name"] != "Nieuw" {
					t.Errorf("expected patched name, got %v", body["name"])
				}
				if _, present := body["yield"]; present {
					t.Error("expected nil fields to be omitted from the patch")
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"id": "r-1", "name": "Nieuw"})
			}))
			defer server.Close()

			patch := &models.RecipePatch{Name: models.Ptr("Nieuw")}
			record, err := newTestClient(server.URL).UpdateRecipe(context.Background(), "r-1", patch)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if record.ID != "r-1" || record.Name != "Nieuw" {
				t.Errorf("unexpected record %+v", record)
			}
		})

		t.Run("No Content Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			record, err := newTestClient(server.URL).UpdateRecipe(context.Background(), "r-1", &models.RecipePatch{Name: models.Ptr("X")})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if record.ID != "r-1" {
				t.Errorf("expected record id to fall back to the request id, got %q", record.ID)
			}
		})

		t.Run("Invalid Patch Never Sent", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("expected no request for an invalid patch")
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).UpdateRecipe(context.Background(), "r-1", &models.RecipePatch{})
			if err == nil {
				t.Fatal("expected an error for an empty patch")
			}
		})
	})

	t.Run("DeleteRecipe", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				if r.URL.Path != "/created-recipes/nl-NL/r-9" {
					t.Errorf("expected recipe path, got %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			if err := newTestClient(server.URL).DeleteRecipe(context.Background(), "r-9"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("boom"))
			}))
			defer server.Close()

			err := newTestClient(server.URL).DeleteRecipe(context.Background(), "r-9")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("RecipeExists", func(t *testing.T) {
		tests := []struct {
			name       string
			status     int
			wantExists bool
			wantErr    bool
		}{
			{name: "Existing Recipe", status: http.StatusOK, wantExists: true},
			{name: "Deleted Recipe", status: http.StatusNotFound, wantExists: false},
			{name: "Denied Probe", status: http.StatusForbidden, wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}))
				defer server.Close()

				exists, err := newTestClient(server.URL).RecipeExists(context.Background(), "r-1")
				if (err != nil) != tt.wantErr {
					t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
				}
				if exists != tt.wantExists {
					t.Errorf("exists = %v, want %v", exists, tt.wantExists)
				}
			})
		}
	})

	t.Run("ImageSignature", func(t *testing.T) {
		t.Run("Signs Upload Parameters", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/created-recipes/nl-NL/asset-signature" {
					t.Errorf("expected signature path, got %s", r.URL.Path)
				}
				var params map[string]string
				json.NewDecoder(r.Body).Decode(&params)
				if params["custom_coordinates"] != "0,0,2000,1500" {
					t.Errorf("expected crop box in params, got %q", params["custom_coordinates"])
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"signature": "sig-1",
					"timestamp": 1700000000,
					"apiKey":    "key-1",
					"cloudName": "vorwerk",
				})
			}))
			defer server.Close()

			sig, err := newTestClient(server.URL).ImageSignature(context.Background(), map[string]string{
				"custom_coordinates": "0,0,2000,1500",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sig.Signature != "sig-1" || sig.CloudName != "vorwerk" || sig.Timestamp != 1700000000 {
				t.Errorf("unexpected signature %+v", sig)
			}
		})

		t.Run("Incomplete Signature Rejected", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"signature": "sig-1"})
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).ImageSignature(context.Background(), nil)
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})
}
