package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-concepts/internal/api/shared"
	"github.com/phrazzld/scry-concepts/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	claims *auth.Claims
	err    error
	tokens []string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	f.tokens = append(f.tokens, token)
	return f.claims, f.err
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		claims     *auth.Claims
		err        error
		wantStatus int
		wantError  string
		wantUserID int64
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			claims:     &auth.Claims{UserID: 7},
			wantStatus: http.StatusOK,
			wantUserID: 7,
		},
		{
			name:       "lowercase scheme",
			header:     "bearer good-token",
			claims:     &auth.Claims{UserID: 9},
			wantStatus: http.StatusOK,
			wantUserID: 9,
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Authorization header required",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:       "empty token",
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid authorization format",
		},
		{
			name:       "expired",
			header:     "Bearer old",
			err:        auth.ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Token expired",
		},
		{
			name:       "invalid",
			header:     "Bearer forged",
			err:        auth.ErrInvalidToken,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid token",
		},
		{
			name:       "unexpected failure",
			header:     "Bearer token",
			err:        errors.New("verifier crashed"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Authentication error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticator := &fakeAuthenticator{claims: tt.claims, err: tt.err}
			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := shared.GetUserID(r.Context())
				require.True(t, ok)
				gotUserID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/summaries/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			NewAuthMiddleware(authenticator).Authenticate(next).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError != "" {
				var resp shared.ErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.wantError, resp.Error)
				return
			}
			assert.Equal(t, tt.wantUserID, gotUserID)
			assert.Equal(t, []string{"good-token"}, authenticator.tokens)
		})
	}
}

func TestAuthenticateWithStaticToken(t *testing.T) {
	hash, err := auth.HashToken("static-secret-token", 4)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(nil, hash, nil)
	require.NoError(t, err)

	handler := NewAuthMiddleware(authenticator).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer static-secret-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
