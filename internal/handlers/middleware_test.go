package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"silo_scanner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// secured mounts only the auth middleware in front of an echo endpoint.
func secured(auth *mockAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Authorization: auth}, nil, Options{})
	r.GET("/secure", h.userIdMiddleware, func(c *gin.Context) {
		uid, _ := c.Get(userCtx)
		c.JSON(http.StatusOK, gin.H{"userId": uid})
	})
	return r
}

func TestUserIDMiddleware_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		parseErr error
		wantMsg  string
	}{
		{"missing header", "", nil, "missing Authorization header"},
		{"wrong scheme", "Token abc", nil, "invalid Authorization header format"},
		{"scheme only", "Bearer", nil, "invalid Authorization header format"},
		{"empty token", "Bearer ", nil, "invalid Authorization header format"},
		{"lowercase scheme", "bearer abc", nil, "invalid Authorization header format"},
		{"expired token", "Bearer expired", errors.New("token is expired"), "invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := secured(&mockAuth{parseErr: tc.parseErr})

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
			var out struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			require.Equal(t, tc.wantMsg, out.Error)
		})
	}
}

func TestUserIDMiddleware_PassesUserID(t *testing.T) {
	auth := &mockAuth{parseID: 123}
	r := secured(auth)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		UserID int `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 123, resp.UserID)
	require.Equal(t, "good-token", auth.lastParseToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc.def")
	require.True(t, ok)
	require.Equal(t, "abc.def", tok)

	_, ok = bearerToken("Basic abc")
	require.False(t, ok)
}
