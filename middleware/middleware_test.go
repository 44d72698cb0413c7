package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dynamocards-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.POST("/ping", func(c *gin.Context) {
		subject := ""
		if claims := GetClaims(c); claims != nil {
			subject = claims.Subject
		}
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c), "subject": subject})
	})
	return r
}

func TestRequireAuthDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(NewAuthMiddleware("").RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth(t *testing.T) {
	r := newTestRouter(NewAuthMiddleware("secret").RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := httptest.NewRequest(http.MethodPost, "/ping", nil)
	bad.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateJWT("user-7", "", "secret", time.Hour)
	require.NoError(t, err)
	good := httptest.NewRequest(http.MethodPost, "/ping", nil)
	good.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"user-7"`)
}

func TestRequestIDIsGeneratedOrPropagated(t *testing.T) {
	r := newTestRouter(RequestIDMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"abc-123"`)
}

func TestRequestSizeLimit(t *testing.T) {
	r := newTestRouter(RequestSizeLimit(16))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSAllowsAnyOriginWithWildcard(t *testing.T) {
	r := newTestRouter(CORSMiddlewareWithOrigins([]string{"*"}))

	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "https://flashcards.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
