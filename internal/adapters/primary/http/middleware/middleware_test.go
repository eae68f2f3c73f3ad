package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-service/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identityEcho(c *gin.Context) {
	id := IdentityFrom(c)
	c.JSON(http.StatusOK, gin.H{"subject": id.Subject, "anonymous": id.Anonymous})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ============================================================================
// RequestID
// ============================================================================

func TestRequestID_Generated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

// ============================================================================
// Recovery
// ============================================================================

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logging(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("model exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred: model exploded", decode(t, w)["error"])
}

// ============================================================================
// BodyLimit
// ============================================================================

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("tiny")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("far too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// ============================================================================
// Preflight / Auth
// ============================================================================

func authRouter(apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(Preflight())
	protected := r.Group("", Auth(apiKey))
	protected.GET("/whoami", identityEcho)
	protected.OPTIONS("/whoami", identityEcho)
	return r
}

func TestAuth_NoKeyConfigured(t *testing.T) {
	r := authRouter("")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["anonymous"])
}

func TestAuth_RequiresKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		status int
	}{
		{name: "missing", key: "", status: http.StatusUnauthorized},
		{name: "wrong", key: "nope", status: http.StatusUnauthorized},
		{name: "valid", key: "s3cret", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter("s3cret")
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				resp := decode(t, w)
				assert.Equal(t, apiKeySubject, resp["subject"])
				assert.Equal(t, false, resp["anonymous"])
			}
		})
	}
}

func TestPreflight_OptionsSkipsAuth(t *testing.T) {
	r := authRouter("s3cret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, domain.AnonymousIdentity().Subject, resp["subject"])
	assert.Equal(t, true, resp["anonymous"])
}

func TestIdentityFrom_Default(t *testing.T) {
	r := gin.New()
	r.GET("/", identityEcho)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, decode(t, w)["anonymous"])
}

// ============================================================================
// CORS
// ============================================================================

func TestCORS_PreflightAnsweredBeforeAuth(t *testing.T) {
	corsMW, err := CORS([]string{"http://localhost:3000"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(corsMW, Preflight())
	r.POST("/predict", Auth("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	corsMW, err := CORS([]string{"*"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(corsMW)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_InvalidConfig(t *testing.T) {
	_, err := CORS(nil)
	assert.Error(t, err)
}
