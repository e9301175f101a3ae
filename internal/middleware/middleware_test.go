package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-dashboard/internal/dashboard"
	"patient-dashboard/internal/form"
	"patient-dashboard/internal/models"
	"patient-dashboard/internal/session"
)

type emptyFetcher struct{}

func (emptyFetcher) GetPatients(ctx context.Context) ([]models.Patient, error) {
	return nil, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore() *session.Store {
	return session.NewStore(time.Minute, func() *dashboard.Dashboard {
		return dashboard.New(emptyFetcher{}, func(onCreated func(models.Patient)) *form.PatientForm {
			return form.NewPatientForm(nil, nil, onCreated)
		}, zerolog.Nop())
	})
}

func TestSession_IssuesCookieAndReusesDashboard(t *testing.T) {
	store := newStore()
	var seen []*dashboard.Dashboard

	r := gin.New()
	r.Use(Session(store, false))
	r.GET("/", func(c *gin.Context) {
		d, ok := GetDashboardFromContext(c)
		require.True(t, ok)
		_, ok = GetSessionIDFromContext(c)
		require.True(t, ok)
		seen = append(seen, d)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies(), "known session keeps its cookie")

	require.Len(t, seen, 2)
	assert.Same(t, seen[0], seen[1])
	assert.Equal(t, 1, store.Len())
}

func TestGetDashboardFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetDashboardFromContext(c)
	assert.False(t, ok)
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/missing?x=1", line["path"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, "GET", line["method"])
}
