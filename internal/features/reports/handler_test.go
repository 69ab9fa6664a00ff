package reports

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/users"
)

func newRouter(f *fixture, as *users.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidations()

	h := NewHandler(f.svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if as != nil {
			c.Set("user", as)
		}
		c.Next()
	})
	r.POST("/reports", h.CreateReport)
	r.POST("/admin/reports/resolve", access.RequireAdmin(), h.ResolveReport)
	r.GET("/admin/reports", access.RequireAdmin(), h.ListReports)
	return r
}

func doJSON(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCreateReportHandler(t *testing.T) {
	f := newFixture()
	r := newRouter(f, f.reporter)

	w, body := doJSON(r, http.MethodPost, "/reports", gin.H{
		"contentType": "post",
		"contentId":   f.postID.Hex(),
		"reason":      "spam",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "pending", body["data"].(map[string]any)["status"])

	w, body = doJSON(r, http.MethodPost, "/reports", gin.H{
		"contentType": "post",
		"contentId":   f.postID.Hex(),
		"reason":      "boring",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", body["code"])

	w, body = doJSON(r, http.MethodPost, "/reports", gin.H{
		"contentType": "post",
		"contentId":   f.postID.Hex(),
		"reason":      "scam",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "DUPLICATE_REPORT", body["code"])
}

func TestResolveReportHandler(t *testing.T) {
	f := newFixture()
	report := f.pendingReport(t)
	r := newRouter(f, f.mod)

	w, body := doJSON(r, http.MethodPost, "/admin/reports/resolve", gin.H{
		"reportId": report.ID.Hex(),
		"action":   "reject",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Report dismissed", body["message"])

	w, body = doJSON(r, http.MethodPost, "/admin/reports/resolve", gin.H{
		"reportId": report.ID.Hex(),
		"action":   "approve",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "REPORT_ALREADY_CLOSED", body["code"])
}

func TestAdminRoutesRefuseRegularUsers(t *testing.T) {
	f := newFixture()
	report := f.pendingReport(t)

	w, body := doJSON(newRouter(f, f.reporter), http.MethodPost, "/admin/reports/resolve", gin.H{
		"reportId": report.ID.Hex(),
		"action":   "approve",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "ADMIN_REQUIRED", body["code"])

	w, _ = doJSON(newRouter(f, nil), http.MethodGet, "/admin/reports", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListReportsHandler(t *testing.T) {
	f := newFixture()
	report := f.pendingReport(t)

	w, body := doJSON(newRouter(f, f.mod), http.MethodGet, "/admin/reports?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	require.Len(t, data["reports"], 1)
	require.Equal(t, false, data["hasMore"])
	require.Equal(t, report.ID.Hex(), data["lastId"])
}
