package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessAndErrorResponses(t *testing.T) {
	c, w := newContext()

	Success(c, map[string]string{"foo": "bar"}, "ok")
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(200), body["statusCode"])
	require.Equal(t, "ok", body["message"])
	require.Contains(t, body, "data")

	c, w = newContext()
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	bodyErr := decode(t, w)
	require.Equal(t, false, bodyErr["success"])
	require.Equal(t, float64(400), bodyErr["statusCode"])
	require.Equal(t, "bad request", bodyErr["message"])
	require.Equal(t, "BAD_REQ", bodyErr["code"])
}

func TestCursorResponse(t *testing.T) {
	c, w := newContext()

	items := []map[string]any{{"id": 1}, {"id": 2}}
	Cursor(c, items, true, "abc")

	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	data := body["data"].(map[string]any)
	require.Len(t, data["items"], 2)
	require.Equal(t, true, data["hasMore"])
	require.Equal(t, "abc", data["lastId"])
}

func TestFromErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.Authentication("AUTH_REQUIRED", "login"), 401},
		{apperrors.Authorization("FORBIDDEN", "nope"), 403},
		{apperrors.Validation("INVALID_REASON", "bad reason"), 400},
		{apperrors.NotFound("REPORT_NOT_FOUND", "missing"), 404},
		{apperrors.State("REPORT_ALREADY_CLOSED", "closed"), 409},
		{apperrors.External("DATABASE_ERROR", "db down", errors.New("timeout")), 500},
		{errors.New("plain"), 500},
	}

	for _, tc := range cases {
		c, w := newContext()
		FromError(c, tc.err)
		require.Equal(t, tc.status, w.Code, tc.err.Error())
		require.Equal(t, false, decode(t, w)["success"])
	}
}

func TestFromErrorHidesExternalCause(t *testing.T) {
	c, w := newContext()
	FromError(c, apperrors.External("DATABASE_ERROR", "Failed to load report", errors.New("mongo: secret host")))

	body := decode(t, w)
	require.Equal(t, "Failed to load report", body["message"])
	require.Equal(t, "DATABASE_ERROR", body["code"])
}
