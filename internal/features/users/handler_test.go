package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	require.Nil(t, FromContext(c))

	c.Set("user", "not a user")
	require.Nil(t, FromContext(c))

	u := &User{ID: primitive.NewObjectID()}
	c.Set("user", u)
	require.Same(t, u, FromContext(c))
}

func TestProfileHandlers_RejectBeforeStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil)
	r := gin.New()
	r.GET("/users/:id", h.GetProfile)
	r.PATCH("/users/me", h.UpdateProfile)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/nope", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_ID")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"displayName":"Sam"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToPublicHidesPrivateFields(t *testing.T) {
	u := &User{ID: primitive.NewObjectID(), Email: "sam@example.com", DisplayName: "Sam", IsSuspended: true}
	p := u.ToPublic()

	require.Equal(t, u.ID, p.ID)
	require.Equal(t, "Sam", p.DisplayName)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(out), "sam@example.com")
	require.NotContains(t, string(out), "isSuspended")
}
