package admin

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
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

func newRouter(svc *Service, as *users.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Init()

	h := NewHandler(svc)
	r := gin.New()
	group := r.Group("")
	RegisterRoutes(group, h, func(c *gin.Context) {
		c.Set("user", as)
		c.Next()
	})
	return r
}

func send(r http.Handler, method, path string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestUpdateUserHandler_Suspend(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, member)
	r := newRouter(NewService(store, nil, nil), admin)

	code, body := send(r, http.MethodPut, "/admin/users", gin.H{
		"userId":       member.ID.Hex(),
		"action":       "suspend",
		"reason":       "spam",
		"durationDays": 7,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "User suspended", body["message"])
	require.Equal(t, true, store.docs[member.ID]["isSuspended"])
}

func TestUpdateUserHandler_BadInput(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	r := newRouter(NewService(newMemoryUsers(admin, member), nil, nil), admin)

	code, body := send(r, http.MethodPut, "/admin/users", gin.H{
		"userId": member.ID.Hex(),
		"action": "update_role",
		"role":   "owner",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "role: Unknown role", body["message"])

	code, _ = send(r, http.MethodPut, "/admin/users", gin.H{
		"userId": "not-an-id",
		"action": "verify",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteUserHandler(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, member)
	r := newRouter(NewService(store, nil, nil), admin)

	code, _ := send(r, http.MethodDelete, "/admin/users?userId=bad", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = send(r, http.MethodDelete, "/admin/users?userId="+member.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, store.docs, member.ID)

	code, body := send(r, http.MethodDelete, "/admin/users?userId="+member.ID.Hex(), nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "USER_NOT_FOUND", body["code"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	member, other := newUser(access.RoleUser), newUser(access.RoleUser)
	r := newRouter(NewService(newMemoryUsers(member, other), nil, nil), member)

	code, body := send(r, http.MethodDelete, "/admin/users?userId="+other.ID.Hex(), nil)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "ADMIN_REQUIRED", body["code"])
}
