package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iabigrejinha/iab_finance_backend/models"
)

type stubResolver struct {
	sessions map[string]*models.AuthSession
}

func (s *stubResolver) CurrentSession(token string) (*models.AuthSession, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, errors.New("session not found")
}

func newStubResolver(users ...*models.User) *stubResolver {
	r := &stubResolver{sessions: map[string]*models.AuthSession{}}
	for _, u := range users {
		r.sessions["token-"+u.ID] = &models.AuthSession{User: u, Token: "token-" + u.ID}
	}
	return r
}

func doRequest(resolver SessionResolver, method, path, token string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: models.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	handler := RequireSession(resolver)(RequirePermissionByMethod()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.OkResponse{OK: true})
	}))
	_ = handler(c)
	return rec
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	rec := doRequest(newStubResolver(), http.MethodGet, "/api/movements", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestRequireSessionUnknownToken(t *testing.T) {
	rec := doRequest(newStubResolver(), http.MethodGet, "/api/movements", "bogus")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The stale cookie gets cleared.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, models.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestMethodGateAllowsReads(t *testing.T) {
	viewer := &models.User{ID: "v1", Role: models.RoleViewer}
	rec := doRequest(newStubResolver(viewer), http.MethodGet, "/api/movements", "token-v1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodGateBlocksWriteWithoutFlag(t *testing.T) {
	viewer := &models.User{ID: "v1", Role: models.RoleViewer}
	rec := doRequest(newStubResolver(viewer), http.MethodPost, "/api/movements", "token-v1")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(newStubResolver(viewer), http.MethodDelete, "/api/categories/x", "token-v1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMethodGateMapsMethodsToFlags(t *testing.T) {
	editor := &models.User{
		ID:   "e1",
		Role: models.RoleEditor,
		Permissions: models.Permissions{
			CanCreate:  true,
			Categories: []string{"jovens"},
		},
	}
	resolver := newStubResolver(editor)

	rec := doRequest(resolver, http.MethodPost, "/api/movements", "token-e1")
	assert.Equal(t, http.StatusOK, rec.Code, "canCreate covers POST")

	rec = doRequest(resolver, http.MethodPut, "/api/movements/m1", "token-e1")
	assert.Equal(t, http.StatusForbidden, rec.Code, "PUT needs canEdit")
}

func TestMethodGateRootBypass(t *testing.T) {
	root := &models.User{ID: "r1", Role: models.RoleRoot}
	rec := doRequest(newStubResolver(root), http.MethodDelete, "/api/users/u2", "token-r1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodGateIgnoresUnprotectedPaths(t *testing.T) {
	viewer := &models.User{ID: "v1", Role: models.RoleViewer}
	rec := doRequest(newStubResolver(viewer), http.MethodPost, "/api/backup/test", "token-v1")
	assert.Equal(t, http.StatusOK, rec.Code, "backup paths enforce their own checks")
}
