package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptgate/apiserver/internal/auth"
	"github.com/promptgate/apiserver/internal/handlers"
	"github.com/promptgate/apiserver/internal/services"
	"github.com/promptgate/apiserver/internal/store"
	"github.com/promptgate/apiserver/types"
)

const testSecret = "test-secret"

type stubUserRepo struct {
	users  map[string]types.User
	nextID int
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]types.User{}, nextID: 1}
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	if s.err != nil {
		return types.User{}, s.err
	}
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	if s.err != nil {
		return types.User{}, s.err
	}
	user, ok := s.users[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if s.err != nil {
		return types.User{}, s.err
	}
	if _, ok := s.users[user.Email]; ok {
		return types.User{}, store.ErrConflict
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.Email] = user
	return user, nil
}

func newAuthRouter(t *testing.T, repo *stubUserRepo) http.Handler {
	t.Helper()

	issuer, err := auth.NewIssuer(testSecret)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, services.NewUserService(repo), auth.NewHasher(bcrypt.MinCost), issuer, zap.NewNop())
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegister(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	res := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, res.Code)

	var out handlers.RegisterResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	assert.Equal(t, 1, out.ID)
	assert.Equal(t, "a@b.com", out.Email)
}

func TestRegisterNeverReturnsHash(t *testing.T) {
	repo := newStubUserRepo()
	router := newAuthRouter(t, repo)

	res := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, res.Code)

	assert.NotContains(t, res.Body.String(), "password")
	assert.NotContains(t, res.Body.String(), repo.users["a@b.com"].PasswordHash)
	assert.NotEqual(t, "secret", repo.users["a@b.com"].PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	first := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	for name, body := range map[string]map[string]string{
		"no email":    {"password": "secret"},
		"no password": {"email": "a@b.com"},
		"empty":       {},
	} {
		res := doJSON(t, router, http.MethodPost, "/api/register", body)
		assert.Equal(t, http.StatusBadRequest, res.Code, name)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	res := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, res.Code)

	login := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var out handlers.LoginResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(out.Token, claims, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	userID, ok := claims["userId"].(float64)
	require.True(t, ok)
	assert.Equal(t, 1, int(userID))
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	res := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, res.Code)

	login := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "a@b.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, login.Body.String())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	res := doJSON(t, router, http.MethodPost, "/api/register", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, res.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "a@b.com",
		"password": "wrong",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "nobody@b.com",
		"password": "secret",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	router := newAuthRouter(t, newStubUserRepo())

	res := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginRepositoryFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = assert.AnError
	router := newAuthRouter(t, repo)

	res := doJSON(t, router, http.MethodPost, "/api/login", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), assert.AnError.Error())
}
