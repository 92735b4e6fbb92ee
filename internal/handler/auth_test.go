package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/handler/middleware"
	"github.com/bukudev/catalog-api/internal/service"
	"github.com/bukudev/catalog-api/internal/storage/memstorage"
	"github.com/bukudev/catalog-api/internal/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router   *gin.Engine
	accounts *memstorage.AccountRepository
	keys     *memstorage.APIKeyRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	nop := zap.NewNop()

	keys := memstorage.NewAPIKeyRepository()
	accounts := memstorage.NewAccountRepository(keys)
	keys.Bind(accounts)

	accountSvc := service.NewAccountService(accounts, keys, nop)
	keySvc := service.NewAPIKeyService(keys, nop)
	authHandler := NewAuthHandler(accountSvc, keySvc, nop)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(nop))

	auth := router.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := auth.Group("/", middleware.APIKeyAuthMiddleware(keySvc, nop))
	authed.GET("/my-keys", authHandler.MyKeys)
	authed.POST("/regenerate-key", authHandler.RegenerateKey)
	authed.GET("/users", middleware.RequireAction(account.ActionManageUsers, nop), authHandler.ListUsers)

	return &authFixture{router: router, accounts: accounts, keys: keys}
}

func (f *authFixture) do(t *testing.T, method, path, key string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func registerAccount(t *testing.T, f *authFixture, name, email string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		APIKey string `json:"api_key"`
	}
	env := parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, util.ValidKeyFormat(data.APIKey))
	return data.APIKey
}

func seedAdmin(t *testing.T, f *authFixture) string {
	t.Helper()
	keyValue, err := util.GenerateAPIKey()
	require.NoError(t, err)
	_, _, err = f.accounts.CreateWithKey(context.Background(), &account.Account{
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: "irrelevant",
		Role:         account.RoleAdmin,
	}, keyValue, apikey.LabelDefault)
	require.NoError(t, err)
	return keyValue
}

func TestRegisterEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	keyValue := registerAccount(t, f, "Ana", "ana@example.com")
	assert.NotEmpty(t, keyValue)

	t.Run("duplicate email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Imposter", "email": "ana@example.com", "password": "other-pass",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		env := parseBody(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "Email already registered", env.Message)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Bad", "email": "not-an-email", "password": "s3cret-pass",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, parseBody(t, rec).Message, "Email")
	})

	t.Run("short password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Bad", "email": "bad@example.com", "password": "abc",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, parseBody(t, rec).Message, "Password")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	f := newAuthFixture(t)
	registeredKey := registerAccount(t, f, "Ana", "ana@example.com")

	t.Run("returns the existing key", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "ana@example.com", "password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			APIKey string       `json:"api_key"`
			Role   account.Role `json:"role"`
		}
		env := parseBody(t, rec)
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, registeredKey, data.APIKey)
		assert.Equal(t, account.RoleDeveloper, data.Role)
	})

	t.Run("wrong password and unknown email answer identically", func(t *testing.T) {
		wrongPass := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "ana@example.com", "password": "wrong",
		})
		unknown := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "ghost@example.com", "password": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrongPass.Body.String(), unknown.Body.String())
	})
}

func TestMyKeysEndpoint(t *testing.T) {
	f := newAuthFixture(t)
	keyValue := registerAccount(t, f, "Ana", "ana@example.com")

	rec := f.do(t, http.MethodGet, "/api/auth/my-keys", keyValue, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var keys []struct {
		APIKey string `json:"api_key"`
		Label  string `json:"label"`
		Status string `json:"status"`
	}
	env := parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, keyValue, keys[0].APIKey)
	assert.Equal(t, "Default Key", keys[0].Label)
	assert.Equal(t, "active", keys[0].Status)

	rec = f.do(t, http.MethodGet, "/api/auth/my-keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegenerateKeyEndpoint(t *testing.T) {
	f := newAuthFixture(t)
	oldKey := registerAccount(t, f, "Ana", "ana@example.com")

	rec := f.do(t, http.MethodPost, "/api/auth/regenerate-key", oldKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		APIKey string `json:"api_key"`
	}
	env := parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, util.ValidKeyFormat(data.APIKey))
	require.NotEqual(t, oldKey, data.APIKey)

	// The presented key died with the regeneration.
	rec = f.do(t, http.MethodGet, "/api/auth/my-keys", oldKey, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/my-keys", data.APIKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegenerateKeyEndpointWithLabel(t *testing.T) {
	f := newAuthFixture(t)
	oldKey := registerAccount(t, f, "Ana", "ana@example.com")

	rec := f.do(t, http.MethodPost, "/api/auth/regenerate-key", oldKey, gin.H{"name": "Prod Key"})
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		APIKey string `json:"api_key"`
	}
	env := parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &data))

	rec = f.do(t, http.MethodGet, "/api/auth/my-keys", data.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var keys []struct {
		Label string `json:"label"`
	}
	env = parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &keys))
	require.Len(t, keys, 1)
	assert.Equal(t, "Prod Key", keys[0].Label)
}

func TestListUsersEndpoint(t *testing.T) {
	f := newAuthFixture(t)
	developerKey := registerAccount(t, f, "Ana", "ana@example.com")
	adminKey := seedAdmin(t, f)

	rec := f.do(t, http.MethodGet, "/api/auth/users", developerKey, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", parseBody(t, rec).Message)

	rec = f.do(t, http.MethodGet, "/api/auth/users", adminKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []struct {
		Email string       `json:"email"`
		Role  account.Role `json:"role"`
	}
	env := parseBody(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
}
