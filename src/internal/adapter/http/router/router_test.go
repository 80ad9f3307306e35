package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/controller"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/router"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/lock"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	accounts := memory.NewAccountRepository(domain.SystemClock{})
	transfers := memory.NewTransferRepository(domain.SystemClock{})
	for id, balance := range map[string]int64{"A": 100, "B": 50} {
		_, err := accounts.Create(context.Background(), domain.Account{ID: id, Name: id, Balance: decimal.NewFromInt(balance)})
		require.NoError(t, err)
	}

	transferSvc := services.NewTransferService(accounts, transfers, lock.NewKeyedCoordinator(time.Second), memory.NewUnitOfWork(), domain.SystemClock{})
	handler := router.New(
		controller.NewAccountController(services.NewAccountService(accounts)),
		controller.NewTransferController(transferSvc),
	)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestSwaggerDocument(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/swagger/openapi.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc["paths"], "/transfers/execute")
}

func TestTransferRoundTrip(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/transfers/execute", `{"sourceAccountId":"A","destAccountId":"B","amount":"30"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/transfers/execute", `{"sourceAccountId":"A","destAccountId":"B","amount":"150"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/transfers/execute", `{"sourceAccountId":"A","destAccountId":"Z","amount":"1"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/transfers/account/B", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "SUCCESS", history[0]["status"])

	resp = do(t, http.MethodGet, srv.URL+"/transfers/"+history[0]["id"].(string), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/accounts/A", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var account struct {
		Data struct {
			Balance decimal.Decimal `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	assert.True(t, account.Data.Balance.Equal(decimal.NewFromInt(70)))
}

func TestAccountRoutes(t *testing.T) {
	srv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/accounts", `{"id":"C","name":"carol","initialBalance":"5"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/accounts", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/accounts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/accounts/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
