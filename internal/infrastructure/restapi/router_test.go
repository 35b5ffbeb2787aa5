package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"asset_dashboard/internal/app/picker"
	"asset_dashboard/internal/app/service"
	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/infrastructure/configloader"
	"asset_dashboard/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAccount = "0x00000000000000000000000000000000000000aa"
	hakkaAddr   = "0x0E29e5AbbB5FD88e28b2d355774e73BD47dE3bcd"
)

type fakeService struct {
	lastChainID  uint64
	lastCommand  service.PickerCommand
	dashboardErr error
	disconnected bool
}

func (f *fakeService) Dashboard(_ context.Context, account string, chainID uint64) (entity.Dashboard, error) {
	f.lastChainID = chainID
	if f.dashboardErr != nil {
		return entity.Dashboard{}, f.dashboardErr
	}
	return entity.Dashboard{
		Account:   account,
		ChainID:   chainID,
		Reference: "HAKKA",
		Rows: []entity.Row{
			{ID: "ETH", Symbol: "ETH", Balance: "1", Value: "2000", ValueKnown: true, SwapLink: "/swap/ETH"},
		},
		Total: "2000",
	}, nil
}

func (f *fakeService) Currencies(_ context.Context, _ string, chainID uint64) ([]entity.ListedCurrency, error) {
	f.lastChainID = chainID
	return []entity.ListedCurrency{
		{Currency: entity.Currency{ID: "ETH", Symbol: "ETH", IsNative: true}, Balance: "1", BalanceExact: "1"},
	}, nil
}

func (f *fakeService) Picker(_ context.Context, _ string, _ uint64, cmd service.PickerCommand) (picker.State, error) {
	f.lastCommand = cmd
	if cmd.Action == "bogus" {
		return picker.State{}, service.ErrInvalidPickerCommand
	}
	return picker.State{Open: cmd.Action == "open", Mode: "select"}, nil
}

func (f *fakeService) Disconnect(account string, _ uint64) (bool, error) {
	if !common.IsHexAddress(account) {
		return false, entity.ErrInvalidAccount
	}
	return f.disconnected, nil
}

func (f *fakeService) Networks() []entity.NetworkDefinition {
	return []entity.NetworkDefinition{{Name: "ethereum", ChainID: 1}}
}

func (f *fakeService) ReferenceCurrency(chainID uint64) (entity.Currency, error) {
	if chainID != 1 {
		return entity.Currency{}, entity.ErrReferenceNotConfigured
	}
	return entity.Currency{ID: strings.ToLower(hakkaAddr), Address: hakkaAddr, Symbol: "HAKKA"}, nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *fakeService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := configloader.Parse([]byte("swagger:\n  enabled: false\n"))
	require.NoError(t, err)

	svc := &fakeService{}
	handler := NewDashboardHandler(svc, cfg.Dashboard.DefaultChainID, logger.Nop())
	return SetupRouter(handler, cfg, zap.NewNop()), svc
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetDashboard(t *testing.T) {
	router, svc := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/dashboard/"+testAccount, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), svc.lastChainID)

	var dashboard entity.Dashboard
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, testAccount, dashboard.Account)
	require.Len(t, dashboard.Rows, 1)
	assert.Equal(t, "/swap/ETH", dashboard.Rows[0].SwapLink)

	w = doRequest(router, http.MethodGet, "/api/v1/dashboard/"+testAccount+"?chainId=56", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(56), svc.lastChainID)
}

func TestGetDashboardErrors(t *testing.T) {
	router, svc := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/dashboard/"+testAccount+"?chainId=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tests := []struct {
		err  error
		code int
	}{
		{entity.ErrInvalidAccount, http.StatusBadRequest},
		{entity.ErrUnknownNetwork, http.StatusNotFound},
		{entity.ErrViewClosed, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc.dashboardErr = tt.err
			w := doRequest(router, http.MethodGet, "/api/v1/dashboard/"+testAccount, "")
			assert.Equal(t, tt.code, w.Code)

			var apiErr APIError
			require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.err.Error(), apiErr.Error)
		})
	}
}

func TestDeleteDashboard(t *testing.T) {
	router, svc := setupTestRouter(t)

	w := doRequest(router, http.MethodDelete, "/api/v1/dashboard/"+testAccount, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.disconnected = true
	w = doRequest(router, http.MethodDelete, "/api/v1/dashboard/"+testAccount, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/dashboard/not-an-address", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCurrenciesAndNetworks(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/currencies/"+testAccount, "")
	require.Equal(t, http.StatusOK, w.Code)
	var currencies APICurrenciesResponse
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &currencies))
	require.Len(t, currencies.Data.Currencies, 1)
	assert.Equal(t, "ETH", currencies.Data.Currencies[0].ID)

	w = doRequest(router, http.MethodGet, "/api/v1/networks", "")
	require.Equal(t, http.StatusOK, w.Code)
	var networks APINetworksResponse
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &networks))
	require.Len(t, networks.Data.Networks, 1)
	assert.Equal(t, "ethereum", networks.Data.Networks[0].Name)
}

func TestPostPicker(t *testing.T) {
	router, svc := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/dashboard/"+testAccount+"/picker", `{"action":"open","mode":"select"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "open", svc.lastCommand.Action)
	var state picker.State
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Open)

	w = doRequest(router, http.MethodPost, "/api/v1/dashboard/"+testAccount+"/picker", `{"action":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/dashboard/"+testAccount+"/picker", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedirectToSwap(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/swap/ETH", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/swap?inputCurrency=ETH&outputCurrency="+hakkaAddr, w.Header().Get("Location"))

	w = doRequest(router, http.MethodGet, "/swap/ETH?exactAmount=1", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/swap?exactAmount=1&inputCurrency=ETH&outputCurrency="+hakkaAddr, w.Header().Get("Location"))

	w = doRequest(router, http.MethodGet, "/swap/ETH?chainId=56", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRedirectPathToSwapOnly(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/send", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/swap", w.Header().Get("Location"))

	w = doRequest(router, http.MethodGet, "/send?inputCurrency=ETH", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/swap?inputCurrency=ETH", w.Header().Get("Location"))
}

func TestOpenClaimAddressModal(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/claim?inputCurrency=ETH", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/swap?inputCurrency=ETH&modal=claim", w.Header().Get("Location"))
}

func TestGetSwapIntent(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/swap?inputCurrency=ETH&outputCurrency="+hakkaAddr, "")
	require.Equal(t, http.StatusOK, w.Code)
	var intent SwapIntent
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &intent))
	assert.Equal(t, "ETH", intent.InputCurrency)
	assert.Equal(t, hakkaAddr, intent.OutputCurrency)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
