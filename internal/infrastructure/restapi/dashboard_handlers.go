package restapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"asset_dashboard/internal/app/picker"
	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/app/service"
	"asset_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// DashboardService is what the handlers need from the application layer.
type DashboardService interface {
	Dashboard(ctx context.Context, account string, chainID uint64) (entity.Dashboard, error)
	Currencies(ctx context.Context, account string, chainID uint64) ([]entity.ListedCurrency, error)
	Picker(ctx context.Context, account string, chainID uint64, cmd service.PickerCommand) (picker.State, error)
	Disconnect(account string, chainID uint64) (bool, error)
	Networks() []entity.NetworkDefinition
	ReferenceCurrency(chainID uint64) (entity.Currency, error)
}

// APIError is the body of every error response.
type APIError struct {
	Error string `json:"error"`
}

// APICurrenciesResponse wraps the currency picker listing.
type APICurrenciesResponse struct {
	Data struct {
		Currencies []entity.ListedCurrency `json:"currencies"`
	} `json:"data"`
}

// APINetworksResponse wraps the active networks.
type APINetworksResponse struct {
	Data struct {
		Networks []entity.NetworkDefinition `json:"networks"`
	} `json:"data"`
}

// DashboardHandler handles the dashboard API.
type DashboardHandler struct {
	service        DashboardService
	defaultChainID uint64
	logger         port.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc DashboardService, defaultChainID uint64, logger port.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:        svc,
		defaultChainID: defaultChainID,
		logger:         logger,
	}
}

// GetDashboardHandler returns the ranked holdings of an account.
func (h *DashboardHandler) GetDashboardHandler(c *gin.Context) {
	chainID, ok := h.chainID(c)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), c.Param("account"), chainID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// DeleteDashboardHandler tears the account's view down.
func (h *DashboardHandler) DeleteDashboardHandler(c *gin.Context) {
	chainID, ok := h.chainID(c)
	if !ok {
		return
	}
	closed, err := h.service.Disconnect(c.Param("account"), chainID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !closed {
		c.JSON(http.StatusNotFound, APIError{Error: "no open dashboard for account"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCurrenciesHandler returns every currency of the chain with the account balance.
func (h *DashboardHandler) GetCurrenciesHandler(c *gin.Context) {
	chainID, ok := h.chainID(c)
	if !ok {
		return
	}
	currencies, err := h.service.Currencies(c.Request.Context(), c.Param("account"), chainID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	var resp APICurrenciesResponse
	resp.Data.Currencies = currencies
	c.JSON(http.StatusOK, resp)
}

// PostPickerHandler drives the account's currency picker modal.
func (h *DashboardHandler) PostPickerHandler(c *gin.Context) {
	chainID, ok := h.chainID(c)
	if !ok {
		return
	}
	var cmd service.PickerCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid picker command: " + err.Error()})
		return
	}
	state, err := h.service.Picker(c.Request.Context(), c.Param("account"), chainID, cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetNetworksHandler lists the active networks.
func (h *DashboardHandler) GetNetworksHandler(c *gin.Context) {
	var resp APINetworksResponse
	resp.Data.Networks = h.service.Networks()
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) chainID(c *gin.Context) (uint64, bool) {
	raw := c.Query("chainId")
	if raw == "" {
		return h.defaultChainID, true
	}
	chainID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid chainId"})
		return 0, false
	}
	return chainID, true
}

func (h *DashboardHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidAccount), errors.Is(err, service.ErrInvalidPickerCommand):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrUnknownNetwork), errors.Is(err, entity.ErrReferenceNotConfigured):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrViewClosed):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, APIError{Error: err.Error()})
}
