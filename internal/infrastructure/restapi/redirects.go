package restapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	swapPath       = "/swap"
	claimModalName = "claim"
)

// SwapIntent is the pre-filled state of the swap page.
type SwapIntent struct {
	InputCurrency  string `json:"inputCurrency,omitempty"`
	OutputCurrency string `json:"outputCurrency,omitempty"`
	Modal          string `json:"modal,omitempty"`
}

// RedirectToSwap turns /swap/:inputCurrency into /swap?inputCurrency=..&outputCurrency=<reference>,
// keeping any existing query.
func (h *DashboardHandler) RedirectToSwap(c *gin.Context) {
	chainID, ok := h.chainID(c)
	if !ok {
		return
	}
	reference, err := h.service.ReferenceCurrency(chainID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	search := "inputCurrency=" + url.QueryEscape(c.Param("inputCurrency")) +
		"&outputCurrency=" + url.QueryEscape(reference.Address)
	if raw := c.Request.URL.RawQuery; raw != "" {
		search = raw + "&" + search
	}
	c.Redirect(http.StatusFound, swapPath+"?"+search)
}

// RedirectPathToSwapOnly replaces the path with /swap and keeps the query.
func RedirectPathToSwapOnly(c *gin.Context) {
	location := swapPath
	if raw := c.Request.URL.RawQuery; raw != "" {
		location += "?" + raw
	}
	c.Redirect(http.StatusFound, location)
}

// OpenClaimAddressModalAndRedirectToSwap flags the claim address modal open
// and redirects to /swap.
func OpenClaimAddressModalAndRedirectToSwap(c *gin.Context) {
	query := c.Request.URL.Query()
	query.Set("modal", claimModalName)
	c.Request.URL.RawQuery = query.Encode()
	RedirectPathToSwapOnly(c)
}

// GetSwapIntent reports what the swap page would be pre-filled with.
func GetSwapIntent(c *gin.Context) {
	c.JSON(http.StatusOK, SwapIntent{
		InputCurrency:  c.Query("inputCurrency"),
		OutputCurrency: c.Query("outputCurrency"),
		Modal:          c.Query("modal"),
	})
}
