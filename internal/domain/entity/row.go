package entity

// Row is the derived, render-only representation of one held currency.
type Row struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	LogoURI    string `json:"logoURI,omitempty"`
	Label      string `json:"label"`
	Balance    string `json:"balance"`
	Value      string `json:"value"`
	ValueKnown bool   `json:"valueKnown"`
	SwapLink   string `json:"swapLink,omitempty"`
}

// ChartSlice is one sector of the holdings pie chart.
type ChartSlice struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Value   string `json:"value"`
	Percent string `json:"percent"`
}

// Dashboard is the full response for one account on one chain.
type Dashboard struct {
	Account   string       `json:"account"`
	ChainID   uint64       `json:"chainId"`
	Reference string       `json:"reference"`
	Rows      []Row        `json:"rows"`
	Total     string       `json:"total"`
	Chart     []ChartSlice `json:"chart"`
}

// ListedCurrency is one entry of the currency picker listing.
type ListedCurrency struct {
	Currency
	Balance      string `json:"balance"`
	BalanceExact string `json:"balanceExact"`
}
