package port

// AccountProvider supplies the accounts whose dashboards are opened at startup.
type AccountProvider interface {
	GetAccounts() ([]string, error)
}
