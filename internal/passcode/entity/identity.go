package entity

import "strings"

// DefaultTenant is used when a caller omits the tenant and no override is configured.
const DefaultTenant = "default"

// Identity is the composite key of a pending passcode.
type Identity struct {
	Email  string
	Tenant string
}

// NewIdentity normalizes email (trimmed, lower-cased) and tenant (trimmed).
// An empty tenant falls back to defaultTenant, then to DefaultTenant.
func NewIdentity(email, tenant, defaultTenant string) Identity {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		tenant = strings.TrimSpace(defaultTenant)
	}
	if tenant == "" {
		tenant = DefaultTenant
	}

	return Identity{
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Tenant: tenant,
	}
}

// Key renders the identity as a single string. Tenants cannot contain ':',
// so the first separator splits it unambiguously.
func (i Identity) Key() string {
	return i.Tenant + ":" + i.Email
}
