package policy

import "strings"

type Role string

const (
	SuperAdmin     Role = "SUPER_ADMIN"
	HRAdmin        Role = "HR_ADMIN"
	FinanceAdmin   Role = "FINANCE_ADMIN"
	InventoryAdmin Role = "INVENTORY_ADMIN"
	InsuranceAdmin Role = "INSURANCE_ADMIN"
	Receptionist   Role = "RECEPTIONIST"
)

const (
	Wildcard         = "*"
	RootPath         = "/"
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Policy maps each role to the path prefixes it may reach. It is the only
// role table in the service; the gate, the auth endpoints and the module
// handlers all ask it.
type Policy struct {
	prefixes map[Role][]string
}

func New(prefixes map[Role][]string) *Policy {
	p := &Policy{prefixes: make(map[Role][]string, len(prefixes))}
	for role, list := range prefixes {
		p.prefixes[role] = append([]string(nil), list...)
	}
	return p
}

func Default() *Policy {
	return New(map[Role][]string{
		SuperAdmin:     {Wildcard},
		HRAdmin:        {"/dashboard", "/hr", "/api/hr"},
		FinanceAdmin:   {"/dashboard", "/finance", "/api/finance"},
		InventoryAdmin: {"/dashboard", "/inventory", "/api/inventory"},
		InsuranceAdmin: {"/dashboard", "/insurance", "/api/insurance"},
		Receptionist:   {"/dashboard", "/patients", "/appointments", "/api/patients", "/api/appointments"},
	})
}

func (p *Policy) Known(role Role) bool {
	_, ok := p.prefixes[role]
	return ok
}

// Prefixes returns a copy of the role's permitted prefixes.
func (p *Policy) Prefixes(role Role) []string {
	return append([]string(nil), p.prefixes[role]...)
}

// Always reports paths every caller may reach, authenticated or not.
func Always(path string) bool {
	return path == RootPath || path == LoginPath || path == UnauthorizedPath
}

func (p *Policy) Authorized(role Role, path string) bool {
	if Always(path) {
		return true
	}
	for _, prefix := range p.prefixes[role] {
		if prefix == Wildcard || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
