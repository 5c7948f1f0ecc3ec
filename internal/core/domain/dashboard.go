package domain

// DashboardCounts carries whichever totals the role's dashboard reports.
type DashboardCounts struct {
	Businesses int `json:"microempresas"`
	Customers  int `json:"clientes"`
	Products   int `json:"productos"`
}

// BusinessSummary is how a customer sees a business on their dashboard.
type BusinessSummary struct {
	TenantID  int       `json:"tenant_id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	StoreType StoreType `json:"tipo_tienda"`
	Status    Status    `json:"estado"`
}

// Dashboard is the role-shaped aggregate served by GET /api/dashboard.
// Which fields are set depends on Role.
type Dashboard struct {
	Role   Role
	Counts DashboardCounts

	// Administrator view.
	Admins     []AdminProfile
	Businesses []BusinessProfile
	Customers  []CustomerProfile

	// Business view.
	Business *BusinessProfile

	// Customer view.
	Shops []BusinessSummary
}

func (d *Dashboard) InactiveAdmins() []AdminProfile {
	return filter(d.Admins, func(a AdminProfile) bool { return a.Status.IsInactive() })
}

func (d *Dashboard) InactiveBusinesses() []BusinessProfile {
	return filter(d.Businesses, func(b BusinessProfile) bool { return b.Status.IsInactive() })
}

func (d *Dashboard) InactiveCustomers() []CustomerProfile {
	return filter(d.Customers, func(c CustomerProfile) bool { return c.Status.IsInactive() })
}

// PendingBusinesses counts businesses with a status other than active.
func (d *Dashboard) PendingBusinesses() int {
	n := 0
	for _, b := range d.Businesses {
		if b.Status != "" && !b.Status.IsActive() {
			n++
		}
	}
	return n
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
