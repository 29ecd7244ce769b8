package service

// Policy decides whether a principal may perform an action. A nil
// principal stands for an anonymous caller.
type Policy struct{}

func NewPolicy() Policy { return Policy{} }

func authenticated(p *Principal) error {
	if p == nil {
		return ErrUnauthorized
	}
	return nil
}

func staffOnly(p *Principal) error {
	if err := authenticated(p); err != nil {
		return err
	}
	if !p.Role.IsStaff() {
		return ErrForbidden
	}
	return nil
}

// ViewOrdersOf allows staff to read anyone's orders and everyone else only
// their own.
func (Policy) ViewOrdersOf(p *Principal, login string) error {
	if err := authenticated(p); err != nil {
		return err
	}
	if p.Role.IsStaff() || p.Login == login {
		return nil
	}
	return ErrForbidden
}

func (Policy) ViewAllOrders(p *Principal) error { return staffOnly(p) }

func (Policy) MutateOrders(p *Principal) error { return staffOnly(p) }

func (Policy) MutateCatalog(p *Principal) error { return staffOnly(p) }

func (Policy) ListStatuses(p *Principal) error { return staffOnly(p) }

func (Policy) ReadCatalog(*Principal) error { return nil }

// PlaceOrder is reserved for clients; staff cannot self-checkout.
func (Policy) PlaceOrder(p *Principal) error {
	if err := authenticated(p); err != nil {
		return err
	}
	if p.Role != RoleClient {
		return ErrForbidden
	}
	return nil
}
