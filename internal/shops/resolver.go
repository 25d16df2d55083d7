package shops

import "context"

// Resolver is the tenant context resolver: it maps an acting manager to the
// single shop that manager operates. Every ledger entry point resolves the
// shop up front and passes it explicitly into the core; a missing assignment
// is a terminal precondition failure for the request.
type Resolver struct {
	repo Repository
}

// NewResolver constructs a Resolver.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ShopForManager resolves the shop operated by managerUserID. Returns
// shared.ErrNoShopAssigned when the manager operates none.
func (r *Resolver) ShopForManager(ctx context.Context, managerUserID int64) (Shop, error) {
	return r.repo.ShopForManager(ctx, managerUserID)
}
