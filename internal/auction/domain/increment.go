package domain

// IncrementPolicy decides the smallest amount a new bid may legally carry.
// Injected into the engine so catalogs with explicit increments and catalogs
// without one share the same validation path.
type IncrementPolicy interface {
	MinimumAcceptable(a *Auction) int64
}

// CatalogIncrementPolicy honors the catalog's MinimumNextBid when it is
// defined, and falls back to one unit above the current bid otherwise. A bid
// must always strictly exceed the current bid.
type CatalogIncrementPolicy struct{}

func (CatalogIncrementPolicy) MinimumAcceptable(a *Auction) int64 {
	min := a.CurrentBid + 1
	if a.MinimumNextBid > min {
		min = a.MinimumNextBid
	}
	return min
}

// FixedIncrementPolicy requires each bid to top the current one by at least
// a fixed step, ignoring the catalog's own increment.
type FixedIncrementPolicy struct {
	Step int64
}

func (p FixedIncrementPolicy) MinimumAcceptable(a *Auction) int64 {
	step := p.Step
	if step < 1 {
		step = 1
	}
	return a.CurrentBid + step
}
