package entity

// Favorite marks an event as favored by an account.
// At most one favorite exists per (AccountID, EventID).
type Favorite struct {
	ID        string
	AccountID string
	EventID   string
}

// PairKey is the secondary uniqueness key of a favorite.
type PairKey struct {
	AccountID string
	EventID   string
}

func (f Favorite) Pair() PairKey {
	return PairKey{AccountID: f.AccountID, EventID: f.EventID}
}
