package domain

// Balance is a buyer's stable-value balance in cents. The zero value is an
// unknown (still loading) balance.
type Balance struct {
	Cents int64 `json:"cents"`
	Known bool  `json:"known"`
}

// KnownBalance returns a resolved balance.
func KnownBalance(cents int64) Balance {
	return Balance{Cents: cents, Known: true}
}

// UnknownBalance returns a balance that has not been observed yet.
func UnknownBalance() Balance {
	return Balance{}
}
