package mem

import "time"

// ResetCodeStore holds single-use password reset codes keyed by email.
type ResetCodeStore interface {
	Set(email string, code string, ttl time.Duration)

	// Consume reports whether code matches the live code for email and
	// removes it. A wrong code leaves the stored one in place.
	Consume(email string, code string) bool
}

type ResetCodes struct {
	store *TTLStore[string]
}

func NewResetCodes() *ResetCodes {
	return &ResetCodes{store: NewTTLStore[string]()}
}

func (r *ResetCodes) Set(email string, code string, ttl time.Duration) {
	r.store.Set(email, code, ttl)
}

func (r *ResetCodes) Consume(email string, code string) bool {
	stored, ok := r.store.Peek(email)
	if !ok || stored != code {
		return false
	}
	_, ok = r.store.Consume(email)
	return ok
}
