package screens

import "time"

// Banner is the feedback strip at the top of a screen. A zero ExpiresAt
// keeps it until the next action replaces it.
type Banner struct {
	Success   string    `json:"success,omitempty"`
	Error     string    `json:"error,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (b *Banner) succeed(msg string) {
	b.Success = msg
	b.Error = ""
	b.ExpiresAt = time.Time{}
}

// fail keeps any earlier success message visible next to the error.
func (b *Banner) fail(msg string) {
	b.Error = msg
	b.ExpiresAt = time.Time{}
}

func (b *Banner) clear() {
	*b = Banner{}
}

func (b *Banner) expireAt(t time.Time) {
	b.ExpiresAt = t
}

// visible returns the banner as it should render at now.
func (b Banner) visible(now time.Time) Banner {
	if !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt) {
		return Banner{}
	}
	return b
}
