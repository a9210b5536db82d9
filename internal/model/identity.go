package model

// Identity is the authenticated caller's identity as established by the
// session middleware. It is threaded explicitly through every core
// operation rather than held in ambient state.
type Identity struct {
	// ExternalID is the opaque identifier issued by the identity
	// provider. Empty means unauthenticated.
	ExternalID string
}

// EmailAddress is one verified address on an external identity profile.
type EmailAddress struct {
	ID      string `json:"id"`
	Address string `json:"email_address"`
}

// ExternalProfile is the identity provider's view of a user.
type ExternalProfile struct {
	ID             string         `json:"id"`
	PrimaryEmailID string         `json:"primary_email_address_id"`
	Emails         []EmailAddress `json:"email_addresses"`
}

// PrimaryEmail returns the address designated as primary, falling back
// to the first listed address. ok is false when the profile carries no
// addresses at all.
func (p *ExternalProfile) PrimaryEmail() (string, bool) {
	for _, e := range p.Emails {
		if e.ID == p.PrimaryEmailID && e.Address != "" {
			return e.Address, true
		}
	}
	if len(p.Emails) > 0 && p.Emails[0].Address != "" {
		return p.Emails[0].Address, true
	}
	return "", false
}
