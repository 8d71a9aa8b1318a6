package domain

// Account is one usable login credential, either provisioned in advance by
// the seed command or created live by a registration flow. Accounts are
// never mutated after creation.
type Account struct {
	Email    string `json:"email" toml:"email"`
	Password string `json:"password" toml:"password"`
}

// Tokens holds the bearer tokens for one authenticated session. A session
// replaces its Tokens wholesale on re-authentication, never field by field.
type Tokens struct {
	Access  string
	Refresh string
}
