package console

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Account is a console login as configured.
type Account struct {
	Username string
	Password string
	Legacy   bool
}

// DefaultAccounts is the account table shipped with the emergency panel.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "password"},
		{Username: "john_smith", Password: "123456", Legacy: true},
		{Username: "marie_dupont", Password: "admin2023", Legacy: true},
		{Username: "test_user", Password: "test", Legacy: true},
	}
}

type entry struct {
	hash   []byte
	legacy bool
}

// AccountRegistry holds bcrypt hashes of the console accounts.
type AccountRegistry struct {
	entries map[string]entry
}

// NewAccountRegistry hashes every password with the given bcrypt cost.
func NewAccountRegistry(accounts []Account, cost int) (*AccountRegistry, error) {
	if cost == 0 {
		cost = bcrypt.MinCost
	}

	r := &AccountRegistry{entries: make(map[string]entry, len(accounts))}
	for _, a := range accounts {
		if a.Username == "" {
			return nil, fmt.Errorf("account with empty username")
		}
		if _, dup := r.entries[a.Username]; dup {
			return nil, fmt.Errorf("duplicate account %q", a.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", a.Username, err)
		}
		r.entries[a.Username] = entry{hash: hash, legacy: a.Legacy}
	}
	return r, nil
}

// Check reports whether the pair matches and whether the account is legacy.
func (r *AccountRegistry) Check(username, password string) (legacy bool, ok bool) {
	e, found := r.entries[username]
	if !found {
		return false, false
	}
	if bcrypt.CompareHashAndPassword(e.hash, []byte(password)) != nil {
		return false, false
	}
	return e.legacy, true
}

// IsLegacy reports whether username is a legacy account.
func (r *AccountRegistry) IsLegacy(username string) bool {
	return r.entries[username].legacy
}

// Len returns the number of accounts.
func (r *AccountRegistry) Len() int {
	return len(r.entries)
}
