// Package console implements the emergency operator console of the cell.
//
// An operator logs in against an injected account registry, receives a session
// and dispatches one of six fixed emergency commands, each of which maps to tag
// writes. Destructive commands ask for confirmation unless the session holds
// emergency access, which every legacy account is granted on login. There is
// no lockout: failed logins can be retried without limit.
//
// Every dispatch is appended to the audit trail whatever its outcome.
package console
