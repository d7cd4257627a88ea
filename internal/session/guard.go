package session

import "github.com/iiitdCrypto/crypto-resource-manager/internal/domain"

// Decision is the outcome of a route guard check.
type Decision int

const (
	// DecisionLoading: session restore is still in flight; render
	// nothing yet rather than flashing a redirect.
	DecisionLoading Decision = iota
	// DecisionRedirectToLogin: no signed-in user. The requested path is
	// preserved so login can return there.
	DecisionRedirectToLogin
	// DecisionDeny: signed in, but the role is insufficient. Distinct
	// from the redirect case so the UI shows "forbidden", not a login
	// form the user would pointlessly fill in again.
	DecisionDeny
	// DecisionAllow: proceed.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectToLogin:
		return "redirect-to-login"
	case DecisionDeny:
		return "deny"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// GuardResult carries the decision plus the path to return to after a
// successful login.
type GuardResult struct {
	Decision   Decision
	ReturnPath string
}

// Guard evaluates whether the session may enter requestedPath, which
// requires at least required. Anonymous users are redirected; signed-in
// users below the required role are denied outright.
func Guard(s Session, requestedPath string, required domain.Role) GuardResult {
	if s.Loading {
		return GuardResult{Decision: DecisionLoading}
	}
	if s.User == nil {
		return GuardResult{Decision: DecisionRedirectToLogin, ReturnPath: requestedPath}
	}
	if !s.User.Role.AtLeast(required) {
		return GuardResult{Decision: DecisionDeny}
	}
	return GuardResult{Decision: DecisionAllow}
}
