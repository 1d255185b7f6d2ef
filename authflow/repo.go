package authflow

import "time"

// PendingAuthorization is one authorization attempt in flight. It is created
// when a client hits /authorize, completed when the upstream provider
// redirects back to /callback, and consumed by the /token exchange.
type PendingAuthorization struct {
	// ClientRedirectURI is where the user is sent once the upstream hop
	// completes.
	ClientRedirectURI string

	// ClientState is the opaque value the client expects echoed back. It is
	// also the lookup key while the flow waits on the upstream provider.
	ClientState string

	// CodeChallenge and CodeChallengeMethod are the client's PKCE
	// parameters. They are captured and stored but NOT verified against a
	// code_verifier at token-exchange time; verification is a required
	// addition for a conformant deployment.
	CodeChallenge       string
	CodeChallengeMethod string

	// UpstreamCode is the provider's authorization code, filled in by the
	// callback.
	UpstreamCode string

	// ProxyCode is the opaque code this proxy issues to the original
	// client; it becomes the secondary lookup key once assigned.
	ProxyCode string

	CreatedAt time.Time
}

// Repo stores pending authorizations. Implementations must make each
// operation a single atomic critical section: a record is reachable by state
// until Attach, by proxy code afterwards, and both keys always resolve to
// the same record.
type Repo interface {
	// Create registers a new pending authorization under its state value.
	Create(state string, pending *PendingAuthorization) error

	// Attach records the upstream code and the freshly minted proxy code on
	// the pending authorization identified by state, and indexes the record
	// by the proxy code. Each record can be completed exactly once: a
	// replayed callback on an already-completed state fails, so only one
	// proxy code is ever live per authorization.
	Attach(state, upstreamCode, proxyCode string) (*PendingAuthorization, error)

	// TakeByCode removes and returns the pending authorization identified
	// by a proxy code. Removal is atomic with the lookup, which is what
	// makes proxy codes single-use: a second take of the same code fails.
	TakeByCode(proxyCode string) (*PendingAuthorization, error)

	// Sweep evicts records older than the TTL and reports how many were
	// removed.
	Sweep(now time.Time) int
}
