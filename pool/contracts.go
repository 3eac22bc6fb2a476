package pool

import "context"

// Provider is the pluggable source of proxy descriptors. Fetch may
// perform network I/O and must be idempotent in effect: repeated
// calls yield overlapping sets with stable identities for the same
// logical endpoints. A provider that cannot produce proxies returns
// an empty list, never an error that would stop the refresh loop from
// retrying later.
type Provider interface {
	Fetch(ctx context.Context) ([]Descriptor, error)
}

// Validator tests whether a proxy can reach reference targets and
// measures its latency. Validate and Measure are both blocking calls;
// the Health Loop fans them out across goroutines itself rather than
// requiring a separate async variant.
type Validator interface {
	Validate(ctx context.Context, proxyURL string) bool
	Measure(ctx context.Context, proxyURL string, n int) ProbeResult
}
