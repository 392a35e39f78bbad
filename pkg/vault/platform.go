package vault

// Status is the coarse outcome of a platform store call.
type Status int

const (
	// StatusSuccess means the operation completed and, for reads, data
	// was returned.
	StatusSuccess Status = iota

	// StatusNotFound means no item exists for the key.
	StatusNotFound

	// StatusAuthFailed means the user dismissed the authentication
	// prompt or failed to authenticate.
	StatusAuthFailed

	// StatusInteractionNotAllowed means an item exists but the query
	// carried no credential usable to unlock it and the platform could
	// not prompt.
	StatusInteractionNotAllowed

	// StatusAccessDenied covers every other platform rejection.
	StatusAccessDenied
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not found"
	case StatusAuthFailed:
		return "authentication failed"
	case StatusInteractionNotAllowed:
		return "interaction not allowed"
	case StatusAccessDenied:
		return "access denied"
	}
	return "unknown"
}

// Platform is the secure-storage backend a vault delegates item I/O to.
// Implementations own prompting, protection, and persistence; the vault
// engine owns query construction, serialization, and outcome mapping.
//
// Calls block until the platform resolves them, including any time spent
// waiting on a user prompt.
type Platform interface {
	Set(q Query, key string, data []byte) Status
	Get(q Query, key string) ([]byte, Status)
	Remove(q Query, key string) Status
	Contains(q Query, key string) Status
}
