package core

// Protocol maps operations onto requests for one API. Implementations are
// stateless and safe for concurrent use.
type Protocol interface {
	// Name returns the API identifier.
	Name() string

	// Version returns the API version served under the base URL.
	Version() string

	// BuildRequest constructs the request for op. Params that the endpoint
	// takes in its path are consumed; the rest travel as query or body.
	BuildRequest(op Operation, params Params) (*Request, error)

	// SupportedOperations returns the operations this protocol can build.
	SupportedOperations() []Operation
}
