package ports

// ApiServer defines the interface for the HTTP scan API
type ApiServer interface {
	// Start starts serving requests
	Start() error

	// Stop shuts the server down gracefully
	Stop() error
}
