package usecase

// ConnectivityChecker is the advisory pre-flight gate consulted before
// mutating operations. Implementations never block on the network.
type ConnectivityChecker interface {
	IsConnected() bool
}
