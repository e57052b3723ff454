package repositories

import "context"

// Repository aggregates all repository interfaces
type Repository interface {
	// Catalog domain
	Question() QuestionRepository

	// Attempt domain
	Attempt() AttemptRepository
	Session() SessionRepository

	// Mastery and planning domain
	Mastery() MasteryRepository
	Mission() MissionRepository
	Report() ReportRepository

	// User domain (read-only, user data lives in Casdoor)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
