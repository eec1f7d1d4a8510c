package repository

import (
	"fmt"

	"github.com/floorgang/floorscanner/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Picks    PickRepository
	ScanRuns ScanRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Picks:    NewPostgresPickRepository(db),
		ScanRuns: NewPostgresScanRunRepository(db),
	}, nil
}
