package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/abtest/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Experiments ports.ExperimentRepository
	Trials      ports.TrialRepository
	Reports     ports.ReportRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Experiments: NewExperimentRepository(db),
		Trials:      NewTrialRepository(db),
		Reports:     NewReportRepository(db),
	}
}
