package postgres

import (
	stderrors "errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// Migrator applies the schema of the documents, phrases, analysis_runs and
// antecedent_results tables.
type Migrator struct {
	dbURL          string
	migrationsPath string
	logger         logging.Logger
}

// NewMigrator returns a Migrator. migrationsPath is a golang-migrate source
// URL such as "file://migrations".
func NewMigrator(dbURL, migrationsPath string, logger logging.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Migrator{dbURL: dbURL, migrationsPath: migrationsPath, logger: logger.Named("migrator")}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	mg, err := migrate.New(m.migrationsPath, m.dbURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBConnectionError, "failed to create migrate instance")
	}
	return mg, nil
}

// Up applies all pending migrations. No pending migrations is not an error.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema is up to date")
			return nil
		}
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to run migrations")
	}
	version, dirty, _ := mg.Version()
	m.logger.Info("migrations applied", logging.Uint64("version", uint64(version)), logging.Bool("dirty", dirty))
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.InvalidParam("steps must be greater than 0").WithDetailf("steps=%d", steps)
	}
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.CodeConflict, "no migrations to roll back")
		}
		return errors.Wrapf(err, errors.CodeDBQueryError, "failed to rollback %d step(s)", steps)
	}
	m.logger.Info("migrations rolled back", logging.Int("steps", steps))
	return nil
}

// Status returns the applied version and whether the last migration left the
// schema dirty. A database with no migrations reports version 0.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer mg.Close()

	version, dirty, err = mg.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.CodeDBQueryError, "failed to get migration version")
	}
	return version, dirty, nil
}

//Personal.AI order the ending
