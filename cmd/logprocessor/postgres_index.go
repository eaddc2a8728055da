package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/database"
	"github.com/JailtonJunior94/devkit-go/pkg/database/postgres"
	"github.com/JailtonJunior94/devkit-go/pkg/database/uow"
	"github.com/JailtonJunior94/devkit-go/pkg/entity"
	"github.com/JailtonJunior94/devkit-go/pkg/migration"
	"github.com/JailtonJunior94/devkit-go/pkg/vos"
)

// postgresSearchIndex is the optional durable SearchIndex for environments
// without an Elasticsearch/OpenSearch deployment (SPEC_FULL.md §6.1): a
// plain Postgres table of record summaries, queryable with SQL instead of
// a search engine. Grounded on pkg/database/postgres.Database for the
// connection pool and pkg/migration.Migrator for schema management.
// PurgeOlderThan additionally goes through pkg/database/uow.UnitOfWork so
// the delete and its audit row commit or roll back together.
type postgresSearchIndex struct {
	db       *postgres.Database
	migrator *migration.Migrator
	uow      uow.UnitOfWork
}

// purgeAudit is one row of the retention job's audit trail, embedding
// entity.Base the way every aggregate root in the teacher's domain layer
// does for its identity and timestamps.
type purgeAudit struct {
	entity.Base
	DeletedCount int
}

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS action_log_records (
	id text PRIMARY KEY,
	date timestamptz NOT NULL,
	action text NOT NULL,
	result text NOT NULL,
	ref_id text,
	error_code text,
	error_message text,
	context jsonb NOT NULL,
	stats jsonb NOT NULL
)`

const createPurgeAuditTable = `
CREATE TABLE IF NOT EXISTS action_log_index_purges (
	id text PRIMARY KEY,
	created_at timestamptz NOT NULL,
	deleted_count integer NOT NULL
)`

func newPostgresSearchIndex(ctx context.Context, dsn string) (*postgresSearchIndex, error) {
	db, err := postgres.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("logprocessor: failed to connect to postgres: %w", err)
	}

	if _, err := db.DB().ExecContext(ctx, createRecordsTable); err != nil {
		_ = db.Shutdown(ctx)
		return nil, fmt.Errorf("logprocessor: failed to ensure schema: %w", err)
	}
	if _, err := db.DB().ExecContext(ctx, createPurgeAuditTable); err != nil {
		_ = db.Shutdown(ctx)
		return nil, fmt.Errorf("logprocessor: failed to ensure purge audit schema: %w", err)
	}

	return &postgresSearchIndex{db: db, uow: uow.NewUnitOfWork(db.DB())}, nil
}

// newPostgresSearchIndexWithMigrator is the variant that manages the schema
// through versioned migration files instead of an inline DDL statement,
// exercised when a migrations source is configured.
func newPostgresSearchIndexWithMigrator(ctx context.Context, dsn, migrationsSource string) (*postgresSearchIndex, error) {
	db, err := postgres.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("logprocessor: failed to connect to postgres: %w", err)
	}

	migrator, err := migration.New(
		migration.WithDriver(migration.DriverPostgres),
		migration.WithDSN(dsn),
		migration.WithSource(migrationsSource),
	)
	if err != nil {
		_ = db.Shutdown(ctx)
		return nil, fmt.Errorf("logprocessor: failed to build migrator: %w", err)
	}

	if err := migrator.Up(ctx); err != nil {
		_ = migrator.Close()
		_ = db.Shutdown(ctx)
		return nil, fmt.Errorf("logprocessor: failed to apply migrations: %w", err)
	}

	return &postgresSearchIndex{db: db, migrator: migrator, uow: uow.NewUnitOfWork(db.DB())}, nil
}

// PurgeOlderThan deletes records whose Date is before cutoff and writes an
// audit row recording how many were removed, both inside one transaction so
// a crash between the delete and the audit insert can't leave a purge
// unaccounted for.
func (s *postgresSearchIndex) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var deleted int
	err := s.uow.Do(ctx, func(ctx context.Context, tx database.DBTX) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM action_log_records WHERE date < $1`, cutoff)
		if err != nil {
			return fmt.Errorf("failed to purge expired records: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		deleted = int(rows)

		id, err := vos.NewULID()
		if err != nil {
			return fmt.Errorf("failed to mint purge audit id: %w", err)
		}
		audit := purgeAudit{DeletedCount: deleted}
		audit.SetID(id)
		audit.CreatedAt = time.Now()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO action_log_index_purges (id, created_at, deleted_count)
			VALUES ($1, $2, $3)
		`, audit.ID.String(), audit.CreatedAt, audit.DeletedCount)
		if err != nil {
			return fmt.Errorf("failed to record purge audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *postgresSearchIndex) Index(ctx context.Context, record wireRecord) error {
	contextJSON, err := json.Marshal(record.Context)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to encode context: %w", err)
	}
	statsJSON, err := json.Marshal(record.Stats)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to encode stats: %w", err)
	}

	_, err = s.db.DB().ExecContext(ctx, `
		INSERT INTO action_log_records (id, date, action, result, ref_id, error_code, error_message, context, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			action = EXCLUDED.action,
			result = EXCLUDED.result,
			ref_id = EXCLUDED.ref_id,
			error_code = EXCLUDED.error_code,
			error_message = EXCLUDED.error_message,
			context = EXCLUDED.context,
			stats = EXCLUDED.stats
	`, record.ID, record.Date, record.Action, record.Result, record.RefID, record.ErrorCode, record.ErrorMessage, contextJSON, statsJSON)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to index record %s: %w", record.ID, err)
	}
	return nil
}

func (s *postgresSearchIndex) Close() error {
	if s.migrator != nil {
		_ = s.migrator.Close()
	}
	return s.db.Shutdown(context.Background())
}
