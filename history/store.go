// Package history persists normalized payment records. It is the
// durable side of the transaction-history collaborator: the send flow
// hands it one PaymentResultRecord per successful send.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BlixtWallet/noah-sub000/send"
	"github.com/btcsuite/btcd/btcutil"

	// Register the sqlite driver.
	_ "modernc.org/sqlite"
)

// Store is the history surface the rest of the wallet consumes.
type Store interface {
	send.History

	// List returns all records, most recent first.
	List(ctx context.Context) ([]*send.PaymentResultRecord, error)

	// Close releases the underlying storage.
	Close() error
}

// paymentsSchema is applied on open. Kept simple enough that a single
// exec replaces a migration framework.
const paymentsSchema = `
CREATE TABLE IF NOT EXISTS payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	amount_sat INTEGER NOT NULL,
	destination TEXT NOT NULL,
	txid TEXT NOT NULL DEFAULT '',
	preimage TEXT NOT NULL DEFAULT '',
	success INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS payments_created_at ON payments (created_at);
`

// SqliteStore stores payment records in a sqlite database.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the payments database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(paymentsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

// Record inserts one payment record.
func (s *SqliteStore) Record(ctx context.Context,
	rec *send.PaymentResultRecord) error {

	if rec == nil {
		return fmt.Errorf("record required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments
			(kind, amount_sat, destination, txid, preimage,
			 success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind), int64(rec.AmountSat),
		rec.DestinationDisplay, rec.TxID, rec.Preimage,
		rec.Success, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// List returns all payment records, most recent first.
func (s *SqliteStore) List(ctx context.Context) (
	[]*send.PaymentResultRecord, error) {

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, amount_sat, destination, txid, preimage,
			success, created_at
		 FROM payments
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var recs []*send.PaymentResultRecord
	for rows.Next() {
		var (
			rec       send.PaymentResultRecord
			kind      string
			amountSat int64
			createdAt int64
		)
		err := rows.Scan(
			&kind, &amountSat, &rec.DestinationDisplay,
			&rec.TxID, &rec.Preimage, &rec.Success, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w",
				err)
		}

		rec.Kind = send.PaymentKind(kind)
		rec.AmountSat = btcutil.Amount(amountSat)
		rec.CreatedAt = timeFromUnix(createdAt)
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	return recs, nil
}

// Close closes the database.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
