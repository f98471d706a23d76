package dock

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("catraca not found")
	// ErrMismatch means the bicycle is not attached to the dock it claims
	// as its pickup point.
	ErrMismatch = errors.New("bicycle not attached to this catraca")
	// ErrUnavailable means the dock cannot accept a bicycle right now.
	ErrUnavailable = errors.New("catraca not available")
)

// Coordinator maintains the bicycle-catraca pairing. Its methods run on the
// caller's transaction: pickups and returns must observe and mutate dock
// state in the same atomic scope as the rental itself.
type Coordinator struct{}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

type dockRow struct {
	Status    Status     `db:"status"`
	BicycleID *uuid.UUID `db:"bicicleta_id_acoplada"`
}

// VerifyAttached checks that bicycleID is currently attached to dockID.
// Called before a pickup is allowed.
func (c *Coordinator) VerifyAttached(ctx context.Context, tx *sqlx.Tx, dockID, bicycleID uuid.UUID) error {
	var row dockRow
	err := tx.GetContext(ctx, &row, lockDock, dockID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if row.Status != Occupied || row.BicycleID == nil || *row.BicycleID != bicycleID {
		return ErrMismatch
	}
	return nil
}

// Release frees the dock after its bicycle has been picked up.
func (c *Coordinator) Release(ctx context.Context, tx *sqlx.Tx, dockID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, releaseDock, dockID)
	return err
}

// Attach couples a bicycle to a free dock. Fails with ErrUnavailable if the
// dock is occupied or already has a bicycle attached.
func (c *Coordinator) Attach(ctx context.Context, tx *sqlx.Tx, dockID, bicycleID uuid.UUID) error {
	var row dockRow
	err := tx.GetContext(ctx, &row, lockDock, dockID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if row.Status != Free || row.BicycleID != nil {
		return ErrUnavailable
	}

	_, err = tx.ExecContext(ctx, attachDock, bicycleID, dockID)
	return err
}

const lockDock = `SELECT status, bicicleta_id_acoplada FROM catracas WHERE id = $1 FOR UPDATE`

const releaseDock = `UPDATE catracas SET status = 'livre', bicicleta_id_acoplada = NULL WHERE id = $1`

const attachDock = `UPDATE catracas SET status = 'ocupada', bicicleta_id_acoplada = $1 WHERE id = $2`
