package dock

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/poabike/rental-backend/internal/database"
)

var (
	ErrBicycleNotFound = errors.New("bicycle not found")
	// ErrBicycleNotDockable means the bicycle is rented out or already
	// attached somewhere.
	ErrBicycleNotDockable = errors.New("bicycle cannot be docked")
)

type Repository struct {
	db    *sqlx.DB
	coord *Coordinator
}

func NewRepository(db *sqlx.DB, coord *Coordinator) *Repository {
	return &Repository{db: db, coord: coord}
}

// GetDocks lists catracas, optionally filtered by baia and/or status.
func (r *Repository) GetDocks(ctx context.Context, station *string, status *Status) ([]Dock, error) {
	query := getDocks
	var args []any

	switch {
	case station != nil && status != nil:
		query += ` WHERE baia = $1 AND status = $2`
		args = append(args, *station, *status)
	case station != nil:
		query += ` WHERE baia = $1`
		args = append(args, *station)
	case status != nil:
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var docks []Dock
	err := r.db.SelectContext(ctx, &docks, query, args...)
	return docks, err
}

const getDocks = `SELECT * FROM catracas`

func (r *Repository) GetDock(ctx context.Context, id uuid.UUID) (Dock, error) {
	var d Dock
	err := r.db.GetContext(ctx, &d, getDock, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Dock{}, ErrNotFound
	}
	return d, err
}

const getDock = `SELECT * FROM catracas WHERE id = $1`

// CreateDock registers a new free catraca at a station.
func (r *Repository) CreateDock(ctx context.Context, station string) (Dock, error) {
	var d Dock
	err := r.db.GetContext(ctx, &d, createDock, uuid.New(), station)
	return d, err
}

const createDock = `
INSERT INTO catracas (id, baia, status, bicicleta_id_acoplada)
VALUES ($1, $2, 'livre', NULL)
RETURNING *
`

type dockableBicycle struct {
	Status string     `db:"status"`
	DockID *uuid.UUID `db:"catraca_id"`
}

// AttachBicycle docks an undocked bicycle at a free catraca. This is the
// administrative path used to bring new bicycles into circulation or to
// re-dock one after maintenance; rentals dock and undock through the state
// machine instead.
func (r *Repository) AttachBicycle(ctx context.Context, dockID, bicycleID uuid.UUID) (Dock, error) {
	var d Dock
	err := database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var b dockableBicycle
		err := tx.GetContext(ctx, &b, lockBicycleForDocking, bicycleID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBicycleNotFound
		}
		if err != nil {
			return err
		}
		if b.Status == "alugada" || b.DockID != nil {
			return ErrBicycleNotDockable
		}

		if err := r.coord.Attach(ctx, tx, dockID, bicycleID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, dockBicycle, dockID, bicycleID); err != nil {
			return err
		}

		return tx.GetContext(ctx, &d, getDockInTx, dockID)
	})
	return d, err
}

const lockBicycleForDocking = `SELECT status, catraca_id FROM bicicletas WHERE id = $1 FOR UPDATE`

const dockBicycle = `UPDATE bicicletas SET catraca_id = $1, turnstile_status = 'docked' WHERE id = $2`

const getDockInTx = `SELECT * FROM catracas WHERE id = $1`
