package bicycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/poabike/rental-backend/dock"
	"github.com/poabike/rental-backend/internal/database"
)

var (
	ErrNotFound = errors.New("bicycle not found")
	// ErrRentedOut blocks deletion while a rental holds the bicycle.
	ErrRentedOut = errors.New("bicycle is rented out")
)

type Repository struct {
	db    *sqlx.DB
	docks *dock.Coordinator
}

func NewRepository(db *sqlx.DB, docks *dock.Coordinator) *Repository {
	return &Repository{db: db, docks: docks}
}

// GetBicycles lists the fleet, optionally filtered by status and/or baia.
func (r *Repository) GetBicycles(ctx context.Context, status *Status, station *string) ([]Bicycle, error) {
	query := getBicycles
	var args []any

	switch {
	case status != nil && station != nil:
		query += ` WHERE status = $1 AND baia = $2`
		args = append(args, *status, *station)
	case status != nil:
		query += ` WHERE status = $1`
		args = append(args, *status)
	case station != nil:
		query += ` WHERE baia = $1`
		args = append(args, *station)
	}

	var bicycles []Bicycle
	err := r.db.SelectContext(ctx, &bicycles, query, args...)
	return bicycles, err
}

const getBicycles = `SELECT * FROM bicicletas`

func (r *Repository) GetBicycle(ctx context.Context, id uuid.UUID) (Bicycle, error) {
	var b Bicycle
	err := r.db.GetContext(ctx, &b, getBicycle, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Bicycle{}, ErrNotFound
	}
	return b, err
}

const getBicycle = `SELECT * FROM bicicletas WHERE id = $1`

// CreateParams describes a new bicycle. DockID, when set, attaches the
// bicycle to that catraca in the same transaction that creates it.
type CreateParams struct {
	ChargeLevel int
	Station     string
	ImageURL    string
	DockStatus  DockStatus
	DockID      *uuid.UUID
}

func (r *Repository) CreateBicycle(ctx context.Context, p CreateParams) (Bicycle, error) {
	id := uuid.New()

	img := p.ImageURL
	if img == "" {
		img = fmt.Sprintf("https://placehold.co/150x150/000000/FFFFFF?text=Bike-%s", id.String()[:4])
	}

	dockStatus := p.DockStatus
	if dockStatus == "" {
		if p.DockID != nil {
			dockStatus = Docked
		} else {
			dockStatus = Undocked
		}
	}

	var b Bicycle
	err := database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &b, createBicycle,
			id, p.ChargeLevel, p.Station, img, dockStatus, p.DockID)
		if err != nil {
			return err
		}
		if p.DockID != nil {
			return r.docks.Attach(ctx, tx, *p.DockID, id)
		}
		return nil
	})
	if err != nil {
		return Bicycle{}, err
	}
	return b, nil
}

const createBicycle = `
INSERT INTO bicicletas (id, modelo, quilometragem_carga, status, baia, img, turnstile_status, catraca_id)
VALUES ($1, 'elétrica', $2, 'disponível', $3, $4, $5, $6)
RETURNING *
`

// UpdateParams carries the fields a developer may patch. Nil fields are
// left untouched.
type UpdateParams struct {
	Status      *Status
	ChargeLevel *int
	Station     *string
	ImageURL    *string
	DockStatus  *DockStatus
}

func (r *Repository) UpdateBicycle(ctx context.Context, id uuid.UUID, p UpdateParams) (Bicycle, error) {
	var b Bicycle
	err := r.db.GetContext(ctx, &b, updateBicycle,
		id, p.Status, p.ChargeLevel, p.Station, p.ImageURL, p.DockStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return Bicycle{}, ErrNotFound
	}
	return b, err
}

const updateBicycle = `
UPDATE bicicletas SET
	status = COALESCE($2, status),
	quilometragem_carga = COALESCE($3, quilometragem_carga),
	baia = COALESCE($4, baia),
	img = COALESCE($5, img),
	turnstile_status = COALESCE($6, turnstile_status)
WHERE id = $1
RETURNING *
`

// DeleteBicycle removes a bicycle that is not out on a rental. The catraca
// it occupies, if any, is released in the same transaction.
func (r *Repository) DeleteBicycle(ctx context.Context, id uuid.UUID) error {
	return database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var b Bicycle
		err := tx.GetContext(ctx, &b, lockBicycleForDelete, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if b.Status == StatusRented {
			return ErrRentedOut
		}

		if b.DockID != nil {
			if err := r.docks.Release(ctx, tx, *b.DockID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, deleteBicycle, id)
		return err
	})
}

const lockBicycleForDelete = `SELECT * FROM bicicletas WHERE id = $1 FOR UPDATE`

const deleteBicycle = `DELETE FROM bicicletas WHERE id = $1`
