package rental

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/poabike/rental-backend/bicycle"
	"github.com/poabike/rental-backend/dock"
	"github.com/poabike/rental-backend/internal/database"
)

var (
	ErrNotFound           = errors.New("rental not found")
	ErrNotActive          = errors.New("rental is not active")
	ErrNotOwner           = errors.New("rental belongs to another user")
	ErrInvalidChargeLevel = errors.New("invalid charge level")
	ErrBicycleNotFound    = errors.New("bicycle not found")
	ErrBicycleUnavailable = errors.New("bicycle not available")
)

// Repository drives the rental state machine. Start and Finish each run as
// one serializable transaction: the rental, the bicycle and the catraca
// change together or not at all.
type Repository struct {
	db    *sqlx.DB
	docks *dock.Coordinator
}

func NewRepository(db *sqlx.DB, docks *dock.Coordinator) *Repository {
	return &Repository{db: db, docks: docks}
}

type lockedBicycle struct {
	Status bicycle.Status `db:"status"`
}

// Start creates an active rental: the bicycle must be available and
// attached to the origin catraca, which is released as the bicycle leaves.
func (r *Repository) Start(ctx context.Context, bicycleID uuid.UUID, minutes int, originDockID, userID uuid.UUID) (Rental, error) {
	price, err := Price(minutes)
	if err != nil {
		return Rental{}, err
	}

	var rental Rental
	err = database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var b lockedBicycle
		err := tx.GetContext(ctx, &b, lockBicycle, bicycleID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBicycleNotFound
		}
		if err != nil {
			return err
		}
		if b.Status != bicycle.StatusAvailable {
			return ErrBicycleUnavailable
		}

		if err := r.docks.VerifyAttached(ctx, tx, originDockID, bicycleID); err != nil {
			return err
		}

		err = tx.GetContext(ctx, &rental, createRental,
			uuid.New(), bicycleID, minutes, price, originDockID, userID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, markBicycleRented, bicycleID); err != nil {
			return err
		}

		return r.docks.Release(ctx, tx, originDockID)
	})
	if err != nil {
		return Rental{}, err
	}
	return rental, nil
}

const lockBicycle = `SELECT status FROM bicicletas WHERE id = $1 FOR UPDATE`

const createRental = `
INSERT INTO alugueis (id, bicicleta_id, tempo_alugado_minutos, preco, data_inicio, data_fim, status, catraca_id_origem, user_id)
VALUES ($1, $2, $3, $4, now(), NULL, 'ativo', $5, $6)
RETURNING *
`

const markBicycleRented = `
UPDATE bicicletas SET status = 'alugada', catraca_id = NULL, turnstile_status = 'undocked' WHERE id = $1
`

// FinishParams identifies the rental to close and where the bicycle comes
// back. CallerID, when set, restricts the operation to the rental's owner.
type FinishParams struct {
	RentalID     uuid.UUID
	ReturnDockID uuid.UUID
	ChargeLevel  int
	CallerID     *uuid.UUID
}

// Finish closes an active rental: the bicycle docks at the return catraca
// and the price is recomputed from the actual elapsed time.
func (r *Repository) Finish(ctx context.Context, p FinishParams) (Rental, error) {
	if !bicycle.ValidChargeLevel(p.ChargeLevel) {
		return Rental{}, ErrInvalidChargeLevel
	}

	var rental Rental
	err := database.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &rental, lockRental, p.RentalID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if rental.Status != StatusActive {
			return ErrNotActive
		}
		if p.CallerID != nil && rental.UserID != *p.CallerID {
			return ErrNotOwner
		}

		var b lockedBicycle
		err = tx.GetContext(ctx, &b, lockBicycle, rental.BicycleID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBicycleNotFound
		}
		if err != nil {
			return err
		}

		if err := r.docks.Attach(ctx, tx, p.ReturnDockID, rental.BicycleID); err != nil {
			return err
		}

		elapsed := int(math.Ceil(time.Since(rental.StartedAt).Minutes()))
		price := ElapsedPrice(elapsed)

		err = tx.GetContext(ctx, &rental, finishRental, p.RentalID, elapsed, price)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, dockBicycle,
			rental.BicycleID, p.ChargeLevel, p.ReturnDockID)
		return err
	})
	if err != nil {
		return Rental{}, err
	}
	return rental, nil
}

const lockRental = `SELECT * FROM alugueis WHERE id = $1 FOR UPDATE`

const finishRental = `
UPDATE alugueis SET data_fim = now(), status = 'finalizado', tempo_alugado_minutos = $2, preco = $3
WHERE id = $1
RETURNING *
`

const dockBicycle = `
UPDATE bicicletas SET status = 'disponível', quilometragem_carga = $2, catraca_id = $3, turnstile_status = 'docked'
WHERE id = $1
`

// GetRentals lists rentals, optionally filtered by status and scoped to a
// single user. Developers pass a nil userID and see everything.
func (r *Repository) GetRentals(ctx context.Context, status *Status, userID *uuid.UUID) ([]Rental, error) {
	query := getRentals
	var args []any

	switch {
	case status != nil && userID != nil:
		query += ` WHERE status = $1 AND user_id = $2`
		args = append(args, *status, *userID)
	case status != nil:
		query += ` WHERE status = $1`
		args = append(args, *status)
	case userID != nil:
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY data_inicio DESC`

	var rentals []Rental
	err := r.db.SelectContext(ctx, &rentals, query, args...)
	return rentals, err
}

const getRentals = `SELECT * FROM alugueis`

func (r *Repository) GetRental(ctx context.Context, id uuid.UUID) (Rental, error) {
	var rental Rental
	err := r.db.GetContext(ctx, &rental, getRental, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, ErrNotFound
	}
	return rental, err
}

const getRental = `SELECT * FROM alugueis WHERE id = $1`
