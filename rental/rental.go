// Package rental implements the rental lifecycle: a rental is created
// active at pickup and mutated exactly once, at finalization.
package rental

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "ativo"
	StatusFinished Status = "finalizado"
)

type Rental struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	BicycleID       uuid.UUID  `db:"bicicleta_id" json:"bicicleta_id"`
	DurationMinutes int        `db:"tempo_alugado_minutos" json:"tempo_alugado_minutos"`
	Price           int        `db:"preco" json:"preco"`
	StartedAt       time.Time  `db:"data_inicio" json:"data_inicio"`
	EndedAt         *time.Time `db:"data_fim" json:"data_fim"`
	Status          Status     `db:"status" json:"status"`
	// OriginDockID is the catraca the bicycle was picked up from.
	OriginDockID uuid.UUID `db:"catraca_id_origem" json:"catraca_id_origem"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
}
