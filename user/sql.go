package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// RegisterParams carries the registration payload. Only username and
// password are mandatory; profile fields default to empty.
type RegisterParams struct {
	Username   string
	Password   string
	Name       string
	Email      string
	Phone      string
	Address    string
	ImageURL   string
	Kilometers float64
	Emission   float64
}

// Register creates a user with a bcrypt-hashed password and a freshly
// issued bearer token.
func (r *Repository) Register(ctx context.Context, p RegisterParams) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	var u User
	err = r.db.GetContext(ctx, &u, registerUser,
		uuid.New(), p.Username, string(hash), uuid.NewString(),
		p.Name, p.Email, p.Phone, p.Address, p.ImageURL, p.Kilometers, p.Emission)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	return u, nil
}

const registerUser = `
INSERT INTO usuarios (id, username, password, token, name, email, phone, address, img, kms, emissao)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING *
`

// Authenticate verifies a username/password pair and returns the user,
// including the bearer token the client will present from now on.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByUsername, username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

const getUserByUsername = `SELECT * FROM usuarios WHERE username = $1`

// GetByToken resolves a bearer token to its user. This is the lookup the
// access policy depends on.
func (r *Repository) GetByToken(ctx context.Context, token string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByToken, token)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidToken
	}
	return u, err
}

const getUserByToken = `SELECT * FROM usuarios WHERE token = $1`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, getUserByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

const getUserByID = `SELECT * FROM usuarios WHERE id = $1`
