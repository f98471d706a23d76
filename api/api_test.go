package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poabike/rental-backend/bicycle"
	"github.com/poabike/rental-backend/dock"
	"github.com/poabike/rental-backend/internal/auth"
	"github.com/poabike/rental-backend/internal/o11y"
	"github.com/poabike/rental-backend/rental"
	"github.com/poabike/rental-backend/user"
)

const (
	devKey    = "dev-key"
	clientKey = "client-key"
)

var (
	userColumns = []string{
		"id", "username", "password", "token", "name", "email", "phone", "address", "img", "kms", "emissao",
	}
	rentalColumns = []string{
		"id", "bicicleta_id", "tempo_alugado_minutos", "preco", "data_inicio", "data_fim",
		"status", "catraca_id_origem", "user_id",
	}
)

func newTestAPI(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	coord := dock.NewCoordinator()

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.NewRegistry(),
	}

	a := New(obs, Config{
		DeveloperAPIKey: devKey,
		ClientAPIKey:    clientKey,
		MetricsUsername: "metrics",
		MetricsPassword: "metrics",
	},
		bicycle.NewRepository(db, coord),
		dock.NewRepository(db, coord),
		rental.NewRepository(db, coord),
		user.NewRepository(db),
		auth.NewPolicy(user.NewRepository(db)),
	)

	return a.Router(), mock
}

func do(r *gin.Engine, method, path, apiKey, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func expectTokenLookup(mock sqlmock.Sqlmock, token string, userID uuid.UUID) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM usuarios WHERE token = $1`)).
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "maria", "hash", token, "", "", "", "", "", 0, 0))
}

func TestHealth(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListStations(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/baias", devKey, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Estação do Gasômetro")
	assert.Contains(t, w.Body.String(), "Estação Centro Histórico")
}

func TestStartRentalRequiresClientRole(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodPost, "/alugueis", devKey, "", `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "only clients can start rentals")
}

func TestStartRentalRequiresToken(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodPost, "/alugueis", clientKey, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartRental(t *testing.T) {
	r, mock := newTestAPI(t)

	userID := uuid.New()
	bikeID := uuid.New()
	dockID := uuid.New()
	rentalID := uuid.New()

	expectTokenLookup(mock, "tok", userID)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM bicicletas WHERE id = $1 FOR UPDATE`)).
		WithArgs(bikeID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("disponível"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, bicicleta_id_acoplada FROM catracas WHERE id = $1 FOR UPDATE`)).
		WithArgs(dockID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "bicicleta_id_acoplada"}).
			AddRow("ocupada", bikeID.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO alugueis`)).
		WithArgs(sqlmock.AnyArg(), bikeID, 30, 15, dockID, userID).
		WillReturnRows(sqlmock.NewRows(rentalColumns).
			AddRow(rentalID.String(), bikeID.String(), 30, 15, time.Now(), nil, "ativo", dockID.String(), userID.String()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bicicletas SET status = 'alugada'`)).
		WithArgs(bikeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catracas SET status = 'livre'`)).
		WithArgs(dockID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := fmt.Sprintf(`{"bicicleta_id": %q, "tempo_alugado_minutos": 30, "catraca_id_origem": %q}`,
		bikeID, dockID)
	w := do(r, http.MethodPost, "/alugueis", clientKey, "tok", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), rentalID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartRentalBicycleUnavailable(t *testing.T) {
	r, mock := newTestAPI(t)

	userID := uuid.New()
	bikeID := uuid.New()
	dockID := uuid.New()

	expectTokenLookup(mock, "tok", userID)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM bicicletas WHERE id = $1 FOR UPDATE`)).
		WithArgs(bikeID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("alugada"))
	mock.ExpectRollback()

	body := fmt.Sprintf(`{"bicicleta_id": %q, "tempo_alugado_minutos": 30, "catraca_id_origem": %q}`,
		bikeID, dockID)
	w := do(r, http.MethodPost, "/alugueis", clientKey, "tok", body)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRentalsScopesClients(t *testing.T) {
	r, mock := newTestAPI(t)

	userID := uuid.New()
	expectTokenLookup(mock, "tok", userID)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM alugueis WHERE user_id = $1 ORDER BY data_inicio DESC`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(rentalColumns))

	w := do(r, http.MethodGet, "/alugueis", clientKey, "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRentalsInvalidStatusFilter(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/alugueis?status=pendente", devKey, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRentalOtherUser(t *testing.T) {
	r, mock := newTestAPI(t)

	rentalID := uuid.New()
	owner := uuid.New()
	caller := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM alugueis WHERE id = $1`)).
		WithArgs(rentalID).
		WillReturnRows(sqlmock.NewRows(rentalColumns).
			AddRow(rentalID.String(), uuid.NewString(), 30, 15, time.Now(), nil, "ativo", uuid.NewString(), owner.String()))

	expectTokenLookup(mock, "tok", caller)

	w := do(r, http.MethodGet, "/alugueis/"+rentalID.String(), clientKey, "tok", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBicycleRequiresDeveloper(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodPost, "/bicicletas", clientKey, "", `{"quilometragem_carga": 15}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsRequiresBasicAuth(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(r, http.MethodGet, "/metrics", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
