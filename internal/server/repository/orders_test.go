package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/repository"
	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
	"github.com/IvanChernomyrdin/suchauftrag/internal/shared/models"
)

func TestOrdersRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrdersRepository(db)
	userID := uuid.New()
	orderID := uuid.New()

	addr := models.Address{PostalCode: "10115", City: "Berlin", Street: "Invalidenstr", HouseNumber: "1"}

	mock.ExpectQuery(`INSERT INTO suchauftraege`).
		WithArgs(userID, `{"plz":"10115","stadt":"Berlin","strasse":"Invalidenstr","hausnummer":"1"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID.String()))

	got, err := repo.Create(context.Background(), userID, addr)
	require.NoError(t, err)
	require.Equal(t, orderID, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersRepository_Create_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrdersRepository(db)

	mock.ExpectQuery(`INSERT INTO suchauftraege`).WillReturnError(sql.ErrConnDone)

	_, err = repo.Create(context.Background(), uuid.New(), models.Address{})
	require.ErrorIs(t, err, serr.ErrStoreUnavailable)
}

func TestOrdersRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrdersRepository(db)
	userID := uuid.New()
	newer, older := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, user_id, adresse, created_at\s+FROM suchauftraege\s+WHERE user_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "adresse", "created_at"}).
			AddRow(newer.String(), userID.String(), []byte(`{"plz":"80331","stadt":"München","strasse":"Marienplatz","hausnummer":"8"}`), now).
			AddRow(older.String(), userID.String(), []byte(`{"plz":"10115","stadt":"Berlin","strasse":"Invalidenstr","hausnummer":"1"}`), now.Add(-time.Hour)))

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	require.Equal(t, newer.String(), orders[0].ID)
	require.Equal(t, userID.String(), orders[0].UserID)
	require.Equal(t, "München", orders[0].Address.City)
	require.Equal(t, "10115", orders[1].Address.PostalCode)
	require.Equal(t, "1", orders[1].Address.HouseNumber)
}

// пустой результат — пустой срез, а не nil
func TestOrdersRepository_ListByUser_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrdersRepository(db)

	mock.ExpectQuery(`SELECT id, user_id, adresse, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "adresse", "created_at"}))

	orders, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
}

func TestOrdersRepository_ListByUser_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewOrdersRepository(db)

	mock.ExpectQuery(`SELECT id, user_id, adresse, created_at`).WillReturnError(sql.ErrConnDone)

	_, err = repo.ListByUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, serr.ErrStoreUnavailable)
}
