package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/domain"
)

func TestResellerRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO resellers`).
					WithArgs("Acme", "sales@acme.test", "", "", "AB12CD34", "FREE", true, now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("res-1"))
			},
		},
		{
			name: "referral code taken",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO resellers`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "resellers_referral_code_key"})
			},
			errIs: domain.ErrDuplicateCode,
		},
		{
			name: "email taken",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO resellers`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "resellers_email_key"})
			},
			errIs: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			r := &domain.Reseller{
				Name: "Acme", Email: "sales@acme.test", ReferralCode: "AB12CD34",
				Type: domain.ResellerFree, IsActive: true, CreatedAt: now, UpdatedAt: now,
			}
			err = NewResellerRepository(db).Create(ctx, r)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "res-1", r.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResellerRepository_GetByReferralCode(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM resellers r WHERE r.referral_code = \$1`).
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "company", "phone", "referral_code", "type", "is_active", "user_count", "created_at", "updated_at"}).
			AddRow("res-1", "Acme", "sales@acme.test", "Acme Ltd", "", "AB12CD34", "PREMIUM", true, 7, now, now))

	r, err := NewResellerRepository(db).GetByReferralCode(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, domain.ResellerPremium, r.Type)
	assert.Equal(t, 7, r.UserCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResellerRepository_ReferralCodeExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewResellerRepository(db).ReferralCodeExists(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
