package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitRepository_Create(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := newProfitRepository(sqlxDB)

	entry := &domain.ProfitEntry{ID: uuid.New(), UserID: uuid.New(), Date: time.Now(), Amount: decimal.NewFromInt(1000)}
	incentives := []domain.ReferralIncentive{
		{ID: uuid.New(), ProfitEntryID: entry.ID, OwnerID: uuid.New(), ReferredUserID: entry.UserID, Stage: domain.StageDirect},
		{ID: uuid.New(), ProfitEntryID: entry.ID, OwnerID: uuid.New(), ReferredUserID: entry.UserID, Stage: domain.StageSecond},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO profit_entry").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO referral_incentive").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO referral_incentive").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), entry, incentives))
}

func TestProfitRepository_CreateRollsBack(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := newProfitRepository(sqlxDB)

	entry := &domain.ProfitEntry{ID: uuid.New(), UserID: uuid.New(), Date: time.Now(), Amount: decimal.NewFromInt(1000)}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO profit_entry").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO referral_incentive").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), entry, []domain.ReferralIncentive{{ID: uuid.New()}})
	assert.ErrorContains(t, err, "deadlock")
}
