package repository

import (
	"testing"
	"time"

	"coupon_market/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)

	return db, mock
}

func TestDebit(t *testing.T) {
	t.Run("Insufficient funds rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		// 条件更新没命中任何行：余额不够，整个事务回滚，不写流水
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits - `).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Debit("u1", 500, "coupon_buy", "", "Bought AMZ coupon")

		assert.ErrorIs(t, err, apperr.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Successful debit writes transaction row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits - `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectQuery(`SELECT "credits" FROM "wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(60))
		mock.ExpectCommit()

		balance, err := repo.Debit("u1", 40, "coupon_buy", "", "Bought AMZ coupon")

		assert.NoError(t, err)
		assert.Equal(t, 60, balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCredit(t *testing.T) {
	t.Run("Existing wallet is credited", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "wallets" WHERE user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "credits"}).
				AddRow("w1", "u1", 100))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits \+ `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectQuery(`SELECT "credits" FROM "wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(125))
		mock.ExpectCommit()

		balance, err := repo.Credit("u1", 25, "referral", "", "Referral reward from user bob")

		assert.NoError(t, err)
		assert.Equal(t, 125, balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing wallet is created first", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "wallets" WHERE user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`INSERT INTO "wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w1"))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits \+ `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectQuery(`SELECT "credits" FROM "wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(5))
		mock.ExpectCommit()

		balance, err := repo.Credit("u1", 5, "ad_reward", "", "Video Ad Reward")

		assert.NoError(t, err)
		assert.Equal(t, 5, balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimScratch(t *testing.T) {
	now := time.Now()
	nextAt := now.Add(7 * 24 * time.Hour)

	t.Run("Window not elapsed rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallets" SET `).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.ClaimScratch("u1", 30, nextAt, now)

		assert.ErrorIs(t, err, apperr.ErrTooSoon)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Eligible claim updates cooldown and writes reward", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallets" SET `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectQuery(`SELECT "credits" FROM "wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(130))
		mock.ExpectCommit()

		balance, err := repo.ClaimScratch("u1", 30, nextAt, now)

		assert.NoError(t, err)
		assert.Equal(t, 130, balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
