package repository

import (
	"testing"

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

func TestPurchase(t *testing.T) {
	t.Run("Claim pins seller and price from the caller's read", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		mock.ExpectBegin()
		// 认领条件必须同时限定状态、卖家与价格
		mock.ExpectExec(`UPDATE "coupons" SET (.+) WHERE id = (.+) AND status = (.+) AND seller_id = (.+) AND price = `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits - `).
			WithArgs(50, "alice", 50).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits \+ `).
			WithArgs(50, "bob").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))
		mock.ExpectCommit()

		err := repo.Purchase("c1", "alice", "bob", 50, "AMZ")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Changed listing misses the claim and rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		// 读到的快照已过时（券被转手重挂）：条件更新零行命中，钱包零写入
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "coupons" SET (.+) WHERE id = (.+) AND status = (.+) AND seller_id = (.+) AND price = `).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Purchase("c1", "alice", "bob", 50, "AMZ")

		assert.ErrorIs(t, err, apperr.ErrNotAvailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wallet rows lock in ascending user id order", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		// 卖家 "alice" < 买家 "bob"：先给卖家入账再扣买家，与买家先行的场景同序
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "coupons" SET `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits \+ `).
			WithArgs(50, "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits - `).
			WithArgs(50, "bob", 50).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "transactions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))
		mock.ExpectCommit()

		err := repo.Purchase("c1", "bob", "alice", 50, "AMZ")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient funds rolls back the claim", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "coupons" SET `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "wallets" SET "credits"=credits - `).
			WithArgs(500, "alice", 500).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Purchase("c1", "alice", "bob", 500, "AMZ")

		assert.ErrorIs(t, err, apperr.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApproveGuard(t *testing.T) {
	t.Run("Pending coupon is approved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "coupons" SET (.+) WHERE id = (.+) AND status = `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Approve("c1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Non-pending coupon is rejected by the guard", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "coupons" SET (.+) WHERE id = (.+) AND status = `).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		assert.ErrorIs(t, repo.Approve("c1"), apperr.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
