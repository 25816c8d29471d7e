package service

import (
	"testing"

	"coupon_market/internal/domain/user/model"
	walletModel "coupon_market/internal/domain/wallet/model"
	"coupon_market/internal/pkg/config"
	"coupon_market/pkg/apperr"
	baseModel "coupon_market/pkg/model"
	"coupon_market/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByReferralCode(code string) (*model.User, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerService is a mock of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) GetWallet(userID string) (*walletModel.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*walletModel.Wallet), args.Error(1)
}

func (m *MockLedgerService) CreateWallet(userID string, startingCredits int) error {
	args := m.Called(userID, startingCredits)
	return args.Error(0)
}

func (m *MockLedgerService) Credit(userID string, amount int, kind walletModel.TxKind, method, desc string) (int, error) {
	args := m.Called(userID, amount, kind, method, desc)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) Debit(userID string, amount int, kind walletModel.TxKind, method, desc string) (int, error) {
	args := m.Called(userID, amount, kind, method, desc)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) BuyCredits(userID string, amountPaid float64, method string) (int, int, error) {
	args := m.Called(userID, amountPaid, method)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockLedgerService) GetHistory(userID string, p *utils.Pagination) (*utils.PageResult, error) {
	args := m.Called(userID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*utils.PageResult), args.Error(1)
}

func setupTestConfig(t *testing.T) {
	t.Helper()
	config.GlobalConfig.JWT.Secret = "test-secret-key-for-unit-tests-only!!"
	config.GlobalConfig.JWT.Expire = 24
	config.GlobalConfig.Ledger.StartingCredits = 100
}

func TestLoginOrRegister(t *testing.T) {
	t.Run("New user is registered with a funded wallet", func(t *testing.T) {
		setupTestConfig(t)
		repo := new(MockUserRepository)
		ledger := new(MockLedgerService)
		svc := NewUserService(repo, ledger)

		repo.On("GetByUsername", "bob").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Create", mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				args.Get(0).(*model.User).ID = "u-new"
			}).Return(nil)
		ledger.On("CreateWallet", "u-new", 100).Return(nil)

		token, user, err := svc.LoginOrRegister("bob")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "bob", user.Username)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.Len(t, user.ReferralCode, 8)
		ledger.AssertExpectations(t)
	})

	t.Run("Existing user just gets a token", func(t *testing.T) {
		setupTestConfig(t)
		repo := new(MockUserRepository)
		ledger := new(MockLedgerService)
		svc := NewUserService(repo, ledger)

		existing := &model.User{
			BaseModel:    baseModel.BaseModel{ID: "u1"},
			Username:     "alice",
			Role:         model.RoleUser,
			ReferralCode: "ALICE123",
		}
		repo.On("GetByUsername", "alice").Return(existing, nil)

		token, user, err := svc.LoginOrRegister("alice")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "u1", user.ID)
		repo.AssertNotCalled(t, "Create")
		ledger.AssertNotCalled(t, "CreateWallet")
	})

	t.Run("Token carries user identity", func(t *testing.T) {
		setupTestConfig(t)
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockLedgerService))

		existing := &model.User{
			BaseModel: baseModel.BaseModel{ID: "u1"},
			Username:  "alice",
			Role:      model.RoleAdmin,
		}
		repo.On("GetByUsername", "alice").Return(existing, nil)

		token, _, err := svc.LoginOrRegister("alice")
		assert.NoError(t, err)

		claims, err := utils.ParseToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, model.RoleAdmin, claims.Role)
	})

	t.Run("Blank username rejected", func(t *testing.T) {
		setupTestConfig(t)
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockLedgerService))

		_, _, err := svc.LoginOrRegister("   ")

		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "GetByUsername")
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Known user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockLedgerService))

		repo.On("GetByID", "u1").Return(&model.User{
			BaseModel: baseModel.BaseModel{ID: "u1"},
			Username:  "alice",
		}, nil)

		user, err := svc.GetUser("u1")

		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("Unknown user maps to not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, new(MockLedgerService))

		repo.On("GetByID", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetUser("ghost")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
