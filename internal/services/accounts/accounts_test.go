package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateAccount(ctx context.Context, username string, account models.Account) error {
	args := m.Called(ctx, username, account)
	return args.Error(0)
}

func (m *RepositoryMock) GetAccount(ctx context.Context, localID string) (*models.Account, error) {
	args := m.Called(ctx, localID)
	if account := args.Get(0); account != nil {
		return account.(*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepositoryMock) ListAccounts(ctx context.Context, username string) ([]*models.Account, error) {
	args := m.Called(ctx, username)
	if list := args.Get(0); list != nil {
		return list.([]*models.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepositoryMock) UpdateAccountAuth(ctx context.Context, localID string, auth models.Authentication) error {
	args := m.Called(ctx, localID, auth)
	return args.Error(0)
}

func (m *RepositoryMock) RemoveAccount(ctx context.Context, localID string) (int, error) {
	args := m.Called(ctx, localID)
	return args.Int(0), args.Error(1)
}

type ReloaderMock struct {
	mock.Mock
}

func (m *ReloaderMock) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(models.Authentication), args.Error(1)
}

func TestLink_GeneratesLocalID(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, new(ReloaderMock))

	var created models.Account
	repo.On("CreateAccount", mock.Anything, "user1", mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(2).(models.Account)
		}).Return(nil).Once()

	localID, err := service.Link(context.Background(), "user1", models.Account{
		Service: models.ServicePronote,
		Name:    "Jean",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, localID)
	assert.Equal(t, localID, created.LocalID)
	repo.AssertExpectations(t)
}

func TestLink_KeepsProvidedLocalID(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, new(ReloaderMock))

	repo.On("CreateAccount", mock.Anything, "user1", mock.Anything).Return(nil).Once()

	localID, err := service.Link(context.Background(), "user1", models.Account{
		LocalID: "fixed-id",
		Service: models.ServiceIzly,
		Name:    "Jean",
	})

	assert.NoError(t, err)
	assert.Equal(t, "fixed-id", localID)
}

func TestGet_NotFound(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, new(ReloaderMock))

	repo.On("GetAccount", mock.Anything, "missing").Return(nil, nil).Once()

	_, err := service.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUnlink_NotFound(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, new(ReloaderMock))

	repo.On("RemoveAccount", mock.Anything, "missing").Return(0, nil).Once()

	err := service.Unlink(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRefreshSession_PersistsFreshAuth(t *testing.T) {
	repo := new(RepositoryMock)
	reloader := new(ReloaderMock)
	service := New(repo, reloader)

	account := &models.Account{
		LocalID: "acc-1",
		Service: models.ServiceSkolengo,
		Auth: models.Authentication{
			Token:        "old",
			RefreshToken: "refresh",
		},
	}
	fresh := models.Authentication{
		Token:        "new",
		RefreshToken: "refresh-2",
	}
	repo.On("GetAccount", mock.Anything, "acc-1").Return(account, nil).Once()
	reloader.On("Reload", mock.Anything, *account).Return(fresh, nil).Once()
	repo.On("UpdateAccountAuth", mock.Anything, "acc-1", fresh).Return(nil).Once()

	got, err := service.RefreshSession(context.Background(), "acc-1")

	assert.NoError(t, err)
	assert.Equal(t, fresh, got)
	repo.AssertExpectations(t)
	reloader.AssertExpectations(t)
}

func TestRefreshSession_KeepsOldAuthOnFailure(t *testing.T) {
	repo := new(RepositoryMock)
	reloader := new(ReloaderMock)
	service := New(repo, reloader)

	account := &models.Account{LocalID: "acc-1", Service: models.ServiceSkolengo}
	repo.On("GetAccount", mock.Anything, "acc-1").Return(account, nil).Once()
	reloader.On("Reload", mock.Anything, *account).
		Return(models.Authentication{}, errors.New("upstream down")).Once()

	_, err := service.RefreshSession(context.Background(), "acc-1")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpdateAccountAuth", mock.Anything, mock.Anything, mock.Anything)
}
