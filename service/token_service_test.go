// file: service/token_service_test.go

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"oauth2-token-store/common"
	"oauth2-token-store/metrics"
	"oauth2-token-store/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockTokenRepo is a mock implementation of ITokenRepository.
type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) StoreToken(ctx context.Context, token *model.NewToken) (*model.TokenRecord, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenRecord), args.Error(1)
}

func (m *mockTokenRepo) GetByAccessToken(ctx context.Context, raw string) (*model.TokenRecord, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenRecord), args.Error(1)
}

func (m *mockTokenRepo) GetByRefreshToken(ctx context.Context, raw string) (*model.TokenRecord, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenRecord), args.Error(1)
}

func (m *mockTokenRepo) RevokeByAccessToken(ctx context.Context, raw string) (bool, error) {
	args := m.Called(ctx, raw)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) RevokeByRefreshToken(ctx context.Context, raw string) (bool, error) {
	args := m.Called(ctx, raw)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) RevokeByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) Cleanup(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) CleanupBatch(ctx context.Context, limit int) (int64, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService() (*TokenService, *mockTokenRepo, *metrics.Metrics) {
	repo := new(mockTokenRepo)
	m := metrics.New(nil)
	return NewTokenService(repo, m), repo, m
}

func TestTokenService_StoreToken(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	expected := &model.TokenRecord{ID: uuid.New(), ClientID: "app", Scopes: []string{"read", "write"}}
	repo.On("StoreToken", ctx, mock.MatchedBy(func(tok *model.NewToken) bool {
		return tok.AccessToken == "access" &&
			tok.RefreshToken == "refresh" &&
			tok.ClientID == "app" &&
			tok.UserID != nil && *tok.UserID == userID &&
			tok.ExpiresIn == time.Hour &&
			tok.ExpiresAt == nil
	})).Return(expected, nil).Once()

	record, err := svc.StoreToken(ctx, model.StoreTokenRequest{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ClientID:     "app",
		UserID:       &userID,
		Scopes:       []string{"read", "write"},
		ExpiresIn:    3600,
	})

	require.NoError(t, err)
	assert.Equal(t, expected, record)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokensStored))
	repo.AssertExpectations(t)
}

func TestTokenService_StoreToken_Duplicate(t *testing.T) {
	svc, repo, m := newTestService()

	repo.On("StoreToken", mock.Anything, mock.Anything).Return(nil, common.ErrDuplicateToken).Once()

	_, err := svc.StoreToken(context.Background(), model.StoreTokenRequest{AccessToken: "a", ClientID: "c"})

	assert.ErrorIs(t, err, common.ErrDuplicateToken)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DuplicateTokens))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.TokensStored))
}

func TestTokenService_StoreToken_ExpiresInOutOfRange(t *testing.T) {
	svc, repo, m := newTestService()

	for _, seconds := range []int64{-1, model.MaxExpiresInSeconds + 1, 9300000000, 18446744074} {
		_, err := svc.StoreToken(context.Background(), model.StoreTokenRequest{
			AccessToken: "a",
			ClientID:    "c",
			ExpiresIn:   seconds,
		})

		assert.True(t, common.IsValidation(err), "expires_in=%d", seconds)
	}

	repo.AssertNotCalled(t, "StoreToken", mock.Anything, mock.Anything)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.TokensStored))
}

func TestTokenService_StoreToken_MaxExpiresIn(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.On("StoreToken", mock.Anything, mock.MatchedBy(func(tok *model.NewToken) bool {
		return tok.ExpiresIn == time.Duration(model.MaxExpiresInSeconds)*time.Second
	})).Return(&model.TokenRecord{}, nil).Once()

	_, err := svc.StoreToken(context.Background(), model.StoreTokenRequest{
		AccessToken: "a",
		ClientID:    "c",
		ExpiresIn:   model.MaxExpiresInSeconds,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTokenService_Lookup(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()
	record := &model.TokenRecord{ClientID: "app"}

	t.Run("access by default", func(t *testing.T) {
		repo.On("GetByAccessToken", ctx, "a1").Return(record, nil).Once()

		got, err := svc.Lookup(ctx, "a1", "")
		require.NoError(t, err)
		assert.Equal(t, record, got)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues("access_token", "hit")))
	})

	t.Run("refresh hint", func(t *testing.T) {
		repo.On("GetByRefreshToken", ctx, "r1").Return(nil, nil).Once()

		got, err := svc.Lookup(ctx, "r1", model.TokenTypeRefresh)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues("refresh_token", "miss")))
	})

	t.Run("infrastructure error", func(t *testing.T) {
		infraErr := common.NewInfrastructureError("lookup", errors.New("db down"))
		repo.On("GetByAccessToken", ctx, "a2").Return(nil, infraErr).Once()

		_, err := svc.Lookup(ctx, "a2", model.TokenTypeAccess)
		assert.True(t, common.IsInfrastructure(err))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Lookups.WithLabelValues("access_token", "error")))
	})

	repo.AssertExpectations(t)
}

func TestTokenService_Revoke(t *testing.T) {
	svc, repo, m := newTestService()
	ctx := context.Background()

	repo.On("RevokeByAccessToken", ctx, "a").Return(true, nil).Once()
	repo.On("RevokeByAccessToken", ctx, "a").Return(false, nil).Once()
	repo.On("RevokeByRefreshToken", ctx, "r").Return(true, nil).Once()

	changed, err := svc.Revoke(ctx, "a", "")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Revoke(ctx, "a", model.TokenTypeAccess)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = svc.Revoke(ctx, "r", model.TokenTypeRefresh)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Revocations.WithLabelValues("access_token", "revoked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Revocations.WithLabelValues("access_token", "unchanged")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Revocations.WithLabelValues("refresh_token", "revoked")))
	repo.AssertExpectations(t)
}

func TestTokenService_RevokeUser(t *testing.T) {
	svc, repo, _ := newTestService()
	userID := uuid.New()

	repo.On("RevokeByUserID", mock.Anything, userID).Return(int64(2), nil).Once()

	n, err := svc.RevokeUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	repo.AssertExpectations(t)
}

func TestTokenService_Cleanup(t *testing.T) {
	svc, repo, m := newTestService()

	repo.On("Cleanup", mock.Anything).Return(int64(5), nil).Once()
	repo.On("Cleanup", mock.Anything).Return(int64(2), errors.New("timeout")).Once()

	n, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = svc.Cleanup(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, float64(7), testutil.ToFloat64(m.SweptTokens))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepFailures))
}

func TestNewTokenService_NilMetrics(t *testing.T) {
	repo := new(mockTokenRepo)
	svc := NewTokenService(repo, nil)

	repo.On("Cleanup", mock.Anything).Return(int64(0), nil).Once()
	_, err := svc.Cleanup(context.Background())
	assert.NoError(t, err)
}
