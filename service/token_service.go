// file: service/token_service.go

package service

import (
	"context"
	"errors"
	"fmt"
	"oauth2-token-store/common"
	"oauth2-token-store/logger"
	"oauth2-token-store/metrics"
	"oauth2-token-store/model"
	"oauth2-token-store/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenService exposes the token store to the HTTP layer. It keeps no state
// of its own, so any instance can serve any request.
type TokenService struct {
	repo    repository.ITokenRepository
	metrics *metrics.Metrics
}

// NewTokenService creates a new TokenService. A nil m disables metrics.
func NewTokenService(repo repository.ITokenRepository, m *metrics.Metrics) *TokenService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &TokenService{repo: repo, metrics: m}
}

// StoreToken persists a newly issued token pair.
func (s *TokenService) StoreToken(ctx context.Context, req model.StoreTokenRequest) (*model.TokenRecord, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"client_id":   req.ClientID,
		"scopes":      req.Scopes,
		"has_refresh": req.RefreshToken != "",
	})

	if req.ExpiresIn < 0 || req.ExpiresIn > model.MaxExpiresInSeconds {
		return nil, common.NewValidationError("ExpiresIn", fmt.Sprintf("must be between 0 and %d seconds", model.MaxExpiresInSeconds))
	}

	record, err := s.repo.StoreToken(ctx, &model.NewToken{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ClientID:     req.ClientID,
		UserID:       req.UserID,
		Scopes:       req.Scopes,
		ExpiresIn:    time.Duration(req.ExpiresIn) * time.Second,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateToken) {
			s.metrics.DuplicateTokens.Inc()
		}
		log.WithError(err).Warn("Token was not stored")
		return nil, err
	}

	s.metrics.TokensStored.Inc()
	log.WithField("token_id", record.ID).Info("Token stored")
	return record, nil
}

// Lookup returns the valid record for a raw token, or nil when the token is
// unknown, expired or revoked. An empty hint means access_token.
func (s *TokenService) Lookup(ctx context.Context, token string, hint model.TokenType) (*model.TokenRecord, error) {
	hint = normalizeHint(hint)

	var (
		record *model.TokenRecord
		err    error
	)
	if hint == model.TokenTypeRefresh {
		record, err = s.repo.GetByRefreshToken(ctx, token)
	} else {
		record, err = s.repo.GetByAccessToken(ctx, token)
	}

	switch {
	case err != nil:
		s.metrics.Lookups.WithLabelValues(string(hint), "error").Inc()
		return nil, err
	case record == nil:
		s.metrics.Lookups.WithLabelValues(string(hint), "miss").Inc()
	default:
		s.metrics.Lookups.WithLabelValues(string(hint), "hit").Inc()
	}
	return record, nil
}

// Revoke revokes the grant owning token and reports whether anything changed.
// Revoking an unknown or already revoked token is not an error.
func (s *TokenService) Revoke(ctx context.Context, token string, hint model.TokenType) (bool, error) {
	hint = normalizeHint(hint)

	var (
		changed bool
		err     error
	)
	if hint == model.TokenTypeRefresh {
		changed, err = s.repo.RevokeByRefreshToken(ctx, token)
	} else {
		changed, err = s.repo.RevokeByAccessToken(ctx, token)
	}

	switch {
	case err != nil:
		s.metrics.Revocations.WithLabelValues(string(hint), "error").Inc()
		return false, err
	case changed:
		s.metrics.Revocations.WithLabelValues(string(hint), "revoked").Inc()
	default:
		s.metrics.Revocations.WithLabelValues(string(hint), "unchanged").Inc()
	}

	logger.Log.WithFields(logrus.Fields{
		"token_type": hint,
		"changed":    changed,
	}).Info("Token revocation processed")
	return changed, nil
}

// RevokeUser revokes every live grant held by userID.
func (s *TokenService) RevokeUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.RevokeByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "revoked": n}).Info("User tokens revoked")
	return n, nil
}

// Cleanup deletes expired and revoked records.
func (s *TokenService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.repo.Cleanup(ctx)
	s.metrics.SweptTokens.Add(float64(n))
	if err != nil {
		s.metrics.SweepFailures.Inc()
		return n, err
	}
	return n, nil
}

func normalizeHint(hint model.TokenType) model.TokenType {
	if hint == model.TokenTypeRefresh {
		return model.TokenTypeRefresh
	}
	return model.TokenTypeAccess
}
