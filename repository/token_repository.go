// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"oauth2-token-store/common"
	"oauth2-token-store/fingerprint"
	"oauth2-token-store/logger"
	"oauth2-token-store/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for OAuth2 token record operations.
//
// Lookups return (nil, nil) when no valid record matches: unknown, expired and
// revoked tokens are indistinguishable to the caller.
type ITokenRepository interface {
	StoreToken(ctx context.Context, token *model.NewToken) (*model.TokenRecord, error)
	GetByAccessToken(ctx context.Context, rawAccessToken string) (*model.TokenRecord, error)
	GetByRefreshToken(ctx context.Context, rawRefreshToken string) (*model.TokenRecord, error)
	RevokeByAccessToken(ctx context.Context, rawAccessToken string) (bool, error)
	RevokeByRefreshToken(ctx context.Context, rawRefreshToken string) (bool, error)
	RevokeByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Cleanup(ctx context.Context) (int64, error)
	CleanupBatch(ctx context.Context, limit int) (int64, error)
}

// DefaultCleanupBatchSize bounds the rows removed by one cleanup statement.
const DefaultCleanupBatchSize = 1000

const tokenColumns = `id, access_token_hash, refresh_token_hash, client_id, user_id, scopes, issued_at, expires_at, revoked`

const (
	insertTokenQuery = `
		INSERT INTO oauth2_tokens (id, access_token_hash, refresh_token_hash, client_id, user_id, scopes, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, now(), COALESCE($7::timestamptz, now() + make_interval(secs => $8::double precision)), FALSE)
		RETURNING issued_at, expires_at`

	selectValidByAccessQuery = `
		SELECT ` + tokenColumns + `
		FROM oauth2_tokens
		WHERE access_token_hash = $1
		  AND NOT revoked
		  AND (expires_at IS NULL OR expires_at > now())`

	selectValidByRefreshQuery = `
		SELECT ` + tokenColumns + `
		FROM oauth2_tokens
		WHERE refresh_token_hash = $1
		  AND NOT revoked
		  AND (expires_at IS NULL OR expires_at > now())`

	revokeByAccessQuery  = `UPDATE oauth2_tokens SET revoked = TRUE WHERE access_token_hash = $1 AND NOT revoked`
	revokeByRefreshQuery = `UPDATE oauth2_tokens SET revoked = TRUE WHERE refresh_token_hash = $1 AND NOT revoked`
	revokeByUserQuery    = `UPDATE oauth2_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`

	cleanupAllQuery = `
		DELETE FROM oauth2_tokens
		WHERE revoked
		   OR (expires_at IS NOT NULL AND expires_at <= now())`

	// Rows matching the predicate can never stop matching it (revoked is
	// monotonic, expires_at is write-once), so deleting by id is safe.
	cleanupBatchQuery = `
		DELETE FROM oauth2_tokens
		WHERE id IN (
			SELECT id FROM oauth2_tokens
			WHERE revoked
			   OR (expires_at IS NOT NULL AND expires_at <= now())
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)`
)

// TokenRepository implements ITokenRepository on PostgreSQL. It holds no
// mutable state; all coordination is left to the table's unique constraints.
type TokenRepository struct {
	DB        DBTX
	hasher    fingerprint.Fingerprinter
	batchSize int
}

// Option customises a TokenRepository.
type Option func(*TokenRepository)

// WithFingerprinter replaces the default fingerprint engine.
func WithFingerprinter(f fingerprint.Fingerprinter) Option {
	return func(r *TokenRepository) {
		if f != nil {
			r.hasher = f
		}
	}
}

// WithCleanupBatchSize sets how many rows Cleanup removes per statement.
// Zero or less removes everything in a single statement.
func WithCleanupBatchSize(n int) Option {
	return func(r *TokenRepository) {
		r.batchSize = n
	}
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db DBTX, opts ...Option) *TokenRepository {
	r := &TokenRepository{
		DB:        db,
		hasher:    fingerprint.Default,
		batchSize: DefaultCleanupBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func validateNewToken(token *model.NewToken) error {
	if token == nil {
		return common.NewValidationError("", "token is required")
	}
	if err := common.Validate(token); err != nil {
		return err
	}
	if token.ExpiresAt != nil && token.ExpiresIn != 0 {
		return common.NewValidationError("ExpiresIn", "cannot be combined with ExpiresAt")
	}
	if token.ExpiresIn < 0 {
		return common.NewValidationError("ExpiresIn", "must not be negative")
	}
	if token.RefreshToken != "" && token.RefreshToken == token.AccessToken {
		return common.NewValidationError("RefreshToken", "must differ from the access token")
	}
	return nil
}

// StoreToken fingerprints the token pair and inserts a new record.
// A fingerprint that is already stored yields common.ErrDuplicateToken.
func (r *TokenRepository) StoreToken(ctx context.Context, token *model.NewToken) (*model.TokenRecord, error) {
	if err := validateNewToken(token); err != nil {
		return nil, err
	}

	record := &model.TokenRecord{
		ID:                uuid.New(),
		AccessFingerprint: r.hasher.Fingerprint(token.AccessToken),
		ClientID:          token.ClientID,
		UserID:            token.UserID,
		Scopes:            append([]string{}, token.Scopes...),
	}

	var refresh sql.NullString
	if token.RefreshToken != "" {
		fp := r.hasher.Fingerprint(token.RefreshToken)
		record.RefreshFingerprint = &fp
		refresh = sql.NullString{String: fp, Valid: true}
	}

	var user uuid.NullUUID
	if token.UserID != nil {
		user = uuid.NullUUID{UUID: *token.UserID, Valid: true}
	}

	var expiresAt sql.NullTime
	if token.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *token.ExpiresAt, Valid: true}
	}
	var expiresIn sql.NullFloat64
	if token.ExpiresIn > 0 {
		expiresIn = sql.NullFloat64{Float64: token.ExpiresIn.Seconds(), Valid: true}
	}

	log := logger.Log.WithFields(logrus.Fields{
		"token_id":    record.ID,
		"client_id":   record.ClientID,
		"access_fp":   fingerprint.Short(record.AccessFingerprint),
		"has_refresh": record.RefreshFingerprint != nil,
	})
	log.Info("Executing query to store a new token")

	var storedExpiry sql.NullTime
	err := r.DB.QueryRowContext(ctx, insertTokenQuery,
		record.ID, record.AccessFingerprint, refresh, record.ClientID, user,
		pq.Array(record.Scopes), expiresAt, expiresIn,
	).Scan(&record.IssuedAt, &storedExpiry)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("Token fingerprint already stored")
			return nil, fmt.Errorf("store token: %w", common.ErrDuplicateToken)
		}
		log.WithError(err).Error("Failed to execute store token query")
		return nil, common.NewInfrastructureError("store token", err)
	}
	if storedExpiry.Valid {
		t := storedExpiry.Time
		record.ExpiresAt = &t
	}

	return record, nil
}

// GetByAccessToken returns the valid record for a raw access token, or nil.
func (r *TokenRepository) GetByAccessToken(ctx context.Context, rawAccessToken string) (*model.TokenRecord, error) {
	return r.getValid(ctx, "get token by access token", selectValidByAccessQuery, rawAccessToken)
}

// GetByRefreshToken returns the valid record for a raw refresh token, or nil.
func (r *TokenRepository) GetByRefreshToken(ctx context.Context, rawRefreshToken string) (*model.TokenRecord, error) {
	return r.getValid(ctx, "get token by refresh token", selectValidByRefreshQuery, rawRefreshToken)
}

func (r *TokenRepository) getValid(ctx context.Context, op, query, raw string) (*model.TokenRecord, error) {
	fp := r.hasher.Fingerprint(raw)
	log := logger.Log.WithFields(logrus.Fields{
		"op":          op,
		"fingerprint": fingerprint.Short(fp),
	})
	log.Debug("Executing token lookup query")

	record, err := scanToken(r.DB.QueryRowContext(ctx, query, fp))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.WithError(err).Error("Failed to execute token lookup query")
		return nil, common.NewInfrastructureError(op, err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*model.TokenRecord, error) {
	var (
		rec       model.TokenRecord
		refresh   sql.NullString
		user      uuid.NullUUID
		expiresAt sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.AccessFingerprint, &refresh, &rec.ClientID, &user,
		pq.Array(&rec.Scopes), &rec.IssuedAt, &expiresAt, &rec.Revoked)
	if err != nil {
		return nil, err
	}

	if refresh.Valid {
		rec.RefreshFingerprint = &refresh.String
	}
	if user.Valid {
		id := user.UUID
		rec.UserID = &id
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		rec.ExpiresAt = &t
	}
	if rec.Scopes == nil {
		rec.Scopes = []string{}
	}
	return &rec, nil
}

// RevokeByAccessToken marks the grant owning the access token as revoked.
// It reports false when the token is unknown or already revoked.
func (r *TokenRepository) RevokeByAccessToken(ctx context.Context, rawAccessToken string) (bool, error) {
	n, err := r.execRevoke(ctx, "revoke by access token", revokeByAccessQuery, r.hasher.Fingerprint(rawAccessToken))
	return n > 0, err
}

// RevokeByRefreshToken revokes the grant owning the refresh token. The access
// token lives on the same row and is revoked with it.
func (r *TokenRepository) RevokeByRefreshToken(ctx context.Context, rawRefreshToken string) (bool, error) {
	n, err := r.execRevoke(ctx, "revoke by refresh token", revokeByRefreshQuery, r.hasher.Fingerprint(rawRefreshToken))
	return n > 0, err
}

// RevokeByUserID revokes every live grant of a resource owner.
// This is used for logging out from all sessions.
func (r *TokenRepository) RevokeByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.execRevoke(ctx, "revoke by user id", revokeByUserQuery, userID)
}

func (r *TokenRepository) execRevoke(ctx context.Context, op, query string, key any) (int64, error) {
	fields := logrus.Fields{"op": op}
	if fp, ok := key.(string); ok {
		fields["fingerprint"] = fingerprint.Short(fp)
	} else {
		fields["user_id"] = key
	}
	log := logger.Log.WithFields(fields)
	log.Info("Executing query to revoke tokens")

	res, err := r.DB.ExecContext(ctx, query, key)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke query")
		return 0, common.NewInfrastructureError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewInfrastructureError(op, err)
	}
	log.WithField("rows_affected", n).Info("Revoke query finished")
	return n, nil
}

// CleanupBatch deletes at most limit expired or revoked records.
// A limit of zero or less removes all of them in one statement.
func (r *TokenRepository) CleanupBatch(ctx context.Context, limit int) (int64, error) {
	log := logger.Log.WithField("limit", limit)
	log.Debug("Executing cleanup query")

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = r.DB.ExecContext(ctx, cleanupBatchQuery, limit)
	} else {
		res, err = r.DB.ExecContext(ctx, cleanupAllQuery)
	}
	if err != nil {
		log.WithError(err).Error("Failed to execute cleanup query")
		return 0, common.NewInfrastructureError("cleanup", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewInfrastructureError("cleanup", err)
	}
	return n, nil
}

// Cleanup deletes every expired or revoked record in bounded batches and
// returns the number removed. On failure the count removed so far is
// returned together with the error.
func (r *TokenRepository) Cleanup(ctx context.Context) (int64, error) {
	if r.batchSize <= 0 {
		return r.CleanupBatch(ctx, 0)
	}

	var total int64
	for {
		n, err := r.CleanupBatch(ctx, r.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(r.batchSize) {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, common.NewInfrastructureError("cleanup", err)
		}
	}

	logger.Log.WithField("deleted", total).Info("Token cleanup finished")
	return total, nil
}
