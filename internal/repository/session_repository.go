package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists refresh-token lineages. A session row never
// stores a raw refresh token, only its digest, and rotation replaces that
// digest atomically.
type SessionRepository interface {
	// Create inserts a session with a placeholder digest. The refresh token
	// embeds the session id, so the row has to exist before the token can be
	// signed; the placeholder is unique and never matches a token digest.
	Create(userID string, expiresAt time.Time) (*domain.Session, error)
	// Finalize installs the real digest once the refresh token is signed.
	Finalize(sessionID, digest string, expiresAt time.Time) error
	FindByID(sessionID string) (*domain.Session, error)
	// Rotate swaps the stored digest only if oldDigest still matches, so two
	// concurrent refreshes of the same session cannot both win.
	Rotate(sessionID, oldDigest, newDigest string, expiresAt time.Time) error
	DeleteByID(sessionID string) error
	DeleteAllForUser(userID string) (int64, error)
	DeleteByUserAndDigest(userID, digest string) (int64, error)
	CleanupExpired() (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(userID string, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		UserID:           userID,
		RefreshTokenHash: "pending-" + uuid.NewString(),
		ExpiresAt:        expiresAt,
	}
	if err := r.db.Create(s).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "create", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "create", "success")
	return s, nil
}

func (r *GormSessionRepository) Finalize(sessionID, digest string, expiresAt time.Time) error {
	res := r.db.Model(&domain.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{"refresh_token_hash": digest, "expires_at": expiresAt})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "finalize", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "session", "finalize", "not_found")
		return ErrSessionNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "finalize", "success")
	return nil
}

func (r *GormSessionRepository) FindByID(sessionID string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Where("id = ?", sessionID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "success")
	return &s, nil
}

func (r *GormSessionRepository) Rotate(sessionID, oldDigest, newDigest string, expiresAt time.Time) error {
	res := r.db.Model(&domain.Session{}).
		Where("id = ? AND refresh_token_hash = ?", sessionID, oldDigest).
		Updates(map[string]any{"refresh_token_hash": newDigest, "expires_at": expiresAt})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "rotate", "error")
		return fmt.Errorf("rotate session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "session", "rotate", "not_found")
		return ErrSessionNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "rotate", "success")
	return nil
}

func (r *GormSessionRepository) DeleteByID(sessionID string) error {
	err := r.db.Where("id = ?", sessionID).Delete(&domain.Session{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_id", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_id", "success")
	return nil
}

func (r *GormSessionRepository) DeleteAllForUser(userID string) (int64, error) {
	res := r.db.Where("user_id = ?", userID).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete_all_for_user", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete_all_for_user", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) DeleteByUserAndDigest(userID, digest string) (int64, error) {
	res := r.db.Where("user_id = ? AND refresh_token_hash = ?", userID, digest).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_user_and_digest", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_user_and_digest", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) CleanupExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "cleanup_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
