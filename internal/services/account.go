package services

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/identity"
	"couple-backend/internal/models"
	"couple-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	msgAuthUserDeleted = "Auth user deleted."
	msgAccountDeleted  = "Account deleted successfully."
)

// Result is returned by a successful account deletion
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Warnings lists best-effort steps that failed and were skipped.
	Warnings []string `json:"-"`
}

// AccountService removes a user and everything they own
type AccountService struct {
	users      *repository.UserRepository
	couples    *repository.CoupleRepository
	codes      *repository.CoupleCodeRepository
	identities identity.Registry
	unlinker   *CoupleUnlinker
	cleaner    *MediaCleaner
	deleter    *BatchDeleter
}

// NewAccountService creates a new account service
func NewAccountService(
	users *repository.UserRepository,
	couples *repository.CoupleRepository,
	codes *repository.CoupleCodeRepository,
	identities identity.Registry,
	unlinker *CoupleUnlinker,
	cleaner *MediaCleaner,
	deleter *BatchDeleter,
) *AccountService {
	return &AccountService{
		users:      users,
		couples:    couples,
		codes:      codes,
		identities: identities,
		unlinker:   unlinker,
		cleaner:    cleaner,
		deleter:    deleter,
	}
}

// DeleteAccount deletes the account of uid. Every step is idempotent, so a
// failed call can simply be repeated. Failures surface as ErrAccountDeletionFailed.
func (s *AccountService) DeleteAccount(ctx context.Context, uid string) (*Result, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}

	result, err := s.deleteAccount(ctx, uid)
	if err != nil {
		log.Error().Err(err).Str("user_id", uid).Msg("Account deletion failed")
		return nil, ErrAccountDeletionFailed
	}
	return result, nil
}

func (s *AccountService) deleteAccount(ctx context.Context, uid string) (*Result, error) {
	user, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.identities.Delete(ctx, uid); err != nil {
			return nil, err
		}
		log.Info().Str("user_id", uid).Msg("Deleted orphaned auth user")
		return &Result{Success: true, Message: msgAuthUserDeleted}, nil
	}
	if err != nil {
		return nil, err
	}

	var warnings []string
	warn := func(step string, err error) {
		log.Warn().Err(err).Str("user_id", uid).Str("step", step).Msg("Best-effort step failed")
		warnings = append(warnings, fmt.Sprintf("%s: %v", step, err))
	}

	if user.CoupleID != "" {
		if err := s.leaveCouple(ctx, user); err != nil {
			return nil, err
		}
	}

	if user.ProfileImageURL != "" {
		if _, err := s.cleaner.DeleteByProfileURL(ctx, user.ProfileImageURL); err != nil {
			warn("profile_image", err)
		}
	}

	if user.CoupleCode != "" {
		if err := s.releaseCode(ctx, user.CoupleCode, uid); err != nil {
			warn("couple_code", err)
		}
		if err := s.codes.DeleteMember(ctx, user.CoupleCode, uid); err != nil {
			return nil, err
		}
	}

	for _, name := range []string{models.PersonalJournalsCollection, models.CheckInsCollection} {
		if err := s.deleter.DeleteCollection(ctx, repository.SubCollection(uid, name), DefaultBatchSize); err != nil {
			return nil, err
		}
	}

	if err := s.users.Delete(ctx, uid); err != nil {
		return nil, err
	}
	if err := s.identities.Delete(ctx, uid); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", uid).
		Int("warnings", len(warnings)).
		Msg("Account deleted")

	return &Result{Success: true, Message: msgAccountDeleted, Warnings: warnings}, nil
}

func (s *AccountService) leaveCouple(ctx context.Context, user *models.User) error {
	couple, err := s.couples.GetByID(ctx, user.CoupleID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug().Str("couple_id", user.CoupleID).Msg("Couple already gone")
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.unlinker.Unlink(ctx, couple, user.ID); err != nil {
		return fmt.Errorf("failed to unlink couple: %w", err)
	}
	return nil
}

// releaseCode deletes the registry entry for code, but only while uid still owns it
func (s *AccountService) releaseCode(ctx context.Context, code, uid string) error {
	entry, err := s.codes.Get(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if entry.UserID != uid {
		log.Info().
			Str("code", code).
			Str("user_id", uid).
			Msg("Couple code belongs to another user, skipping delete")
		return nil
	}

	if err := s.codes.Delete(ctx, code); err != nil {
		return err
	}
	log.Info().Str("code", code).Str("user_id", uid).Msg("Couple code released")
	return nil
}
