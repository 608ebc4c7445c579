package services

import (
	"context"
	"errors"
	"fmt"

	"couple-backend/internal/docstore"
	"couple-backend/internal/models"
	"couple-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const maxUnlinkAttempts = 5

// UnlinkOutcome describes what happened to a couple when a member left
type UnlinkOutcome string

const (
	// UnlinkDisconnected means the partner is still around and the couple was kept
	UnlinkDisconnected UnlinkOutcome = "disconnected"
	// UnlinkTornDown means the couple and its shared data are gone
	UnlinkTornDown UnlinkOutcome = "torn_down"
)

// CoupleUnlinker detaches a departing user from their couple
type CoupleUnlinker struct {
	couples *repository.CoupleRepository
	users   *repository.UserRepository
	chats   *repository.ChatRepository
	deleter *BatchDeleter
}

// NewCoupleUnlinker creates a new couple unlinker
func NewCoupleUnlinker(
	couples *repository.CoupleRepository,
	users *repository.UserRepository,
	chats *repository.ChatRepository,
	deleter *BatchDeleter,
) *CoupleUnlinker {
	return &CoupleUnlinker{
		couples: couples,
		users:   users,
		chats:   chats,
		deleter: deleter,
	}
}

// Unlink flags userID as disconnected while the partner still exists, and tears
// the couple down once the partner is gone too. Each state change is applied with
// a version check; on conflict the couple is reloaded and the decision is redone.
func (u *CoupleUnlinker) Unlink(ctx context.Context, couple *models.Couple, userID string) (UnlinkOutcome, error) {
	for attempt := 1; attempt <= maxUnlinkAttempts; attempt++ {
		if attempt > 1 {
			fresh, err := u.couples.GetByID(ctx, couple.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return UnlinkTornDown, nil
			}
			if err != nil {
				return "", err
			}
			couple = fresh
		}

		outcome, err := u.transition(ctx, couple, userID)
		if errors.Is(err, docstore.ErrConflict) {
			log.Debug().
				Str("couple_id", couple.ID).
				Int("attempt", attempt).
				Msg("Couple changed concurrently, retrying")
			continue
		}
		return outcome, err
	}
	return "", fmt.Errorf("failed to unlink couple %s after %d attempts: %w", couple.ID, maxUnlinkAttempts, docstore.ErrConflict)
}

func (u *CoupleUnlinker) transition(ctx context.Context, couple *models.Couple, userID string) (UnlinkOutcome, error) {
	partnerID := couple.PartnerOf(userID)

	if couple.Teardown {
		return UnlinkTornDown, u.teardown(ctx, couple, userID, partnerID)
	}

	gone, err := u.partnerGone(ctx, couple, partnerID)
	if err != nil {
		return "", err
	}

	if !gone {
		if err := u.couples.AddDisconnected(ctx, couple, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return UnlinkTornDown, nil
			}
			return "", err
		}
		log.Info().
			Str("couple_id", couple.ID).
			Str("user_id", userID).
			Msg("User marked as disconnected")
		return UnlinkDisconnected, nil
	}

	if err := u.couples.MarkTeardown(ctx, couple); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UnlinkTornDown, nil
		}
		return "", err
	}
	return UnlinkTornDown, u.teardown(ctx, couple, userID, partnerID)
}

// partnerGone treats a partner that already left the couple the same as a
// deleted one, so the second of two departing users always tears down.
func (u *CoupleUnlinker) partnerGone(ctx context.Context, couple *models.Couple, partnerID string) (bool, error) {
	if partnerID == "" || couple.IsDisconnected(partnerID) {
		return true, nil
	}
	exists, err := u.users.Exists(ctx, partnerID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (u *CoupleUnlinker) teardown(ctx context.Context, couple *models.Couple, userID, partnerID string) error {
	chatID := models.ChatID(userID, partnerID)

	collections := []string{
		repository.ChatSubCollection(chatID, models.MessagesCollection),
		repository.ChatSubCollection(chatID, models.TypingStatusCollection),
	}
	for _, collection := range collections {
		if err := u.deleter.DeleteCollection(ctx, collection, DefaultBatchSize); err != nil {
			return err
		}
	}
	if err := u.chats.Delete(ctx, chatID); err != nil {
		return err
	}

	collections = []string{
		repository.CoupleSubCollection(couple.ID, models.MemoriesCollection),
		repository.CoupleSubCollection(couple.ID, models.SharedJournalsCollection),
	}
	for _, collection := range collections {
		if err := u.deleter.DeleteCollection(ctx, collection, DefaultBatchSize); err != nil {
			return err
		}
	}
	if err := u.couples.Delete(ctx, couple.ID); err != nil {
		return err
	}

	log.Info().
		Str("couple_id", couple.ID).
		Str("chat_id", chatID).
		Msg("Couple torn down")
	return nil
}
