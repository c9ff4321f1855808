package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"driftchat/internal/domain/moderation"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlockService owns block relationships and user reports.
type BlockService struct {
	store     *repository.Store
	directory Directory
}

func NewBlockService(store *repository.Store, directory Directory) *BlockService {
	return &BlockService{store: store, directory: directory}
}

type BlockedUser struct {
	Block   moderation.Block
	Blocked user.Profile
}

// Block records that blockerID blocks blockedID and tears down everything the
// two share: their session with its log, their inbox entries about each other
// and their active-chat references.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID, reason string) (moderation.Block, error) {
	if blockerID == blockedID {
		return moderation.Block{}, fmt.Errorf("%w: cannot block yourself", driftchat_errors.ErrValidation)
	}
	ok, err := s.directory.Exists(ctx, blockedID)
	if err != nil {
		return moderation.Block{}, err
	}
	if !ok {
		return moderation.Block{}, fmt.Errorf("%w: user %s", driftchat_errors.ErrNotFound, blockedID)
	}

	b := moderation.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    strings.TrimSpace(reason),
		CreatedAt: time.Now().UTC(),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Blocks.Create(ctx, &b); err != nil {
			if errors.Is(err, driftchat_errors.ErrConflict) {
				return fmt.Errorf("%w: user already blocked", driftchat_errors.ErrConflict)
			}
			return err
		}

		sess, err := tx.Sessions.GetByPair(ctx, blockerID, blockedID)
		switch {
		case err == nil:
			if err := deleteSessionTx(ctx, tx, sess); err != nil {
				return err
			}
		case !errors.Is(err, driftchat_errors.ErrNotFound):
			return err
		}

		if err := tx.Activity.RemoveBetween(ctx, blockerID, blockedID); err != nil {
			return err
		}
		if err := tx.Users.RemoveActiveChat(ctx, blockerID, blockedID); err != nil {
			return err
		}
		return tx.Users.RemoveActiveChat(ctx, blockedID, blockerID)
	})
	if err != nil {
		return moderation.Block{}, err
	}
	return b, nil
}

// Unblock removes the edge. Deleted sessions are not restored.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if err := s.store.Blocks.Delete(ctx, blockerID, blockedID); err != nil {
		if errors.Is(err, driftchat_errors.ErrNotFound) {
			return fmt.Errorf("%w: user is not blocked", driftchat_errors.ErrNotFound)
		}
		return err
	}
	return nil
}

// List returns the users blockerID blocks, newest first.
func (s *BlockService) List(ctx context.Context, blockerID uuid.UUID) ([]BlockedUser, error) {
	blocks, err := s.store.Blocks.GetBlocksByBlocker(ctx, blockerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.BlockedID)
	}
	profiles, err := profilesInOrder(ctx, s.directory, ids)
	if err != nil {
		return nil, err
	}
	out := make([]BlockedUser, 0, len(blocks))
	for i, b := range blocks {
		out = append(out, BlockedUser{Block: b, Blocked: profiles[i]})
	}
	return out, nil
}

// IsBlocked is direction agnostic.
func (s *BlockService) IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.store.Blocks.IsBlocked(ctx, a, b)
}

func (s *BlockService) Report(ctx context.Context, reporterID, reportedID uuid.UUID, reason string) (moderation.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return moderation.Report{}, fmt.Errorf("%w: report reason is required", driftchat_errors.ErrValidation)
	}
	if reporterID == reportedID {
		return moderation.Report{}, fmt.Errorf("%w: cannot report yourself", driftchat_errors.ErrValidation)
	}
	ok, err := s.directory.Exists(ctx, reportedID)
	if err != nil {
		return moderation.Report{}, err
	}
	if !ok {
		return moderation.Report{}, fmt.Errorf("%w: user %s", driftchat_errors.ErrNotFound, reportedID)
	}

	r := moderation.Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Blocks.CreateReport(ctx, &r); err != nil {
		return moderation.Report{}, err
	}
	zap.L().Info("user reported",
		zap.String("reporter_id", reporterID.String()),
		zap.String("reported_id", reportedID.String()))
	return r, nil
}
