package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type SessionService struct {
	store     *repository.Store
	directory Directory
	notifier  Notifier
	creates   singleflight.Group
}

func NewSessionService(store *repository.Store, directory Directory, notifier Notifier) *SessionService {
	return &SessionService{
		store:     store,
		directory: directory,
		notifier:  notifierOrNop(notifier),
	}
}

// SessionSummary is a session as listed for one of its participants.
type SessionSummary struct {
	Session conversation.ChatSession
	Peer    user.Profile
}

// GetOrCreate returns the session between selfID and otherID, creating it on
// first contact. Concurrent calls for the same pair converge on one session:
// in-process callers share one lookup, and a caller that loses the insert race
// on the pair index re-reads the winner.
func (s *SessionService) GetOrCreate(ctx context.Context, selfID, otherID uuid.UUID) (conversation.ChatSession, error) {
	if selfID == otherID {
		return conversation.ChatSession{}, fmt.Errorf("%w: cannot open a session with yourself", driftchat_errors.ErrValidation)
	}
	ok, err := s.directory.Exists(ctx, otherID)
	if err != nil {
		return conversation.ChatSession{}, err
	}
	if !ok {
		return conversation.ChatSession{}, fmt.Errorf("%w: user %s", driftchat_errors.ErrNotFound, otherID)
	}
	blocked, err := s.store.Blocks.IsBlocked(ctx, selfID, otherID)
	if err != nil {
		return conversation.ChatSession{}, err
	}
	if blocked {
		return conversation.ChatSession{}, fmt.Errorf("%w: user is blocked", driftchat_errors.ErrForbidden)
	}

	// The shared lookup outlives any single caller; each caller only stops
	// waiting on its own cancellation.
	flight := s.creates.DoChan(conversation.PairKey(selfID, otherID), func() (interface{}, error) {
		return s.getOrCreate(context.WithoutCancel(ctx), selfID, otherID)
	})
	select {
	case <-ctx.Done():
		return conversation.ChatSession{}, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return conversation.ChatSession{}, res.Err
		}
		return res.Val.(conversation.ChatSession), nil
	}
}

func (s *SessionService) getOrCreate(ctx context.Context, a, b uuid.UUID) (conversation.ChatSession, error) {
	existing, err := s.store.Sessions.GetByPair(ctx, a, b)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, driftchat_errors.ErrNotFound) {
		return conversation.ChatSession{}, err
	}

	sess := conversation.NewChatSession(a, b)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Sessions.Create(ctx, &sess); err != nil {
			return err
		}
		if err := tx.Users.AddActiveChat(ctx, a, b); err != nil {
			return err
		}
		return tx.Users.AddActiveChat(ctx, b, a)
	})
	if errors.Is(err, driftchat_errors.ErrConflict) {
		return s.store.Sessions.GetByPair(ctx, a, b)
	}
	if err != nil {
		return conversation.ChatSession{}, err
	}
	return sess, nil
}

// List returns userID's sessions, most recently active first.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID) ([]SessionSummary, error) {
	sessions, err := s.store.Sessions.GetUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	peerIDs := make([]uuid.UUID, 0, len(sessions))
	for _, sess := range sessions {
		peerIDs = append(peerIDs, sess.OtherParticipant(userID))
	}
	peers, err := profilesInOrder(ctx, s.directory, peerIDs)
	if err != nil {
		return nil, err
	}
	out := make([]SessionSummary, 0, len(sessions))
	for i, sess := range sessions {
		out = append(out, SessionSummary{Session: sess, Peer: peers[i]})
	}
	return out, nil
}

// Get returns a session the caller participates in.
func (s *SessionService) Get(ctx context.Context, sessionID, userID uuid.UUID) (conversation.ChatSession, error) {
	sess, err := s.store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return conversation.ChatSession{}, err
	}
	if !sess.HasParticipant(userID) {
		return conversation.ChatSession{}, fmt.Errorf("%w: not a participant of this session", driftchat_errors.ErrForbidden)
	}
	return sess, nil
}

// Messages returns the session log in append order. limit <= 0 returns the
// whole log.
func (s *SessionService) Messages(ctx context.Context, sessionID, userID uuid.UUID, beforeSeq int64, limit int) ([]conversation.Message, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.store.Messages.GetConversationMessages(ctx, sessionID, beforeSeq, limit)
}

// SendMessage appends a message and refreshes both participants' recent
// activity in the same transaction, then pushes it to live connections.
func (s *SessionService) SendMessage(ctx context.Context, sessionID, senderID uuid.UUID, text, image string) (conversation.Message, error) {
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if text == "" && image == "" {
		return conversation.Message{}, fmt.Errorf("%w: message needs text or an image", driftchat_errors.ErrValidation)
	}

	var (
		sess conversation.ChatSession
		msg  conversation.Message
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		sess, err = tx.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !sess.HasParticipant(senderID) {
			return fmt.Errorf("%w: not a participant of this session", driftchat_errors.ErrForbidden)
		}

		msg = conversation.Message{
			ConversationID: sess.ID,
			Kind:           conversation.KindSession,
			SenderID:       senderID,
			Text:           text,
			Image:          image,
		}
		if err := tx.Messages.Append(ctx, &msg); err != nil {
			return err
		}
		for _, p := range sess.Participants() {
			if err := tx.Activity.RecordMessage(ctx, p, sess.ID, sess.OtherParticipant(p), msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return conversation.Message{}, err
	}

	s.notifier.SessionMessage(sess, msg)
	return msg, nil
}

// Delete removes a session on behalf of one of its participants together with
// its log and both participants' inbox entries. It returns the other
// participant.
func (s *SessionService) Delete(ctx context.Context, sessionID, userID uuid.UUID) (uuid.UUID, error) {
	var other uuid.UUID
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sess, err := tx.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !sess.HasParticipant(userID) {
			return fmt.Errorf("%w: not a participant of this session", driftchat_errors.ErrForbidden)
		}
		other = sess.OtherParticipant(userID)
		return deleteSessionTx(ctx, tx, sess)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return other, nil
}

// deleteSessionTx is shared by explicit deletion and the block cascade.
func deleteSessionTx(ctx context.Context, tx *repository.Store, sess conversation.ChatSession) error {
	if err := tx.Sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	if err := tx.Messages.DeleteConversationMessages(ctx, sess.ID); err != nil {
		return err
	}
	if err := tx.Activity.RemoveConversation(ctx, sess.ID); err != nil {
		return err
	}
	if err := tx.Users.RemoveActiveChat(ctx, sess.UserLow, sess.UserHigh); err != nil {
		return err
	}
	return tx.Users.RemoveActiveChat(ctx, sess.UserHigh, sess.UserLow)
}
