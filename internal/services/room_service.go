package services

import (
	"context"
	"fmt"
	"strings"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
)

type RoomService struct {
	store     *repository.Store
	directory Directory
	notifier  Notifier
}

func NewRoomService(store *repository.Store, directory Directory, notifier Notifier) *RoomService {
	return &RoomService{
		store:     store,
		directory: directory,
		notifier:  notifierOrNop(notifier),
	}
}

// List returns public rooms, optionally restricted to one category.
func (s *RoomService) List(ctx context.Context, category string) ([]conversation.RoomSummary, error) {
	var cat conversation.Category
	if strings.TrimSpace(category) != "" {
		c, ok := conversation.ParseCategory(category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", driftchat_errors.ErrValidation, category)
		}
		cat = c
	}

	rooms, err := s.store.Rooms.List(ctx, cat)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	counts, err := s.store.Rooms.CountParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]conversation.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, conversation.RoomSummary{Room: r, ParticipantCount: counts[r.ID]})
	}
	return out, nil
}

func (s *RoomService) Get(ctx context.Context, roomID uuid.UUID) (conversation.RoomSummary, error) {
	room, err := s.store.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return conversation.RoomSummary{}, err
	}
	counts, err := s.store.Rooms.CountParticipants(ctx, []uuid.UUID{roomID})
	if err != nil {
		return conversation.RoomSummary{}, err
	}
	return conversation.RoomSummary{Room: room, ParticipantCount: counts[roomID]}, nil
}

func (s *RoomService) Participants(ctx context.Context, roomID uuid.UUID) ([]user.Profile, error) {
	if _, err := s.store.Rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	ids, err := s.store.Rooms.GetParticipantIDs(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return profilesInOrder(ctx, s.directory, ids)
}

// Join adds userID to the room. Joining twice is a no-op.
func (s *RoomService) Join(ctx context.Context, roomID, userID uuid.UUID) error {
	if _, err := s.store.Rooms.GetByID(ctx, roomID); err != nil {
		return err
	}
	added, err := s.store.Rooms.AddParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if added {
		s.notifier.RoomMemberJoined(roomID, userID)
	}
	return nil
}

// Leave removes userID from the room. Leaving a room one is not in is a no-op.
func (s *RoomService) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	if _, err := s.store.Rooms.GetByID(ctx, roomID); err != nil {
		return err
	}
	removed, err := s.store.Rooms.RemoveParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if removed {
		s.notifier.RoomMemberLeft(roomID, userID)
	}
	return nil
}

func (s *RoomService) requireMember(ctx context.Context, roomID, userID uuid.UUID) error {
	if _, err := s.store.Rooms.GetByID(ctx, roomID); err != nil {
		return err
	}
	ok, err := s.store.Rooms.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a member of this room", driftchat_errors.ErrForbidden)
	}
	return nil
}

// SendMessage appends a text message to the room log. Rooms carry no images.
func (s *RoomService) SendMessage(ctx context.Context, roomID, senderID uuid.UUID, text string) (conversation.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return conversation.Message{}, fmt.Errorf("%w: message text is required", driftchat_errors.ErrValidation)
	}
	if err := s.requireMember(ctx, roomID, senderID); err != nil {
		return conversation.Message{}, err
	}

	msg := conversation.Message{
		ConversationID: roomID,
		Kind:           conversation.KindRoom,
		SenderID:       senderID,
		Text:           text,
	}
	if err := s.store.Messages.Append(ctx, &msg); err != nil {
		return conversation.Message{}, err
	}

	s.notifier.RoomMessage(roomID, msg)
	return msg, nil
}

func (s *RoomService) Messages(ctx context.Context, roomID, userID uuid.UUID, beforeSeq int64, limit int) ([]conversation.Message, error) {
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.Messages.GetConversationMessages(ctx, roomID, beforeSeq, limit)
}

// RoomIDsForUser lists the rooms userID currently belongs to.
func (s *RoomService) RoomIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.Rooms.GetUserRoomIDs(ctx, userID)
}

// IsMember reports whether userID belongs to roomID.
func (s *RoomService) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	return s.store.Rooms.IsParticipant(ctx, roomID, userID)
}
