package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/internal/realtime"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatService interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]response.ConversationResponse, error)
	// GetMessages returns the booking's chat oldest first and marks the
	// caller's unread messages read.
	GetMessages(ctx context.Context, userID uuid.UUID, bookingID string) ([]response.MessageResponse, error)
	SendMessage(ctx context.Context, userID uuid.UUID, bookingID string, req *request.SendMessageRequest) (*response.MessageResponse, error)
	MarkRead(ctx context.Context, userID uuid.UUID, messageID string) error
	DeleteMessage(ctx context.Context, userID uuid.UUID, messageID string) error
}

type chatService struct {
	repo      *repository.Repository
	publisher realtime.Publisher
	log       *zap.Logger
}

func NewChatService(repo *repository.Repository, publisher realtime.Publisher, log *zap.Logger) ChatService {
	return &chatService{
		repo:      repo,
		publisher: publisher,
		log:       log.With(zap.String("service", "chat")),
	}
}

func (s *chatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]response.ConversationResponse, error) {
	conversations, err := s.repo.Message.ListConversations(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list conversations", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	now := time.Now()
	result := make([]response.ConversationResponse, len(conversations))
	for i, c := range conversations {
		result[i] = response.ConversationResponse{
			BookingID:     c.BookingID.String(),
			OtherSideName: c.OtherUserName,
			UnreadCount:   c.UnreadCount,
		}
		if c.LastMessage != nil {
			result[i].LastMessage = c.LastMessage.Content
			result[i].LastMessageFormattedTime = utils.FormatRelativeTime(c.LastMessage.CreatedAt, now)
		}
	}
	return result, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID uuid.UUID, bookingID string) ([]response.MessageResponse, error) {
	// 1. Booking participant check
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, ok := counterpart(booking, userID); !ok {
		return nil, apperror.Unauthorized("You are not part of this conversation.")
	}

	// 2. Load messages
	messages, err := s.repo.Message.ListByBooking(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to list messages", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// 3. Mark unread messages to the caller as read
	now := time.Now()
	var unread []*entity.Message
	for _, m := range messages {
		if m.ReceiverID == userID && !m.IsRead {
			unread = append(unread, m)
		}
	}
	if len(unread) > 0 {
		if err := s.repo.Message.MarkBookingRead(ctx, booking.ID, userID, now); err != nil {
			s.log.Error("Failed to mark messages read", zap.Error(err), zap.String("booking_id", bookingID))
			return nil, fmt.Errorf("mark messages read: %w", err)
		}
		for _, m := range unread {
			m.IsRead = true
			m.ReadAt = &now
		}
	}

	// 4. Build response
	result := make([]response.MessageResponse, len(messages))
	for i, m := range messages {
		result[i] = convertMessageResponse(m, userID, now)
	}
	return result, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID uuid.UUID, bookingID string, req *request.SendMessageRequest) (*response.MessageResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation("Validation failed", map[string]any{"content": "This field is required"})
	}

	// 2. Sender must be on the booking
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	receiverID, ok := counterpart(booking, userID)
	if !ok {
		return nil, apperror.Unauthorized("You are not part of this booking.")
	}

	// 3. Save message
	now := time.Now()
	msg := &entity.Message{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		BookingID:  booking.ID,
		SenderID:   userID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.log.Error("Failed to send message", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("create message: %w", err)
	}

	// 4. Push to receiver
	s.publisher.Publish(realtime.NewEvent(realtime.EventReceiveNewMessage, receiverID,
		convertMessageResponse(msg, receiverID, now)))

	resp := convertMessageResponse(msg, userID, now)
	return &resp, nil
}

func (s *chatService) MarkRead(ctx context.Context, userID uuid.UUID, messageID string) error {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ReceiverID != userID {
		return apperror.Unauthorized("Unauthorized.")
	}
	if msg.IsRead {
		return nil
	}

	if err := s.repo.Message.MarkRead(ctx, msg.ID, time.Now()); err != nil {
		// Read by another tab in the meantime
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil
		}
		s.log.Error("Failed to mark message read", zap.Error(err), zap.String("message_id", messageID))
		return fmt.Errorf("mark message read: %w", err)
	}

	s.publisher.Publish(realtime.NewEvent(realtime.EventMessageRead, msg.SenderID, msg.ID.String()))
	return nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userID uuid.UUID, messageID string) error {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return apperror.Unauthorized("You can only delete your own messages.")
	}

	if err := s.repo.Message.Delete(ctx, msg.ID); err != nil {
		s.log.Error("Failed to delete message", zap.Error(err), zap.String("message_id", messageID))
		return fmt.Errorf("delete message: %w", err)
	}

	s.publisher.Publish(realtime.NewEvent(realtime.EventMessageDeleted, msg.ReceiverID, msg.ID.String()))

	s.log.Info("Message deleted", zap.String("message_id", messageID))
	return nil
}

// ==================== HELPER METHODS ====================

// counterpart returns the other participant of booking, or false when
// userID is not on it.
func counterpart(booking *entity.Booking, userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case booking.CustomerID:
		return booking.ServiceProviderID, true
	case booking.ServiceProviderID:
		return booking.CustomerID, true
	default:
		return uuid.Nil, false
	}
}

func (s *chatService) findBooking(ctx context.Context, rawID string) (*entity.Booking, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperror.NotFound("Booking")
	}
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}
	return booking, nil
}

func (s *chatService) findMessage(ctx context.Context, rawID string) (*entity.Message, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperror.NotFound("Message")
	}
	msg, err := s.repo.Message.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	if msg == nil {
		return nil, apperror.NotFound("Message")
	}
	return msg, nil
}

func convertMessageResponse(m *entity.Message, viewerID uuid.UUID, now time.Time) response.MessageResponse {
	return response.MessageResponse{
		ID:            m.ID.String(),
		Content:       m.Content,
		SentAt:        m.CreatedAt,
		FormattedTime: utils.FormatRelativeTime(m.CreatedAt, now),
		IsRead:        m.IsRead,
		IsMine:        m.SenderID == viewerID,
	}
}
