// Package matching pairs customers with coaches and carries the messages
// exchanged once a coach accepts.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/repository/chat"
	"github.com/iyunix/finsarthi/internal/repository/user"
)

// MaxMessageLength is measured in characters, not bytes.
const MaxMessageLength = 4000

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Customer is the minimal identity a coach sees for an incoming request.
type Customer struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// IncomingRequest is a request as listed for the coach.
type IncomingRequest struct {
	domain.ChatRequest
	Customer Customer `json:"customer"`
}

// OutgoingRequest is a request as listed for the customer.
type OutgoingRequest struct {
	domain.ChatRequest
	Coach *domain.Public `json:"coach,omitempty"`
}

// ActiveSession is the accepted chat shown to a participant.
type ActiveSession struct {
	Request domain.ChatRequest `json:"request"`
	Partner *domain.Public     `json:"partner,omitempty"`
}

type Service struct {
	chats  chat.ChatRepository
	users  user.UserRepository
	logger Logger
	now    func() time.Time
}

func NewService(chats chat.ChatRepository, users user.UserRepository, logger Logger) *Service {
	return &Service{chats: chats, users: users, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for created/updated timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateChatRequest returns the pair's active request when there is one and
// otherwise opens a pending request. created reports which happened.
func (s *Service) CreateChatRequest(ctx context.Context, customerID, coachID uint) (*domain.ChatRequest, bool, error) {
	if customerID == coachID {
		return nil, false, ErrSelfRequest
	}

	customer, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		return nil, false, lookupError(err, ErrNotCustomer)
	}
	if customer.Role != domain.RoleCustomer {
		return nil, false, ErrNotCustomer
	}

	coach, err := s.users.FindByID(ctx, coachID)
	if err != nil {
		return nil, false, lookupError(err, ErrCoachNotFound)
	}
	if !coach.IsCoach() {
		return nil, false, ErrCoachNotFound
	}

	// Availability only gates new requests; an open one is still returned.
	if !coach.IsAvailable {
		existing, err := s.activeRequest(ctx, customerID, coachID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, ErrCoachUnavailable
		}
		return existing, false, nil
	}

	req, created, err := s.chats.FindOrCreateActive(ctx, customerID, coachID, s.now())
	if err != nil {
		s.logger.Error("failed to create chat request", "customer_id", customerID, "coach_id", coachID, "error", err)
		return nil, false, err
	}
	if created {
		s.logger.Info("chat request created", "request_id", req.ID, "customer_id", customerID, "coach_id", coachID)
	}
	return req, created, nil
}

// GetChatRequestsForCoach lists every request addressed to the coach, newest
// first. Requests whose customer no longer exists are left out.
func (s *Service) GetChatRequestsForCoach(ctx context.Context, coachID uint) ([]IncomingRequest, error) {
	reqs, err := s.chats.FindByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.CustomerID)
	}
	customers, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]IncomingRequest, 0, len(reqs))
	for _, r := range reqs {
		c, ok := customers[r.CustomerID]
		if !ok {
			s.logger.Debug("dropping chat request with missing customer", "request_id", r.ID, "customer_id", r.CustomerID)
			continue
		}
		out = append(out, IncomingRequest{
			ChatRequest: r,
			Customer:    Customer{ID: c.ID, Name: c.Name, Email: c.Email},
		})
	}
	return out, nil
}

// GetChatRequestsForCustomer lists the customer's requests, newest first.
func (s *Service) GetChatRequestsForCustomer(ctx context.Context, customerID uint) ([]OutgoingRequest, error) {
	reqs, err := s.chats.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.CoachID)
	}
	coaches, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]OutgoingRequest, 0, len(reqs))
	for _, r := range reqs {
		item := OutgoingRequest{ChatRequest: r}
		if c, ok := coaches[r.CoachID]; ok {
			p := c.Public()
			item.Coach = &p
		}
		out = append(out, item)
	}
	return out, nil
}

// UpdateChatRequestStatus moves a request to status on behalf of actorID.
// Only the coach may accept or decline; either participant may close.
func (s *Service) UpdateChatRequestStatus(ctx context.Context, actorID, requestID uint, status domain.ChatRequestStatus) (*domain.ChatRequest, error) {
	req, err := s.chats.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(actorID) {
		return nil, ErrNotParticipant
	}

	action, ok := domain.ActionFor(status)
	if !ok {
		return nil, ErrInvalidTransition
	}
	next, ok := domain.Transition(req.Status, action)
	if !ok {
		return nil, ErrInvalidTransition
	}
	if action != domain.ActionClose && actorID != req.CoachID {
		return nil, ErrForbidden
	}

	updated, err := s.chats.UpdateStatus(ctx, requestID, req.Status, next, s.now())
	if errors.Is(err, chat.ErrStatusChanged) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	if err != nil {
		s.logger.Error("failed to update chat request", "request_id", requestID, "status", next, "error", err)
		return nil, err
	}

	s.logger.Info("chat request status changed",
		"request_id", requestID,
		"actor_id", actorID,
		"from", req.Status,
		"to", next)
	return updated, nil
}

// GetActiveChatSession returns the user's most recently updated accepted chat,
// or nil when there is none.
func (s *Service) GetActiveChatSession(ctx context.Context, userID uint) (*ActiveSession, error) {
	req, err := s.chats.LatestAccepted(ctx, userID)
	if err != nil || req == nil {
		return nil, err
	}

	session := &ActiveSession{Request: *req}
	partner, err := s.users.FindByID(ctx, req.PartnerOf(userID))
	switch {
	case err == nil:
		p := partner.Public()
		session.Partner = &p
	case !errors.Is(err, user.ErrUserNotFound):
		return nil, err
	}
	return session, nil
}

func (s *Service) SendMessage(ctx context.Context, senderID, requestID uint, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	req, err := s.participantRequest(ctx, senderID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusAccepted {
		return nil, ErrChatNotActive
	}

	msg, err := s.chats.CreateMessage(ctx, &domain.ChatMessage{
		ChatRequestID: requestID,
		SenderID:      senderID,
		Content:       content,
		CreatedAt:     s.now(),
	})
	if err != nil {
		s.logger.Error("failed to store chat message", "request_id", requestID, "sender_id", senderID, "error", err)
		return nil, err
	}
	return msg, nil
}

// GetMessagesForChat returns the chat's messages oldest first.
func (s *Service) GetMessagesForChat(ctx context.Context, userID, requestID uint) ([]domain.ChatMessage, error) {
	if _, err := s.participantRequest(ctx, userID, requestID); err != nil {
		return nil, err
	}
	return s.chats.FindMessages(ctx, requestID)
}

// MarkMessagesAsRead marks every message not sent by userID as read and
// returns how many changed.
func (s *Service) MarkMessagesAsRead(ctx context.Context, userID, requestID uint) (int64, error) {
	if _, err := s.participantRequest(ctx, userID, requestID); err != nil {
		return 0, err
	}
	return s.chats.MarkRead(ctx, requestID, userID)
}

// GetUnreadMessageCountForUser counts unread messages from the other party
// across the user's accepted chats.
func (s *Service) GetUnreadMessageCountForUser(ctx context.Context, userID uint) (int64, error) {
	return s.chats.CountUnread(ctx, userID)
}

func (s *Service) ListAvailableCoaches(ctx context.Context) ([]domain.Public, error) {
	coaches, err := s.users.FindAvailableCoaches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Public, 0, len(coaches))
	for i := range coaches {
		out = append(out, coaches[i].Public())
	}
	return out, nil
}

func (s *Service) SetCoachAvailability(ctx context.Context, coachID uint, available bool) error {
	err := s.users.UpdateAvailability(ctx, coachID, available)
	if errors.Is(err, user.ErrUserNotFound) {
		return ErrNotCoach
	}
	if err != nil {
		return err
	}
	s.logger.Info("coach availability changed", "coach_id", coachID, "available", available)
	return nil
}

func (s *Service) participantRequest(ctx context.Context, userID, requestID uint) (*domain.ChatRequest, error) {
	req, err := s.chats.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(userID) {
		return nil, ErrNotParticipant
	}
	return req, nil
}

func (s *Service) activeRequest(ctx context.Context, customerID, coachID uint) (*domain.ChatRequest, error) {
	reqs, err := s.chats.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].CoachID == coachID && reqs[i].Status.IsActive() {
			return &reqs[i], nil
		}
	}
	return nil, nil
}

func lookupError(err, notFound error) error {
	if errors.Is(err, user.ErrUserNotFound) {
		return notFound
	}
	return err
}
