package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/metrics"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/repository"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEditWindowClosed = errors.New("edit window closed")
)

// editWindow is how long a sender may rewrite a message after sending it.
const editWindow = 15 * time.Minute

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type vehicleReader interface {
	GetByID(ctx context.Context, id int64) (*models.Vehicle, error)
}

type teamReader interface {
	GetByID(ctx context.Context, id int64) (*models.Team, error)
}

type driverProfileReader interface {
	GetByID(ctx context.Context, id int64) (*models.DriverProfile, error)
}

type reservationReader interface {
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
}

type blockChecker interface {
	ExistsBetween(ctx context.Context, userA, userB int64) (bool, error)
}

type MessagingService struct {
	db                *pgxpool.Pool
	conversationRepo  *repository.ConversationRepository
	messageRepo       *repository.MessageRepository
	userRepo          userReader
	vehicleRepo       vehicleReader
	teamRepo          teamReader
	driverProfileRepo driverProfileReader
	reservationRepo   reservationReader
	blockRepo         blockChecker
}

// MessageDelivery carries a stored message together with the routing facts
// the realtime layer needs.
type MessageDelivery struct {
	Conversation *models.Conversation
	Message      *models.Message
	RecipientID  int64
}

type SendMessageInput struct {
	Content     string
	MessageType string
	ReplyTo     *int64
	Attachments []string
}

type MotorsportsConversationInput struct {
	ParticipantID    int64
	ConversationType string
	TeamID           *int64
	DriverProfileID  *int64
}

func NewMessagingService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	userRepo userReader,
	vehicleRepo vehicleReader,
	teamRepo teamReader,
	driverProfileRepo driverProfileReader,
	reservationRepo reservationReader,
	blockRepo blockChecker,
) *MessagingService {
	return &MessagingService{
		db:                db,
		conversationRepo:  conversationRepo,
		messageRepo:       messageRepo,
		userRepo:          userRepo,
		vehicleRepo:       vehicleRepo,
		teamRepo:          teamRepo,
		driverProfileRepo: driverProfileRepo,
		reservationRepo:   reservationRepo,
		blockRepo:         blockRepo,
	}
}

func (s *MessagingService) ListConversations(
	ctx context.Context,
	actorID int64,
	role string,
) ([]models.ConversationSummary, error) {
	if role != "renter" && role != "owner" {
		return nil, ErrInvalidInput
	}
	return s.conversationRepo.ListForParticipant(ctx, actorID, role)
}

func (s *MessagingService) GetConversation(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) (*models.ConversationSummary, error) {
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}

	summary, err := s.conversationRepo.GetSummaryByID(ctx, actorID, conversationID)
	if err != nil {
		return nil, err
	}
	if !summary.Participant(actorID) {
		return nil, ErrForbidden
	}
	if summary.DeletedBy(actorID) {
		return nil, pgx.ErrNoRows
	}
	return summary, nil
}

func (s *MessagingService) FindRentalConversation(
	ctx context.Context,
	actorID int64,
	vehicleID int64,
	renterID int64,
	ownerID int64,
) (*models.Conversation, error) {
	if vehicleID <= 0 || renterID <= 0 || ownerID <= 0 {
		return nil, ErrInvalidInput
	}
	if actorID != renterID && actorID != ownerID {
		return nil, ErrForbidden
	}
	return s.conversationRepo.GetByVehicleAndParticipants(ctx, vehicleID, renterID, ownerID)
}

// CreateRentalConversation opens the thread for a (vehicle, renter, owner)
// triad, or returns the existing one. Calling it twice with the same
// arguments yields the same conversation id.
func (s *MessagingService) CreateRentalConversation(
	ctx context.Context,
	actorID int64,
	vehicleID int64,
	renterID int64,
	ownerID int64,
) (*models.Conversation, error) {
	if vehicleID <= 0 || renterID <= 0 || ownerID <= 0 || renterID == ownerID {
		return nil, ErrInvalidInput
	}
	if actorID != renterID && actorID != ownerID {
		return nil, ErrForbidden
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != ownerID {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.CreateOrGetRental(ctx, vehicleID, renterID, ownerID)
	if err != nil {
		return nil, err
	}
	metrics.ConversationsCreated.Inc()
	return conversation, nil
}

// CreateMotorsportsConversation opens a team or driver thread between the
// caller and another participant. The pair is canonicalized so both
// directions land on the same thread; a concurrent first-contact race is
// resolved by re-reading after a unique violation.
func (s *MessagingService) CreateMotorsportsConversation(
	ctx context.Context,
	actorID int64,
	input MotorsportsConversationInput,
) (*models.Conversation, error) {
	if input.ParticipantID <= 0 || input.ParticipantID == actorID {
		return nil, ErrInvalidInput
	}
	if _, err := s.userRepo.GetByID(ctx, input.ParticipantID); err != nil {
		return nil, err
	}
	switch input.ConversationType {
	case models.ConversationTypeTeam:
		if input.TeamID == nil || input.DriverProfileID != nil {
			return nil, ErrInvalidInput
		}
		if _, err := s.teamRepo.GetByID(ctx, *input.TeamID); err != nil {
			return nil, err
		}
	case models.ConversationTypeDriver:
		if input.DriverProfileID == nil || input.TeamID != nil {
			return nil, ErrInvalidInput
		}
		if _, err := s.driverProfileRepo.GetByID(ctx, *input.DriverProfileID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidInput
	}

	low, high := canonicalPair(actorID, input.ParticipantID)

	existing, err := s.conversationRepo.FindMotorsports(
		ctx, input.ConversationType, low, high, input.TeamID, input.DriverProfileID,
	)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	conversation, err := s.conversationRepo.CreateMotorsports(ctx, repository.CreateMotorsportsConversationInput{
		ConversationType: input.ConversationType,
		RenterID:         low,
		OwnerID:          high,
		TeamID:           input.TeamID,
		DriverProfileID:  input.DriverProfileID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return s.conversationRepo.FindMotorsports(
				ctx, input.ConversationType, low, high, input.TeamID, input.DriverProfileID,
			)
		}
		return nil, err
	}
	metrics.ConversationsCreated.Inc()
	return conversation, nil
}

// MarkConversationRead zeroes the caller's unread counter and flips every
// counterpart message to read, in one transaction.
func (s *MessagingService) MarkConversationRead(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) error {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.Participant(actorID) {
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := repository.NewConversationRepository(tx).MarkRead(ctx, conversationID, actorID); err != nil {
		return err
	}
	if err := repository.NewMessageRepository(tx).MarkConversationRead(ctx, conversationID, actorID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ArchiveConversation hides the thread from both parties' active lists.
func (s *MessagingService) ArchiveConversation(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) error {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.Participant(actorID) {
		return ErrForbidden
	}
	return s.conversationRepo.SetActive(ctx, conversationID, false)
}

// DeleteConversation sets the caller's soft-delete flag. Once both parties
// have deleted, the messages are purged and the row removed.
func (s *MessagingService) DeleteConversation(
	ctx context.Context,
	actorID int64,
	conversationID int64,
) error {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.Participant(actorID) {
		return ErrForbidden
	}
	return deleteConversationTx(ctx, s.db, conversationID, actorID)
}

func (s *MessagingService) LinkReservation(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	reservationID int64,
) error {
	if reservationID <= 0 {
		return ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.Participant(actorID) {
		return ErrForbidden
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.RenterID != conversation.RenterID || reservation.OwnerID != conversation.OwnerID {
		return ErrInvalidInput
	}
	return s.conversationRepo.LinkReservation(ctx, conversationID, reservationID)
}

func (s *MessagingService) ListMessages(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	page int,
	limit int,
) ([]models.MessageDetail, int, error) {
	if conversationID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conversation.Participant(actorID) {
		return nil, 0, ErrForbidden
	}
	if conversation.DeletedBy(actorID) {
		return nil, 0, pgx.ErrNoRows
	}

	return s.messageRepo.ListByConversation(ctx, conversationID, limit, (page-1)*limit)
}

// SendMessage appends to the log and applies the denormalized conversation
// update (snapshot, recipient unread counter, activation) in one transaction.
func (s *MessagingService) SendMessage(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	input SendMessageInput,
) (*MessageDelivery, error) {
	if conversationID <= 0 {
		return nil, ErrInvalidInput
	}
	trimmed := strings.TrimSpace(input.Content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}
	messageType := input.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if messageType != models.MessageTypeText &&
		messageType != models.MessageTypeImage &&
		messageType != models.MessageTypeSystem {
		return nil, ErrInvalidInput
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(actorID) {
		return nil, ErrForbidden
	}
	if conversation.DeletedBy(actorID) {
		return nil, pgx.ErrNoRows
	}

	blocked, err := s.blockRepo.ExistsBetween(ctx, conversation.RenterID, conversation.OwnerID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrForbidden
	}

	if input.ReplyTo != nil {
		replied, err := s.messageRepo.GetByID(ctx, *input.ReplyTo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidInput
			}
			return nil, err
		}
		if replied.ConversationID != conversationID {
			return nil, ErrInvalidInput
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	message, err := repository.NewMessageRepository(tx).Create(ctx, repository.CreateMessageInput{
		ConversationID: conversationID,
		SenderID:       actorID,
		Content:        trimmed,
		MessageType:    messageType,
		ReplyTo:        input.ReplyTo,
		Attachments:    input.Attachments,
	})
	if err != nil {
		return nil, err
	}

	if err := repository.NewConversationRepository(tx).ApplyMessage(
		ctx, conversationID, actorID, trimmed, message.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	return &MessageDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  conversation.CounterpartID(actorID),
	}, nil
}

// EditMessage rewrites a message's content. Only the original sender may
// edit, and only within the edit window.
func (s *MessagingService) EditMessage(
	ctx context.Context,
	actorID int64,
	messageID int64,
	content string,
) (*models.Message, error) {
	trimmed := strings.TrimSpace(content)
	if messageID <= 0 || trimmed == "" {
		return nil, ErrInvalidInput
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != actorID {
		return nil, ErrForbidden
	}
	if !editWindowOpen(message.CreatedAt, time.Now()) {
		return nil, ErrEditWindowClosed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updated, err := repository.NewMessageRepository(tx).UpdateContent(ctx, messageID, trimmed)
	if err != nil {
		return nil, err
	}
	if err := repository.NewConversationRepository(tx).RefreshSnapshot(ctx, message.ConversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMessage removes a single message and compensates the conversation's
// unread counter and last-message snapshot.
func (s *MessagingService) DeleteMessage(ctx context.Context, actorID int64, messageID int64) error {
	if messageID <= 0 {
		return ErrInvalidInput
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != actorID {
		return ErrForbidden
	}

	conversation, err := s.conversationRepo.GetByID(ctx, message.ConversationID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)

	deleted, err := repository.NewMessageRepository(tx).Delete(ctx, messageID)
	if err != nil {
		return err
	}
	if !deleted.IsRead {
		recipient := conversation.CounterpartID(deleted.SenderID)
		if err := txConversationRepo.DecrementUnread(ctx, message.ConversationID, recipient); err != nil {
			return err
		}
	}
	if err := txConversationRepo.RefreshSnapshot(ctx, message.ConversationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// deleteConversationTx applies one party's soft delete and, when both flags
// are set afterwards, purges the message log and the conversation row. The
// purge is idempotent, so two racing opposite-party deletes cannot corrupt
// anything; the loser just deletes rows that are already gone.
func deleteConversationTx(ctx context.Context, db *pgxpool.Pool, conversationID int64, userID int64) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)

	deletedByRenter, deletedByOwner, err := txConversationRepo.SoftDelete(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if deletedByRenter && deletedByOwner {
		if err := repository.NewMessageRepository(tx).DeleteByConversation(ctx, conversationID); err != nil {
			return err
		}
		if err := txConversationRepo.HardDelete(ctx, conversationID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// canonicalPair orders two participant ids so an unordered pair always maps
// to the same storage slot.
func canonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func editWindowOpen(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= editWindow
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func FormatMessageTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
