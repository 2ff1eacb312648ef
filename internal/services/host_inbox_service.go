package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
	"github.com/Mnunley1/Renegade-Race-sub001/internal/repository"
)

const (
	BulkActionArchive   = "archive"
	BulkActionUnarchive = "unarchive"
	BulkActionMarkRead  = "mark_read"
	BulkActionDelete    = "delete"
)

// HostInboxService serves the vehicle owner's side of the messaging module:
// batched thread management and aggregate views over the inbox.
type HostInboxService struct {
	db               *pgxpool.Pool
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository
}

func NewHostInboxService(
	db *pgxpool.Pool,
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
) *HostInboxService {
	return &HostInboxService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// BulkConversationActions applies one action across a batch of the host's
// threads in the given order. Missing ids are skipped; an id owned by
// someone else aborts the whole call with ErrForbidden, leaving the items
// already processed applied.
func (s *HostInboxService) BulkConversationActions(
	ctx context.Context,
	actorID int64,
	hostID int64,
	conversationIDs []int64,
	action string,
) (*models.BulkActionResult, error) {
	if actorID != hostID {
		return nil, ErrForbidden
	}
	if len(conversationIDs) == 0 {
		return nil, ErrInvalidInput
	}
	switch action {
	case BulkActionArchive, BulkActionUnarchive, BulkActionMarkRead, BulkActionDelete:
	default:
		return nil, ErrInvalidInput
	}

	result := &models.BulkActionResult{ProcessedIDs: make([]int64, 0, len(conversationIDs))}
	for _, conversationID := range conversationIDs {
		conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		if conversation.OwnerID != hostID {
			return nil, ErrForbidden
		}

		switch action {
		case BulkActionArchive:
			err = s.conversationRepo.SetActive(ctx, conversationID, false)
		case BulkActionUnarchive:
			err = s.conversationRepo.SetActive(ctx, conversationID, true)
		case BulkActionMarkRead:
			err = s.markReadTx(ctx, conversationID, hostID)
		case BulkActionDelete:
			err = deleteConversationTx(ctx, s.db, conversationID, hostID)
		}
		if err != nil {
			return nil, err
		}

		result.Processed++
		result.ProcessedIDs = append(result.ProcessedIDs, conversationID)
	}
	return result, nil
}

// HostConversationsByVehicle groups the host's rental threads per vehicle,
// archived threads included.
func (s *HostInboxService) HostConversationsByVehicle(
	ctx context.Context,
	actorID int64,
	hostID int64,
) ([]models.VehicleConversations, error) {
	if actorID != hostID {
		return nil, ErrForbidden
	}

	summaries, err := s.conversationRepo.ListRentalsForOwner(ctx, hostID)
	if err != nil {
		return nil, err
	}

	grouped := make([]models.VehicleConversations, 0)
	index := make(map[int64]int)
	for _, summary := range summaries {
		if summary.Vehicle == nil {
			continue
		}
		i, ok := index[summary.Vehicle.ID]
		if !ok {
			grouped = append(grouped, models.VehicleConversations{Vehicle: *summary.Vehicle})
			i = len(grouped) - 1
			index[summary.Vehicle.ID] = i
		}
		grouped[i].Conversations = append(grouped[i].Conversations, summary)
	}
	return grouped, nil
}

// HostConversationAnalytics aggregates the inbox: thread counts, unread sum
// from the denormalized counters, and the host's average first-response
// latency computed by walking each thread's message log.
func (s *HostInboxService) HostConversationAnalytics(
	ctx context.Context,
	actorID int64,
	hostID int64,
) (*models.HostConversationAnalytics, error) {
	if actorID != hostID {
		return nil, ErrForbidden
	}

	total, active, unread, err := s.conversationRepo.CountForOwner(ctx, hostID)
	if err != nil {
		return nil, err
	}

	analytics := &models.HostConversationAnalytics{
		TotalConversations:  total,
		ActiveConversations: active,
		UnreadMessages:      unread,
	}

	conversationIDs, err := s.conversationRepo.ListIDsForOwner(ctx, hostID)
	if err != nil {
		return nil, err
	}

	var latencies []time.Duration
	for _, conversationID := range conversationIDs {
		messages, err := s.messageRepo.ListAllAscending(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		latencies = append(latencies, hostResponseLatencies(messages, hostID)...)
	}

	if len(latencies) > 0 {
		var sum time.Duration
		for _, latency := range latencies {
			sum += latency
		}
		avg := (sum / time.Duration(len(latencies))).Seconds()
		analytics.AvgResponseSeconds = &avg
	}
	return analytics, nil
}

func (s *HostInboxService) markReadTx(ctx context.Context, conversationID int64, readerID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := repository.NewConversationRepository(tx).MarkRead(ctx, conversationID, readerID); err != nil {
		return err
	}
	if err := repository.NewMessageRepository(tx).MarkConversationRead(ctx, conversationID, readerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// hostResponseLatencies walks one thread's log oldest-first and records, for
// each unanswered renter message, how long the host took to reply to it.
func hostResponseLatencies(messages []models.Message, hostID int64) []time.Duration {
	var latencies []time.Duration
	var pending *time.Time
	for i := range messages {
		message := &messages[i]
		if message.SenderID == hostID {
			if pending != nil {
				latencies = append(latencies, message.CreatedAt.Sub(*pending))
				pending = nil
			}
			continue
		}
		if pending == nil {
			createdAt := message.CreatedAt
			pending = &createdAt
		}
	}
	return latencies
}
