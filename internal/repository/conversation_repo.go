package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

const conversationColumns = `
	id, conversation_type, renter_id, owner_id, vehicle_id, team_id,
	driver_profile_id, reservation_id, is_active, deleted_by_renter,
	deleted_by_owner, last_message_at, last_message_text,
	last_message_sender_id, unread_count_renter, unread_count_owner,
	created_at, updated_at`

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

type CreateMotorsportsConversationInput struct {
	ConversationType string
	RenterID         int64
	OwnerID          int64
	TeamID           *int64
	DriverProfileID  *int64
}

type conversationScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row conversationScanner) (*models.Conversation, error) {
	var conversation models.Conversation
	err := row.Scan(
		&conversation.ID,
		&conversation.ConversationType,
		&conversation.RenterID,
		&conversation.OwnerID,
		&conversation.VehicleID,
		&conversation.TeamID,
		&conversation.DriverProfileID,
		&conversation.ReservationID,
		&conversation.IsActive,
		&conversation.DeletedByRenter,
		&conversation.DeletedByOwner,
		&conversation.LastMessageAt,
		&conversation.LastMessageText,
		&conversation.LastMessageSenderID,
		&conversation.UnreadCountRenter,
		&conversation.UnreadCountOwner,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// CreateOrGetRental inserts a rental thread for the (vehicle, renter, owner)
// triad or returns the existing one. New threads start inactive with zero
// unread counters; the first message activates them.
func (r *ConversationRepository) CreateOrGetRental(
	ctx context.Context,
	vehicleID int64,
	renterID int64,
	ownerID int64,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (conversation_type, renter_id, owner_id, vehicle_id)
		VALUES ('rental', $1, $2, $3)
		ON CONFLICT (vehicle_id, renter_id, owner_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING` + conversationColumns

	return scanConversation(r.db.QueryRow(ctx, query, renterID, ownerID, vehicleID))
}

func (r *ConversationRepository) CreateMotorsports(
	ctx context.Context,
	input CreateMotorsportsConversationInput,
) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (conversation_type, renter_id, owner_id, team_id, driver_profile_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING` + conversationColumns

	return scanConversation(r.db.QueryRow(
		ctx,
		query,
		input.ConversationType,
		input.RenterID,
		input.OwnerID,
		input.TeamID,
		input.DriverProfileID,
	))
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
		SELECT` + conversationColumns + `
		FROM conversations
		WHERE id = $1
	`
	return scanConversation(r.db.QueryRow(ctx, query, conversationID))
}

func (r *ConversationRepository) GetByVehicleAndParticipants(
	ctx context.Context,
	vehicleID int64,
	renterID int64,
	ownerID int64,
) (*models.Conversation, error) {
	query := `
		SELECT` + conversationColumns + `
		FROM conversations
		WHERE conversation_type = 'rental'
		  AND vehicle_id = $1 AND renter_id = $2 AND owner_id = $3
	`
	return scanConversation(r.db.QueryRow(ctx, query, vehicleID, renterID, ownerID))
}

// FindMotorsports looks a non-rental thread up by its unordered participant
// pair and subject, regardless of which side initiated it.
func (r *ConversationRepository) FindMotorsports(
	ctx context.Context,
	conversationType string,
	participantA int64,
	participantB int64,
	teamID *int64,
	driverProfileID *int64,
) (*models.Conversation, error) {
	query := `
		SELECT` + conversationColumns + `
		FROM conversations
		WHERE conversation_type = $1
		  AND LEAST(renter_id, owner_id) = LEAST($2::bigint, $3::bigint)
		  AND GREATEST(renter_id, owner_id) = GREATEST($2::bigint, $3::bigint)
		  AND team_id IS NOT DISTINCT FROM $4
		  AND driver_profile_id IS NOT DISTINCT FROM $5
	`
	return scanConversation(r.db.QueryRow(
		ctx, query, conversationType, participantA, participantB, teamID, driverProfileID,
	))
}

// GetSummaryByID returns one conversation joined with the counterpart and
// subject snapshots, with the counterpart resolved relative to the viewer.
func (r *ConversationRepository) GetSummaryByID(
	ctx context.Context,
	viewerID int64,
	conversationID int64,
) (*models.ConversationSummary, error) {
	query := `
		SELECT` + summaryColumns() + `
		FROM conversations c
		JOIN users cu ON cu.id = CASE WHEN c.renter_id = $1 THEN c.owner_id ELSE c.renter_id END
		LEFT JOIN vehicles v ON v.id = c.vehicle_id
		LEFT JOIN teams t ON t.id = c.team_id
		LEFT JOIN driver_profiles d ON d.id = c.driver_profile_id
		LEFT JOIN reservations res ON res.id = c.reservation_id
		WHERE c.id = $2
	`
	return scanConversationSummary(r.db.QueryRow(ctx, query, viewerID, conversationID))
}

// ListForParticipant returns the caller's active, non-self-deleted threads in
// the given role, joined with the counterpart and subject snapshots. Threads
// where either party has blocked the other are filtered out in the query.
func (r *ConversationRepository) ListForParticipant(
	ctx context.Context,
	userID int64,
	role string,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT` + summaryColumns() + `
		FROM conversations c
		JOIN users cu ON cu.id = CASE WHEN c.renter_id = $1 THEN c.owner_id ELSE c.renter_id END
		LEFT JOIN vehicles v ON v.id = c.vehicle_id
		LEFT JOIN teams t ON t.id = c.team_id
		LEFT JOIN driver_profiles d ON d.id = c.driver_profile_id
		LEFT JOIN reservations res ON res.id = c.reservation_id
		WHERE (CASE WHEN $2 = 'renter' THEN c.renter_id ELSE c.owner_id END) = $1
		  AND c.is_active = TRUE
		  AND NOT (CASE WHEN c.renter_id = $1 THEN c.deleted_by_renter ELSE c.deleted_by_owner END)
		  AND NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = c.renter_id AND b.blocked_id = c.owner_id)
			   OR (b.blocker_id = c.owner_id AND b.blocked_id = c.renter_id)
		  )
		ORDER BY COALESCE(c.last_message_at, c.updated_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		summary, err := scanConversationSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListRentalsForOwner returns every rental thread in the host's inbox,
// archived ones included, newest activity first.
func (r *ConversationRepository) ListRentalsForOwner(
	ctx context.Context,
	ownerID int64,
) ([]models.ConversationSummary, error) {
	query := `
		SELECT` + summaryColumns() + `
		FROM conversations c
		JOIN users cu ON cu.id = c.renter_id
		LEFT JOIN vehicles v ON v.id = c.vehicle_id
		LEFT JOIN teams t ON t.id = c.team_id
		LEFT JOIN driver_profiles d ON d.id = c.driver_profile_id
		LEFT JOIN reservations res ON res.id = c.reservation_id
		WHERE c.conversation_type = 'rental'
		  AND c.owner_id = $1
		  AND c.deleted_by_owner = FALSE
		ORDER BY c.vehicle_id, COALESCE(c.last_message_at, c.updated_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		summary, err := scanConversationSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// MarkRead zeroes the reading participant's unread counter.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID int64, readerID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET unread_count_renter = CASE WHEN renter_id = $2 THEN 0 ELSE unread_count_renter END,
		    unread_count_owner  = CASE WHEN owner_id  = $2 THEN 0 ELSE unread_count_owner END,
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, readerID)
	return err
}

func (r *ConversationRepository) SetActive(ctx context.Context, conversationID int64, active bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`, conversationID, active)
	return err
}

// SoftDelete flips the calling participant's delete flag and reports both
// flags from the updated row, so the caller can decide on the hard delete
// without a second read.
func (r *ConversationRepository) SoftDelete(
	ctx context.Context,
	conversationID int64,
	userID int64,
) (deletedByRenter bool, deletedByOwner bool, err error) {
	err = r.db.QueryRow(ctx, `
		UPDATE conversations
		SET deleted_by_renter = deleted_by_renter OR renter_id = $2,
		    deleted_by_owner  = deleted_by_owner  OR owner_id  = $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING deleted_by_renter, deleted_by_owner
	`, conversationID, userID).Scan(&deletedByRenter, &deletedByOwner)
	return deletedByRenter, deletedByOwner, err
}

// HardDelete removes the conversation row. Deleting an already-purged row is
// a no-op, which keeps racing double-deletes harmless.
func (r *ConversationRepository) HardDelete(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, conversationID)
	return err
}

func (r *ConversationRepository) LinkReservation(
	ctx context.Context,
	conversationID int64,
	reservationID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET reservation_id = $2, updated_at = NOW()
		WHERE id = $1
	`, conversationID, reservationID)
	return err
}

// ApplyMessage stamps the denormalized last-message snapshot, bumps the
// recipient's unread counter and activates the thread. Every message insert
// goes through this exact update.
func (r *ConversationRepository) ApplyMessage(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	content string,
	sentAt time.Time,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_at = $2,
		    last_message_text = $3,
		    last_message_sender_id = $4,
		    is_active = TRUE,
		    unread_count_renter = unread_count_renter + CASE WHEN renter_id <> $4 THEN 1 ELSE 0 END,
		    unread_count_owner  = unread_count_owner  + CASE WHEN owner_id  <> $4 THEN 1 ELSE 0 END,
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, sentAt, content, senderID)
	return err
}

// RefreshSnapshot recomputes the last-message fields from the message log,
// used after an edit or delete touched the newest message.
func (r *ConversationRepository) RefreshSnapshot(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET last_message_at = (
			SELECT created_at FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC LIMIT 1
		),
		last_message_text = (
			SELECT content FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC LIMIT 1
		),
		last_message_sender_id = (
			SELECT sender_id FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC LIMIT 1
		),
		updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

// DecrementUnread compensates a recipient's counter when one of their unread
// messages is deleted.
func (r *ConversationRepository) DecrementUnread(
	ctx context.Context,
	conversationID int64,
	recipientID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET unread_count_renter = GREATEST(unread_count_renter - CASE WHEN renter_id = $2 THEN 1 ELSE 0 END, 0),
		    unread_count_owner  = GREATEST(unread_count_owner  - CASE WHEN owner_id  = $2 THEN 1 ELSE 0 END, 0),
		    updated_at = NOW()
		WHERE id = $1
	`, conversationID, recipientID)
	return err
}

// CountForOwner feeds the host analytics view from the denormalized columns.
func (r *ConversationRepository) CountForOwner(
	ctx context.Context,
	ownerID int64,
) (total int, active int, unread int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COALESCE(SUM(unread_count_owner), 0)
		FROM conversations
		WHERE owner_id = $1 AND deleted_by_owner = FALSE
	`, ownerID).Scan(&total, &active, &unread)
	return total, active, unread, err
}

func (r *ConversationRepository) ListIDsForOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM conversations
		WHERE owner_id = $1 AND deleted_by_owner = FALSE
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func summaryColumns() string {
	return `
		c.id, c.conversation_type, c.renter_id, c.owner_id, c.vehicle_id,
		c.team_id, c.driver_profile_id, c.reservation_id, c.is_active,
		c.deleted_by_renter, c.deleted_by_owner, c.last_message_at,
		c.last_message_text, c.last_message_sender_id, c.unread_count_renter,
		c.unread_count_owner, c.created_at, c.updated_at,
		cu.id, cu.display_name,
		v.id, v.title, v.make, v.model, v.year,
		t.id, t.name,
		d.id, d.display_name, d.discipline,
		res.id, res.status, res.starts_at, res.ends_at`
}

func scanConversationSummary(row conversationScanner) (*models.ConversationSummary, error) {
	var summary models.ConversationSummary
	var counterpart models.UserSummary

	var vehicleID, teamID, driverID, reservationID sql.NullInt64
	var vehicleTitle, vehicleMake, vehicleModel sql.NullString
	var vehicleYear sql.NullInt64
	var teamName sql.NullString
	var driverName, driverDiscipline sql.NullString
	var reservationStatus sql.NullString
	var reservationStartsAt, reservationEndsAt sql.NullTime

	err := row.Scan(
		&summary.ID,
		&summary.ConversationType,
		&summary.RenterID,
		&summary.OwnerID,
		&summary.VehicleID,
		&summary.TeamID,
		&summary.DriverProfileID,
		&summary.ReservationID,
		&summary.IsActive,
		&summary.DeletedByRenter,
		&summary.DeletedByOwner,
		&summary.LastMessageAt,
		&summary.LastMessageText,
		&summary.LastMessageSenderID,
		&summary.UnreadCountRenter,
		&summary.UnreadCountOwner,
		&summary.CreatedAt,
		&summary.UpdatedAt,
		&counterpart.ID,
		&counterpart.DisplayName,
		&vehicleID,
		&vehicleTitle,
		&vehicleMake,
		&vehicleModel,
		&vehicleYear,
		&teamID,
		&teamName,
		&driverID,
		&driverName,
		&driverDiscipline,
		&reservationID,
		&reservationStatus,
		&reservationStartsAt,
		&reservationEndsAt,
	)
	if err != nil {
		return nil, err
	}

	summary.Counterpart = &counterpart
	if vehicleID.Valid {
		summary.Vehicle = &models.VehicleSummary{
			ID:    vehicleID.Int64,
			Title: vehicleTitle.String,
			Make:  vehicleMake.String,
			Model: vehicleModel.String,
			Year:  int(vehicleYear.Int64),
		}
	}
	if teamID.Valid {
		summary.Team = &models.TeamSummary{ID: teamID.Int64, Name: teamName.String}
	}
	if driverID.Valid {
		summary.Driver = &models.DriverSummary{
			ID:          driverID.Int64,
			DisplayName: driverName.String,
			Discipline:  driverDiscipline.String,
		}
	}
	if reservationID.Valid {
		summary.Reservation = &models.ReservationSummary{
			ID:       reservationID.Int64,
			Status:   reservationStatus.String,
			StartsAt: reservationStartsAt.Time,
			EndsAt:   reservationEndsAt.Time,
		}
	}
	return &summary, nil
}
