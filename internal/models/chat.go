package models

import "time"

const (
	ConversationTypeRental = "rental"
	ConversationTypeTeam   = "team"
	ConversationTypeDriver = "driver"
)

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

type Conversation struct {
	ID                  int64      `json:"id"`
	ConversationType    string     `json:"conversation_type"`
	RenterID            int64      `json:"renter_id"`
	OwnerID             int64      `json:"owner_id"`
	VehicleID           *int64     `json:"vehicle_id,omitempty"`
	TeamID              *int64     `json:"team_id,omitempty"`
	DriverProfileID     *int64     `json:"driver_profile_id,omitempty"`
	ReservationID       *int64     `json:"reservation_id,omitempty"`
	IsActive            bool       `json:"is_active"`
	DeletedByRenter     bool       `json:"deleted_by_renter"`
	DeletedByOwner      bool       `json:"deleted_by_owner"`
	LastMessageAt       *time.Time `json:"last_message_at,omitempty"`
	LastMessageText     *string    `json:"last_message_text,omitempty"`
	LastMessageSenderID *int64     `json:"last_message_sender_id,omitempty"`
	UnreadCountRenter   int        `json:"unread_count_renter"`
	UnreadCountOwner    int        `json:"unread_count_owner"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Participant reports whether userID is either party of the conversation.
func (c *Conversation) Participant(userID int64) bool {
	return c.RenterID == userID || c.OwnerID == userID
}

// CounterpartID returns the other party for a given participant.
func (c *Conversation) CounterpartID(userID int64) int64 {
	if userID == c.RenterID {
		return c.OwnerID
	}
	return c.RenterID
}

// DeletedBy reports whether the given participant has soft-deleted the thread.
func (c *Conversation) DeletedBy(userID int64) bool {
	if userID == c.RenterID {
		return c.DeletedByRenter
	}
	if userID == c.OwnerID {
		return c.DeletedByOwner
	}
	return false
}

type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	Content        string     `json:"content"`
	MessageType    string     `json:"message_type"`
	ReplyTo        *int64     `json:"reply_to,omitempty"`
	Attachments    []string   `json:"attachments,omitempty"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RepliedToMessage is the snapshot attached to a message whose reply_to is set.
type RepliedToMessage struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
}

type MessageDetail struct {
	Message
	RepliedTo *RepliedToMessage `json:"replied_to,omitempty"`
}

type ConversationSummary struct {
	Conversation
	Counterpart *UserSummary        `json:"counterpart,omitempty"`
	Vehicle     *VehicleSummary     `json:"vehicle,omitempty"`
	Team        *TeamSummary        `json:"team,omitempty"`
	Driver      *DriverSummary      `json:"driver,omitempty"`
	Reservation *ReservationSummary `json:"reservation,omitempty"`
}

type VehicleConversations struct {
	Vehicle       VehicleSummary        `json:"vehicle"`
	Conversations []ConversationSummary `json:"conversations"`
}

type HostConversationAnalytics struct {
	TotalConversations  int      `json:"total_conversations"`
	ActiveConversations int      `json:"active_conversations"`
	UnreadMessages      int      `json:"unread_messages"`
	AvgResponseSeconds  *float64 `json:"avg_response_seconds,omitempty"`
}

type BulkActionResult struct {
	Processed    int     `json:"processed"`
	ProcessedIDs []int64 `json:"processed_ids"`
}
