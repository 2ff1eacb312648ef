package repository

import (
	"context"
	"database/sql"

	"github.com/Mnunley1/Renegade-Race-sub001/internal/models"
)

const messageColumns = `
	id, conversation_id, sender_id, content, message_type, reply_to,
	attachments, is_read, read_at, edited_at, created_at`

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

type CreateMessageInput struct {
	ConversationID int64
	SenderID       int64
	Content        string
	MessageType    string
	ReplyTo        *int64
	Attachments    []string
}

func scanMessage(row conversationScanner) (*models.Message, error) {
	var message models.Message
	err := row.Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.Content,
		&message.MessageType,
		&message.ReplyTo,
		&message.Attachments,
		&message.IsRead,
		&message.ReadAt,
		&message.EditedAt,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) Create(ctx context.Context, input CreateMessageInput) (*models.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content, message_type, reply_to, attachments, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING` + messageColumns

	return scanMessage(r.db.QueryRow(
		ctx,
		query,
		input.ConversationID,
		input.SenderID,
		input.Content,
		input.MessageType,
		input.ReplyTo,
		input.Attachments,
	))
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID int64) (*models.Message, error) {
	query := `
		SELECT` + messageColumns + `
		FROM messages
		WHERE id = $1
	`
	return scanMessage(r.db.QueryRow(ctx, query, messageID))
}

// ListByConversation pages the log newest first, each message joined with the
// snapshot of the message it replies to.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID int64,
	limit int,
	offset int,
) ([]models.MessageDetail, int, error) {
	totalQuery := `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = $1
	`
	var total int
	if err := r.db.QueryRow(ctx, totalQuery, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.message_type,
		       m.reply_to, m.attachments, m.is_read, m.read_at, m.edited_at, m.created_at,
		       rm.id, rm.sender_id, ru.display_name, rm.content
		FROM messages m
		LEFT JOIN messages rm ON rm.id = m.reply_to
		LEFT JOIN users ru ON ru.id = rm.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details := make([]models.MessageDetail, 0)
	for rows.Next() {
		var detail models.MessageDetail
		var repliedID, repliedSenderID sql.NullInt64
		var repliedSenderName, repliedContent sql.NullString

		if err := rows.Scan(
			&detail.ID,
			&detail.ConversationID,
			&detail.SenderID,
			&detail.Content,
			&detail.MessageType,
			&detail.ReplyTo,
			&detail.Attachments,
			&detail.IsRead,
			&detail.ReadAt,
			&detail.EditedAt,
			&detail.CreatedAt,
			&repliedID,
			&repliedSenderID,
			&repliedSenderName,
			&repliedContent,
		); err != nil {
			return nil, 0, err
		}

		if repliedID.Valid {
			detail.RepliedTo = &models.RepliedToMessage{
				ID:         repliedID.Int64,
				SenderID:   repliedSenderID.Int64,
				SenderName: repliedSenderName.String,
				Content:    repliedContent.String,
			}
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListAllAscending returns the full log oldest first, used by the host
// analytics response-time walk.
func (r *MessageRepository) ListAllAscending(
	ctx context.Context,
	conversationID int64,
) ([]models.Message, error) {
	query := `
		SELECT` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) MarkConversationRead(
	ctx context.Context,
	conversationID int64,
	readerID int64,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE, read_at = NOW()
		WHERE conversation_id = $1
		  AND sender_id <> $2
		  AND is_read = FALSE
	`, conversationID, readerID)
	return err
}

func (r *MessageRepository) UpdateContent(
	ctx context.Context,
	messageID int64,
	content string,
) (*models.Message, error) {
	query := `
		UPDATE messages
		SET content = $2, edited_at = NOW()
		WHERE id = $1
		RETURNING` + messageColumns

	return scanMessage(r.db.QueryRow(ctx, query, messageID, content))
}

// Delete removes one message and returns the deleted row so the caller can
// compensate the conversation's unread counter and snapshot.
func (r *MessageRepository) Delete(ctx context.Context, messageID int64) (*models.Message, error) {
	query := `
		DELETE FROM messages
		WHERE id = $1
		RETURNING` + messageColumns

	return scanMessage(r.db.QueryRow(ctx, query, messageID))
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID)
	return err
}
