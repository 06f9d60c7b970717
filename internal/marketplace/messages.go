package marketplace

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Conversations lists one summary per correspondent, most recent first.
func (s *Service) Conversations(ctx context.Context) ([]Conversation, error) {
	return listAt[Conversation](ctx, s, "/user_messages/conversations/", nil)
}

// ChatWith returns the message history with userID. The server marks
// incoming messages as read.
func (s *Service) ChatWith(ctx context.Context, userID int64) (Chat, error) {
	if userID <= 0 {
		return Chat{}, invalid("user id is required")
	}
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	var chat Chat
	if err := s.get(ctx, "/user_messages/chat_with_user/", query, &chat); err != nil {
		return Chat{}, err
	}
	if chat.Messages == nil {
		chat.Messages = []Message{}
	}
	return chat, nil
}

// SendMessage delivers content to receiverID.
func (s *Service) SendMessage(ctx context.Context, receiverID int64, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if receiverID <= 0 {
		return Message{}, invalid("receiver id is required")
	}
	if content == "" {
		return Message{}, invalid("message cannot be empty")
	}
	body := struct {
		ReceiverID int64  `json:"receiver_id"`
		Content    string `json:"content"`
	}{ReceiverID: receiverID, Content: content}
	var msg Message
	if err := s.post(ctx, "/user_messages/", body, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// UnreadCount returns the number of unread incoming messages.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := s.get(ctx, "/user_messages/unread_count/", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkAllRead marks every message from userID as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return invalid("user id is required")
	}
	return s.post(ctx, "/user_messages/mark_all_as_read/", map[string]int64{"user_id": userID}, nil)
}
