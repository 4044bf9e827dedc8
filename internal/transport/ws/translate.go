package ws

import "github.com/agent-racer/botsched/internal/update"

func (m *WireMessage) toDomain() *update.Message {
	if m == nil {
		return nil
	}
	return &update.Message{
		ID:   m.ID,
		From: update.User{ID: m.From.ID, Username: m.From.Username},
		Chat: update.Chat{ID: m.Chat.ID},
		Text: m.Text,
	}
}

func (c *WireCallback) toDomain() *update.CallbackQuery {
	if c == nil {
		return nil
	}
	return &update.CallbackQuery{
		ID:      c.ID,
		From:    update.User{ID: c.From.ID, Username: c.From.Username},
		Message: c.Message.toDomain(),
		Data:    c.Data,
	}
}

func (q *WireInline) toDomain() *update.InlineQuery {
	if q == nil {
		return nil
	}
	return &update.InlineQuery{
		ID:    q.ID,
		From:  update.User{ID: q.From.ID, Username: q.From.Username},
		Query: q.Query,
	}
}
