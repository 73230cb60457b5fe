// Package announce дублирует объявления студии в Telegram канал.
package announce

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// лимит Telegram на длину текста сообщения
const maxMessageLength = 4096

type TelegramAnnouncer struct {
	bot    *bot.Bot
	chatID string
	logger *zap.Logger
}

// NewTelegramAnnouncer создаёт клиента без запроса getMe: сеть нужна только при отправке.
// serverURL пустой для api.telegram.org.
func NewTelegramAnnouncer(token, chatID, serverURL string, logger *zap.Logger) (*TelegramAnnouncer, error) {
	opts := []bot.Option{bot.WithSkipGetMe()}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramAnnouncer{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

// AnnounceNotice отправляет объявление в канал
func (a *TelegramAnnouncer) AnnounceNotice(ctx context.Context, notice *model.Notice) error {
	msg, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    a.chatID,
		Text:      FormatNotice(notice),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send notice %d: %w", notice.ID, err)
	}

	a.logger.Info("Notice announced",
		zap.Int64("notice_id", notice.ID),
		zap.String("chat_id", a.chatID),
		zap.Int("message_id", msg.ID),
	)
	return nil
}

// FormatNotice собирает HTML текст сообщения
func FormatNotice(notice *model.Notice) string {
	title := html.EscapeString(notice.Title)
	content := html.EscapeString(notice.Content)

	header := fmt.Sprintf("📢 <b>%s</b>\n\n", title)
	if room := maxMessageLength - utf8.RuneCountInString(header); utf8.RuneCountInString(content) > room {
		content = truncate(content, room-1) + "…"
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(content)
	return sb.String()
}

// truncate обрезает по рунам, не разрывая HTML сущность
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if amp := strings.LastIndex(cut, "&"); amp >= 0 && !strings.Contains(cut[amp:], ";") {
		cut = cut[:amp]
	}
	return cut
}
