package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "spot-counter/internal/application"
	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// maxMessageLen: ограничение Telegram на длину текста сообщения
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет итоги партии и журнал в чат
type Notifier struct {
	api    sender
	chatID int64
	log    zerolog.Logger
}

// NewNotifier создаёт уведомитель для чата chatID
func NewNotifier(token string, chatID int64, log zerolog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newNotifier(api, chatID, log), nil
}

func newNotifier(api sender, chatID int64, log zerolog.Logger) *Notifier {
	return &Notifier{
		api:    api,
		chatID: chatID,
		log:    log.With().Str("component", "notifier").Logger(),
	}
}

// Notify отправляет текстовую сводку, затем файл журнала
func (n *Notifier) Notify(ctx context.Context, summary *entity.BatchSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatSummary(summary))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	if summary.LedgerPath != "" {
		doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(summary.LedgerPath))
		if _, err := n.api.Send(doc); err != nil {
			return fmt.Errorf("send ledger: %w", err)
		}
	}

	n.log.Debug().Int64("chat", n.chatID).Msg("summary sent")
	return nil
}

// formatSummary обрезает сводку до допустимой длины сообщения
func formatSummary(summary *entity.BatchSummary) string {
	text := "📊 " + app.FormatSummary(summary)
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return text
	}
	return string(runes[:maxMessageLen-1]) + "…"
}

var _ port.Notifier = (*Notifier)(nil)
