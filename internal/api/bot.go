package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "spot-counter/internal/application"
	"spot-counter/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я считаю флуоресцентные пятна на снимках микроскопа.

📸 Отправьте снимок (фото или файлом без сжатия), и я верну его с отмеченными пятнами.

📋 Команды:
/count — начать подсчёт
/params — текущие параметры
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте снимок, лучше файлом: сжатие Telegram меняет яркость
2️⃣ Бот выделит канал, найдёт кандидаты и отсеет пятна без контраста с фоном
3️⃣ Вы получите снимок с отмеченными пятнами и их число

📋 Команды:
/count — начать подсчёт
/cancel — отменить операцию
/params — текущие параметры
/channel red|green|blue — канал детекции
/threshold <абс> <отн> — пороги контраста, например /threshold 25 0.25
/reset — вернуть параметры по умолчанию`

	msgAwaitingImage   = "📸 Отправьте снимок для подсчёта пятен."
	msgCancelled       = "❌ Операция отменена. Отправьте /count для нового подсчёта."
	msgSendImage       = "📸 Пожалуйста, отправьте снимок для подсчёта пятен."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Пришлите цветной снимок PNG, JPEG или TIFF."
	msgChannelUsage    = "Использование: /channel red|green|blue"
	msgThresholdUsage  = "Использование: /threshold <абсолютный> <относительный>, например /threshold 25 0.25"
	msgParamsReset     = "🔄 Параметры сброшены к значениям по умолчанию."
	msgNotDocImage     = "📎 Этот файл не похож на изображение."
)

// botAPI: часть tgbotapi.BotAPI, которой пользуется бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота
type Bot struct {
	api      botAPI
	sessions *app.SessionService
	counter  *app.CountingService
	client   *http.Client
	fileURL  func(tgbotapi.File) string
	log      zerolog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, sessions *app.SessionService, counter *app.CountingService, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.With().Str("component", "bot").Logger()
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	bot := newBot(api, sessions, counter, log)
	bot.fileURL = func(f tgbotapi.File) string { return f.Link(api.Token) }
	return bot, nil
}

func newBot(api botAPI, sessions *app.SessionService, counter *app.CountingService, log zerolog.Logger) *Bot {
	return &Bot{
		api:      api,
		sessions: sessions,
		counter:  counter,
		client:   http.DefaultClient,
		log:      log,
	}
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото приходит в нескольких размерах, берём самый большой
	if len(msg.Photo) > 0 {
		b.handleImage(ctx, msg.Chat.ID, msg.Photo[len(msg.Photo)-1].FileID)
		return
	}

	// Файл без сжатия
	if msg.Document != nil {
		if !isImageDocument(msg.Document) {
			b.sendMessage(msg.Chat.ID, msgNotDocImage)
			return
		}
		b.handleImage(ctx, msg.Chat.ID, msg.Document.FileID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendImage)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, chatID, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "count":
		if _, err := b.sessions.BeginCount(ctx, chatID); err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("begin count")
		}
		b.sendMessage(chatID, msgAwaitingImage)

	case "cancel":
		if _, err := b.sessions.Cancel(ctx, chatID); err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("cancel")
		}
		b.sendMessage(chatID, msgCancelled)

	case "params":
		session, err := b.sessions.Get(ctx, chatID)
		if err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("get session")
			return
		}
		b.sendMessage(chatID, formatParams(session.Params))

	case "channel":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			b.sendMessage(chatID, msgChannelUsage)
			return
		}
		session, err := b.sessions.SetChannel(ctx, chatID, arg)
		if err != nil {
			b.sendMessage(chatID, msgChannelUsage)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Канал детекции: %s", session.Params.Channel))

	case "threshold":
		contrast, rel, err := parseThresholds(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgThresholdUsage)
			return
		}
		if _, err := b.sessions.SetThresholds(ctx, chatID, contrast, rel); err != nil {
			b.sendMessage(chatID, msgThresholdUsage)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Пороги: абсолютный %g, относительный %g", contrast, rel))

	case "reset":
		if _, err := b.sessions.ResetParams(ctx, chatID); err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("reset params")
			return
		}
		b.sendMessage(chatID, msgParamsReset)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает снимок, считает пятна и отправляет оверлей
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID string) {
	session, err := b.sessions.SetState(ctx, chatID, entity.StateProcessing)
	if err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("set state")
		return
	}
	defer b.setState(ctx, chatID, entity.StateMainMenu)

	b.sendMessage(chatID, msgProcessing)

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("download image")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	result, overlay, err := b.counter.CountUpload(ctx, bytes.NewReader(data), session.Params)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidImage) {
			b.log.Warn().Err(err).Int64("chat", chatID).Msg("invalid upload")
		} else {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("count upload")
		}
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.log.Info().Int64("chat", chatID).Int("count", result.Count()).Int("candidates", result.Candidates).Msg("upload counted")

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "counted.jpg", Bytes: overlay})
	photo.Caption = fmt.Sprintf("🔴 Найдено пятен: %d (кандидатов: %d)", result.Count(), result.Candidates)
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("send overlay")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.fileURL(file), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, chatID int64, state entity.SessionState) {
	if _, err := b.sessions.SetState(ctx, chatID, state); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("set state")
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("send message")
	}
}

// isImageDocument проверяет MIME-тип или расширение присланного файла
func isImageDocument(doc *tgbotapi.Document) bool {
	if strings.HasPrefix(doc.MimeType, "image/") {
		return true
	}
	return entity.HasExtension(doc.FileName, entity.DefaultExtensions)
}

// parseThresholds разбирает аргументы «<абсолютный> <относительный>»
func parseThresholds(args string) (float64, float64, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 values, got %d", len(fields))
	}
	contrast, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return 0, 0, err
	}
	rel, err := strconv.ParseFloat(strings.ReplaceAll(fields[1], ",", "."), 64)
	if err != nil {
		return 0, 0, err
	}
	return contrast, rel, nil
}

// formatParams выводит параметры чата в виде списка
func formatParams(params entity.DetectionParams) string {
	var b strings.Builder
	b.WriteString("⚙️ Текущие параметры:\n")
	for _, line := range params.Describe() {
		fmt.Fprintf(&b, "%s = %s (%s)\n", line.Name, line.Value, line.Description)
	}
	return b.String()
}
