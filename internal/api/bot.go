package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tumorviz/internal/container"
	"tumorviz/internal/domain/entity"
	"tumorviz/internal/infrastructure/chart"
)

const (
	msgStart = `👋 Привет! Я бот для анализа снимков МРТ головного мозга.

📸 Отправьте мне снимок, и я определю тип опухоли и покажу, на какие области смотрела модель.

📋 Команды:
/check — начать анализ снимка
/model — выбрать классификатор
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Выберите классификатор: /model xception или /model cnn
2️⃣ Отправьте снимок МРТ (фото или файлом)
3️⃣ Вы получите класс, вероятности и карту значимости

💡 Рекомендации:
• Отправляйте аксиальный срез без подписей
• Файлом качество выше, чем фото

⚠️ Результат не является диагнозом.

📋 Команды:
/check — начать анализ
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте снимок МРТ для анализа."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для нового анализа."
	msgSendPhoto       = "📸 Пожалуйста, отправьте снимок МРТ для анализа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю снимок..."
	msgBusy            = "⏳ Предыдущий снимок ещё обрабатывается."
	msgNotImage        = "⚠️ Файл не похож на изображение. Отправьте JPEG или PNG."
	msgProcessingError = "⚠️ Не удалось обработать снимок. Попробуйте другой файл."
	msgNoGradient      = "⚠️ Классификатор не поддерживает построение карты значимости."
	msgBadImage        = "⚠️ Снимок слишком маленький для анализа."
)

const analysisTimeout = 2 * time.Minute

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	container *container.Container
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		container: c,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
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
	if msg.From == nil {
		return
	}

	user, err := b.container.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if upload, ok := uploadRef(msg); ok {
		if upload.fileID == "" {
			b.sendMessage(msg.Chat.ID, msgNotImage)
			return
		}
		b.handleUpload(ctx, msg.Chat.ID, user, upload)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	users := b.container.UserService

	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "model":
		b.handleModel(ctx, msg, user)

	case "check":
		if _, err := users.BeginCheck(ctx, user.ID, user.ChatID); err != nil {
			log.Printf("Error updating user %d: %v", user.ID, err)
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		if _, err := users.Cancel(ctx, user.ID, user.ChatID); err != nil {
			log.Printf("Error updating user %d: %v", user.ID, err)
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleModel показывает или меняет выбранный классификатор
func (b *Bot) handleModel(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	analysis := b.container.AnalysisService
	name := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))

	if name == "" {
		b.sendMessage(msg.Chat.ID, formatModels(analysis.Models(), currentModel(user, analysis.DefaultModel())))
		return
	}
	if !analysis.HasModel(name) {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("❓ Неизвестная модель %q.\n\n%s",
			name, formatModels(analysis.Models(), currentModel(user, analysis.DefaultModel()))))
		return
	}

	if _, err := b.container.UserService.SelectModel(ctx, user.ID, user.ChatID, name); err != nil {
		log.Printf("Error selecting model for user %d: %v", user.ID, err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Выбрана модель %s.", name))
}

// handleUpload обрабатывает входящий снимок
func (b *Bot) handleUpload(ctx context.Context, chatID int64, user *entity.User, ref fileRef) {
	if user.State == entity.StateProcessing {
		b.sendMessage(chatID, msgBusy)
		return
	}

	// Устанавливаем состояние "обработка"
	b.setState(ctx, user, entity.StateProcessing)
	defer b.setState(ctx, user, entity.StateMainMenu)

	b.sendMessage(chatID, msgProcessing)

	data, filename, err := b.downloadFile(ref)
	if err != nil {
		log.Printf("Error downloading image: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	actx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	result, err := b.container.AnalysisService.Analyze(actx, user.Model, entity.Upload{
		Filename: filename,
		Data:     data,
	})
	if err != nil {
		log.Printf("Error analyzing %s for user %d: %v", filename, user.ID, err)
		b.sendMessage(chatID, errorMessage(err))
		return
	}

	b.sendMessage(chatID, formatResult(result))
	b.sendComposite(chatID, result)
	b.sendChart(chatID, result.Prediction)

	if result.Explanation != "" {
		b.sendMessage(chatID, "📝 "+result.Explanation)
	}
}

func (b *Bot) sendComposite(chatID int64, result *entity.AnalysisResult) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, result.Saliency.Composite); err != nil {
		log.Printf("Error encoding composite: %v", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  path.Base(result.Saliency.CompositePath),
		Bytes: buf.Bytes(),
	})
	photo.Caption = "🔥 Карта значимости"
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending composite: %v", err)
	}
}

func (b *Bot) sendChart(chatID int64, p *entity.Prediction) {
	data, err := chart.Probabilities(p)
	if err != nil {
		log.Printf("Error rendering chart: %v", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "probabilities.png", Bytes: data})
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending chart: %v", err)
	}
}

// setState меняет состояние пользователя, ошибки только логируются
func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.container.UserService.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		log.Printf("Error updating user %d: %v", user.ID, err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ref fileRef) ([]byte, string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: ref.fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}

	name := ref.name
	if name == "" {
		name = path.Base(file.FilePath)
	}
	return data, name, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// errorMessage подбирает ответ пользователю по виду ошибки
func errorMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrAttributionUnavailable):
		return msgNoGradient
	case errors.Is(err, entity.ErrInvalidImageDimensions):
		return msgBadImage
	case errors.Is(err, entity.ErrInvalidUpload):
		return msgNotImage
	default:
		return msgProcessingError
	}
}
