package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tumorviz/internal/domain/entity"
)

// fileRef ссылка на присланный файл. Пустой fileID означает не-изображение.
type fileRef struct {
	fileID string
	name   string
}

// uploadRef достаёт снимок из сообщения: фото в максимальном разрешении
// или документ с MIME-типом изображения.
func uploadRef(msg *tgbotapi.Message) (fileRef, bool) {
	if len(msg.Photo) > 0 {
		return fileRef{fileID: msg.Photo[len(msg.Photo)-1].FileID}, true
	}
	if msg.Document != nil {
		if !strings.HasPrefix(msg.Document.MimeType, "image/") {
			return fileRef{}, true
		}
		return fileRef{fileID: msg.Document.FileID, name: msg.Document.FileName}, true
	}
	return fileRef{}, false
}

func currentModel(user *entity.User, fallback string) string {
	if user.Model != "" {
		return user.Model
	}
	return fallback
}

func formatModels(models []string, current string) string {
	var sb strings.Builder
	sb.WriteString("🧠 Доступные модели:\n")
	for _, name := range models {
		mark := "•"
		if name == current {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, name)
	}
	sb.WriteString("\nВыбор: /model <имя>")
	return sb.String()
}

func formatResult(res *entity.AnalysisResult) string {
	p := res.Prediction

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧠 Модель: %s\n", res.Model)
	fmt.Fprintf(&sb, "🔎 Результат: %s (%.1f%%)\n\n", p.Label(), 100*p.Confidence())

	sb.WriteString("📊 Вероятности:\n")
	for _, cp := range p.Ranked() {
		fmt.Fprintf(&sb, "• %s: %.1f%%\n", cp.Label, 100*cp.Probability)
	}

	if h := res.Saliency.Hotspot; !h.Empty() {
		x, y := h.Center()
		fmt.Fprintf(&sb, "\n🎯 Зона внимания: центр (%d, %d), %d×%d px", x, y, h.Width, h.Height)
	} else {
		sb.WriteString("\n🎯 Зона внимания не выделена")
	}
	return sb.String()
}
