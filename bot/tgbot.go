package bot

import (
	"EduPortal/internal/lib/sl"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// TgBot posts administrator alerts to a single Telegram chat.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminId     int64
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

// Start polls for updates so the bot can answer /chatid, which tells an
// operator the value to put into telegram.admin_id. It blocks.
func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Warn("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	dispatcher.AddHandler(handlers.NewCommand("chatid", t.chatID))

	updater := ext.NewUpdater(dispatcher, nil)
	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	t.log.With(slog.String("bot", t.botUsername)).Info("polling started")

	updater.Idle()
	return nil
}

func (t *TgBot) chatID(b *tgbotapi.Bot, ctx *ext.Context) error {
	_, err := ctx.EffectiveMessage.Reply(b, fmt.Sprintf("chat id: %d", ctx.EffectiveChat.Id), nil)
	return err
}

// SendMessage delivers text to the admin chat in the background.
func (t *TgBot) SendMessage(msg string) {
	if t.adminId == 0 {
		return
	}
	go t.plainResponse(t.adminId, msg)
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	sanitized := sanitize(text)
	if sanitized == "" {
		t.log.With(slog.Int64("id", chatId)).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, sanitized, &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err == nil {
		return
	}
	t.log.With(slog.Int64("id", chatId)).Warn("sending message", sl.Err(err))

	_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Error("sending plain message", sl.Err(err))
	}
}

// sanitize escapes every MarkdownV2 reserved character.
func sanitize(input string) string {
	const reserved = "\\_*[]()~`>#+-=|{}.!"

	var b strings.Builder
	b.Grow(len(input))
	for _, char := range input {
		if strings.ContainsRune(reserved, char) {
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
