package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"healthtrack/internal/health"
)

// telegramAPI is the part of *tgbotapi.BotAPI the notifier uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramNotifier sends reminders to one chat with an inline keyboard for
// the reminder actions.
type TelegramNotifier struct {
	api    telegramAPI
	chatID int64
	logger health.Logger
}

var (
	_ health.Notifier       = (*TelegramNotifier)(nil)
	_ health.ActionListener = (*TelegramNotifier)(nil)
)

func NewTelegramNotifier(token string, chatID int64, logger health.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return newTelegramNotifier(api, chatID, logger), nil
}

func newTelegramNotifier(api telegramAPI, chatID int64, logger health.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

func (t *TelegramNotifier) Notify(_ context.Context, n health.Notification) error {
	if _, err := t.api.Send(buildTelegramMessage(t.chatID, n)); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	t.logger.Debug("telegram notification sent", "chat", t.chatID, "reminder", n.ReminderID)
	return nil
}

// Listen handles inline keyboard presses until ctx is done.
func (t *TelegramNotifier) Listen(ctx context.Context, handle health.ActionHandler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.CallbackQuery == nil {
				continue
			}
			t.handleCallback(ctx, update.CallbackQuery, handle)
		}
	}
}

func (t *TelegramNotifier) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery, handle health.ActionHandler) {
	reply := "Done"
	actionID, reminderID, err := parseCallbackData(q.Data)
	if err == nil {
		err = handle(ctx, actionID, reminderID)
	}
	if err != nil {
		t.logger.Error("telegram action failed", "data", q.Data, "error", err)
		reply = "Something went wrong"
	}
	if _, err := t.api.Request(tgbotapi.NewCallback(q.ID, reply)); err != nil {
		t.logger.Warn("telegram callback answer failed", "error", err)
	}
}

func buildTelegramMessage(chatID int64, n health.Notification) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, n.Title+"\n"+n.Body)
	if len(n.Actions) == 0 || n.ReminderID == "" {
		return msg
	}
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(n.Actions))
	for _, a := range n.Actions {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(a.Title, callbackData(a.ID, n.ReminderID)))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	return msg
}
