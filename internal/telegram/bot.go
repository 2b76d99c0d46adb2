package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zenbot/internal/dialogue"
	"zenbot/internal/filter"
	"zenbot/internal/llm"
)

// Inline menu callback payloads. Buttons map to the same handlers as the
// slash commands.
const (
	helpCmd  = "CMD_HELP"
	aboutCmd = "CMD_ABOUT"
	resetCmd = "CMD_RESET"
)

type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	llmClient    llm.Client
	store        dialogue.Store
	stopWords    *filter.Filter
	systemPrompt string
	model        string
}

func New(botToken string, llmClient llm.Client, store dialogue.Store, stopWords *filter.Filter, systemPrompt, model string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		llmClient:    llmClient,
		store:        store,
		stopWords:    stopWords,
		systemPrompt: systemPrompt,
		model:        model,
	}, nil
}

// Start registers the command list and consumes updates until the channel
// closes. Each update runs on its own goroutine so a slow completion for one
// user does not block the others; per-user ordering is the store's job.
func (b *Bot) Start(ctx context.Context) {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		update := update
		go func() {
			switch {
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}()
	}
}

func (b *Bot) registerCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Запустить бота и показать меню"},
		tgbotapi.BotCommand{Command: "help", Description: "Показать справку"},
		tgbotapi.BotCommand{Command: "about", Description: "Информация о модели"},
		tgbotapi.BotCommand{Command: "reset", Description: "Очистить контекст диалога"},
	)
	if _, err := b.s.Request(cmds); err != nil {
		log.Printf("failed to register bot commands: %v", err)
	}
}

func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Помощь", helpCmd),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 О модели", aboutCmd),
			tgbotapi.NewInlineKeyboardButtonData("♻️ Сброс", resetCmd),
		),
	)
}

func resetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ Сбросить контекст", resetCmd),
		),
	)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) sendMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = menuKeyboard()
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
