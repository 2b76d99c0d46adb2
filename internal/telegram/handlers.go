package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zenbot/internal/dialogue"
	"zenbot/internal/format"
	"zenbot/internal/llm"
)

const (
	welcomeText = "Привет! Я AI-ассистент.\n\n" +
		"Отвечаю на вопросы с учётом контекста диалога.\n" +
		"Задавай вопросы или используй кнопки ниже!"
	helpText = "/start — приветствие и меню\n" +
		"/help — эта справка\n" +
		"/about — информация о модели\n" +
		"/reset — очистка контекста\n\n" +
		"Пиши обычные сообщения, я отвечу с учётом предыдущего контекста."
	refusalText   = "Пожалуйста, без нецензурных слов 🙏"
	resetDoneText = "Контекст очищен. Можем начать заново!"

	transientText = "Упс, сервис временно недоступен. Попробуй позже."
	misconfigText = "Бот настроен неверно. Сообщите администратору."
	failureText   = "Упс, произошла ошибка. Попробуй позже."
)

func (b *Bot) aboutText() string {
	return fmt.Sprintf("Модель: %s", b.model)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleChat(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		log.Printf("user %d started bot", msg.From.ID)
		b.sendMenu(msg.Chat.ID, welcomeText)
	case "help":
		b.sendMenu(msg.Chat.ID, helpText)
	case "about":
		b.sendMenu(msg.Chat.ID, b.aboutText())
	case "reset":
		b.handleReset(ctx, msg.Chat.ID, msg.From.ID)
	default:
		log.Printf("unknown command %q from %d", msg.Command(), msg.From.ID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	switch cb.Data {
	case helpCmd:
		b.sendMenu(chatID, helpText)
	case aboutCmd:
		b.sendMenu(chatID, b.aboutText())
	case resetCmd:
		b.handleReset(ctx, chatID, cb.From.ID)
	}
}

func (b *Bot) handleReset(ctx context.Context, chatID, userID int64) {
	if err := b.store.Reset(ctx, userID); err != nil {
		log.Printf("failed to reset dialogue for %d: %v", userID, err)
		b.sendMessage(chatID, failureText)
		return
	}
	log.Printf("dialogue reset for %d", userID)
	b.sendMenu(chatID, resetDoneText)
}

// handleChat runs the plain-text flow: filter, load context, complete,
// commit both turns, reply. Turns are appended only after a successful
// completion so a failed request leaves the history exactly as it was.
func (b *Bot) handleChat(ctx context.Context, chatID, userID int64, text string) {
	if text == "" {
		return
	}
	log.Printf("incoming message from %d: %q", userID, text)

	if v := b.stopWords.Check(text); v.Blocked {
		log.Printf("message from %d blocked by stop word %q", userID, v.Match)
		b.sendMessage(chatID, refusalText)
		return
	}

	turns, err := b.store.Load(ctx, userID)
	if err != nil {
		// Best effort: answer without history rather than refuse outright.
		log.Printf("failed to load context for %d: %v", userID, err)
		turns = nil
	}

	msgs := make([]llm.Message, 0, len(turns)+2)
	if b.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: b.systemPrompt})
	}
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Text})
	}
	msgs = append(msgs, llm.Message{Role: dialogue.RoleUser, Content: text})

	resp, err := b.llmClient.Generate(ctx, msgs)
	if err != nil {
		b.reportError(chatID, userID, err)
		return
	}

	log.Printf("completion for %d [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		userID, resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)

	reply := format.RemoveMarkdownStars(resp.Content)

	// A failed append is logged and the reply still goes out: the exchange
	// is shown to the user but not retained in history.
	if err := b.store.Append(ctx, userID, dialogue.RoleUser, text); err != nil {
		log.Printf("failed to append user turn for %d: %v", userID, err)
	} else if err := b.store.Append(ctx, userID, dialogue.RoleAssistant, reply); err != nil {
		log.Printf("failed to append assistant turn for %d: %v", userID, err)
	}

	chunks := format.Split(reply, format.ChunkBodyLimit)
	for i, chunk := range chunks {
		if len(chunks) > 1 {
			chunk = fmt.Sprintf("Часть %d/%d\n%s", i+1, len(chunks), chunk)
		}
		out := tgbotapi.NewMessage(chatID, chunk)
		if i == len(chunks)-1 {
			out.ReplyMarkup = resetKeyboard()
		}
		if _, err := b.s.Send(out); err != nil {
			log.Printf("failed to send reply: %v", err)
		}
	}
}

// reportError converts adapter/storage failures into fixed user-facing
// status messages. Raw error detail stays in the log.
func (b *Bot) reportError(chatID, userID int64, err error) {
	log.Printf("completion failed for %d: %v", userID, err)
	switch {
	case errors.Is(err, llm.ErrConfig):
		b.sendMessage(chatID, misconfigText)
	case errors.Is(err, llm.ErrTransient):
		b.sendMessage(chatID, transientText)
	default:
		b.sendMessage(chatID, failureText)
	}
}
