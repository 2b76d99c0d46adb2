package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"zenbot/internal/config"
	"zenbot/internal/dialogue"
	"zenbot/internal/filter"
	"zenbot/internal/llm"
	"zenbot/internal/telegram"
)

const defaultSystemPrompt = "Ты отвечаешь в стиле «Лаконичный-Практичный»: по делу, дружелюбно, " +
	"без лишних украшательств. НЕ используй markdown форматирование (звёздочки, жирный текст и т.д.). " +
	"Если нужно показать код, оборачивай его в тройные бэктики ```lang ... ``` с точным языком после первых бэктиков. " +
	"Обычные ответы делай короткими, списки оформляй маркерами -, избегай лишних эмодзи."

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	llmClient, err := llm.NewZenMux(cfg.APIKeys(), cfg.ZenMuxBaseURL, cfg.ModelName, cfg.Temperature, cfg.MaxCompletionTokens)
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}

	budget := dialogue.Budget{MaxTurns: cfg.HistoryMaxTurns, MaxChars: cfg.HistoryMaxChars}
	var store dialogue.Store
	store, err = dialogue.NewSQLiteStore(cfg.DialogueDBPath, budget)
	if err != nil {
		// Degrade to a process-local store rather than refuse to start.
		log.Printf("failed to open dialogue db at %s, falling back to in-memory store: %v", cfg.DialogueDBPath, err)
		store = dialogue.NewMemoryStore(budget)
	}

	stopWords := filter.New(cfg.StopWords)
	systemPrompt := readSystemPrompt(cfg.SystemPromptPath)

	bot, err := telegram.New(cfg.BotToken, llmClient, store, stopWords, systemPrompt, cfg.ModelName)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	log.Printf("bot starting [model=%s, db=%s]", cfg.ModelName, cfg.DialogueDBPath)
	bot.Start(context.Background())
}

func readSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return defaultSystemPrompt
	}
	return string(data)
}
