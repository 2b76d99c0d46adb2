package llm

import (
	"context"
	"errors"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Error kinds surfaced by Client implementations. Callers match them with
// errors.Is and decide how each one is reported to the user.
var (
	// ErrConfig means the request can never succeed as configured
	// (missing or rejected credentials).
	ErrConfig = errors.New("completion api misconfigured")
	// ErrTransient means the request may succeed if repeated later
	// (network failure, timeout, rate limit, upstream 5xx).
	ErrTransient = errors.New("completion api temporarily unavailable")
	// ErrProtocol means the API answered with something we cannot interpret.
	ErrProtocol = errors.New("unexpected completion api response")
)

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
