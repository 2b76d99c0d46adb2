package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ZenMuxClient talks to an OpenAI-compatible completion endpoint.
// It holds a pool of API keys and switches to the next one whenever the
// current key gets rate limited; the failed request itself is not retried.
type ZenMuxClient struct {
	mu      sync.Mutex
	keys    []string
	current int
	client  *openai.Client

	baseURL     string
	model       string
	temperature float32
	maxTokens   int
}

func NewZenMux(keys []string, baseURL, model string, temperature float32, maxTokens int) (*ZenMuxClient, error) {
	if len(keys) == 0 || keys[0] == "" {
		return nil, fmt.Errorf("%w: no api key provided", ErrConfig)
	}
	c := &ZenMuxClient{
		keys:        keys,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
	c.client = c.build(keys[0])
	return c, nil
}

func (c *ZenMuxClient) build(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	return openai.NewClientWithConfig(config)
}

func (c *ZenMuxClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	var oaMsgs []openai.ChatCompletionMessage
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            oaMsgs,
		Temperature:         c.temperature,
		MaxCompletionTokens: c.maxTokens,
	})
	if err != nil {
		return Response{}, c.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("%w: no choices in completion", ErrProtocol)
	}

	out := Response{
		Content: resp.Choices[0].Message.Content,
		Model:   c.model,
	}
	out.PromptTokens = resp.Usage.PromptTokens
	out.CompletionTokens = resp.Usage.CompletionTokens
	out.TotalTokens = resp.Usage.TotalTokens
	return out, nil
}

// mapError normalizes go-openai failures into the package error kinds.
func (c *ZenMuxClient) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return c.mapStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return c.mapStatus(reqErr.HTTPStatusCode, err)
	}

	// A 2xx answer whose body could not be decoded.
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	// Everything else is transport-level: dial failures, timeouts,
	// cancelled contexts.
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func (c *ZenMuxClient) mapStatus(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrConfig, err)
	case status == http.StatusTooManyRequests:
		c.rotateKey()
		return fmt.Errorf("%w: %v", ErrTransient, err)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
}

func (c *ZenMuxClient) rotateKey() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.keys) <= 1 {
		return
	}
	c.current = (c.current + 1) % len(c.keys)
	c.client = c.build(c.keys[c.current])
	log.Printf("rate limited, switching to next api key (index=%d)", c.current)
}
