package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, keys []string, handler http.HandlerFunc) *ZenMuxClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewZenMux(keys, srv.URL+"/v1", "test-model", 0.6, 64)
	if err != nil {
		t.Fatalf("init client: %v", err)
	}
	return c
}

func completionJSON(content string) string {
	return `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"` +
		content + `"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`
}

func TestNewZenMux_RequiresKey(t *testing.T) {
	if _, err := NewZenMux(nil, "", "m", 0, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestGenerate_Success(t *testing.T) {
	c := newTestClient(t, []string{"k1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("pong")))
	})

	resp, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "ping"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "pong" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.TotalTokens != 5 {
		t.Fatalf("usage not mapped: %+v", resp)
	}
}

func TestGenerate_AuthFailureIsConfigError(t *testing.T) {
	c := newTestClient(t, []string{"bad"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestGenerate_ServerErrorIsTransient(t *testing.T) {
	c := newTestClient(t, []string{"k1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want ErrTransient, got %v", err)
	}
}

func TestGenerate_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewZenMux([]string{"k1"}, srv.URL+"/v1", "test-model", 0.6, 64)
	if err != nil {
		t.Fatalf("init client: %v", err)
	}

	_, err = c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want ErrTransient, got %v", err)
	}
}

func TestGenerate_MalformedBodyIsProtocolError(t *testing.T) {
	c := newTestClient(t, []string{"k1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`not json at all`))
	})

	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("want ErrProtocol, got %v", err)
	}
}

func TestGenerate_EmptyChoicesIsProtocolError(t *testing.T) {
	c := newTestClient(t, []string{"k1"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`))
	})

	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("want ErrProtocol, got %v", err)
	}
}

func TestGenerate_RateLimitRotatesKey(t *testing.T) {
	c := newTestClient(t, []string{"k1", "k2"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.Header.Get("Authorization"), "k1") {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"too many requests","type":"rate_limit_exceeded"}}`))
			return
		}
		_, _ = w.Write([]byte(completionJSON("ok")))
	})

	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("rate limited request must surface ErrTransient, got %v", err)
	}

	resp, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("after rotation: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("unexpected content after rotation: %q", resp.Content)
	}
}
