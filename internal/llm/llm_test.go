package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/llm"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"commentary", "Sure! Here you go:\n{\"focus_duration\": 30} hope it helps", `{"focus_duration": 30}`},
		{"nested", `x {"a":{"b":2},"c":3} y {"d":4}`, `{"a":{"b":2},"c":3}`},
		{"unclosed prefix", `{ {"a":1}`, `{"a":1}`},
		{"brace in string", `{"reasoning":"use {braces} wisely","x":1}`, `{"reasoning":"use {braces} wisely","x":1}`},
		{"think block", "<think>maybe {not json}</think>\n```json\n{\"ok\":true}\n```", `{"ok":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := llm.ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	for _, in := range []string{"", "no braces here", "{unterminated", "{not: json}"} {
		if _, err := llm.ExtractJSON(in); !errors.Is(err, llm.ErrNoJSON) {
			t.Errorf("%q: expected ErrNoJSON, got %v", in, err)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := map[string]string{
		"  plain answer \n":                       "plain answer",
		"<think>hmm</think>\nTry shorter blocks.": "Try shorter blocks.",
		"a<think>x</think>b<think>y</think>c":     "abc",
		"answer<think>never closed":               "answer",
	}
	for in, want := range tests {
		if got := llm.PlainText(in); got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChatClientGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	c := llm.NewChatClient(srv.URL, "secret", "test-model", srv.Client())
	reply, err := c.Generate(context.Background(), "be brief", "hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != "hello" {
		t.Errorf("expected hello, got %q", reply)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 ||
		got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestChatClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := llm.NewChatClient(srv.URL, "k", "m", srv.Client())
	if _, err := c.Generate(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestAnthropicClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			System string `json:"system"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if r.Header.Get("x-api-key") != "k" || req.System != "sys" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"focus_duration\":30}"}]}`))
	}))
	defer srv.Close()

	c := llm.NewAnthropicClient("k", "", srv.Client()).WithURL(srv.URL)
	reply, err := c.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != `{"focus_duration":30}` {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestNewWithoutKeyIsNotConfigured(t *testing.T) {
	for _, provider := range []string{config.ProviderNemotron, config.ProviderAnthropic, config.ProviderGemini, config.ProviderNone} {
		_, err := llm.New(context.Background(), config.LLM{Provider: provider})
		if !errors.Is(err, llm.ErrNotConfigured) {
			t.Errorf("%s: expected ErrNotConfigured, got %v", provider, err)
		}
	}
}
