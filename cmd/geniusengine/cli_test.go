package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/providers/ai"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli,
		kong.Name("geniusengine"),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	return parser
}

func TestParse_Generate(t *testing.T) {
	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{
		"--timeout-stall=5s", "--log-level=debug",
		"generate", "-p", "gpt4", "-m", "social_media", "--no-stream", "coffee", "brand",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if ctx.Command() != "generate <idea>" {
		t.Errorf("Command() = %q", ctx.Command())
	}
	if cli.Generate.Provider != "gpt4" || cli.Generate.Mindset != "social_media" || !cli.Generate.NoStream {
		t.Errorf("unexpected generate flags %+v", cli.Generate)
	}
	if strings.Join(cli.Generate.Idea, " ") != "coffee brand" {
		t.Errorf("Idea = %q", cli.Generate.Idea)
	}
	if cli.Timeout.Stall != 5*time.Second || cli.LogLevel != "debug" {
		t.Errorf("unexpected globals %+v", cli)
	}
	if len(cli.EnvFiles) != 2 || cli.EnvFiles[0] != ".env.local" {
		t.Errorf("EnvFiles = %q", cli.EnvFiles)
	}
}

func TestParse_ServeDefaults(t *testing.T) {
	var cli CLI
	if _, err := newParser(t, &cli).Parse([]string{"serve"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cli.Serve.Addr != ":3000" || cli.Serve.ShutdownTimeout != 15*time.Second {
		t.Errorf("unexpected serve flags %+v", cli.Serve)
	}
}

func TestLoadConfig_TimeoutFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: v1\ntimeouts:\n  request: 10s\n  stall: 3s\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cli := CLI{
		Config:   path,
		EnvFiles: []string{filepath.Join(t.TempDir(), "absent.env")},
		Timeout:  TimeoutFlags{Request: 42 * time.Second},
	}
	cfg, err := cli.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.RequestTimeout != 42*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.StallTimeout != 3*time.Second {
		t.Errorf("StallTimeout = %v", cfg.StallTimeout)
	}
}

func TestGenerate_StreamsFromStdin(t *testing.T) {
	received := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			received <- body.Messages[len(body.Messages)-1].Content
		}
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer upstream.Close()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_BASE_URL", upstream.URL)

	cli := CLI{EnvFiles: []string{filepath.Join(t.TempDir(), "absent.env")}, LogLevel: "error"}
	command := GenerateCmd{Provider: "gpt4"}

	var stdout bytes.Buffer
	if err := command.Run(&cli, strings.NewReader("  idea from stdin \n"), &stdout); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stdout.String() != "Hello world\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if got := <-received; got != "idea from stdin" {
		t.Errorf("upstream received %q", got)
	}
}

func TestGenerate_BlockingPrintsCitations(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Prompt text"}}],"citations":["https://a.example","https://b.example"]}`)
	}))
	defer upstream.Close()

	registry := dispatch.DefaultRegistry(map[ai.ProviderID]ai.ProviderConfig{
		ai.ProviderPerplexity: {APIKey: "pplx", BaseURL: upstream.URL},
	}, upstream.Client())

	var stdout bytes.Buffer
	command := GenerateCmd{Provider: "perplexity"}
	if err := command.generate(context.Background(), dispatch.New(registry), "idea", &stdout); err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := "Prompt text\n\nSources:\n[1] https://a.example\n[2] https://b.example\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestGenerate_MissingCredential(t *testing.T) {
	registry := dispatch.DefaultRegistry(nil, nil)

	command := GenerateCmd{Provider: "gemini"}
	err := command.generate(context.Background(), dispatch.New(registry), "idea", io.Discard)
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_AI_API_KEY") {
		t.Errorf("error = %v", err)
	}
}
