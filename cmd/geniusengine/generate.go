package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/leofalp/geniusengine/core/dispatch"
	"github.com/leofalp/geniusengine/providers/ai"
)

// GenerateCmd runs one request and prints the optimized prompt to stdout.
// Logs go to stderr.
type GenerateCmd struct {
	Provider string   `short:"p" help:"Provider: claude, gpt4, gemini or perplexity; unknown names use the default provider"`
	Mindset  string   `short:"m" help:"Mindset label, e.g. product_photography"`
	NoStream bool     `help:"Wait for the complete answer instead of streaming it"`
	Idea     []string `arg:"" optional:"" help:"Raw idea to optimize; read from stdin when omitted"`
}

// Run executes the generate command.
func (c *GenerateCmd) Run(cli *CLI, stdin io.Reader, stdout io.Writer) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	message := strings.Join(c.Idea, " ")
	if strings.TrimSpace(message) == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		message = string(data)
	}

	return c.generate(ctx, newDispatcher(cfg, cli.newObserver()), message, stdout)
}

func (c *GenerateCmd) generate(ctx context.Context, dispatcher *dispatch.Dispatcher, message string, stdout io.Writer) error {
	outcome, err := dispatcher.Dispatch(ctx, ai.GenerationRequest{
		Provider:     c.Provider,
		Message:      message,
		MindsetLabel: c.Mindset,
		Stream:       !c.NoStream,
	})
	if err != nil {
		return err
	}

	if !outcome.Streaming() {
		return printResult(stdout, outcome.Result)
	}

	for event, err := range outcome.Stream.Iter() {
		if err != nil {
			_, _ = fmt.Fprintln(stdout)
			return err
		}
		if event.Type == ai.StreamEventText {
			if _, writeErr := io.WriteString(stdout, event.Text); writeErr != nil {
				return fmt.Errorf("write output: %w", writeErr)
			}
		}
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func printResult(stdout io.Writer, result *ai.Result) error {
	if result == nil {
		return errors.New("no result")
	}
	if _, err := fmt.Fprintln(stdout, result.Content); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if len(result.Citations) > 0 {
		_, _ = fmt.Fprintln(stdout, "\nSources:")
		for i, citation := range result.Citations {
			_, _ = fmt.Fprintf(stdout, "[%d] %s\n", i+1, citation)
		}
	}
	return nil
}
