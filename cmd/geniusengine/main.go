// geniusengine turns a raw idea into an expert-level prompt using one of
// several LLM providers, either over HTTP or from the terminal.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("geniusengine"),
		kong.Description("Prompt optimizer gateway for Claude, OpenAI, Gemini and Perplexity"),
		kong.UsageOnError(),
		kong.BindTo(os.Stdin, (*io.Reader)(nil)),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
