// Package main is the entry point for the mailkit CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bdrennan/mailkit/internal/compose"
	"github.com/bdrennan/mailkit/internal/config"
	"github.com/bdrennan/mailkit/internal/extract"
	"github.com/bdrennan/mailkit/internal/prompt"
	"github.com/bdrennan/mailkit/internal/provider"
	"github.com/bdrennan/mailkit/internal/provider/gmail"
	"github.com/bdrennan/mailkit/internal/provider/graph"
	"github.com/bdrennan/mailkit/internal/provider/ses"
	"github.com/bdrennan/mailkit/internal/provider/stdout"
)

const usage = `usage: mailkit <command> [flags]

commands:
  send     compose a message with attachments from a folder and send it
  harvest  extract email addresses from text files in a folder
  login    run the Gmail OAuth authorization flow and cache the token

run "mailkit <command> -h" for command flags
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "send":
		err = runSend(os.Args[2:])
	case "harvest":
		err = runHarvest(os.Args[2:])
	case "login":
		err = runLogin(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// runSend composes a message from the flags, asks for confirmation, and
// delivers it through the configured provider.
func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	from := fs.String("from", "", "sender address (overrides config)")
	to := fs.String("to", "", "comma-separated recipient addresses")
	cc := fs.String("cc", "", "comma-separated Cc addresses")
	bcc := fs.String("bcc", "", "comma-separated Bcc addresses")
	subject := fs.String("subject", "", "subject line")
	body := fs.String("body", "", "message body text")
	bodyFile := fs.String("body-file", "", "read the message body from this file")
	attachDir := fs.String("attach-dir", "", "folder to pull attachments from")
	suffix := fs.String("suffix", "", "comma-separated attachment suffixes, e.g. png,pdf")
	maxEdge := fs.Int("max-edge", 0, "maximum image edge length in pixels (default from config)")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging.Level)

	sender := *from
	if sender == "" {
		sender = cfg.Send.From
	}
	if sender == "" {
		return fmt.Errorf("no sender address: set -from or send.from in config")
	}
	if *to == "" {
		return fmt.Errorf("no recipients: set -to")
	}

	bodyText := *body
	if *bodyFile != "" {
		data, err := os.ReadFile(*bodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		bodyText = string(data)
	}

	edge := *maxEdge
	if edge < 1 {
		edge = cfg.Send.MaxImageEdge
	}

	msg, err := compose.Message(compose.Params{
		From:          sender,
		To:            splitList(*to),
		Cc:            splitList(*cc),
		Bcc:           splitList(*bcc),
		Subject:       *subject,
		Body:          bodyText,
		AttachmentDir: *attachDir,
		Suffixes:      splitList(*suffix),
		MaxImageEdge:  edge,
	})
	if err != nil {
		return err
	}

	prov, err := selectProvider(cfg)
	if err != nil {
		return err
	}

	// Show what is about to go out before asking, unless the provider is
	// the dry-run printer and will show it anyway.
	if prov.Name() != "stdout" {
		if err := stdout.New().Send(context.Background(), msg); err != nil {
			return err
		}
	}

	if !*yes {
		ok, err := prompt.Confirm(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("send aborted by user")
			os.Exit(1)
		}
	}

	slog.Info("sending message",
		"provider", prov.Name(),
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	if err := prov.Send(context.Background(), msg); err != nil {
		return err
	}
	slog.Info("message sent", "provider", prov.Name())
	return nil
}

// runHarvest extracts addresses from a folder of text files and prints them
// one per line.
func runHarvest(args []string) error {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	dir := fs.String("dir", "", "folder to scan for text files")
	suffix := fs.String("suffix", "txt", "comma-separated file suffixes to read")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging.Level)

	if *dir == "" {
		return fmt.Errorf("no folder: set -dir")
	}

	addresses, err := extract.Addresses(*dir, splitList(*suffix))
	if err != nil {
		return err
	}
	for _, addr := range addresses {
		fmt.Println(addr)
	}
	return nil
}

// runLogin runs the Gmail OAuth consent flow and caches the token for
// later sends.
func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file (optional)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging.Level)

	flow, err := gmail.NewFlow(cfg.Gmail.CredentialsFile, cfg.Gmail.Scopes, cfg.Gmail.TokenFile)
	if err != nil {
		return err
	}
	if _, err := flow.Authorize(context.Background()); err != nil {
		return err
	}
	slog.Info("authorization complete", "token_file", cfg.Gmail.TokenFile)
	return nil
}

// loadConfig loads configuration from the specified path (YAML + env
// override) or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectProvider chooses the delivery backend based on configuration.
func selectProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Send.Provider {
	case "gmail":
		if !cfg.GmailConfigured() {
			return nil, fmt.Errorf("gmail provider selected but gmail.credentials_file is not set")
		}
		flow, err := gmail.NewFlow(cfg.Gmail.CredentialsFile, cfg.Gmail.Scopes, cfg.Gmail.TokenFile)
		if err != nil {
			return nil, err
		}
		service, err := flow.Service(context.Background())
		if err != nil {
			return nil, fmt.Errorf("no usable Gmail credentials (run \"mailkit login\" first): %w", err)
		}
		return gmail.New(service), nil

	case "ses":
		if !cfg.SESConfigured() {
			return nil, fmt.Errorf("ses provider selected but SES_REGION is required")
		}
		return ses.New(context.Background(), ses.Config{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})

	case "graph":
		if !cfg.GraphConfigured() {
			return nil, fmt.Errorf("graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET, and GRAPH_SENDER are required")
		}
		return graph.New(graph.Config{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			Sender:       cfg.Graph.Sender,
		}), nil

	case "stdout":
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Send.Provider)
	}
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
