package main

import (
	"context"
	"github.com/myrjola/whodunit/internal/e2etest"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

// PlayCase walks through a play-through: read the report, question a suspect and accuse them.
func PlayCase(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds, the language model may be slow.
	defer cancel()

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get case")
	}
	href, ok := doc.Find(".suspect a").First().Attr("href")
	if !ok {
		return errors.New("no suspects on the case page")
	}
	suspectID := strings.TrimPrefix(href, "/suspects/")

	if doc, err = client.SubmitForm(ctx, href, href+"/questions",
		url.Values{"question": {"Where were you at the time of the murder?"}}); err != nil {
		return errors.Wrap(err, "ask question", slog.String("suspect_id", suspectID))
	}
	if doc.Find(".exchange .answer").Length() == 0 {
		return errors.New("no answer in transcript", slog.String("suspect_id", suspectID))
	}

	if doc, err = client.SubmitForm(ctx, "/", "/accusations", url.Values{"suspect_id": {suspectID}}); err != nil {
		return errors.Wrap(err, "accuse", slog.String("suspect_id", suspectID))
	}
	if doc.Find(".verdict h2").Length() == 0 {
		return errors.New("no verdict after accusation")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		baseURL  = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", baseURL))

	if client, err = e2etest.NewClient(baseURL); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = PlayCase(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing case", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
