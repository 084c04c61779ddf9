package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/whodunit/internal/e2etest"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "WHODUNIT_ADDR":
		return "localhost:0", true
	case "WHODUNIT_SQLITE_URL":
		return ":memory:", true
	case "WHODUNIT_SECURE_COOKIES":
		return "false", true
	case "WHODUNIT_QUESTION_BUDGET":
		return "3", true
	default:
		return "", false
	}
}

func startServer(t *testing.T) (context.Context, *e2etest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return ctx, server
}

// firstSuspect returns the suspect id linked first on the case page.
func firstSuspect(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	href, ok := doc.Find(".suspect a").First().Attr("href")
	require.True(t, ok, "no suspect links")
	return strings.TrimPrefix(href, "/suspects/")
}

func Test_application_home(t *testing.T) {
	ctx, server := startServer(t)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)

	require.NotEmpty(t, strings.TrimSpace(doc.Find(".victim-name").Text()))
	require.Equal(t, 5, doc.Find("li.suspect").Length())
	require.Equal(t, "Suspect 1", doc.Find(".suspect a").First().Text())
	require.Equal(t, 1, doc.Find("form[action='/accusations']").Length())
	require.Equal(t, 5, doc.Find("select[name=suspect_id] option").Length())
	require.Contains(t, doc.Find(".stats").Text(), "Nobody has made an accusation")
	require.Contains(t, doc.Find("#remaining").Text(), "3 of 3")

	_, ok := client.Cookie("/", "session")
	require.True(t, ok, "play-through is tied to a session cookie")
}

func Test_application_askQuestion(t *testing.T) {
	ctx, server := startServer(t)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	id := firstSuspect(t, doc)
	suspectPath := "/suspects/" + id
	questionPath := suspectPath + "/questions"

	doc, err = client.SubmitForm(ctx, suspectPath, questionPath, url.Values{"question": {"What is your name?"}})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".exchange").Length())
	require.Equal(t, "What is your name?", doc.Find(".exchange .question").Text())
	require.NotEmpty(t, doc.Find(".exchange .answer").Text())
	require.NotEqual(t, "Suspect 1", doc.Find(".interrogation h1").Text(), "name should be revealed")

	doc, err = client.SubmitFormHx(ctx, suspectPath, questionPath, url.Values{"question": {"Where were you?"}})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".exchange").Length(), "fragment holds only the new exchange")
	require.Equal(t, 0, doc.Find("header").Length())
	require.Contains(t, doc.Find("#remaining").Text(), "1 of 3")

	// The transcript is read back from the archive.
	doc, err = client.GetDoc(ctx, suspectPath)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Find(".exchange").Length())

	_, err = client.SubmitForm(ctx, suspectPath, questionPath, url.Values{"question": {"Did you do it?"}})
	require.NoError(t, err)
	doc, err = client.GetDoc(ctx, suspectPath)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".times-up").Length())
	require.Equal(t, 0, doc.Find("form[action='"+questionPath+"']").Length())
}

func Test_application_unknownSuspect(t *testing.T) {
	ctx, server := startServer(t)

	resp, err := server.Client().Get(ctx, "/suspects/nobody")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_application_accuseAndReplay(t *testing.T) {
	ctx, server := startServer(t)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	id := firstSuspect(t, doc)

	doc, err = client.SubmitForm(ctx, "/", "/accusations", url.Values{"suspect_id": {id}})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".verdict h2.solved, .verdict h2.unsolved").Length())
	require.Equal(t, 0, doc.Find("form[action='/accusations']").Length())
	require.Contains(t, doc.Find(".stats").Text(), "of 1 detectives")

	doc, err = client.SubmitForm(ctx, "/", "/replay", nil)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("form[action='/accusations']").Length())
	require.Contains(t, doc.Find("#remaining").Text(), "3 of 3")
}

func Test_application_caseBrief(t *testing.T) {
	ctx, server := startServer(t)

	var brief map[string]any
	require.NoError(t, server.Client().GetJSON(ctx, "/api/case", &brief))
	require.NotEmpty(t, brief["victimName"])
	require.Len(t, brief["suspects"], 5)
	require.Equal(t, float64(3), brief["questionsRemaining"])
	require.Equal(t, false, brief["accused"])
	for _, key := range []string{"murderer", "murdererId", "solution"} {
		require.NotContains(t, brief, key)
	}
}

func Test_application_csrf(t *testing.T) {
	_, server := startServer(t)

	resp, err := http.PostForm(server.URL()+"/accusations", url.Values{"suspect_id": {"anyone"}})
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
