package responder_test

import (
	"context"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/responder"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeCompleter struct {
	answer   string
	err      error
	block    bool
	messages []openai.ChatCompletionMessage
}

func (f *fakeCompleter) SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.messages = messages
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func (f *fakeCompleter) Ping(context.Context) error {
	return f.err
}

func newCase() *models.Case {
	return casegen.Generate(20240615, casegen.WithClock(func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}))
}

func respond(t *testing.T, r responder.Responder, req interrogation.Request) (interrogation.Reply, error) {
	t.Helper()
	return r.Respond(context.Background(), req)
}

func TestOracle_Tags(t *testing.T) {
	c := newCase()
	killer := c.Murderer()
	other := c.Characters[1]

	tests := []struct {
		name    string
		answer  string
		want    func(t *testing.T, reply interrogation.Reply)
		wantErr error
	}{
		{
			name:   "no tag",
			answer: "I'd rather not say.",
			want: func(t *testing.T, reply interrogation.Reply) {
				require.Equal(t, "I'd rather not say.", reply.Text)
				require.True(t, reply.Evidence.Empty())
				require.Nil(t, reply.Disclosure)
			},
		},
		{
			name:   "opportunity",
			answer: "Fine, I was near the scene. [REVEAL:OPPORTUNITY]",
			want: func(t *testing.T, reply interrogation.Reply) {
				require.Equal(t, "Fine, I was near the scene.", reply.Text)
				require.True(t, reply.Evidence.OpportunityRevealed)
				require.Equal(t, killer.Facts.Alibi.Description, reply.Evidence.OpportunityText)
			},
		},
		{
			name:   "motive text comes from the case",
			answer: "[REVEAL:MOTIVE] They had it coming.",
			want: func(t *testing.T, reply interrogation.Reply) {
				require.Equal(t, "They had it coming.", reply.Text)
				require.Equal(t, killer.Facts.Motive.Description, reply.Evidence.MotiveText)
			},
		},
		{
			name:   "secret",
			answer: "I saw something. [SECRET:" + other.ID() + ":was in the garden late]",
			want: func(t *testing.T, reply interrogation.Reply) {
				rel, _ := killer.Facts.Relationship(other.ID())
				require.Equal(t, &models.Disclosure{
					FromCharacterID:  killer.ID(),
					AboutCharacterID: other.ID(),
					Info:             "was in the garden late",
					InfoType:         rel.SecretCategory,
				}, reply.Disclosure)
				require.True(t, killer.Disclosure.SecretsRevealed[other.ID()])
			},
		},
		{
			name:    "secret about a stranger",
			answer:  "Hmm. [SECRET:nobody:did it]",
			wantErr: responder.ErrMalformed,
		},
		{
			name:    "unknown reveal",
			answer:  "Hmm. [REVEAL:SHOESIZE]",
			wantErr: responder.ErrMalformed,
		},
		{
			name:    "only a tag",
			answer:  "  [REVEAL:NAME] ",
			wantErr: responder.ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := responder.NewOracle(c, &fakeCompleter{answer: tt.answer}, testhelpers.NewLogger(io.Discard))
			reply, err := respond(t, oracle, interrogation.Request{SuspectID: killer.ID(), Question: "Talk."})
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), err)
				return
			}
			require.NoError(t, err)
			tt.want(t, reply)
		})
	}
}

func TestOracle_Prompt(t *testing.T) {
	c := newCase()
	killer := c.Murderer()
	accuser := c.Characters[1]
	fake := &fakeCompleter{answer: "Very well."}
	oracle := responder.NewOracle(c, fake, testhelpers.NewLogger(io.Discard))

	req := interrogation.Request{
		SuspectID: killer.ID(),
		Question:  accuser.Name() + " told me you were there.",
		Disclosures: []models.Disclosure{{
			FromCharacterID:  accuser.ID(),
			AboutCharacterID: killer.ID(),
			Info:             "was lurking about",
			InfoType:         models.InfoOpportunity,
		}},
		History: []interrogation.Turn{
			{Role: "user", Content: "Hello"},
			{Role: "assistant", Content: "Good evening."},
		},
	}
	reply, err := respond(t, oracle, req)
	require.NoError(t, err)
	require.Equal(t, interrogation.IntentConfront, reply.Intent)
	require.True(t, killer.Disclosure.HasOpenedUp)
	require.Len(t, killer.Disclosure.PresentedEvidence, 1)

	require.Len(t, fake.messages, 4)
	system := fake.messages[0]
	require.Equal(t, openai.ChatMessageRoleSystem, system.Role)
	for _, want := range []string{
		"You are " + killer.Name(),
		"YES. " + c.Crime.HowItHappened,
		killer.Facts.Alibi.Description,
		accuser.Name() + ` told the detective: "was lurking about"`,
		"[SECRET:id:info]",
	} {
		require.Contains(t, system.Content, want)
	}
	require.Equal(t, openai.ChatMessageRoleAssistant, fake.messages[2].Role)
	require.Equal(t, req.Question, fake.messages[3].Content)

	innocent := c.Characters[2]
	_, err = respond(t, oracle, interrogation.Request{SuspectID: innocent.ID(), Question: "Hi"})
	require.NoError(t, err)
	require.Contains(t, fake.messages[0].Content, "NO. You are innocent.")
	require.NotContains(t, fake.messages[0].Content, c.Crime.HowItHappened)
}

func TestOracle_Unavailable(t *testing.T) {
	c := newCase()
	fake := &fakeCompleter{err: io.ErrUnexpectedEOF}
	oracle := responder.NewOracle(c, fake, testhelpers.NewLogger(io.Discard))
	_, err := respond(t, oracle, interrogation.Request{SuspectID: c.MurdererID, Question: "Hi"})
	require.True(t, errors.Is(err, responder.ErrUnavailable))
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.False(t, oracle.Available(context.Background()))

	_, err = respond(t, oracle, interrogation.Request{SuspectID: "nobody", Question: "Hi"})
	require.True(t, errors.Is(err, models.ErrUnknownSuspect))
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name   string
		fake   *fakeCompleter
		oracle bool
	}{
		{name: "network error", fake: &fakeCompleter{err: io.ErrUnexpectedEOF}},
		{name: "malformed", fake: &fakeCompleter{answer: "[REVEAL:NAME]"}},
		{name: "timeout", fake: &fakeCompleter{block: true}},
		{name: "healthy", fake: &fakeCompleter{answer: "The oracle speaks."}, oracle: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCase()
			killer := c.Murderer()
			accuser := c.Characters[1]
			logger := testhelpers.NewLogger(io.Discard)
			r := responder.NewFallback(
				responder.NewOracle(c, tt.fake, logger),
				responder.NewLocal(interrogation.NewEngine(c)),
				10*time.Millisecond,
				logger,
			)
			reply, err := respond(t, r, interrogation.Request{
				SuspectID: killer.ID(),
				Question:  accuser.Name() + " said you were there.",
				Disclosures: []models.Disclosure{{
					FromCharacterID:  accuser.ID(),
					AboutCharacterID: killer.ID(),
					Info:             "was lurking about",
					InfoType:         models.InfoOpportunity,
				}},
			})
			require.NoError(t, err)
			require.NotEmpty(t, strings.TrimSpace(reply.Text))
			require.Equal(t, tt.oracle, reply.Text == "The oracle speaks.")
			require.Len(t, killer.Disclosure.PresentedEvidence, 1, "confrontation is recorded exactly once")
		})
	}
}

func TestFallback_WithoutPrimary(t *testing.T) {
	c := newCase()
	r := responder.NewFallback(nil, responder.NewLocal(interrogation.NewEngine(c)), time.Second,
		testhelpers.NewLogger(io.Discard))
	reply, err := respond(t, r, interrogation.Request{SuspectID: c.MurdererID, Question: "What is your name?"})
	require.NoError(t, err)
	require.True(t, reply.Evidence.NameRevealed)

	_, err = respond(t, r, interrogation.Request{SuspectID: "nobody"})
	require.True(t, errors.Is(err, models.ErrUnknownSuspect))
}
