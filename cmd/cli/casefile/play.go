package casefile

import (
	"bufio"
	"context"
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/evidence"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/schollz/closestmatch"
	"github.com/spf13/cobra"
	"io"
	"strconv"
	"strings"
)

const playUsage = `Commands:
  ask <suspect>: <question>   question a suspect, by number or name
  accuse <suspect>            name the murderer and end the game
  notes                       what you have learned so far
  quit`

func init() {
	Play.Flags().Int("budget", evidence.DefaultBudget, "number of questions")
}

var Play = &cobra.Command{
	Use:     "play",
	GroupID: "case",
	Short:   "Interrogate the suspects",
	Long:    "Plays a case in the terminal with the rule based interrogation engine.\n\n" + playUsage,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := generate(cmd)
		if err != nil {
			return err
		}
		budget, err := cmd.Flags().GetInt("budget")
		if err != nil {
			return errors.Wrap(err, "budget flag")
		}
		s := game.NewSession("cli", c,
			game.WithBudget(budget),
			game.WithResponders(game.LocalResponders(interrogation.DefaultConfig())))
		return play(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// roster resolves what the player types to a suspect id.
type roster struct {
	ids     []string
	byKey   map[string]string
	matcher *closestmatch.ClosestMatch
}

func newRoster(c *models.Case) *roster {
	r := &roster{byKey: map[string]string{}}
	for _, ch := range c.Characters {
		r.ids = append(r.ids, ch.ID())
		for _, key := range []string{ch.ID(), ch.Name(), ch.Facts.Suspect.Occupation} {
			r.byKey[strings.ToLower(key)] = ch.ID()
		}
	}
	keys := make([]string, 0, len(r.byKey))
	for key := range r.byKey {
		keys = append(keys, key)
	}
	r.matcher = closestmatch.New(keys, []int{2}) //nolint:mnd // bag of bigrams
	return r
}

func (r *roster) resolve(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	if n, err := strconv.Atoi(q); err == nil {
		if n < 1 || n > len(r.ids) {
			return "", false
		}
		return r.ids[n-1], true
	}
	if id, ok := r.byKey[q]; ok {
		return id, true
	}
	id, ok := r.byKey[r.matcher.Closest(q)]
	return id, ok
}

func label(st game.State, index int) string {
	ch := st.Case.Characters[index]
	if st.Ledger.Evidence(ch.ID()).NameRevealed {
		return ch.Name()
	}
	return fmt.Sprintf("Suspect %d (%s)", index+1, ch.Facts.Suspect.Occupation)
}

func labelFor(st game.State, id string) string {
	for i, ch := range st.Case.Characters {
		if ch.ID() == id {
			return label(st, i)
		}
	}
	return id
}

func play(ctx context.Context, s *game.Session, in io.Reader, out io.Writer) error {
	st := s.State()
	r := newRoster(st.Case)
	_, _ = fmt.Fprintln(out, renderReport(st.Case))
	_, _ = fmt.Fprintln(out, playUsage)

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch strings.ToLower(verb) {
		case "":
		case "quit", "exit":
			return nil
		case "notes":
			_, _ = fmt.Fprintln(out, renderNotes(s.State()))
		case "ask":
			who, question, ok := strings.Cut(rest, ":")
			id, found := r.resolve(who)
			if !ok || !found || strings.TrimSpace(question) == "" {
				_, _ = fmt.Fprintln(out, "Ask whom what? Try: ask 1: Where were you?")
				continue
			}
			answer, err := s.Ask(ctx, id, strings.TrimSpace(question))
			if err != nil {
				return errors.Wrap(err, "ask")
			}
			_, _ = fmt.Fprintln(out, replyStyle.Render(answer.Reply.Text))
			if !answer.TimesUp {
				_, _ = fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("%d questions left", answer.Remaining)))
			}
		case "accuse":
			id, found := r.resolve(rest)
			if !found {
				_, _ = fmt.Fprintln(out, "Accuse whom?")
				continue
			}
			correct, err := s.Accuse(ctx, id)
			if err != nil {
				return errors.Wrap(err, "accuse")
			}
			verdict := "Wrong suspect."
			if correct {
				verdict = "Case solved!"
			}
			_, _ = fmt.Fprintln(out, userStyle.Render(verdict))
			_, _ = fmt.Fprintln(out, renderSolution(st.Case))
			return nil
		default:
			_, _ = fmt.Fprintln(out, playUsage)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

func renderNotes(st game.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notes") + "\n")
	for i, ch := range st.Case.Characters {
		ev := st.Ledger.Evidence(ch.ID())
		b.WriteString(userStyle.Render(label(st, i)) + "\n")
		for _, note := range []struct {
			revealed bool
			text     string
		}{
			{ev.RelationshipRevealed, ev.RelationshipText},
			{ev.ItemRevealed, ev.ItemText},
			{ev.MotiveRevealed, ev.MotiveText},
			{ev.MeansRevealed, ev.MeansText},
			{ev.OpportunityRevealed, ev.OpportunityText},
		} {
			if note.revealed {
				b.WriteString("  - " + note.text + "\n")
			}
		}
	}
	for _, d := range st.Ledger.Disclosures() {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%s on %s:", labelFor(st, d.FromCharacterID),
			labelFor(st, d.AboutCharacterID))) + " " + d.Info + "\n")
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d of %d questions left", st.Ledger.Remaining(), st.Ledger.Budget())))
	return panelStyle.Render(b.String())
}
