package casefile

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

func init() {
	Stats.Flags().Int("cases", 1000, "number of cases to generate") //nolint:mnd // enough for stable rates
	Stats.Flags().Int64("from", 1, "first seed")
	Stats.Flags().Int("suspects", casegen.DefaultSuspectCount, "number of suspects")
}

// tally aggregates generated cases. Callers synchronise access.
type tally struct {
	cases       int
	cast        map[string]int
	guilty      map[string]int
	corroborate int
	swaps       int
}

func newTally() *tally {
	return &tally{cast: map[string]int{}, guilty: map[string]int{}}
}

func (t *tally) add(c *models.Case) {
	t.cases++
	for _, ch := range c.Characters {
		t.cast[ch.ID()]++
	}
	t.guilty[c.MurdererID]++
	for _, p := range c.RelationshipPairs {
		if p.Corroborates {
			t.corroborate++
		}
	}
	t.swaps += len(c.ItemSwaps)
}

func (t *tally) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d cases", t.cases)) + "\n\n")
	ids := make([]string, 0, len(t.cast))
	for id := range t.cast {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s %6s %6s %7s", "suspect", "cast", "guilty", "rate")) + "\n")
	for _, id := range ids {
		rate := float64(t.guilty[id]) / float64(t.cast[id])
		b.WriteString(fmt.Sprintf("%-20s %6d %6d %6.1f%%\n", id, t.cast[id], t.guilty[id], rate*100)) //nolint:mnd // percent
	}
	b.WriteString("\n" + field("Corroborating pairs per case", fmt.Sprintf("%.2f", float64(t.corroborate)/float64(t.cases))))
	b.WriteString("\n" + field("Item swaps per case", fmt.Sprintf("%.2f", float64(t.swaps)/float64(t.cases))))
	return panelStyle.Render(b.String())
}

var Stats = &cobra.Command{
	Use:     "stats",
	GroupID: "case",
	Short:   "Generate many cases and tally the outcomes",
	Long:    `Generates consecutive seeds in parallel and reports how often each suspect turns out guilty`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		cases, err := flags.GetInt("cases")
		if err != nil {
			return errors.Wrap(err, "cases flag")
		}
		from, err := flags.GetInt64("from")
		if err != nil {
			return errors.Wrap(err, "from flag")
		}
		suspects, err := flags.GetInt("suspects")
		if err != nil {
			return errors.Wrap(err, "suspects flag")
		}
		if cases < 1 {
			return errors.New("need at least one case", slog.Int("cases", cases))
		}

		t := newTally()
		var mu sync.Mutex
		now := time.Now()
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range cases {
			seed := from + int64(i)
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c, genErr := generateChecked(seed, casegen.WithSuspectCount(suspects),
					casegen.WithClock(func() time.Time { return now }))
				if genErr != nil {
					return genErr
				}
				mu.Lock()
				defer mu.Unlock()
				t.add(c)
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			return errors.Wrap(err, "generate cases")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.render())
		return nil
	},
}

// generateChecked turns a generator panic into an error naming the seed.
func generateChecked(seed int64, opts ...casegen.Option) (c *models.Case, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("invalid case", slog.Int64("seed", seed), slog.Any("panic", r))
		}
	}()
	return casegen.Generate(seed, opts...), nil
}
