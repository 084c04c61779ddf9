// Package casefile holds the case commands of the command line interface.
package casefile

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/myrjola/whodunit/internal/casegen"
	"github.com/myrjola/whodunit/internal/content"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/spf13/cobra"
	"log/slog"
	"strings"
	"time"
)

var Group = &cobra.Group{
	ID:    "case",
	Title: "Case files",
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	replyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

func init() {
	for _, cmd := range []*cobra.Command{Show, Play} {
		cmd.Flags().Int64("seed", 0, "case seed, today's case when zero")
		cmd.Flags().Int("suspects", casegen.DefaultSuspectCount, "number of suspects")
	}
	Show.Flags().Bool("solution", false, "reveal the murderer and how it happened")
}

var Show = &cobra.Command{
	Use:     "case",
	GroupID: "case",
	Short:   "Print a case file",
	Long:    `Prints the crime report of today's case, or of the case with the given seed`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := generate(cmd)
		if err != nil {
			return err
		}
		solution, err := cmd.Flags().GetBool("solution")
		if err != nil {
			return errors.Wrap(err, "solution flag")
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, renderReport(c))
		if solution {
			_, _ = fmt.Fprintln(out, renderSolution(c))
		}
		return nil
	},
}

func generate(cmd *cobra.Command) (*models.Case, error) {
	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return nil, errors.Wrap(err, "seed flag")
	}
	n, err := cmd.Flags().GetInt("suspects")
	if err != nil {
		return nil, errors.Wrap(err, "suspects flag")
	}
	if n < casegen.MinSuspectCount || n > len(content.Default().Suspects) {
		return nil, errors.New("suspect count out of range", slog.Int("suspects", n),
			slog.Int("min", casegen.MinSuspectCount), slog.Int("max", len(content.Default().Suspects)))
	}
	if seed == 0 {
		return casegen.Today(time.Now(), casegen.WithSuspectCount(n)), nil
	}
	return casegen.Generate(seed, casegen.WithSuspectCount(n)), nil
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func renderReport(c *models.Case) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Case #%d", c.CaseNumber)))
	b.WriteString(" " + labelStyle.Render(c.Date.Format("January 2, 2006")) + "\n\n")
	b.WriteString(field("Victim", fmt.Sprintf("%s, %s", c.Victim.Name, c.Victim.Occupation)) + "\n")
	b.WriteString(field("Background", c.Victim.Background) + "\n")
	b.WriteString(field("Cause", c.Crime.Cause) + "\n")
	b.WriteString(field("Time", c.Crime.Time) + "\n")
	b.WriteString(field("Location", c.Crime.Location) + "\n\n")
	b.WriteString(fmt.Sprintf("%d suspects:\n", len(c.Characters)))
	for i, ch := range c.Characters {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, ch.Facts.Suspect.Occupation))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderSolution(c *models.Case) string {
	var b strings.Builder
	murderer := c.Murderer()
	b.WriteString(titleStyle.Render("Solution") + "\n\n")
	b.WriteString(field("Murderer", fmt.Sprintf("%s, %s", murderer.Name(), murderer.Facts.Suspect.Occupation)) + "\n")
	b.WriteString(field("Weapon", c.Crime.WeaponName) + "\n")
	b.WriteString(field("Motive", c.Crime.KillerMotive) + "\n")
	b.WriteString(field("How", c.Crime.HowItHappened) + "\n\n")
	for i, ch := range c.Characters {
		f := ch.Facts
		b.WriteString(fmt.Sprintf("  %d. %s (%s) motive=%t means=%t opportunity=%t\n", i+1, f.Suspect.Name,
			f.Suspect.Occupation, f.Traits.Motive, f.Traits.Means, f.Traits.Opportunity))
		b.WriteString("     " + labelStyle.Render("alibi: ") + f.Alibi.Description + "\n")
		b.WriteString("     " + labelStyle.Render("item: ") + f.Item.Name + "\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
