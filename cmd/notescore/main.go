// Command notescore is a development driver for the note-scoring
// engine: it simulates communities, runs scoring passes, and prints
// tier diagnostics. It is not part of the engine's library surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opennotes-ai/opennotes-sub012/internal/adapters/mf"
	"github.com/opennotes-ai/opennotes-sub012/internal/app"
	"github.com/opennotes-ai/opennotes-sub012/internal/config"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/tier"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/validate"
	"github.com/opennotes-ai/opennotes-sub012/internal/simulate"
	"github.com/opennotes-ai/opennotes-sub012/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notescore",
		Short:         "Development driver for the tiered note-scoring engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newTiersCmd())
	return root
}

func newSimulateCmd() *cobra.Command {
	var (
		noteCount     int
		ratersPerNote int
		helpfulBias   float64
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic community and run a scoring pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				_ = logger.SetLevelString("info")
			}

			gen := simulate.New(
				simulate.WithNoteCount(noteCount),
				simulate.WithRatersPerNote(ratersPerNote),
				simulate.WithHelpfulBias(helpfulBias),
				simulate.WithSeed(seed),
			)
			communityID, notes := gen.Generate(ctx)

			svc := app.New(
				app.WithLogger(logger.Get().Named("simulate")),
				app.WithMinRatersPerNote(cfg.MinRatersPerNote),
				app.WithHelpfulnessValues(model.NewValueMapping(cfg.HelpfulnessValues)),
				app.WithFactory(app.NewFactory(
					app.WithEngine(localEngine{}),
					app.WithMinRaters(cfg.MinRatersPerNote),
					app.WithBayesianPrior(cfg.BayesianPriorMean, cfg.BayesianPriorWeight),
				)),
				app.WithValidator(validate.New(
					validate.WithMinRatersPerNote(cfg.MinRatersPerNote),
					validate.WithMinRatingsPerRater(cfg.MinRatingsPerRater),
				)),
			)

			report, err := svc.ScoreCommunityServerNotes(ctx, communityID.String(), notes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "community %s: tier %s (%d notes)\n",
				report.CommunityServerID, report.Tier, report.NoteCount)
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			fmt.Fprintf(out, "  sufficiency: valid=%v notes=%d raters=%d ratings=%d\n",
				report.Validation.IsValid, report.Validation.TotalNotes,
				report.Validation.TotalRaters, report.Validation.TotalRatings)
			for _, s := range report.Scores {
				fmt.Fprintf(out, "  note %s score=%.3f confidence=%s algorithm=%s\n",
					s.NoteID, s.Score, s.Confidence, s.Algorithm)
			}
			for _, f := range report.Failures {
				fmt.Fprintf(out, "  note %s FAILED: %v\n", f.NoteID, f.Err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&noteCount, "notes", 25, "number of notes to generate")
	cmd.Flags().IntVar(&ratersPerNote, "raters-per-note", 4, "average ratings per note")
	cmd.Flags().Float64Var(&helpfulBias, "helpful-bias", 0.6, "probability of a HELPFUL rating")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for reproducible runs")
	return cmd
}

func newTiersCmd() *cobra.Command {
	var noteCount int

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Print the tier table and diagnostics for a note count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, t := range tier.All() {
				cfg, err := tier.ConfigFor(t)
				if err != nil {
					return err
				}
				upper := "inf"
				if cfg.MaxNotes != nil {
					upper = fmt.Sprintf("%d", *cfg.MaxNotes)
				}
				fmt.Fprintf(out, "%-12s [%d, %s)  %s\n", t, cfg.MinNotes, upper, cfg.Description)
			}

			t := tier.ForNoteCount(noteCount)
			fmt.Fprintf(out, "\n%d notes -> %s\n", noteCount, t)
			for _, w := range tier.Warnings(noteCount, t) {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&noteCount, "notes", 0, "community note count to resolve")
	return cmd
}

// localEngine is a stand-in for the external matrix-factorization
// library so the CLI can drive tiers above Minimal without it. It
// scores each note with its mean helpfulNum.
type localEngine struct{}

func (localEngine) Run(_ context.Context, in mf.Input) (mf.Output, error) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, noteID := range in.Ratings.NoteID {
		sums[noteID] += in.Ratings.HelpfulNum[i]
		counts[noteID]++
	}

	out := mf.Output{
		HelpfulScores: make(map[string]float64, len(in.Notes)),
		AuxiliaryInfo: map[string]any{"engine": "local_mean"},
	}
	for _, n := range in.Notes {
		score := 0.0
		if counts[n.NoteID] > 0 {
			score = sums[n.NoteID] / float64(counts[n.NoteID])
		}
		out.HelpfulScores[n.NoteID] = score
		out.ScoredNotes = append(out.ScoredNotes, mf.ScoredNote{
			NoteID:       n.NoteID,
			HelpfulScore: score,
		})
	}
	return out, nil
}
