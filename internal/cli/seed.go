package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
	"github.com/cessadesk/cessadesk/internal/upload"
)

var (
	firstNames = []string{"Maria", "José", "Ana", "João", "Francisca", "Antônio", "Adriana", "Carlos", "Juliana", "Paulo", "Márcia", "Pedro", "Fernanda", "Lucas", "Patrícia", "Marcos", "Aline", "Rafael", "Sandra", "Bruno"}
	lastNames  = []string{"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves", "Pereira", "Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho", "Almeida", "Lopes", "Soares", "Fernandes", "Vieira", "Barbosa"}
	domains    = []string{"gmail.com", "hotmail.com", "outlook.com", "policiamilitar.sp.gov.br"}
)

func (c *CLI) newSeedCmd() *cobra.Command {
	var (
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic submissions for dashboard testing",
		Long: `Insert synthetic submissions into the configured backend. Attachments
point at no stored object, so dossiers show them as unavailable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := Build(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Setup(ctx); err != nil {
				return err
			}
			return seedSubmissions(ctx, app.submissions, app.catalog, count, rand.New(rand.NewSource(seed)), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of submissions")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}

func seedSubmissions(ctx context.Context, subs store.Submissions, catalog *intake.Catalog, n int, rng *rand.Rand, out io.Writer) error {
	start := time.Now()
	lastReport := start
	base := start.Add(-time.Duration(n) * time.Minute)

	for i := 0; i < n; i++ {
		sub := generateSubmission(rng, catalog, i, base.Add(time.Duration(i)*time.Minute))
		if _, err := subs.Insert(ctx, &sub); err != nil {
			return fmt.Errorf("seed: insert %d: %w", i, err)
		}
		if time.Since(lastReport) >= 2*time.Second {
			fmt.Fprintf(out, "  %d / %d inserted\n", i+1, n)
			lastReport = time.Now()
		}
	}

	elapsed := time.Since(start)
	rate := float64(n) / elapsed.Seconds()
	fmt.Fprintf(out, "inserted %d submissions in %s (%.0f/s)\n", n, elapsed.Round(time.Millisecond), rate)
	return nil
}

func generateSubmission(rng *rand.Rand, catalog *intake.Catalog, i int, at time.Time) models.Submission {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	re := intake.MaskRE(fmt.Sprintf("%07d", rng.Intn(10_000_000)))
	phone := intake.MaskPhone(fmt.Sprintf("11%09d", 900_000_000+rng.Intn(100_000_000)))
	judicial := catalog.Branched() && rng.Intn(2) == 1

	var files []models.Attachment
	for _, s := range catalog.Active(judicial) {
		files = append(files, models.Attachment{
			Category: s.Category,
			Label:    s.Label,
			Name:     s.Key + ".pdf",
			URL:      "#",
		})
	}

	return models.Submission{
		Name:          first + " " + last,
		RE:            re,
		Email:         fmt.Sprintf("%s.%s.%d@%s", emailPart(first), emailPart(last), i, domains[rng.Intn(len(domains))]),
		Phone:         phone,
		IsJudicial:    judicial,
		AgreedToTerms: true,
		Status:        models.Statuses[rng.Intn(len(models.Statuses))],
		CreatedAt:     models.Timestamp(at),
		Files:         files,
	}
}

func emailPart(s string) string {
	return strings.ToLower(upload.SanitizeLabel(s))
}
