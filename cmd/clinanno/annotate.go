package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/annotate"
	"github.com/inodb/clinanno/internal/classify"
	"github.com/inodb/clinanno/internal/vcf"
)

func newAnnotateCmd() *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Add PS1/PM5 evidence to a VCF file",
		Long: `Annotate a VCF file against the ClinVar catalog.

Each record's RefSeq protein change (NP_xxx:p.RefPosAlt) is compared with
pathogenic ClinVar changes at the same residue. Matches are prepended to the
INFO column as PS1=<ids>;PM5=<ids>;. All other lines are copied unchanged.

Input may be plain, gzip/bgzip, xz or bzip2 compressed. Output ending in .gz
is gzip compressed.`,
		Example: `  clinanno annotate --vcf-in sample.vcf.gz --vcf-out sample.clinvar.vcf
  clinanno annotate --vcf-in - --catalog clinvar.duckdb < sample.vcf
  clinanno annotate --vcf-in sample.vcf --vcf-out out.vcf.gz --workers 4`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{
				"catalog.path":     "catalog",
				"annotate.workers": "workers",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, inputPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "vcf-in", "i", "", "Input VCF file ('-' for stdin)")
	cmd.Flags().StringVarP(&outputPath, "vcf-out", "o", "-", "Output VCF file ('-' for stdout)")
	cmd.Flags().String("catalog", "", "Catalog file, gob or .duckdb (default: ~/.clinanno/clinvar_catalog.gob)")
	cmd.Flags().Int("workers", 0, "Annotation workers (0 = number of CPUs)")

	return cmd
}

func runAnnotate(cmd *cobra.Command, inputPath, outputPath string) error {
	if inputPath == "" {
		return &usageError{fmt.Errorf("--vcf-in is required")}
	}
	workers := viper.GetInt("annotate.workers")
	if workers < 0 {
		return &usageError{fmt.Errorf("--workers must not be negative")}
	}

	cat, _, err := loadCatalog(viper.GetString("catalog.path"))
	if err != nil {
		return err
	}

	r, err := vcf.Open(inputPath)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := vcf.Create(outputPath)
	if err != nil {
		return err
	}

	cl := classify.New(cat)
	cl.SetLogger(logger)
	ann := annotate.NewAnnotator(cl)
	ann.SetLogger(logger)
	ann.SetWorkers(workers)

	stats, err := ann.AnnotateAll(cmd.Context(), r, w)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("annotate %s: %w", inputPath, err)
	}

	fields := []zap.Field{zap.Int("lines", stats.Lines), zap.Int("records", stats.Records())}
	for _, o := range annotate.Outcomes() {
		if o == annotate.OutcomeHeader {
			continue
		}
		fields = append(fields, zap.Int(o.String(), stats.Count(o)))
	}
	logger.Info("annotation finished", fields...)
	return nil
}
