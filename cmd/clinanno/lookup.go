package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/classify"
	"github.com/inodb/clinanno/internal/duckdb"
	"github.com/inodb/clinanno/internal/hgvs"
)

func newLookupCmd() *cobra.Command {
	var change string

	cmd := &cobra.Command{
		Use:   "lookup <transcript>",
		Short: "List catalog entries for a RefSeq protein",
		Long: `List the pathogenic ClinVar changes stored for one RefSeq protein
accession. With --change, also classify that change the way annotate would.`,
		Example: `  clinanno lookup NP_004976.2
  clinanno lookup NP_004976.2 --change p.Gly12Val
  clinanno lookup NP_000537.3 --catalog clinvar.duckdb`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{"catalog.path": "catalog"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.OutOrStdout(), viper.GetString("catalog.path"), args[0], change)
		},
	}

	cmd.Flags().String("catalog", "", "Catalog file, gob or .duckdb (default: ~/.clinanno/clinvar_catalog.gob)")
	cmd.Flags().StringVar(&change, "change", "", "Protein change to classify, e.g. p.Gly12Cys")

	return cmd
}

func runLookup(out io.Writer, catalogPath, accession, change string) error {
	var q hgvs.ProteinChange
	if change != "" {
		var ok bool
		q, ok = hgvs.ParseChange(change)
		if !ok {
			return &usageError{fmt.Errorf("cannot parse protein change %q", change)}
		}
		q.Transcript = accession
	}

	entries, err := lookupEntries(catalogPath, accession)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORD_ID\tAA_CHANGE\tSHORT\tKIND\tCONSEQUENCES")
	for _, e := range entries {
		short, kind := "-", "unparseable"
		if pc, ok := hgvs.ParseChange(e.AAChange); ok {
			short, kind = pc.Short(), pc.Kind().String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.RecordID, e.AAChange, short, kind, e.MolecularConsequence.Join(", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d entries for %s\n", len(entries), accession)

	if change == "" {
		return nil
	}

	c := catalog.New()
	for _, e := range entries {
		c.Add(accession, e)
	}
	res := classify.New(c).Classify(q)
	if res.Empty() {
		fmt.Fprintf(out, "%s: no PS1/PM5 evidence\n", q.String())
	} else {
		fmt.Fprintf(out, "%s: %s\n", q.String(), res.Format())
	}
	return nil
}

func lookupEntries(path, accession string) ([]*catalog.Entry, error) {
	if !isDuckDBPath(path) {
		c, _, err := loadCatalog(path)
		if err != nil {
			return nil, err
		}
		return c.Entries(accession), nil
	}

	if err := checkCatalog(path); err != nil {
		return nil, err
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LookupTranscript(accession)
}
