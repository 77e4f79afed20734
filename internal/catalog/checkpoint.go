package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Checkpoints stores one partial catalog per chromosome so an interrupted
// build can resume where it stopped:
//
//	{dir}/clinvar_chr1.gob
//	{dir}/clinvar_chrX.gob
type Checkpoints struct {
	dir string
}

// NewCheckpoints creates a checkpoint store in dir.
func NewCheckpoints(dir string) *Checkpoints {
	return &Checkpoints{dir: dir}
}

// Dir returns the checkpoint directory.
func (cp *Checkpoints) Dir() string {
	return cp.dir
}

// Path returns the checkpoint file for a chromosome.
func (cp *Checkpoints) Path(chrom string) string {
	return filepath.Join(cp.dir, "clinvar_chr"+chrom+".gob")
}

// Has reports whether a readable checkpoint exists for chrom.
func (cp *Checkpoints) Has(chrom string) bool {
	info, err := os.Stat(cp.Path(chrom))
	return err == nil && info.Mode().IsRegular()
}

// Save persists the partial catalog for chrom.
func (cp *Checkpoints) Save(chrom string, c *Catalog, meta Meta) error {
	meta.Chromosomes = []string{chrom}
	if err := Save(cp.Path(chrom), c, meta); err != nil {
		return fmt.Errorf("checkpoint chr%s: %w", chrom, err)
	}
	return nil
}

// Load reads the partial catalog for chrom.
func (cp *Checkpoints) Load(chrom string) (*Catalog, error) {
	c, _, err := Load(cp.Path(chrom))
	if err != nil {
		return nil, fmt.Errorf("checkpoint chr%s: %w", chrom, err)
	}
	return c, nil
}

// Clear removes the checkpoints for the given chromosomes.
func (cp *Checkpoints) Clear(chroms []string) error {
	var errs []error
	for _, chrom := range chroms {
		if err := os.Remove(cp.Path(chrom)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
