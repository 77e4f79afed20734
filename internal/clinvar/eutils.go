package clinvar

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the NCBI E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// DefaultRetMax is the largest id list esearch returns per query.
const DefaultRetMax = 50000

// NCBI allows 3 requests/second without an API key and 10 with one.
const (
	requestsPerSecond        = 3
	requestsPerSecondWithKey = 10
)

// EUtilsConfig configures the E-utilities client.
type EUtilsConfig struct {
	BaseURL string
	APIKey  string
	Tool    string
	Email   string
	RetMax  int
	Timeout time.Duration
}

// EUtils is a Source backed by NCBI E-utilities.
type EUtils struct {
	cfg     EUtilsConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewEUtils creates an E-utilities client.
func NewEUtils(cfg EUtilsConfig) *EUtils {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.RetMax <= 0 {
		cfg.RetMax = DefaultRetMax
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}

	rps := requestsPerSecond
	if cfg.APIKey != "" {
		rps = requestsPerSecondWithKey
	}

	return &EUtils{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for request diagnostics.
func (e *EUtils) SetLogger(l *zap.Logger) {
	e.logger = l
}

// SetHTTPClient replaces the HTTP client.
func (e *EUtils) SetHTTPClient(c *http.Client) {
	e.client = c
}

// commonParams returns the parameters sent with every request.
func (e *EUtils) commonParams() url.Values {
	v := url.Values{}
	v.Set("db", "clinvar")
	if e.cfg.APIKey != "" {
		v.Set("api_key", e.cfg.APIKey)
	}
	if e.cfg.Tool != "" {
		v.Set("tool", e.cfg.Tool)
	}
	if e.cfg.Email != "" {
		v.Set("email", e.cfg.Email)
	}
	return v
}

// Search runs esearch for pathogenic and conflicting-pathogenic variants on
// a chromosome.
func (e *EUtils) Search(ctx context.Context, chrom string) ([]string, error) {
	params := e.commonParams()
	params.Set("term", chrom+"[chr] AND clinsig_pathogenic[prop]")
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(e.cfg.RetMax))

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create esearch request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Err: errors.New("invalid JSON response")}
	}

	result := gjson.GetBytes(body, "esearchresult")
	if msg := result.Get("ERROR"); msg.Exists() {
		return nil, &RemoteError{Op: "esearch", Chrom: chrom, Err: errors.New(msg.String())}
	}

	var ids []string
	for _, id := range result.Get("idlist").Array() {
		ids = append(ids, id.String())
	}

	if count := result.Get("count").Int(); count > int64(len(ids)) {
		e.logger.Warn("esearch result truncated",
			zap.String("chrom", chrom),
			zap.Int64("count", count),
			zap.Int("returned", len(ids)),
			zap.Int("retmax", e.cfg.RetMax))
	}

	return ids, nil
}

// Fetch posts the ids to efetch and streams the variation reports to fn.
func (e *EUtils) Fetch(ctx context.Context, ids []string, fn func(*Report) error) error {
	if len(ids) == 0 {
		return nil
	}

	params := e.commonParams()
	params.Set("rettype", "variation")
	params.Set("id", strings.Join(ids, ","))

	if err := e.limiter.Wait(ctx); err != nil {
		return &RemoteError{Op: "efetch", Err: err}
	}

	// POST, as recommended for long id lists.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"efetch.fcgi", strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("create efetch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return &RemoteError{Op: "efetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Op: "efetch", Status: resp.StatusCode}
	}

	return DecodeReports(resp.Body, fn)
}

// DecodeReports streams VariationReport elements from an efetch
// (rettype=variation) XML document.
func DecodeReports(r io.Reader, fn func(*Report) error) error {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode efetch response: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "VariationReport":
			rep, err := readReport(d, start)
			if err != nil {
				return err
			}
			if err := fn(rep); err != nil {
				return err
			}
		case "ERROR":
			var msg string
			if err := d.DecodeElement(&msg, &start); err != nil {
				return fmt.Errorf("decode efetch error: %w", err)
			}
			return &RemoteError{Op: "efetch", Err: errors.New(strings.TrimSpace(msg))}
		}
	}
}

// readReport collects HGVS and MolecularConsequence elements at any depth
// below a VariationReport.
func readReport(d *xml.Decoder, start xml.StartElement) (*Report, error) {
	rep := &Report{VariationID: attr(start, "VariationID")}

	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("decode VariationReport %s: %w", rep.VariationID, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "HGVS":
				rep.HGVS = append(rep.HGVS, HGVS{
					Type:             attr(t, "Type"),
					AccessionVersion: attr(t, "AccessionVersion"),
					Change:           attr(t, "Change"),
				})
			case "MolecularConsequence":
				rep.MolecularConsequences = append(rep.MolecularConsequences, attr(t, "Function"))
			}
		case xml.EndElement:
			depth--
		}
	}

	return rep, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
