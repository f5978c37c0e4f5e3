package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/proteoview/pkg/debug"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Sentinel errors. Callers match them with errors.Is; the wrapped message
// carries the detail.
var (
	ErrFetch         = errors.New("fetch failed")
	ErrParse         = errors.New("malformed input")
	ErrMissingColumn = errors.New("missing column")
)

// DefaultFetchTimeout bounds a single HTTP fetch when the caller's context
// has no deadline.
const DefaultFetchTimeout = 30 * time.Second

// ParseOptions configures the behavior of Parse.
type ParseOptions struct {
	// Delimiter separates fields. Zero means comma.
	Delimiter rune

	// Source is recorded on the returned dataset.
	Source string

	// WarningHandler is called with warning messages (e.g., ragged rows).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// Client is used for URL sources. Nil means a client with
	// DefaultFetchTimeout.
	Client *http.Client
}

// DelimiterFor infers the field delimiter from a path or URL. Tab-separated
// extensions get '\t'; everything else is comma separated.
func DelimiterFor(path string) rune {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Path != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab", ".txt":
		return '\t'
	default:
		return ','
	}
}

// IsURL reports whether src names an http(s) resource.
func IsURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads a dataset from a local path or an http(s) URL. The delimiter
// is inferred from the extension unless opts.Delimiter is set.
func Load(ctx context.Context, src string, opts ParseOptions) (*model.Dataset, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = DelimiterFor(src)
	}
	if opts.Source == "" {
		opts.Source = src
	}
	if IsURL(src) {
		return Fetch(ctx, src, opts)
	}
	return LoadFile(src, opts)
}

// LoadFile reads a delimited file from disk.
func LoadFile(path string, opts ParseOptions) (*model.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no data file at %s", ErrFetch, path)
		}
		return nil, fmt.Errorf("%w: opening data file: %v", ErrFetch, err)
	}
	defer file.Close()

	if opts.Delimiter == 0 {
		opts.Delimiter = DelimiterFor(path)
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(file, opts)
}

// Fetch downloads and parses a delimited resource. Non-2xx responses are
// reported as ErrFetch. There is no retry.
func Fetch(ctx context.Context, rawURL string, opts ParseOptions) (*model.Dataset, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrFetch, err)
	}
	debug.Log("fetching %s", rawURL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = DelimiterFor(rawURL)
	}
	if opts.Source == "" {
		opts.Source = rawURL
	}
	return Parse(resp.Body, opts)
}

// Parse reads a header row followed by data rows. Every field goes through
// model.ParseValue. Short rows are padded with empty cells and long rows are
// truncated, each with a warning; blank lines are skipped.
func Parse(r io.Reader, opts ParseOptions) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %v", ErrParse, err)
	}
	data = stripBOM(data)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, fmt.Errorf("%w: missing header row", ErrParse)
	}

	ds := &model.Dataset{Columns: header, Source: opts.Source}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(header) {
			warn(fmt.Sprintf("line %d has %d fields, header has %d", line, len(rec), len(header)))
		}
		row := make(model.Row, len(header))
		for i, col := range header {
			var raw string
			if i < len(rec) {
				raw = rec[i]
			}
			row[col] = model.ParseValue(raw)
		}
		ds.Rows = append(ds.Rows, row)
	}

	debug.Log("parsed %d rows x %d columns from %s", len(ds.Rows), len(header), opts.Source)
	return ds, nil
}

// RequireColumns resolves every reference against ds and fails with
// ErrMissingColumn on the first one that is absent. The resolved names are
// returned in order.
func RequireColumns(ds *model.Dataset, refs ...string) ([]string, error) {
	out := make([]string, len(refs))
	for i, ref := range refs {
		name, err := ds.ResolveColumn(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingColumn, err)
		}
		out[i] = name
	}
	return out, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
