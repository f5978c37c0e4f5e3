package datasource

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Load detects the type of src and loads it. Delimited sources honour opts;
// SQLite sources ignore the delimiter and rebuild the stored table.
func Load(ctx context.Context, src string, opts loader.ParseOptions) (*model.Dataset, error) {
	source, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(ctx, source, opts)
}

// LoadFromSource loads a dataset from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(ctx context.Context, source DataSource, opts loader.ParseOptions) (*model.Dataset, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("%w: open SQLite source %s: %v", loader.ErrFetch, source.Path, err)
		}
		defer reader.Close()
		return reader.LoadDataset()

	case SourceTypeURL:
		return loader.Fetch(ctx, source.Path, opts)

	case SourceTypeDelimited:
		return loader.LoadFile(source.Path, opts)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
