package ops

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/interchange"
	"github.com/hpungsan/rolo/internal/sheet"
	"github.com/hpungsan/rolo/internal/store"
)

// MaxImportBytes caps the size of an imported spreadsheet.
const MaxImportBytes = 32 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required, .xlsx or .csv
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int `json:"imported"` // contacts appended
	Skipped  int `json:"skipped"`  // rows with neither a name nor a method
	Total    int `json:"total"`    // collection size after the import
}

// DecodeResult is delivered once on the channel returned by DecodeAsync.
// Exactly one of Table and Err is set.
type DecodeResult struct {
	Table *sheet.Table
	Err   error
}

// DecodeAsync reads r to the end and decodes it in a separate goroutine.
// The returned channel yields exactly one result and is then closed. The
// read is abandoned with a CANCELLED error if ctx ends first; a read that is
// blocked in r is not interrupted, so callers should close r on cancellation.
func DecodeAsync(ctx context.Context, r io.Reader, format sheet.Format) <-chan DecodeResult {
	out := make(chan DecodeResult, 1)
	go func() {
		defer close(out)

		data, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
		if err != nil {
			out <- DecodeResult{Err: errors.NewDecodeFailure(fmt.Errorf("read: %w", err))}
			return
		}
		if len(data) > MaxImportBytes {
			out <- DecodeResult{Err: errors.NewInvalidRequest(fmt.Sprintf("spreadsheet exceeds %d MiB", MaxImportBytes>>20))}
			return
		}
		if ctx.Err() != nil {
			out <- DecodeResult{Err: errors.NewCancelled("import")}
			return
		}

		table, err := sheet.Decode(bytes.NewReader(data), format)
		if err != nil {
			out <- DecodeResult{Err: errors.NewDecodeFailure(err)}
			return
		}
		out <- DecodeResult{Table: table}
	}()
	return out
}

// ImportReader decodes a spreadsheet from r and appends its contacts to the
// collection. The store is only touched after decoding has fully succeeded,
// so a failed import leaves the collection unchanged.
func ImportReader(ctx context.Context, st *store.Store, r io.Reader, format sheet.Format) (*ImportOutput, error) {
	var res DecodeResult
	select {
	case res = <-DecodeAsync(ctx, r, format):
	case <-ctx.Done():
		return nil, errors.NewCancelled("import")
	}
	if res.Err != nil {
		log.Warn().Err(res.Err).Msg("import decode failed")
		return nil, res.Err
	}

	built := interchange.FromTable(res.Table, nowFunc())
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("import")
	}
	if err := st.Append(ctx, built.Contacts); err != nil {
		return nil, err
	}

	log.Info().Int("imported", len(built.Contacts)).Int("skipped", built.Skipped).Msg("contacts imported")
	return &ImportOutput{
		Imported: len(built.Contacts),
		Skipped:  built.Skipped,
		Total:    st.Len(),
	}, nil
}

// Import reads a spreadsheet file and appends its contacts to the collection.
func Import(ctx context.Context, st *store.Store, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}
	format, err := sheet.FormatFromPath(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	return ImportReader(ctx, st, file, format)
}
