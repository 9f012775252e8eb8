package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/interchange"
	"github.com/hpungsan/rolo/internal/sheet"
	"github.com/hpungsan/rolo/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string // optional, default: <exports dir>/contacts_<YYYY-MM-DD>.<ext>
	Format string // optional: xlsx (default) or csv; inferred from Path when set
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportFilename returns the download name for an export made at now.
func ExportFilename(now time.Time, format sheet.Format) string {
	return "contacts_" + now.Format("2006-01-02") + format.Ext()
}

// Export writes the whole collection to a spreadsheet file.
func Export(ctx context.Context, st *store.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := nowFunc()

	format, err := resolveExportFormat(input)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		dir, err := ExportsDir(cfg)
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, ExportFilename(now, format))
	}

	// Default paths are validated too
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	buf, count, err := encodeCollection(ctx, st, cfg, format)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to a temp file and rename so an existing export survives a failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := buf.WriteTo(file); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path must not be a symlink")
	}

	// Windows refuses to rename over an existing file. Fail rather than
	// delete-then-rename, which could lose the original.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	log.Info().Str("path", exportPath).Int("contacts", count).Msg("contacts exported")
	return &ExportOutput{
		Path:       exportPath,
		Format:     string(format),
		Count:      count,
		ExportedAt: now.Unix(),
	}, nil
}

// ExportTo encodes the whole collection to w and returns the number of
// contacts written. Nothing is written to w when encoding fails.
func ExportTo(ctx context.Context, w io.Writer, st *store.Store, cfg *config.Config, format sheet.Format) (int, error) {
	buf, count, err := encodeCollection(ctx, st, cfg, format)
	if err != nil {
		return 0, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to write export: %w", err))
	}
	log.Info().Str("format", string(format)).Int("contacts", count).Msg("contacts exported")
	return count, nil
}

func encodeCollection(ctx context.Context, st *store.Store, cfg *config.Config, format sheet.Format) (*bytes.Buffer, int, error) {
	contacts, err := st.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(contacts) == 0 {
		return nil, 0, errors.NewInvalidRequest("no contacts to export")
	}
	if ctx.Err() != nil {
		return nil, 0, errors.NewCancelled("export")
	}

	var buf bytes.Buffer
	table := interchange.ToTable(contacts, interchangeOptions(cfg))
	if err := sheet.Encode(&buf, table, sheet.EncodeOptions{Format: format, SheetName: sheetName(cfg)}); err != nil {
		return nil, 0, errors.NewInternal(fmt.Errorf("failed to encode spreadsheet: %w", err))
	}
	return &buf, len(contacts), nil
}

func resolveExportFormat(input ExportInput) (sheet.Format, error) {
	requested, err := sheet.ParseFormat(input.Format)
	if err != nil {
		return "", errors.NewInvalidRequest(err.Error())
	}
	if input.Path == "" {
		return requested, nil
	}
	fromPath, err := sheet.FormatFromPath(input.Path)
	if err != nil {
		return "", errors.NewInvalidRequest("path must have .xlsx or .csv extension")
	}
	if input.Format != "" && fromPath != requested {
		return "", errors.NewInvalidRequest(fmt.Sprintf("format %q does not match path extension %q", requested, filepath.Ext(input.Path)))
	}
	return fromPath, nil
}
