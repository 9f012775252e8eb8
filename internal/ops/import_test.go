package ops

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/sheet"
)

const sampleCSV = "姓名,书签,备注,创建时间,phone1,email2\n" +
	"王五,是,邻居,2024/3/1 09:00:00,13700137000,wangwu@example.com\n" +
	",,,,,\n" +
	",否,,,,only@example.com\n"

func TestImportReader(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	out, err := ImportReader(ctx, st, strings.NewReader(sampleCSV), sheet.FormatCSV)
	if err != nil {
		t.Fatalf("ImportReader failed: %v", err)
	}
	if out.Imported != 2 || out.Total != 4 {
		t.Errorf("output = %+v, want 2 imported, 4 total", out)
	}

	all, _ := Search(ctx, st, SearchInput{})
	if all.Items[2].Name != "王五" || !all.Items[2].Bookmarked {
		t.Errorf("imported contact = %+v", all.Items[2])
	}
	if len(all.Items[2].Methods) != 2 {
		t.Errorf("Methods = %+v", all.Items[2].Methods)
	}
	if all.Items[3].Name != "" || len(all.Items[3].Methods) != 1 {
		t.Errorf("method-only contact = %+v", all.Items[3])
	}
}

func TestImportReader_CountsSkippedRows(t *testing.T) {
	st := newEmptyStore(t)
	input := "姓名,phone1\n,\nx,\n"
	// The blank row is dropped by the decoder; nothing is left to skip.
	out, err := ImportReader(context.Background(), st, strings.NewReader(input), sheet.FormatCSV)
	if err != nil {
		t.Fatalf("ImportReader failed: %v", err)
	}
	if out.Imported != 1 || out.Skipped != 0 {
		t.Errorf("output = %+v", out)
	}

	// A row carrying only a creation time yields nothing and is skipped.
	out, err = ImportReader(context.Background(), st, strings.NewReader("姓名,创建时间\n,2024/3/1\n"), sheet.FormatCSV)
	if err != nil {
		t.Fatalf("ImportReader failed: %v", err)
	}
	if out.Imported != 0 || out.Skipped != 1 {
		t.Errorf("output = %+v", out)
	}
}

func TestImportReader_DecodeFailureLeavesStoreUntouched(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	before, _ := Search(ctx, st, SearchInput{})

	_, err := ImportReader(ctx, st, strings.NewReader("PK\x03\x04 definitely not a workbook"), sheet.FormatXLSX)
	if !errors.Is(err, errors.ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got: %v", err)
	}
	if rErr, ok := errors.As(err); !ok || rErr.Message != errors.DecodeFailureMessage {
		t.Errorf("message = %v", err)
	}

	after, _ := Search(ctx, st, SearchInput{})
	if len(after.Items) != len(before.Items) {
		t.Errorf("collection changed from %d to %d", len(before.Items), len(after.Items))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeAsync_ReadError(t *testing.T) {
	res := <-DecodeAsync(context.Background(), failingReader{}, sheet.FormatCSV)
	if !errors.Is(res.Err, errors.ErrDecodeFailure) {
		t.Errorf("expected ErrDecodeFailure, got: %v", res.Err)
	}
	if res.Table != nil {
		t.Error("Table set alongside error")
	}
}

func TestDecodeAsync_SingleResultThenClosed(t *testing.T) {
	ch := DecodeAsync(context.Background(), strings.NewReader("姓名\nA\n"), sheet.FormatCSV)
	res, ok := <-ch
	if !ok || res.Err != nil || len(res.Table.Rows) != 1 {
		t.Fatalf("first receive = %+v, %v", res, ok)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("second value delivered")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed")
	}
}

func TestImportReader_Cancelled(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	_, err := ImportReader(ctx, st, pr, sheet.FormatCSV)
	if !errors.Is(err, errors.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got: %v", err)
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestImport_FromFile(t *testing.T) {
	st := newTestStore(t)
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "contacts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	out, err := Import(context.Background(), st, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 2 {
		t.Errorf("Imported = %d, want 2", out.Imported)
	}
}

func TestImport_Validation(t *testing.T) {
	st := newTestStore(t)
	cfg := unsafeConfig()

	if _, err := Import(context.Background(), st, cfg, ImportInput{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty path: expected ErrInvalidRequest, got: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.xlsx")
	if _, err := Import(context.Background(), st, cfg, ImportInput{Path: missing}); !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing file: expected ErrFileNotFound, got: %v", err)
	}
	if _, err := Import(context.Background(), st, cfg, ImportInput{Path: "/tmp/contacts.json"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad extension: expected ErrInvalidRequest, got: %v", err)
	}
}

func TestExportThenImport_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	if _, err := ExportTo(ctx, &buf, st, config.DefaultConfig(), sheet.FormatXLSX); err != nil {
		t.Fatalf("ExportTo failed: %v", err)
	}
	out, err := ImportReader(ctx, st, &buf, sheet.FormatXLSX)
	if err != nil {
		t.Fatalf("ImportReader failed: %v", err)
	}
	if out.Imported != 2 || out.Total != 4 {
		t.Fatalf("output = %+v", out)
	}

	all, _ := Search(ctx, st, SearchInput{})
	original, imported := all.Items[0], all.Items[2]
	if imported.Name != original.Name || imported.Bookmarked != original.Bookmarked || imported.Note != original.Note {
		t.Errorf("round trip lost content: %+v vs %+v", imported, original)
	}
	if imported.ID == original.ID {
		t.Error("imported contact reused the original id")
	}
	if len(imported.Methods) != len(original.Methods) {
		t.Errorf("methods = %+v, want %+v", imported.Methods, original.Methods)
	}
}
