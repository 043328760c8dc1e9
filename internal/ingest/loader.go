package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"stockdash/internal/storage"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type Status string

const (
	StatusLoaded  Status = "loaded"
	StatusSkipped Status = "skipped"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

type FileResult struct {
	Path    string
	Table   string
	Status  Status
	Rows    int
	Columns []string
	Err     error
}

type Report struct {
	DBPath  string
	Results []FileResult
}

func (r Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

type Loader struct {
	log logrus.FieldLogger
}

func NewLoader(log logrus.FieldLogger) *Loader {
	return &Loader{log: log.WithField("component", "loader")}
}

// TableName is the file's base name without its extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFiles writes every supported file into the database at dbPath as its own
// table, replacing any table of the same name. Per-file problems are logged
// and recorded in the report; they never stop the batch. The returned error is
// only set when the database itself cannot be opened.
func (l *Loader) LoadFiles(ctx context.Context, files []string, dbPath string) (Report, error) {
	rep := Report{DBPath: dbPath}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return rep, fmt.Errorf("create database directory: %w", err)
		}
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return rep, err
	}
	l.log.Infof("connected to database %s", dbPath)

	for _, path := range files {
		res := l.loadFile(ctx, store, path)
		rep.Results = append(rep.Results, res)
	}

	if err := store.Close(); err != nil {
		l.log.WithError(err).Warn("close database")
	}
	size := ""
	if st, err := os.Stat(dbPath); err == nil {
		size = " (" + humanize.Bytes(uint64(st.Size())) + ")"
	}
	l.log.Infof("database %s closed%s: %d loaded, %d skipped, %d missing, %d failed",
		dbPath, size, rep.Count(StatusLoaded), rep.Count(StatusSkipped), rep.Count(StatusMissing), rep.Count(StatusFailed))
	return rep, nil
}

func (l *Loader) loadFile(ctx context.Context, store *storage.Store, path string) FileResult {
	res := FileResult{Path: path, Table: TableName(path)}
	log := l.log.WithFields(logrus.Fields{"file": path, "table": res.Table})

	var read func(string, string) (*storage.Table, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		read = readCSV
	case ".xlsx":
		read = readXLSX
	default:
		res.Status, res.Err = StatusSkipped, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
		log.Warn("unsupported file format, skipping")
		return res
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		res.Status, res.Err = StatusMissing, err
		log.Error("file not found, check that it exists at the given path")
		return res
	}

	log.Info("reading file")
	tbl, err := read(path, res.Table)
	if err == nil {
		err = store.ReplaceTable(ctx, tbl)
	}
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		log.WithError(err).Error("failed to load file")
		return res
	}

	res.Status = StatusLoaded
	res.Rows = len(tbl.Rows)
	res.Columns = tbl.ColumnNames()
	log.Infof("wrote %s rows to table", humanize.Comma(int64(res.Rows)))
	return res
}
