// Package convert bulk-converts address lists between CSV and XLSX.
package convert

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Func converts one file.
type Func func(src, dst string) error

// Direction is a source/target extension pair with its converter.
type Direction struct {
	From    string
	To      string
	Convert Func
}

// Supported directions.
var (
	ToXLSX = Direction{From: ".csv", To: ".xlsx", Convert: CSVToXLSX}
	ToCSV  = Direction{From: ".xlsx", To: ".csv", Convert: XLSXToCSV}
)

// Report lists the files a directory conversion produced and those it could
// not convert.
type Report struct {
	Converted []string
	Failed    []string
}

// Dir converts every file in dir whose extension matches d.From
// (case-insensitive) into outDir, which defaults to dir. A failed file is
// logged and skipped; the returned error aggregates every failure.
func Dir(ctx context.Context, dir, outDir string, d Direction) (*Report, error) {
	sources, err := listFiles(dir, d.From)
	if err != nil {
		return nil, err
	}

	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "convert: create %s", outDir)
	}
	if len(sources) == 0 {
		zap.L().Warn("no files to convert", zap.String("dir", dir), zap.String("ext", d.From))
	}

	rep := &Report{}
	var errs error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return rep, multierr.Append(errs, eris.Wrap(err, "convert: cancelled"))
		}

		dst := filepath.Join(outDir, TargetName(src, d.To))
		if err := d.Convert(src, dst); err != nil {
			zap.L().Error("conversion failed", zap.String("file", src), zap.Error(err))
			rep.Failed = append(rep.Failed, src)
			errs = multierr.Append(errs, err)
			continue
		}
		zap.L().Info("converted", zap.String("file", src), zap.String("output", dst))
		rep.Converted = append(rep.Converted, dst)
	}
	return rep, errs
}

// TargetName swaps the extension of path's base name for ext.
func TargetName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: list %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
