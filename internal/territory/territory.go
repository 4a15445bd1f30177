// Package territory resolves the territory labels stamped onto every record
// of a run.
package territory

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/model"
)

// FromFilename parses the "<type words> <number>.csv" naming convention.
// The last space-separated token of the base name is the number; the one
// before it, joined with the token before that when present, is the type:
//
//	"Frisco 12.csv"           -> {Frisco, 12}
//	"Little Elm 7.csv"        -> {Little Elm, 7}
//	"North Little Elm 7.csv"  -> {Little Elm, 7}
func FromFilename(path string) model.Territory {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	tokens := strings.Split(base, " ")
	n := len(tokens)

	t := model.Territory{Number: tokens[n-1]}
	switch {
	case n >= 3:
		t.Type = tokens[n-3] + " " + tokens[n-2]
	case n == 2:
		t.Type = tokens[n-2]
	}
	return t
}

// Resolve returns the territory for a run. Non-empty fields of override win;
// the rest come from the input file name.
func Resolve(path string, override model.Territory) model.Territory {
	t := override
	if t.Type != "" && t.Number != "" {
		return t
	}

	parsed := FromFilename(path)
	if t.Type == "" {
		t.Type = parsed.Type
	}
	if t.Number == "" {
		t.Number = parsed.Number
	}

	if t.Type == "" {
		zap.L().Warn("territory: could not derive territory type from file name; pass --territory-type",
			zap.String("file", filepath.Base(path)),
		)
	}
	return t
}
