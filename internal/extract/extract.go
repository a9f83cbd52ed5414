// Package extract mines plausible email addresses out of a folder of text
// files.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bdrennan/mailkit/internal/fileset"
)

// Addresses reads every file in folder whose suffix matches suffixes and
// returns the email-like tokens found, in first-occurrence order across
// files and lines.
//
// The harvesting steps: all lines are joined into one string, lower-cased,
// runs of whitespace collapsed, tokens split on whitespace and semicolons,
// tokens without an '@' dropped, and any '<' or '>' decoration stripped from
// the survivors. No RFC validation is applied beyond the '@' test, so a
// display-name fragment glued to an address without whitespace survives
// intact.
//
// A missing folder yields a *fileset.NotFoundError.
func Addresses(folder string, suffixes []string) ([]string, error) {
	files, err := fileset.Find(folder, suffixes)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(folder, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	joined := strings.ToLower(strings.Join(lines, " "))
	normalized := strings.Join(strings.Fields(joined), " ")

	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ';'
	})

	addresses := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.Contains(tok, "@") {
			continue
		}
		cleaned := strings.NewReplacer("<", "", ">", "").Replace(tok)
		addresses = append(addresses, cleaned)
	}

	slog.Info("harvested email addresses", "folder", folder, "count", len(addresses))
	return addresses, nil
}
