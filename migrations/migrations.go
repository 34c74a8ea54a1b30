// Package migrations embeds the PostgreSQL schema of the ledger.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Script is one schema file.
type Script struct {
	Name string
	SQL  string
}

// Scripts returns the embedded schema files in name order.
func Scripts() ([]Script, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		content, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, Script{Name: name, SQL: string(content)})
	}
	return scripts, nil
}
