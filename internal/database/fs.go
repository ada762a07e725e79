package database

import (
	"fmt"
	"io/fs"
)

// mustSub roots fsys at dir. The directory is embedded at compile time, so
// a failure is a build defect.
func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("database: embedded %s missing: %v", dir, err))
	}
	return sub
}
