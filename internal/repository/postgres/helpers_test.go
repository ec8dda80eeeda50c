package postgres

import (
	"io/fs"
	"testing/fstest"
)

func fstestMigrations() fs.FS {
	return fstest.MapFS{
		"0001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER PRIMARY KEY);")},
		"0002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER PRIMARY KEY);")},
		"README.md":  {Data: []byte("not a migration")},
	}
}
