// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (pgpartition/internal/storage/postgres)
//   - "dryrun"   (pgpartition/internal/storage/dryrun)
//
// Typical usage (in cmd/pgpartition):
//
//	import _ "pgpartition/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:    cfg.Connection.Kind,
//	    DSN:     cfg.Connection.DSN,
//	    Options: cfg.Connection.Options,
//	})
package all

import (
	_ "pgpartition/internal/storage/dryrun"
	_ "pgpartition/internal/storage/postgres"
)
