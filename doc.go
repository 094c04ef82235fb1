// Package docpipe compiles declarative filters, orderings and groupings
// into multi-stage aggregation pipelines for Parse-compatible document
// backends, and executes them either through the remote HTTP API or
// directly against the underlying MongoDB store.
//
// Compilation is pure and deterministic: the same constraints and
// grouping directive always produce the same stage sequence, and no I/O
// happens before an execution method is called.
//
//	client, err := docpipe.New(ctx,
//		docpipe.WithServer("https://api.example.com/parse", "appId", "masterKey"),
//	)
//	if err != nil { ... }
//	songs, err := client.Query("Song").
//		EqualTo("genre", "jazz").
//		After("releasedAt", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
//		Descending("plays").
//		Limit(25).
//		Results(ctx)
package docpipe
