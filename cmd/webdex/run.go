package main

import (
	"fmt"

	"github.com/webdex/webdex"
	"github.com/webdex/webdex/fs"
	"github.com/webdex/webdex/index"
)

// indexFiles chunks, embeds, and upserts a job's files into its collection,
// optionally exporting chunks to disk. The index stage owns the 70-99
// progress band; the caller reports 100 on completion.
func indexFiles(deps *Dependencies, jobID string, files []webdex.FileEntry, exportDir string, readable bool) error {
	ix := deps.Indexer
	if exportDir != "" {
		var opts []fs.Option
		if readable {
			opts = append(opts, fs.WithReadableMirror())
		}
		exporter, err := fs.NewExporter(exportDir, opts...)
		if err != nil {
			return err
		}
		defer exporter.Close()
		ix = index.NewIndexer(deps.Embedder, deps.Store, index.WithExporter(exporter))
	}

	collection := webdex.CollectionName(collectionPrefix, jobID)
	result, err := ix.Run(deps.Ctx, collection, files, deps.Reporter, webdex.SubRange{Lo: 70, Hi: 99})
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Indexed %d chunks from %d files into %s\n", result.Chunks, result.Files, collection)
	if result.ExportFailed > 0 {
		fmt.Fprintf(deps.Stderr, "  %d chunk exports failed (see log)\n", result.ExportFailed)
	}
	return nil
}
