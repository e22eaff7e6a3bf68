package importer

import (
	"os"
	"sync"

	"romcat/internal/datfile"
	"romcat/internal/services"
)

type parseResult struct {
	path string
	file *datfile.File
	err  error
}

// parseAll parses DAT files with a bounded worker pool. Results come back
// in input order so import transactions and run logs stay deterministic.
func parseAll(paths []string, workers int) []parseResult {
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]parseResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = parseOne(paths[idx])
			}
		}()
	}
	for idx := range paths {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

func parseOne(path string) parseResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return parseResult{path: path, err: services.Wrap(services.ErrFormat, "importer", "parse", "read "+path, err)}
	}
	file, err := datfile.Parse(data)
	if err != nil {
		return parseResult{path: path, err: err}
	}
	return parseResult{path: path, file: file}
}
