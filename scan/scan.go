// SPDX-License-Identifier: MIT

// Package scan parses every header under a directory tree on a goroutine pool.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"gitlab.com/fisherprime/hpp"
	"gitlab.com/fisherprime/hpp/config"
	"gitlab.com/fisherprime/hpp/types"
)

type (
	// Runner parses the headers of a directory tree.
	Runner struct {
		cfg    *config.Config
		logger logrus.FieldLogger
	}

	// Result holds the outcome of parsing one file.
	Result struct {
		// Path is relative to the scanned root.
		Path   string
		Events []hpp.Event
		Tokens int
		Err    error
	}

	// Summary tallies a run.
	Summary struct {
		Files  int
		Failed int
		Events int
	}

	// Option defines the Runner functional option type.
	Option func(*Runner)
)

// Scanning errors.
var (
	ErrNoFiles     = errors.New("no matching files")
	ErrFilesFailed = errors.New("files failed to parse")
	ErrPanicked    = errors.New("recovery from panic")
)

// New instantiates a Runner; a nil cfg uses config.DefConfig.
func New(cfg *config.Config, options ...Option) (r *Runner, err error) {
	if cfg == nil {
		cfg = config.DefConfig()
	}
	if err = cfg.Validate(); err != nil {
		return
	}

	r = &Runner{
		cfg:    cfg,
		logger: logrus.New(),
	}

	for _, opt := range options {
		opt(r)
	}

	return
}

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(r *Runner) { r.logger = logger } }

// Config obtains the Runner's Config.
func (r *Runner) Config() *config.Config { return r.cfg }

// Discover lists the files under root with a configured extension, sorted.
func (r *Runner) Discover(ctx context.Context, root string) (paths types.StringSlice, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && r.cfg.Exclude.Locate(d.Name()) > -1 {
				return filepath.SkipDir
			}

			return nil
		}

		if r.cfg.Extensions.Locate(strings.ToLower(filepath.Ext(path))) < 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)

		return nil
	})
	if err != nil {
		return nil, err
	}

	paths.Sort()

	return
}

// Run parses every discovered file under root, returning Results in path order.
//
// A file's failure is recorded in its Result; the remaining files are still parsed.
func (r *Runner) Run(ctx context.Context, root string) (results []Result, err error) {
	paths, err := r.Discover(ctx, root)
	if err != nil {
		return
	}
	if len(paths) < 1 {
		err = fmt.Errorf("%w under %s (%s)", ErrNoFiles, root, r.cfg.Extensions)
		return
	}

	pool, err := ants.NewPool(r.cfg.Workers, ants.WithLogger(r.logger))
	if err != nil {
		return
	}
	defer pool.Release()

	var failed types.SafeCounter

	results = make([]Result, len(paths))
	done := make(chan bool, len(paths))
	errChan := make(chan error, types.BufferedErrChanSize)

	for index := range paths {
		index := index
		results[index].Path = paths[index]

		submitErr := pool.Submit(func() {
			defer func() { done <- true }()
			if results[index] = r.ParseFile(ctx, root, paths[index]); results[index].Err != nil {
				failed.Inc()
			}
		})
		if submitErr != nil {
			select {
			case errChan <- fmt.Errorf("%s: %w", paths[index], submitErr):
			case <-ctx.Done():
			}
		}
	}

	if err = types.MonitorChannels(ctx, len(paths), done, errChan, "submission"); err != nil {
		// Workers may still be writing.
		return nil, err
	}

	if n := failed.Value(); n > 0 {
		r.logger.WithFields(logrus.Fields{"files": len(paths), "failed": n}).Warn("files skipped")
	}

	if r.cfg.Debug {
		r.logger.Debug(Dump(results))
	}

	return
}

// ParseFile tokenizes & parses a single file relative to root.
func (r *Runner) ParseFile(ctx context.Context, root, path string) (result Result) {
	result.Path = path
	logger := r.logger.WithField("file", path)

	defer func() {
		if rec := recover(); rec != nil {
			result.Err = fmt.Errorf("%w: %v", ErrPanicked, rec)
		}

		if result.Err != nil {
			// Events before a failure are not salvaged.
			result.Events = nil
			logger.WithError(result.Err).Warn("parse failed")
		}
	}()

	f, err := os.Open(filepath.Join(root, path))
	if err != nil {
		result.Err = err
		return
	}
	defer f.Close()

	rec := &hpp.Recorder{}
	tokens, err := hpp.ParseReader(ctx, f, rec, hpp.WithLogger(logger), hpp.WithDebug(r.cfg.Debug))
	result.Tokens, result.Events, result.Err = len(tokens), rec.Events, err

	if r.cfg.Debug {
		logger.Debugf("parsed %d tokens into %d events", result.Tokens, len(result.Events))
	}

	return
}

// Report replays Results into a Reporter in order, skipping failed files.
func Report(results []Result, reporter hpp.Reporter) (summary Summary, err error) {
	for index := range results {
		result := &results[index]
		summary.Files++

		if result.Err != nil {
			summary.Failed++
			continue
		}

		reporter.Begin(result.Path)
		rec := hpp.Recorder{Events: result.Events}
		rec.Replay(reporter)
		if err = reporter.End(); err != nil {
			return
		}

		summary.Events += len(result.Events)
	}

	return
}

// Failures lists the failed Results.
func Failures(results []Result) (failures []Result) {
	for index := range results {
		if results[index].Err != nil {
			failures = append(failures, results[index])
		}
	}

	slices.SortFunc(failures, func(a, b Result) int { return strings.Compare(a.Path, b.Path) })

	return
}

// Dump renders Results for debugging.
func Dump(results []Result) string { return spew.Sdump(results) }
