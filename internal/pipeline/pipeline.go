// Package pipeline turns the objects of a blob store into a queryable record set and answers queries against it.
//
// A run moves through Setup → Listing → Downloading → Extracting → Parsing → Querying → Done, one stage after
// the other. The first failing stage ends the run in Failed; nothing after it runs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nholding/finseries/internal/archive"
	"github.com/nholding/finseries/internal/audit"
	"github.com/nholding/finseries/internal/logging"
	"github.com/nholding/finseries/internal/record/domain"
	"github.com/nholding/finseries/internal/record/parser"
	"github.com/nholding/finseries/internal/record/service"
	"github.com/nholding/finseries/internal/storage"
)

// Pipeline owns the collaborators of a run. The blob store client is injected, never global.
type Pipeline struct {
	store     storage.BlobStore
	extractor archive.Extractor
	opts      Options
	log       *slog.Logger
}

func New(store storage.BlobStore, extractor archive.Extractor, opts Options) *Pipeline {
	return &Pipeline{
		store:     store,
		extractor: extractor,
		opts:      opts.withDefaults(),
		log:       logging.Component("pipeline"),
	}
}

// run is the state of one Run call. The workspace and the record store belong to it exclusively.
type run struct {
	*Pipeline
	report    *Report
	ws        *workspace
	extracted map[int][]string // Staged index → extracted paths
	log       *slog.Logger
}

// Run executes every stage for queries and returns the report.
// On failure the report is still returned and err is a *StageError.
func (p *Pipeline) Run(ctx context.Context, queries []service.Query) (*Report, error) {
	info := audit.NewRunInfo(p.opts.StartedBy)
	r := &run{
		Pipeline: p,
		report: &Report{
			Run:     info,
			Records: domain.NewRecordStore(),
		},
		extracted: make(map[int][]string),
		log:       p.log.With("run", info.ID),
	}
	defer info.Finish()

	if err := p.opts.Validate(); err != nil {
		return r.fail(StageSetup, err)
	}

	ws, err := newWorkspace(p.opts.StagingDir, info.ID)
	if err != nil {
		return r.fail(StageSetup, err)
	}
	r.ws = ws
	r.report.Workspace = ws.root
	if !p.opts.KeepWorkspace {
		defer func() {
			if err := ws.remove(); err != nil {
				r.log.Warn("workspace cleanup failed", "workspace", ws.root, "error", err)
			}
		}()
	}

	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageListing, r.listing},
		{StageDownloading, r.downloading},
		{StageExtracting, r.extracting},
		{StageParsing, r.parsing},
		{StageQuerying, func(context.Context) error { return r.querying(queries) }},
	}

	for _, s := range stages {
		r.report.Stage = s.stage
		r.log.Debug("stage started", "stage", s.stage)
		if err := r.runStage(ctx, s.fn); err != nil {
			return r.fail(s.stage, err)
		}
	}

	r.report.Stage = StageDone
	r.log.Info("run finished",
		"keys", len(r.report.Keys),
		"records", r.report.Records.Len(),
		"answers", len(r.report.Answers),
		"file_errors", len(r.report.FileErrors()))
	return r.report, nil
}

func (r *run) runStage(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.opts.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.StageTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func (r *run) fail(stage Stage, err error) (*Report, error) {
	r.report.Stage = StageFailed
	r.report.FailedAt = stage
	r.log.Error("run failed", "stage", stage, "error", err)
	return r.report, &StageError{Stage: stage, Err: err}
}

func (r *run) listing(ctx context.Context) error {
	keys, err := r.store.List(ctx, r.opts.SourcePath)
	if err != nil {
		return err
	}
	r.report.Keys = keys
	r.log.Info("listed objects", "path", r.opts.SourcePath, "keys", len(keys))
	return nil
}

// downloading stages every listed object. Local paths are assigned before any transfer starts, so the
// staged order is the listing order whatever the concurrency.
func (r *run) downloading(ctx context.Context) error {
	staged := make([]StagedFile, len(r.report.Keys))
	for i, key := range r.report.Keys {
		staged[i] = StagedFile{Key: key, Path: r.ws.stagePath(i, key)}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.DownloadConcurrency)
	for _, sf := range staged {
		g.Go(func() error {
			return r.fetch(gctx, sf)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.report.Staged = staged
	return nil
}

func (r *run) fetch(ctx context.Context, sf StagedFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := r.store.Open(ctx, sf.Key)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(sf.Path)
	if err != nil {
		return fmt.Errorf("stage %s: %w", sf.Key, err)
	}
	n, err := io.Copy(f, body)
	if err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", sf.Key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("stage %s: %w", sf.Key, err)
	}

	r.log.Info("downloaded object", "key", sf.Key, "path", sf.Path, "bytes", n)
	return nil
}

func (r *run) extracting(ctx context.Context) error {
	for i, sf := range r.report.Staged {
		if !matchName(r.opts.ArchivePattern, sf.Path) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		paths, err := r.extractor.Extract(ctx, sf.Path, r.ws.extractDir(sf.Path))
		if err != nil {
			if !r.opts.IsolateFiles {
				return err
			}
			r.isolate(FileResult{Key: sf.Key, Path: sf.Path, SourceFile: path.Base(sf.Key), Err: err})
			continue
		}
		r.extracted[i] = paths
		r.log.Info("extracted archive", "archive", sf.Path, "files", len(paths))
	}
	return nil
}

// parsing parses tabular files in listing order. A staged tabular file is parsed as is; an archive
// contributes its extracted tabular files in archive order.
func (r *run) parsing(ctx context.Context) error {
	for i, sf := range r.report.Staged {
		candidates := r.extracted[i]
		if matchName(r.opts.TabularPattern, sf.Path) {
			candidates = []string{sf.Path}
		}

		for _, p := range candidates {
			if !matchName(r.opts.TabularPattern, p) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			res := FileResult{Key: sf.Key, Path: p, SourceFile: filepath.Base(p)}
			if p == sf.Path {
				res.SourceFile = path.Base(sf.Key)
			}
			records, err := parseFile(p, res.SourceFile)
			if err != nil {
				if !r.opts.IsolateFiles {
					return err
				}
				res.Err = err
				r.isolate(res)
				continue
			}

			r.report.Records.Append(records...)
			res.Records = len(records)
			r.report.Files = append(r.report.Files, res)
			r.log.Info("parsed file", "file", res.SourceFile, "records", res.Records)
		}
	}

	r.report.Duplicates = r.report.Records.Duplicates()
	for _, key := range r.report.Duplicates {
		r.log.Warn("duplicate record key, first match wins",
			"id", key.ID, "file", key.SourceFile, "records", len(r.report.Records.FindAll(key.ID, key.SourceFile)))
	}
	return nil
}

func parseFile(p, sourceFile string) ([]*domain.FinancialRecord, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	return parser.Parse(f, sourceFile)
}

func (r *run) querying(queries []service.Query) error {
	r.report.Answers = service.RunAll(service.NewRangeQuery(r.report.Records), queries)
	for _, a := range r.report.Answers {
		if a.Found {
			r.log.Info("query answered", "query", a.Query.String(), "window", a.Result.Window.Label())
		} else {
			r.log.Info("query missed", "query", a.Query.String())
		}
	}
	return nil
}

func (r *run) isolate(res FileResult) {
	r.report.Files = append(r.report.Files, res)
	r.log.Warn("file skipped", "file", res.SourceFile, "error", res.Err)
}
