package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"otrpipe/internal/asset"
	"otrpipe/internal/cutlist"
	"otrpipe/internal/fileutil"
	"otrpipe/internal/services"
)

// cutStage cuts decoded assets with a bounded worker pool. Workers report
// through a channel; they never abort each other.
func (r *Runner) cutStage(ctx context.Context, report *Report, decoded []asset.Asset, opts Options) {
	if len(decoded) == 0 {
		return
	}
	if err := r.checkTools(); err != nil {
		r.logger.Error("cut stage aborted", "error", err)
		for _, a := range decoded {
			r.record(ctx, report, Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed, Err: err})
		}
		return
	}

	workers := r.cfg.Workers.Cut
	if workers < 1 {
		workers = 1
	}
	results := make(chan Result, len(decoded))
	var group errgroup.Group
	group.SetLimit(workers)
	for _, a := range decoded {
		if ctx.Err() != nil {
			results <- Result{Asset: a, Stage: "cut", Outcome: OutcomeSkipped, Detail: "run canceled"}
			continue
		}
		group.Go(func() error {
			results <- r.cutOne(ctx, a, opts)
			return nil
		})
	}
	_ = group.Wait()
	close(results)
	for res := range results {
		switch res.Outcome {
		case OutcomeDone:
			r.logger.Info("cut", "asset", res.Asset.Key)
		case OutcomeParked:
			r.logger.Info("no cut list yet, asset parked", "asset", res.Asset.Key)
		case OutcomeFailed:
			r.logger.Error("cut failed", "asset", res.Asset.Key, "error", res.Err)
		}
		r.record(ctx, report, res)
	}
}

// cutOne takes one decoded asset end to end: select a cut list, build the
// keep timeline, invoke the cutter, archive the decoded original.
func (r *Runner) cutOne(ctx context.Context, a asset.Asset, opts Options) Result {
	list, err := r.selectList(ctx, a, opts)
	if err != nil {
		if services.IsBenign(err) {
			return Result{Asset: a, Stage: "cut", Outcome: OutcomeParked, Detail: "no usable cut list"}
		}
		return Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed, Err: err}
	}

	totalMillis, err := r.prober.Duration(ctx, a.Path)
	if err != nil {
		return Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed, Err: err}
	}
	keep, err := cutlist.KeepTimeline(list, totalMillis, r.cfg.Cutter.FrameRate)
	if err != nil {
		return Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed, Err: err}
	}

	outPath := filepath.Join(r.layout.Cut(), a.CutName())
	if err := r.cutter.Cut(ctx, a.Path, outPath, keep); err != nil {
		return Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed, Err: err}
	}

	// The move into the archive is the commit of the cut transition: the
	// asset's decoded copy stops being eligible for cutting.
	archivePath := filepath.Join(r.layout.Archive(), a.FileName())
	if err := fileutil.MoveFile(a.Path, archivePath); err != nil {
		return Result{Asset: a, Stage: "cut", Outcome: OutcomeFailed,
			Err: services.Wrap(services.ErrFilesystem, "cut", "archive", a.FileName(), err)}
	}

	detail := ""
	if opts.Intervals != "" && r.cfg.Cutlist.Submit {
		id, err := r.submitList(ctx, a, list, archivePath)
		if err != nil {
			// The cut itself succeeded; a failed upload is worth a warning,
			// not a failed asset.
			r.logger.Warn("cut list submission failed", "asset", a.Key, "error", err)
			detail = "cut ok, submission failed"
		} else {
			detail = fmt.Sprintf("submitted cut list %d", id)
		}
	}
	return Result{Asset: a, Stage: "cut", Outcome: OutcomeDone, Detail: detail}
}

// selectList obtains the cut list to apply: the self-authored intervals when
// given, otherwise the best provider candidate. ErrNotFound means nobody has
// published a usable list yet.
func (r *Runner) selectList(ctx context.Context, a asset.Asset, opts Options) (cutlist.List, error) {
	if opts.Intervals != "" {
		return cutlist.ParseIntervals(opts.Intervals)
	}

	candidates, err := r.provider.Query(ctx, a.FileName())
	if err != nil {
		return cutlist.List{}, err
	}
	best, ok := cutlist.SelectBest(candidates, r.cfg.Cutlist.MinRating)
	if !ok {
		return cutlist.List{}, services.Wrap(services.ErrNotFound, "cut", "select",
			fmt.Sprintf("no cut list with rating >= %v for %s", r.cfg.Cutlist.MinRating, a.FileName()), nil)
	}
	list, err := r.provider.Fetch(ctx, best.ID)
	if err != nil {
		return cutlist.List{}, err
	}
	return list, nil
}

// submitList uploads a self-authored cut list for the file it was applied to.
func (r *Runner) submitList(ctx context.Context, a asset.Asset, list cutlist.List, archivePath string) (int64, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "cut", "submit", "", err)
	}
	document, err := cutlist.BuildDocument(list, a.FileName(), info.Size(), r.cfg.Cutlist.SubmitRating)
	if err != nil {
		return 0, err
	}
	if r.cfg.Cutlist.AccessToken == "" {
		return 0, services.Wrap(services.ErrConfiguration, "cut", "submit", "access token missing", nil)
	}
	return r.provider.Submit(ctx, a.FileName(), document, r.cfg.Cutlist.AccessToken)
}
