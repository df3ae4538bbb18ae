package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"otrpipe/internal/asset"
	"otrpipe/internal/config"
	"otrpipe/internal/cutlist"
	"otrpipe/internal/cutter"
	"otrpipe/internal/deps"
	"otrpipe/internal/fileutil"
	"otrpipe/internal/history"
	"otrpipe/internal/otrkey"
	"otrpipe/internal/services"
	"otrpipe/internal/workdir"
)

// Provider is the cut-list service collaborator.
type Provider interface {
	Query(ctx context.Context, fileName string) ([]cutlist.Candidate, error)
	Fetch(ctx context.Context, id int64) (cutlist.List, error)
	Submit(ctx context.Context, fileName string, document []byte, accessToken string) (int64, error)
}

// DurationProber reads a video's total duration.
type DurationProber interface {
	Duration(ctx context.Context, path string) (int64, error)
}

// Recorder persists per-asset outcomes. A nil Recorder disables history.
type Recorder interface {
	BeginRun(ctx context.Context, workingDir string) (string, error)
	Record(ctx context.Context, rec history.Record) error
	FinishRun(ctx context.Context, runID string) error
}

// Options selects what a run does.
type Options struct {
	// Inputs are explicitly submitted file paths; empty means scan the
	// working directory.
	Inputs []string
	Decode bool
	Cut    bool
	// Intervals is a self-authored cut list ("time:[a,b]..." or
	// "frames:[a,b]...") that replaces the provider lookup for every asset
	// cut in this run.
	Intervals string
}

// Runner owns one working directory and drives runs over it.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	layout   workdir.Layout
	decoder  *otrkey.Decoder
	provider Provider
	cutter   cutter.Cutter
	prober   DurationProber
	recorder Recorder

	// checkTools is the cut-stage tool preflight; tests stub it out.
	checkTools func() error
}

// New builds a Runner with the default collaborators for cfg.
func New(cfg *config.Config, logger *slog.Logger, recorder Recorder) (*Runner, error) {
	cut, err := cutter.New(cfg.Cutter.Backend, cfg.Cutter.Binary, logger)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		layout:   workdir.NewLayout(cfg.Paths.WorkingDir),
		decoder:  otrkey.NewDecoder(cfg.Workers.Decode),
		provider: cutlist.NewClient(cfg.Cutlist.BaseURL, logger),
		cutter:   cut,
		prober:   cutter.NewProber("", logger),
		recorder: recorder,
	}
	r.checkTools = r.checkCutTools
	return r, nil
}

// SetProvider replaces the cut-list collaborator, mainly for tests.
func (r *Runner) SetProvider(p Provider) { r.provider = p }

// SetCutter replaces the cutting backend, mainly for tests.
func (r *Runner) SetCutter(c cutter.Cutter) { r.cutter = c }

// SetProber replaces the duration prober, mainly for tests.
func (r *Runner) SetProber(p DurationProber) { r.prober = p }

// Run executes the selected stages over the working directory. Per-asset
// failures land in the report; only a run-level problem (unusable or locked
// working directory) is returned as an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := r.layout.Ensure(); err != nil {
		return nil, err
	}
	if err := r.layout.CheckAccess(); err != nil {
		return nil, err
	}
	release, err := r.layout.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	report := &Report{}
	if r.recorder != nil {
		runID, err := r.recorder.BeginRun(ctx, r.layout.Root())
		if err != nil {
			return nil, err
		}
		report.RunID = runID
		defer func() {
			if err := r.recorder.FinishRun(context.WithoutCancel(ctx), runID); err != nil {
				r.logger.Warn("could not close history run", "error", err)
			}
		}()
	}

	assets, err := r.layout.Scan(opts.Inputs, r.logger)
	if err != nil {
		return nil, err
	}
	assets = dedupeByKey(assets)
	r.logger.Info("assets discovered", "count", len(assets))

	var encoded, decoded []asset.Asset
	for _, a := range assets {
		switch a.Stage {
		case asset.StageEncoded:
			if opts.Decode {
				encoded = append(encoded, a)
			}
		case asset.StageDecoded:
			if opts.Cut {
				decoded = append(decoded, a)
			}
		case asset.StageCut:
			r.record(ctx, report, Result{Asset: a, Stage: "cut", Outcome: OutcomeSkipped, Detail: "already cut"})
		}
	}

	decoded = append(decoded, r.decodeStage(ctx, report, encoded, opts.Cut)...)
	r.cutStage(ctx, report, decoded, opts)
	return report, nil
}

// decodeStage decrypts encoded assets one after another. It returns the
// freshly decoded assets so the cut stage can pick them up in the same run
// (when cutting is enabled).
func (r *Runner) decodeStage(ctx context.Context, report *Report, encoded []asset.Asset, feedCut bool) []asset.Asset {
	if len(encoded) == 0 {
		return nil
	}
	if r.cfg.OTR.User == "" || r.cfg.OTR.Password == "" {
		err := services.Wrap(services.ErrCredentials, "decode", "preflight",
			"otr user and password are required to decode", nil)
		r.logger.Error("decode stage aborted", "error", err)
		for _, a := range encoded {
			r.record(ctx, report, Result{Asset: a, Stage: "decode", Outcome: OutcomeFailed, Err: err})
		}
		return nil
	}

	var next []asset.Asset
	for _, a := range encoded {
		if ctx.Err() != nil {
			r.record(ctx, report, Result{Asset: a, Stage: "decode", Outcome: OutcomeSkipped, Detail: "run canceled"})
			continue
		}
		decodedAsset, err := r.decodeOne(ctx, a)
		if err != nil {
			r.logger.Error("decode failed", "asset", a.Key, "error", err)
			r.record(ctx, report, Result{Asset: a, Stage: "decode", Outcome: OutcomeFailed, Err: err})
			continue
		}
		r.logger.Info("decoded", "asset", a.Key)
		r.record(ctx, report, Result{Asset: a, Stage: "decode", Outcome: OutcomeDone})
		if feedCut {
			next = append(next, decodedAsset)
		}
	}
	return next
}

// decodeOne decrypts a single container. The plaintext is written under a
// temporary name and only renamed into Decoded/ after both checksums passed,
// so a later run never mistakes a torso for a decoded asset.
func (r *Runner) decodeOne(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	finalPath := filepath.Join(r.layout.Decoded(), a.DecodedName())
	tmpPath := filepath.Join(r.layout.Decoded(), ".decoding-"+a.DecodedName()+".tmp")
	defer os.Remove(tmpPath)

	if _, err := r.decoder.DecodeFile(ctx, a.Path, tmpPath, r.cfg.OTR.User, r.cfg.OTR.Password); err != nil {
		return asset.Asset{}, err
	}
	if err := fileutil.MoveFile(tmpPath, finalPath); err != nil {
		return asset.Asset{}, services.Wrap(services.ErrFilesystem, "decode", "commit", "", err)
	}
	return asset.Parse(finalPath)
}

// record appends a result to the report and mirrors it into history.
func (r *Runner) record(ctx context.Context, report *Report, res Result) {
	if res.Err != nil && res.Detail == "" {
		res.Detail = res.Err.Error()
	}
	report.Results = append(report.Results, res)
	if r.recorder == nil || report.RunID == "" {
		return
	}
	rec := history.Record{
		RunID:    report.RunID,
		AssetKey: res.Asset.Key,
		Stage:    res.Stage,
		Outcome:  res.Outcome.historyOutcome(),
		Detail:   res.Detail,
	}
	if err := r.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("could not record history", "asset", res.Asset.Key, "error", err)
	}
}

// dedupeByKey keeps only the most advanced stage per key. The input is sorted
// key ascending, stage descending, so the first asset of a key wins. A key
// whose decoded copy exists therefore never decodes again, which is what
// makes re-runs no-ops.
func dedupeByKey(assets []asset.Asset) []asset.Asset {
	out := assets[:0]
	seen := ""
	for _, a := range assets {
		if a.Key == seen {
			continue
		}
		seen = a.Key
		out = append(out, a)
	}
	return out
}

// checkCutTools verifies the external binaries of the cut stage exist.
func (r *Runner) checkCutTools() error {
	binary := r.cfg.Cutter.Binary
	if binary == "" {
		binary = r.cfg.Cutter.Backend
	}
	requirements := []deps.Requirement{
		{Name: r.cfg.Cutter.Backend, Command: binary, Description: "external cutting tool"},
		{Name: "ffprobe", Command: cutter.DefaultProbeBinary, Description: "video duration probe"},
	}
	var missing []string
	for _, status := range deps.Check(requirements) {
		if !status.Available {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Requirement.Name, status.Detail))
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrExternalTool, "cut", "preflight",
			"missing tools: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
