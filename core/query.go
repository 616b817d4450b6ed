package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
	"golang.org/x/sync/errgroup"
)

// Runtime bundles the collaborators a query needs.
type Runtime struct {
	Loader  contract.DatasetLoader
	Writer  contract.OutputWriter
	Manager contract.CacheManager
	Tables  *TableBuilder // nil uses the default registry
}

// builder returns the table builder of the runtime.
func (rt Runtime) builder() *TableBuilder {
	if rt.Tables == nil {
		return NewTableBuilder(nil)
	}
	return rt.Tables
}

// Registry returns the measurement registry the runtime selects against.
func (rt Runtime) Registry() *measure.Registry {
	return rt.builder().selector.Registry()
}

// ExecuteChannelTable builds a channel table for every dataset and writes them.
// It serves as the main entry point for the 'table' command.
func ExecuteChannelTable(ctx context.Context, cfg *contract.Config, rt Runtime) error {
	start := time.Now()
	tables, err := GetChannelTableResults(ctx, cfg, rt)
	if err != nil {
		return err
	}
	return rt.Writer.WriteTables(tables, cfg, time.Since(start))
}

// GetChannelTableResults builds one table per dataset in cfg.DatasetPaths,
// using up to cfg.Workers goroutines. Tables keep the order of the paths.
func GetChannelTableResults(ctx context.Context, cfg *contract.Config, rt Runtime) ([]*schema.ChannelTable, error) {
	if len(cfg.DatasetPaths) == 0 {
		return nil, errors.New("at least one dataset is required")
	}
	if !shouldSuppressHeader(ctx) {
		logQueryHeader(cfg)
	}

	// Add cache manager to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, rt.Manager)

	// --- 0. Begin History Tracking (if configured) ---
	var runID int64
	var history contract.HistoryStore
	if rt.Manager != nil {
		history = rt.Manager.GetHistoryStore()
	}
	if history != nil {
		params := map[string]any{
			"datasets": cfg.DatasetPaths,
			"filter":   cfg.Filter.String(),
			"start":    cfg.Start,
			"end":      cfg.End,
			"whole":    cfg.Whole,
			"workers":  cfg.Workers,
		}
		var err error
		runID, err = history.BeginRun(time.Now(), params)
		if err != nil {
			contract.LogWarn("Query history initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Build tables concurrently ---
	builder := rt.builder()
	tables := make([]*schema.ChannelTable, len(cfg.DatasetPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range cfg.DatasetPaths {
		g.Go(func() error {
			table, err := cachedChannelTable(gctx, cfg, rt.Loader, builder, path)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", path, err)
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// --- 2. Record rows and end tracking ---
	total := 0
	for _, table := range tables {
		for _, row := range table.Rows {
			recordRow(ctx, table.Dataset, row)
		}
		total += len(table.Rows)
	}
	if history != nil && runID > 0 {
		if err := history.EndRun(runID, time.Now(), total); err != nil {
			contract.LogWarn("Failed to finalize query history", err)
		}
	}
	return tables, nil
}

// recordRow stores a table row in the history store of the current run.
func recordRow(ctx context.Context, dataset string, row schema.ChannelRow) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	mgr := getCacheManager(ctx)
	if mgr == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}
	logTrackingError("RecordRow", row.Channel, history.RecordRow(runID, dataset, row))
}

// logTrackingError reports a failed history write without failing the query.
func logTrackingError(operation, channel string, err error) {
	if err != nil {
		contract.LogWarn(fmt.Sprintf("%s failed for channel %s", operation, channel), err)
	}
}

// logQueryHeader prints what is being queried to stderr.
func logQueryHeader(cfg *contract.Config) {
	if cfg.Output != schema.TextOut && cfg.Output != "" {
		return
	}
	prefix := ""
	if cfg.UseEmojis {
		prefix = "📈 "
	}
	filter := cfg.Filter.String()
	if filter == "" {
		filter = "*"
	}
	window := fmt.Sprintf("%s..%s", orDash(cfg.Start), orDash(cfg.End))
	contract.LogInfo("%sQuerying %d dataset(s) | types: %s | window: %s", prefix, len(cfg.DatasetPaths), filter, window)
}

// orDash renders an empty bound as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ExecuteChannels lists the channels of a single dataset that match cfg.Filter.
// Subchannels are listed unless cfg.Whole is set.
func ExecuteChannels(ctx context.Context, cfg *contract.Config, rt Runtime) error {
	infos, err := GetChannelsResults(ctx, cfg, rt)
	if err != nil {
		return err
	}
	return rt.Writer.WriteChannels(infos, cfg)
}

// GetChannelsResults describes the sources of a single dataset selected by cfg.Filter.
func GetChannelsResults(ctx context.Context, cfg *contract.Config, rt Runtime) ([]schema.ChannelInfo, error) {
	ds, err := loadSingle(ctx, cfg, rt)
	if err != nil {
		return nil, err
	}
	sources, err := rt.builder().selector.GetChannels(ds, cfg.Filter, !cfg.Whole)
	if err != nil {
		return nil, err
	}
	return describeSources(sources)
}

// describeSources summarizes sources without applying a time window.
func describeSources(sources []schema.Source) ([]schema.ChannelInfo, error) {
	infos := make([]schema.ChannelInfo, 0, len(sources))
	for _, src := range sources {
		info := schema.ChannelInfo{
			Channel:     src.DisplayID(),
			Name:        src.DisplayName(),
			Type:        src.TypeLabel(),
			Units:       src.UnitsLabel(),
			Rate:        src.NominalRate(),
			SubChannels: len(src.Leaves()),
		}
		if series := src.Samples(); series != nil {
			row, err := buildRow(src, timeparse.Unbounded, timeparse.Unbounded)
			if err != nil && !errors.Is(err, schema.ErrNoData) {
				return nil, err
			}
			info.Samples = row.Samples
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ExecuteTypes lists the registered measurement types. A non-empty filter
// narrows the list to its included types minus its excluded ones.
func ExecuteTypes(_ context.Context, cfg *contract.Config, rt Runtime) error {
	types, err := GetTypesResults(cfg, rt)
	if err != nil {
		return err
	}
	return rt.Writer.WriteTypes(types, cfg)
}

// GetTypesResults returns the measurement types of the runtime's registry selected by cfg.Filter.
func GetTypesResults(cfg *contract.Config, rt Runtime) ([]schema.TypeInfo, error) {
	return listTypes(rt.Registry(), cfg.Filter)
}

// listTypes returns the registry contents selected by f in registration order.
func listTypes(reg *measure.Registry, f measure.Filter) ([]schema.TypeInfo, error) {
	included, excluded, err := reg.Split(f)
	if err != nil {
		return nil, err
	}
	all := reg.All()
	out := make([]schema.TypeInfo, 0, len(all))
	for _, t := range all {
		if excluded.Has(t) || (len(included) > 0 && !included.Has(t)) {
			continue
		}
		out = append(out, schema.TypeInfo{Name: t.Name(), Abbrev: t.Abbrev()})
	}
	return out, nil
}

// ExecuteSamples exports the samples of cfg.Channel from a single dataset.
func ExecuteSamples(ctx context.Context, cfg *contract.Config, rt Runtime) error {
	if cfg.Channel == "" {
		return errors.New("--channel is required")
	}
	ds, err := loadSingle(ctx, cfg, rt)
	if err != nil {
		return err
	}
	src, err := ds.Source(cfg.Channel)
	if err != nil {
		return err
	}
	frame, err := BuildSampleFrame(src, ds.SessionStart, SampleOptions{
		Mode:  cfg.TimeMode,
		Start: cfg.Start,
		End:   cfg.End,
		Limit: cfg.Limit,
	})
	if err != nil {
		return err
	}
	return rt.Writer.WriteSamples(frame, cfg)
}

// ExecuteParseTime resolves expr against an optional RFC 3339 reference time.
func ExecuteParseTime(_ context.Context, cfg *contract.Config, rt Runtime, expr, ref string) error {
	result, err := ParseTimeExpr(expr, ref)
	if err != nil {
		return err
	}
	return rt.Writer.WriteTime(result, cfg)
}

// ParseTimeExpr resolves expr to microseconds. An empty ref means absolute
// timestamps are measured from midnight UTC of their own day.
func ParseTimeExpr(expr, ref string) (schema.ParsedTime, error) {
	result := schema.ParsedTime{Input: expr}
	var refTime time.Time
	if ref = strings.TrimSpace(ref); ref != "" {
		t, err := time.Parse(time.RFC3339Nano, ref)
		if err != nil {
			return result, fmt.Errorf("%w: reference %q is not RFC 3339", timeparse.ErrTimeFormat, ref)
		}
		refTime = t
		result.Ref = &t
	}
	bound, err := timeparse.ParseRelative(expr, refTime)
	if err != nil {
		return result, err
	}
	result.Micros = bound.Ptr()
	return result, nil
}

// loadSingle loads the one dataset a per-dataset command operates on.
func loadSingle(ctx context.Context, cfg *contract.Config, rt Runtime) (*schema.Dataset, error) {
	if len(cfg.DatasetPaths) != 1 {
		return nil, fmt.Errorf("exactly one dataset is required (received %d)", len(cfg.DatasetPaths))
	}
	return rt.Loader.Load(ctx, cfg.DatasetPaths[0])
}
