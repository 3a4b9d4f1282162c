// Package retrieve implements pipeline stage 1: downloading raw source data
// from OpenAIP and the Overpass API into the local raw data directory.
package retrieve

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worldhelipads/helipad-cli/internal/config"
	"github.com/worldhelipads/helipad-cli/pkg/openaip"
	"github.com/worldhelipads/helipad-cli/pkg/overpass"
)

// Raw data subdirectories. Merge reads the same layout.
const (
	OpenAIPDir  = "openaip"
	OSMDir      = "osm"
	HeliDir     = "heli"
	HospitalDir = "hospital"
	OffshoreDir = "offshore"
)

// Stats summarizes a retrieval run.
type Stats struct {
	OpenAIPDownloaded  int `json:"openaip_downloaded"`
	OpenAIPCached      int `json:"openaip_cached"`
	OverpassDownloaded int `json:"overpass_downloaded"`
	OverpassCached     int `json:"overpass_cached"`
}

// Stage downloads raw data for all sources.
type Stage struct {
	cfg      *config.Config
	openaip  openaip.Client
	overpass overpass.Client
}

// New creates the retrieve stage.
func New(cfg *config.Config, oa openaip.Client, op overpass.Client) *Stage {
	return &Stage{cfg: cfg, openaip: oa, overpass: op}
}

// Run downloads both sources. Files already present on disk are kept, so an
// aborted run resumes where it stopped. Any download failure is fatal.
func (s *Stage) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	for _, dir := range []string{
		filepath.Join(s.cfg.Data.RawDir, OpenAIPDir),
		filepath.Join(s.cfg.Data.RawDir, OSMDir, HeliDir),
		filepath.Join(s.cfg.Data.RawDir, OSMDir, HospitalDir),
		filepath.Join(s.cfg.Data.RawDir, OSMDir, OffshoreDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "retrieve: create raw dir")
		}
	}

	// The two sources are independent, so fetch them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.fetchOpenAIP(gctx, stats) })
	g.Go(func() error { return s.fetchOverpass(gctx, stats) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("retrieve: complete",
		zap.Int("openaip_downloaded", stats.OpenAIPDownloaded),
		zap.Int("openaip_cached", stats.OpenAIPCached),
		zap.Int("overpass_downloaded", stats.OverpassDownloaded),
		zap.Int("overpass_cached", stats.OverpassCached),
	)
	return stats, nil
}

func (s *Stage) fetchOpenAIP(ctx context.Context, stats *Stats) error {
	log := zap.L().With(zap.String("source", "openaip"))

	names, err := s.openaip.ListObjects(ctx, s.cfg.OpenAIP.Suffix)
	if err != nil {
		return eris.Wrap(err, "retrieve: list openaip objects")
	}
	log.Info("retrieve: listed openaip objects", zap.Int("count", len(names)))

	destDir := filepath.Join(s.cfg.Data.RawDir, OpenAIPDir)
	for _, name := range names {
		dest := filepath.Join(destDir, filepath.Base(name))
		if _, err := os.Stat(dest); err == nil {
			stats.OpenAIPCached++
			continue
		}
		if err := s.openaip.DownloadObject(ctx, name, dest); err != nil {
			return err
		}
		stats.OpenAIPDownloaded++
		log.Debug("retrieve: downloaded object", zap.String("name", name))
	}
	return nil
}

// overpassSet pairs a query template with its raw subdirectory.
type overpassSet struct {
	name     string
	subdir   string
	template string
}

func (s *Stage) fetchOverpass(ctx context.Context, stats *Stats) error {
	log := zap.L().With(zap.String("source", "overpass"))

	sets := []overpassSet{
		{name: "helipads", subdir: HeliDir, template: overpass.QueryHelipads},
		{name: "hospitals", subdir: HospitalDir, template: overpass.QueryHospitals},
		{name: "offshore", subdir: OffshoreDir, template: overpass.QueryOffshore},
	}
	grid := overpass.WorldGrid(s.cfg.Overpass.LatDivisions, s.cfg.Overpass.LonDivisions)

	for _, set := range sets {
		destDir := filepath.Join(s.cfg.Data.RawDir, OSMDir, set.subdir)
		for _, bbox := range grid {
			dest := filepath.Join(destDir, bbox.FileName())
			if _, err := os.Stat(dest); err == nil {
				stats.OverpassCached++
				continue
			}

			resp, err := s.overpass.QueryBBox(ctx, set.template, bbox)
			if err != nil {
				return eris.Wrapf(err, "retrieve: overpass %s %s", set.name, bbox)
			}
			if err := writeJSON(dest, resp); err != nil {
				return err
			}
			stats.OverpassDownloaded++
			log.Debug("retrieve: downloaded bbox",
				zap.String("set", set.name),
				zap.String("bbox", bbox.String()),
				zap.Int("elements", len(resp.Elements)),
			)
		}
		log.Info("retrieve: overpass set complete", zap.String("set", set.name))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "retrieve: marshal response")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "retrieve: write raw file")
	}
	return nil
}
