// Package splitter breaks a combined glTF tile scene into one file per tile.
//
// The source document is loaded once, every node's translation is zeroed,
// and then for each node id in the default scene a deep copy is written out
// with scenes[0].nodes narrowed to that single id. Output files are named
// after the node that owns the tile's mesh.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/tilesplit/pkg/gltf"
)

// ErrLookup is returned when a default-scene node id cannot be mapped to a
// tile name. It stops the run.
var ErrLookup = errors.New("tile name lookup failed")

// FileExt is appended to the resolved tile name.
const FileExt = ".gltf"

// Config holds the inputs of a split run.
type Config struct {
	SourcePath string
	OutputDir  string // Not created by the splitter
	Workers    int    // Values below 2 run sequentially
	Logger     *zap.Logger
}

// WriteFailure records a tile that could not be written.
type WriteFailure struct {
	NodeID int
	Path   string
	Err    error
}

// Result summarizes a completed run.
type Result struct {
	Written []string       // Output paths in default-scene order
	Failed  []WriteFailure // Per-tile write errors, also logged
}

// Splitter runs the split pipeline.
type Splitter struct {
	cfg Config
	log *zap.Logger
}

// New creates a splitter. A nil logger discards diagnostics.
func New(cfg Config) *Splitter {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{cfg: cfg, log: log}
}

// tile is one planned output file.
type tile struct {
	nodeID int
	name   string
	path   string
}

// Run loads the source document and writes one file per default-scene node.
//
// Load failures, invalid JSON and lookup failures abort the run with an
// error. Write failures are logged, collected in the result and skipped.
func (s *Splitter) Run(ctx context.Context) (*Result, error) {
	base, err := s.load()
	if err != nil {
		return nil, err
	}

	nodes, err := base.Nodes()
	if err != nil {
		return nil, err
	}
	names := BuildMeshNames(nodes)

	// The base document is only read after this point.
	if err := base.ZeroTranslations(); err != nil {
		return nil, err
	}

	ids, err := base.DefaultSceneNodes()
	if err != nil {
		return nil, err
	}
	s.log.Debug("indexed source document",
		zap.Int("nodes", len(nodes)),
		zap.Int("meshNames", len(names)),
		zap.Int("tiles", len(ids)))

	if s.cfg.Workers > 1 {
		return s.emitParallel(ctx, base, nodes, names, ids)
	}
	return s.emitSequential(ctx, base, nodes, names, ids)
}

func (s *Splitter) load() (*gltf.Document, error) {
	doc, err := gltf.Load(s.cfg.SourcePath)
	if errors.Is(err, gltf.ErrInvalidJSON) || errors.Is(err, gltf.ErrNotObject) {
		s.log.Error("invalid JSON data in the file", zap.String("path", s.cfg.SourcePath))
		return nil, fmt.Errorf("parsing %s: %w", s.cfg.SourcePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.cfg.SourcePath, err)
	}
	return doc, nil
}

func (s *Splitter) plan(nodes []gltf.Node, names MeshNames, id int) (tile, error) {
	name, err := ResolveName(nodes, names, id)
	if err != nil {
		return tile{}, err
	}
	return tile{
		nodeID: id,
		name:   name,
		path:   filepath.Join(s.cfg.OutputDir, name+FileExt),
	}, nil
}

func (s *Splitter) emitSequential(ctx context.Context, base *gltf.Document, nodes []gltf.Node, names MeshNames, ids []int) (*Result, error) {
	res := &Result{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := s.plan(nodes, names, id)
		if err != nil {
			return res, err
		}
		if err := s.write(base, t); err != nil {
			res.Failed = append(res.Failed, WriteFailure{NodeID: t.nodeID, Path: t.path, Err: err})
			continue
		}
		res.Written = append(res.Written, t.path)
	}
	return res, nil
}

// emitParallel resolves every name up front so a lookup failure still stops
// the run before any file is touched, then writes tiles concurrently.
// When several ids share an output path only the last one is written, which
// is the file a sequential run leaves behind.
func (s *Splitter) emitParallel(ctx context.Context, base *gltf.Document, nodes []gltf.Node, names MeshNames, ids []int) (*Result, error) {
	planned := make([]tile, len(ids))
	last := make(map[string]int, len(ids))
	for i, id := range ids {
		t, err := s.plan(nodes, names, id)
		if err != nil {
			return &Result{}, err
		}
		planned[i] = t
		last[t.path] = i
	}

	tiles := make([]tile, 0, len(last))
	for i, t := range planned {
		if last[t.path] != i {
			s.log.Debug("tile superseded by a later id with the same name",
				zap.Int("node", t.nodeID),
				zap.Int("by", planned[last[t.path]].nodeID),
				zap.String("path", t.path))
			continue
		}
		tiles = append(tiles, t)
	}

	written := make([]bool, len(tiles))
	var (
		mu     sync.Mutex
		failed []WriteFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, t := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.write(base, t); err != nil {
				mu.Lock()
				failed = append(failed, WriteFailure{NodeID: t.nodeID, Path: t.path, Err: err})
				mu.Unlock()
				return nil
			}
			written[i] = true
			return nil
		})
	}
	err := g.Wait()

	res := &Result{Failed: failed}
	for i, ok := range written {
		if ok {
			res.Written = append(res.Written, tiles[i].path)
		}
	}
	return res, err
}

// write emits one tile, logging the outcome.
func (s *Splitter) write(base *gltf.Document, t tile) error {
	if err := writeTile(base, t); err != nil {
		s.log.Error("error writing to file", zap.String("path", t.path), zap.Error(err))
		return err
	}
	s.log.Info("wrote tile",
		zap.Int("node", t.nodeID),
		zap.String("name", t.name),
		zap.String("path", t.path))
	return nil
}

// writeTile clones the base document, narrows its default scene and writes
// it, replacing any existing file.
func writeTile(base *gltf.Document, t tile) error {
	doc := base.Clone()
	if err := doc.SetDefaultSceneNodes([]int{t.nodeID}); err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0644)
}
