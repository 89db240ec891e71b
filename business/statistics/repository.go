package statistics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenTransitTools/delaycurves/business/curve"
)

// defaultCurvesDir and defaultCurvesFile name where the General fallback
// tree is persisted, relative to a repository's data directory, per §6's
// filesystem layout ("data/curve_data/default_curves/Default_Curves.crv").
const defaultCurvesDir = "default_curves"
const defaultCurvesFile = "Default_Curves.crv"

// AgencyResolver resolves the agency directory a route's per-route file
// lives under. Supplied by the caller (typically backed by a loaded
// schedule's Routes/Agencies) since Tree itself carries no agency data.
type AgencyResolver func(routeID string) string

// Repository saves and loads a Tree as the two-file-family layout §6
// documents: one opaque blob for the General fallback tree, plus one
// per-route file grouped by agency. Tree's Go types never depend on this
// layout; Repository only decides which bytes land in which path.
type Repository struct {
	dataDir string
	codec   Codec
}

// NewRepository builds a Repository rooted at dataDir (the "data/curve_data"
// directory spec.md §6 names), using codec to (de)serialize each file.
func NewRepository(dataDir string, codec Codec) *Repository {
	return &Repository{dataDir: dataDir, codec: codec}
}

// Save writes tree's General fallback curves to the default-curves file
// and each route's specific data to its own per-agency file.
func (r *Repository) Save(tree *Tree, agencyOf AgencyResolver) error {
	defaultDir := filepath.Join(r.dataDir, defaultCurvesDir)
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return fmt.Errorf("statistics: creating %s: %w", defaultDir, err)
	}
	generalOnly := &Tree{Specific: make(map[string]map[string]*RouteVariantData), General: tree.General}
	if err := r.writeTree(filepath.Join(defaultDir, defaultCurvesFile), generalOnly); err != nil {
		return err
	}

	for routeID, variants := range tree.Specific {
		agency := agencyOf(routeID)
		routeDir := filepath.Join(r.dataDir, agency)
		if err := os.MkdirAll(routeDir, 0o755); err != nil {
			return fmt.Errorf("statistics: creating %s: %w", routeDir, err)
		}
		if err := r.writeTree(r.routeFilePath(agency, routeID), routeOnlyTree(routeID, variants)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the default-curves file plus every per-route file found
// under dataDir's agency subdirectories, merging them into one Tree. A
// missing default-curves file is not an error: a freshly-initialized
// repository simply has no General tree yet.
func (r *Repository) Load() (*Tree, error) {
	tree := NewTree()

	defaultPath := filepath.Join(r.dataDir, defaultCurvesDir, defaultCurvesFile)
	if general, err := r.readTree(defaultPath); err == nil {
		tree.General = general.General
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return tree, nil
		}
		return nil, fmt.Errorf("statistics: reading %s: %w", r.dataDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == defaultCurvesDir {
			continue
		}
		agencyDir := filepath.Join(r.dataDir, entry.Name())
		files, err := os.ReadDir(agencyDir)
		if err != nil {
			return nil, fmt.Errorf("statistics: reading %s: %w", agencyDir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			rt, err := r.readTree(filepath.Join(agencyDir, f.Name()))
			if err != nil {
				return nil, err
			}
			for routeID, variants := range rt.Specific {
				tree.Specific[routeID] = variants
			}
		}
	}
	return tree, nil
}

// routeFilePath returns the "Linie_<route>.crv" path §6 names.
func (r *Repository) routeFilePath(agency, routeID string) string {
	return filepath.Join(r.dataDir, agency, "Linie_"+routeID+".crv")
}

func (r *Repository) writeTree(path string, tree *Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("statistics: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := r.codec.Save(tree, f); err != nil {
		return fmt.Errorf("statistics: saving %s: %w", path, err)
	}
	return nil
}

func (r *Repository) readTree(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.codec.Load(f)
}

// routeOnlyTree narrows tree to a single route's specific data, with an
// empty General map (the default-curves file is the sole owner of that).
func routeOnlyTree(routeID string, variants map[string]*RouteVariantData) *Tree {
	return &Tree{
		Specific: map[string]map[string]*RouteVariantData{routeID: variants},
		General:  make(map[DefaultCurveKey]*curve.Curve),
	}
}
