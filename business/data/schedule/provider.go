package schedule

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Provider loads a GTFS static feed from a path into a Schedule.
type Provider interface {
	Load(path string) (*Schedule, error)
}

// FileProvider loads a GTFS static feed from either a zip archive or a
// directory of the same *.txt files, in the row-by-row, header-by-name
// style used throughout this package's csv_parser.go.
type FileProvider struct{}

// NewFileProvider returns a ready-to-use FileProvider.
func NewFileProvider() *FileProvider {
	return &FileProvider{}
}

func (FileProvider) Load(path string) (*Schedule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	var files map[string]func() (io.ReadCloser, error)
	if info.IsDir() {
		files, err = openDirectory(path)
	} else {
		files, err = openZip(path)
	}
	if err != nil {
		return nil, err
	}

	sched := &Schedule{
		Routes:   make(map[string]*Route),
		Stops:    make(map[string]*Stop),
		Trips:    make(map[string]*Trip),
		variants: make(map[string]*RouteVariant),
	}

	if err := loadOptional(files, "agency.txt", func(p *rowParser) error {
		for {
			if err := p.next(); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			sched.Agencies = append(sched.Agencies, Agency{
				ID:   p.str("agency_id", true),
				Name: p.str("agency_name", false),
			})
			if err := p.err(); err != nil {
				return err
			}
		}
	}); err != nil {
		return nil, err
	}

	if err := loadRequired(files, "routes.txt", func(p *rowParser) error {
		for {
			if err := p.next(); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			r := &Route{
				ID:        p.str("route_id", false),
				ShortName: p.str("route_short_name", true),
				AgencyID:  p.str("agency_id", true),
				RouteType: p.int_("route_type", false),
			}
			if err := p.err(); err != nil {
				return err
			}
			sched.Routes[r.ID] = r
		}
	}); err != nil {
		return nil, err
	}

	if err := loadRequired(files, "stops.txt", func(p *rowParser) error {
		for {
			if err := p.next(); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			s := &Stop{ID: p.str("stop_id", false), Name: p.str("stop_name", true)}
			if err := p.err(); err != nil {
				return err
			}
			sched.Stops[s.ID] = s
		}
	}); err != nil {
		return nil, err
	}

	if err := loadRequired(files, "trips.txt", func(p *rowParser) error {
		for {
			if err := p.next(); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			t := &Trip{
				ID:           p.str("trip_id", false),
				RouteID:      p.str("route_id", false),
				RouteVariant: p.str("route_variant", true),
				ServiceID:    p.str("service_id", false),
				Headsign:     p.str("trip_headsign", true),
				ShapeID:      p.str("shape_id", true),
			}
			if err := p.err(); err != nil {
				return err
			}
			sched.Trips[t.ID] = t
		}
	}); err != nil {
		return nil, err
	}

	if err := loadRequired(files, "stop_times.txt", func(p *rowParser) error {
		for {
			if err := p.next(); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			tripID := p.str("trip_id", false)
			stopID := p.str("stop_id", false)
			seq := p.int_("stop_sequence", false)
			arrival, aerr := gtfsTimeSeconds(p.str("arrival_time", true))
			departure, derr := gtfsTimeSeconds(p.str("departure_time", true))
			if err := p.err(); err != nil {
				return err
			}
			if aerr != nil {
				arrival = departure
			}
			if derr != nil {
				departure = arrival
			}
			t, ok := sched.Trips[tripID]
			if !ok {
				// stop_times.txt referencing a trip missing from trips.txt:
				// skip, rather than abort the whole file, per §7's
				// "skip the affected [row], not the file" pattern.
				continue
			}
			t.StopTimes = append(t.StopTimes, StopTime{
				StopSequence:  seq,
				StopID:        stopID,
				ArrivalTime:   arrival,
				DepartureTime: departure,
			})
		}
	}); err != nil {
		return nil, err
	}

	for _, t := range sched.Trips {
		sort.Slice(t.StopTimes, func(i, j int) bool {
			return t.StopTimes[i].StopSequence < t.StopTimes[j].StopSequence
		})
	}

	deriveRouteVariants(sched)
	return sched, nil
}

// deriveRouteVariants fills in t.RouteVariant for any trip whose feed
// omitted a route_variant column, using the trip's ordered stop-ID
// pattern as a stable substitute key, then groups every trip by its
// (route, variant) pair into a RouteVariant, keeping the first trip
// encountered as the group's representative (map iteration order is
// randomized, so callers needing a deterministic representative should
// sort trips before loading if that ever matters; predictions key off
// the variant, not which trip was picked representative).
func deriveRouteVariants(sched *Schedule) {
	for _, t := range sched.Trips {
		stopIDs := make([]string, len(t.StopTimes))
		for i, st := range t.StopTimes {
			stopIDs[i] = st.StopID
		}
		if t.RouteVariant == "" {
			t.RouteVariant = strings.Join(stopIDs, ",")
		}

		key := variantCompositeKey(t.RouteID, t.RouteVariant)
		if _, exists := sched.variants[key]; !exists {
			sched.variants[key] = &RouteVariant{
				RouteID:        t.RouteID,
				VariantID:      t.RouteVariant,
				Representative: t,
				StopIDs:        stopIDs,
			}
		}
	}
}

func loadRequired(files map[string]func() (io.ReadCloser, error), name string, read func(*rowParser) error) error {
	open, ok := files[name]
	if !ok {
		return fmt.Errorf("schedule: gtfs feed is missing required file %s", name)
	}
	return loadFile(open, name, read)
}

func loadOptional(files map[string]func() (io.ReadCloser, error), name string, read func(*rowParser) error) error {
	open, ok := files[name]
	if !ok {
		return nil
	}
	return loadFile(open, name, read)
}

func loadFile(open func() (io.ReadCloser, error), name string, read func(*rowParser) error) error {
	rc, err := open()
	if err != nil {
		return fmt.Errorf("schedule: opening %s: %w", name, err)
	}
	defer rc.Close()

	parser, err := newRowParser(rc, name)
	if err != nil {
		return err
	}
	return read(parser)
}

func openZip(path string) (map[string]func() (io.ReadCloser, error), error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: opening zip %s: %w", path, err)
	}
	files := make(map[string]func() (io.ReadCloser, error))
	for _, f := range r.File {
		f := f
		if f.FileInfo().IsDir() {
			continue
		}
		files[f.Name] = func() (io.ReadCloser, error) { return f.Open() }
	}
	return files, nil
}

func openDirectory(path string) (map[string]func() (io.ReadCloser, error), error) {
	files := make(map[string]func() (io.ReadCloser, error))
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		files[name] = func() (io.ReadCloser, error) { return os.Open(p) }
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: walking directory %s: %w", path, err)
	}
	return files, nil
}
