package ingest

import (
	logger "log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/prediction"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

// idleSleep is how long the automatic loop sleeps between iterations once
// it finds nothing left in the realtime directory.
const idleSleep = 5 * time.Second

// pingMinInterval throttles the liveness ping, which fires only after a
// successful realtime file, to at most once per minute.
const pingMinInterval = time.Minute

var (
	scheduleDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	realtimeTimePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
)

// Conf configures one ingestion Loop. Dirs mirror the schedule/rt/imported/
// failed filesystem layout; Source tags every observation and prediction
// this loop produces.
type Conf struct {
	ScheduleDir string
	RealtimeDir string
	TargetDir   string
	FailureDir  string
	Source      string

	Record  bool
	Predict bool
	Cleanup bool

	// Automatic, when true, runs forever, invoking the scheduled-prediction
	// advancer and sleeping between iterations whenever a pass finds no
	// realtime files left to process.
	Automatic bool
	PingURL   string
}

// Loop is the file-pairing ingestion scheduler described by this
// repository's ingestion-loop component: it correlates realtime snapshots
// with the newest schedule predating them, files the result, and moves
// each input file to the target or failure directory.
type Loop struct {
	conf Conf
	log  *logger.Logger

	cache    *schedule.Cache
	obsStore *observation.Store
	predStore *prediction.Store
	basisCache *prediction.BasisCache
	advancer *prediction.Advancer
	publisher Publisher

	lastPing time.Time
}

// NewLoop builds a Loop. advancer and basisCache may be nil when the
// caller never enables Automatic or Cleanup respectively. publisher may
// be nil, disabling the optional NATS notifications entirely.
func NewLoop(conf Conf, log *logger.Logger, provider schedule.Provider, obsStore *observation.Store,
	predStore *prediction.Store, basisCache *prediction.BasisCache, advancer *prediction.Advancer,
	publisher Publisher) *Loop {

	return &Loop{
		conf:       conf,
		log:        log,
		cache:      schedule.NewCache(provider),
		obsStore:   obsStore,
		predStore:  predStore,
		basisCache: basisCache,
		advancer:   advancer,
		publisher:  publisher,
	}
}

// scheduleBatch pairs one schedule file's path with the realtime files
// that should be parsed against it.
type scheduleBatch struct {
	schedulePath string
	realtimePaths []string
}

// RunOnce executes a single iteration of the pairing algorithm: list both
// directories, pair each realtime file with its newest preceding schedule
// file, process every pair's realtime files, run cleanup if enabled, and
// (in automatic mode, when nothing was processed) advance scheduled
// predictions by one window. It returns the number of realtime files it
// attempted to process.
func (l *Loop) RunOnce(now time.Time) (int, error) {
	scheduleFiles, err := listByPattern(l.conf.ScheduleDir, scheduleDatePattern)
	if err != nil {
		return 0, err
	}
	realtimeFiles, err := listByPattern(l.conf.RealtimeDir, realtimeTimePattern)
	if err != nil {
		return 0, err
	}

	batches := pairBatches(scheduleFiles, realtimeFiles)
	for _, unmatched := range batches.unmatched {
		l.log.Printf("ingest: no schedule file predates %s, moving to failure dir", unmatched)
		l.moveToFailure(unmatched)
	}

	processed := 0
	for _, batch := range batches.batches {
		processed += l.processBatch(batch)
	}

	if l.conf.Cleanup {
		if err := l.runCleanup(now); err != nil {
			l.log.Printf("ingest: cleanup error: %v", err)
		}
	}

	if l.conf.Automatic && processed == 0 && l.advancer != nil {
		if err := l.advancer.Advance(now); err != nil {
			l.log.Printf("ingest: advancer error: %v", err)
		} else if l.publisher != nil {
			if err := l.publisher.PublishPredictionsRefreshed(PredictionsRefreshedEvent{Source: l.conf.Source, Begin: now}); err != nil {
				l.log.Printf("ingest: publishing predictions-refreshed event: %v", err)
			}
		}
	}

	return processed, nil
}

// RunForever runs RunOnce in a sleep-work-repeat loop until shutdown is
// signaled: an iteration that processed realtime files is followed
// immediately by the next one; otherwise the loop sleeps idleSleep first.
func (l *Loop) RunForever(shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			return
		default:
		}

		start := time.Now()
		processed, err := l.RunOnce(start)
		if err != nil {
			l.log.Printf("ingest: iteration error: %v", err)
		}

		if processed > 0 {
			continue
		}

		select {
		case <-shutdown:
			return
		case <-time.After(idleSleep):
		}
	}
}

// processBatch parses batch's schedule file once (via the path-keyed
// cache) and processes its realtime files, one coarse-grained worker per
// file, returning the count attempted.
func (l *Loop) processBatch(batch scheduleBatch) int {
	sched, err := l.cache.Get(batch.schedulePath)
	if err != nil {
		l.log.Printf("ingest: schedule %s failed to parse: %v", batch.schedulePath, err)
		l.moveToFailure(batch.schedulePath)
		return 0
	}

	var wg sync.WaitGroup
	for _, path := range batch.realtimePaths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			l.processRealtimeFile(path, sched)
		}(path)
	}
	wg.Wait()
	return len(batch.realtimePaths)
}

// processRealtimeFile decodes one realtime snapshot, records its
// observations if enabled, and moves the file to the target or failure
// directory. A ParseError or a failure to persist moves the file to
// failure; success moves it to target and triggers a throttled ping.
func (l *Loop) processRealtimeFile(path string, sched *schedule.Schedule) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Printf("ingest: reading %s: %v", path, err)
		l.moveToFailure(path)
		return
	}

	rows, err := DecodeRealtime(data, l.conf.Source, path, sched)
	if err != nil {
		l.log.Printf("ingest: decoding %s: %v", path, err)
		l.moveToFailure(path)
		return
	}

	if l.conf.Record && l.obsStore != nil {
		for _, row := range rows {
			if err := l.obsStore.AddObservation(row); err != nil {
				l.log.Printf("ingest: recording observation from %s: %v", path, err)
				l.moveToFailure(path)
				return
			}
		}
	}

	if l.conf.Predict && l.basisCache != nil {
		updateBasisCache(l.basisCache, rows)
	}

	l.moveToTarget(path)
	if l.publisher != nil {
		evt := FileIngestedEvent{Source: l.conf.Source, Path: path, Observations: len(rows), At: time.Now()}
		if err := l.publisher.PublishFileIngested(evt); err != nil {
			l.log.Printf("ingest: publishing file-ingested event for %s: %v", path, err)
		}
	}
	l.pingIfDue(time.Now())
}

// updateBasisCache records each row's observed delay as the vehicle's
// latest known basis, the live-feed counterpart to the advancer's
// schedule-only predictions.
func updateBasisCache(cache *prediction.BasisCache, rows []observation.Observation) {
	for _, row := range rows {
		delay := row.ArrivalDelay
		if delay == nil {
			delay = row.DepartureDelay
		}
		if delay == nil {
			continue
		}
		key := prediction.VehicleKey{TripID: row.TripID, ServiceStartDay: row.ServiceDay}
		cache.Update(key, prediction.Basis{StartStopID: row.StopID, InitialDelay: delay}, row.TimeOfRecording)
	}
}

// runCleanup deletes expired predictions by the
// trip-start-precedes-now-minus-MaxTripDuration rule and prunes the
// in-memory basis cache of entries whose last update is older than the
// cache's expiration duration; the cache pruning does not look at the
// trip start.
func (l *Loop) runCleanup(now time.Time) error {
	if l.predStore != nil {
		if _, err := l.predStore.DeleteExpired(now); err != nil {
			return err
		}
	}
	if l.basisCache != nil {
		l.basisCache.RemoveExpired(now)
	}
	return nil
}

// pingIfDue fires the configured liveness ping unless one was fired less
// than pingMinInterval ago. The caller invokes it only after a successful
// realtime file, so there is no ping without one.
func (l *Loop) pingIfDue(now time.Time) {
	if l.conf.PingURL == "" {
		return
	}
	if !l.lastPing.IsZero() && now.Sub(l.lastPing) < pingMinInterval {
		return
	}
	l.lastPing = now
	go func() {
		resp, err := http.Get(l.conf.PingURL)
		if err != nil {
			l.log.Printf("ingest: ping failed: %v", err)
			return
		}
		_ = resp.Body.Close()
	}()
}

func (l *Loop) moveToTarget(path string) {
	l.moveTo(path, l.conf.TargetDir)
}

func (l *Loop) moveToFailure(path string) {
	l.moveTo(path, l.conf.FailureDir)
}

func (l *Loop) moveTo(path, dir string) {
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		l.log.Printf("ingest: moving %s to %s: %v", path, dir, err)
	}
}

// listByPattern lists the regular files directly inside dir whose name
// matches pattern, sorted ascending by the matched substring (a date or
// timestamp encoded in the filename).
func listByPattern(dir string, pattern *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, delayerr.NewStorageError(err)
	}

	type found struct {
		path  string
		stamp string
	}
	var matches []found
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stamp := pattern.FindString(entry.Name())
		if stamp == "" {
			continue
		}
		matches = append(matches, found{path: filepath.Join(dir, entry.Name()), stamp: stamp})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].stamp < matches[j].stamp })

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.path
	}
	return paths, nil
}

// pairedBatches is the result of matching realtime files to schedule
// files: each batch's realtime files share the same newest-preceding
// schedule file, and unmatched holds realtime files with no preceding
// schedule file at all.
type pairedBatches struct {
	batches   []scheduleBatch
	unmatched []string
}

// pairBatches groups realtimeFiles by the newest scheduleFiles entry
// whose encoded date is less than or equal to the realtime file's encoded
// timestamp (both lists already sorted ascending by listByPattern).
func pairBatches(scheduleFiles, realtimeFiles []string) pairedBatches {
	var result pairedBatches
	byScheduleIndex := make(map[int][]string)
	var order []int

	for _, rt := range realtimeFiles {
		rtStamp := realtimeTimePattern.FindString(filepath.Base(rt))
		chosen := -1
		for i, sf := range scheduleFiles {
			sfStamp := scheduleDatePattern.FindString(filepath.Base(sf))
			if sfStamp <= rtStamp[:10] {
				chosen = i
			} else {
				break
			}
		}
		if chosen == -1 {
			result.unmatched = append(result.unmatched, rt)
			continue
		}
		if _, seen := byScheduleIndex[chosen]; !seen {
			order = append(order, chosen)
		}
		byScheduleIndex[chosen] = append(byScheduleIndex[chosen], rt)
	}

	for _, idx := range order {
		result.batches = append(result.batches, scheduleBatch{
			schedulePath:  scheduleFiles[idx],
			realtimePaths: byScheduleIndex[idx],
		})
	}
	return result
}
