package seek

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultProgressInterval is how often a ProgressFn is called when no
// interval is configured.
const DefaultProgressInterval = 500 * time.Millisecond

// ProgressFn is called periodically with traversal statistics, and once more
// after the search completes. It is called from a single goroutine.
type ProgressFn func(stats Stats)

// Stats holds traversal statistics that are updated atomically during the search.
type Stats struct {
	DirsListed    int64         `json:"dirs_listed" yaml:"dirs_listed"`       // Directories successfully listed
	EntriesSeen   int64         `json:"entries_seen" yaml:"entries_seen"`     // Entries tested against the pattern
	Matches       int64         `json:"matches" yaml:"matches"`               // Entries recorded as matches
	SkippedDirs   int64         `json:"skipped_dirs" yaml:"skipped_dirs"`     // Directories whose listing failed
	ActiveUnits   int64         `json:"active_units" yaml:"active_units"`     // Units currently running
	PeakUnits     int64         `json:"peak_units" yaml:"peak_units"`         // Highest ActiveUnits observed
	InFlight      int64         `json:"in_flight" yaml:"in_flight"`           // Listings currently in progress
	PeakInFlight  int64         `json:"peak_in_flight" yaml:"peak_in_flight"` // Highest InFlight observed
	ElapsedTime   time.Duration `json:"elapsed" yaml:"elapsed"`
	EntriesPerSec float64       `json:"entries_per_sec" yaml:"entries_per_sec"`
}

// counters is the live, shared form of Stats.
type counters struct {
	dirsListed   atomic.Int64
	entriesSeen  atomic.Int64
	matches      atomic.Int64
	skippedDirs  atomic.Int64
	activeUnits  atomic.Int64
	peakUnits    atomic.Int64
	inFlight     atomic.Int64
	peakInFlight atomic.Int64
	start        time.Time
}

func (c *counters) unitStarted() {
	raisePeak(&c.peakUnits, c.activeUnits.Add(1))
}

func (c *counters) unitDone() {
	c.activeUnits.Add(-1)
}

func (c *counters) listingStarted() {
	raisePeak(&c.peakInFlight, c.inFlight.Add(1))
}

func (c *counters) listingDone() {
	c.inFlight.Add(-1)
}

// raisePeak stores v in peak if it is larger than the current value.
func raisePeak(peak *atomic.Int64, v int64) {
	for {
		cur := peak.Load()
		if v <= cur || peak.CompareAndSwap(cur, v) {
			return
		}
	}
}

// snapshot returns a consistent-enough copy of the counters.
func (c *counters) snapshot() Stats {
	s := Stats{
		DirsListed:   c.dirsListed.Load(),
		EntriesSeen:  c.entriesSeen.Load(),
		Matches:      c.matches.Load(),
		SkippedDirs:  c.skippedDirs.Load(),
		ActiveUnits:  c.activeUnits.Load(),
		PeakUnits:    c.peakUnits.Load(),
		InFlight:     c.inFlight.Load(),
		PeakInFlight: c.peakInFlight.Load(),
		ElapsedTime:  time.Since(c.start),
	}
	s.updateDerivedStats()
	return s
}

// updateDerivedStats calculates derived statistics like rates.
func (s *Stats) updateDerivedStats() {
	elapsedSec := s.ElapsedTime.Seconds()
	if elapsedSec > 0 && s.EntriesSeen > 0 {
		s.EntriesPerSec = float64(s.EntriesSeen) / elapsedSec
	} else {
		s.EntriesPerSec = 0
	}
}

// startProgress calls fn every interval until the returned stop function is
// called. stop waits for the ticker goroutine and then makes a final call.
func startProgress(c *counters, fn ProgressFn, interval time.Duration) (stop func()) {
	if fn == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	doneCh := make(chan struct{})
	var tickerWg sync.WaitGroup
	tickerWg.Add(1)
	go func() {
		defer tickerWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-doneCh:
				return
			case <-ticker.C:
				fn(c.snapshot())
			}
		}
	}()

	return func() {
		close(doneCh)
		tickerWg.Wait()
		fn(c.snapshot())
	}
}

// LogLevel defines the verbosity of logging.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// createLogger creates a zap logger with the specified log level.
func createLogger(level LogLevel) *zap.Logger {
	var config zap.Config

	switch level {
	case LogLevelError:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case LogLevelWarn:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LogLevelDebug:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
