package framegrab

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gentlkit/framegrab/pixel"
)

// How many inter-frame gaps the instantaneous rate is averaged over. At a
// typical 10-30 fps this covers the last second or so of frames: enough to
// absorb scheduler jitter on individual gaps while still reflecting a rate
// change within about a second.
const rateWindow = 16

// Statistics tracks rolling counters for one acquisition run. Only the
// acquisition goroutine records frames; snapshots may be read from any
// goroutine at any time and are never torn.
type Statistics struct {
	clock clock.Clock

	mu        sync.Mutex
	running   bool
	numImages int
	startedAt time.Time
	lastAt    time.Time
	gaps      *rollingDuration
	width     int
	height    int
	format    pixel.Format
}

// Snapshot is a consistent point-in-time view of a run's statistics.
type Snapshot struct {
	Running   bool
	NumImages int
	// FPS is the instantaneous rate, averaged over the last few
	// inter-frame gaps.
	FPS     float64
	Elapsed time.Duration
	Width   int
	Height  int
	Format  pixel.Format
}

func newStatistics(c clock.Clock) *Statistics {
	return &Statistics{clock: c}
}

func (s *Statistics) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.numImages = 0
	s.startedAt = s.clock.Now()
	s.lastAt = time.Time{}
	s.gaps = newRollingDuration(rateWindow)
	s.width, s.height, s.format = 0, 0, ""
}

func (s *Statistics) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *Statistics) recordFrame(p pixel.Payload) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numImages++
	if !s.lastAt.IsZero() {
		s.gaps.add(now.Sub(s.lastAt))
	}
	s.lastAt = now
	s.width, s.height, s.format = p.Width, p.Height, p.Format
}

// Snapshot returns the current counters. Safe to call concurrently with the
// acquisition loop recording frames.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Running:   s.running,
		NumImages: s.numImages,
		Width:     s.width,
		Height:    s.height,
		Format:    s.format,
	}
	if s.running {
		snap.Elapsed = s.clock.Now().Sub(s.startedAt)
	}
	if gap := s.gaps.average(); gap > 0 {
		snap.FPS = float64(time.Second) / float64(gap)
	}
	return snap
}

// Summary formats the run's status as a single display line, or the
// "stopped" sentinel when no run is active.
func (s *Statistics) Summary() string {
	snap := s.Snapshot()
	if !snap.Running {
		return "stopped"
	}
	return fmt.Sprintf("%dx%d %s %.1f fps elapsed %s %d images",
		snap.Width, snap.Height, snap.Format, snap.FPS, formatElapsed(snap.Elapsed), snap.NumImages)
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// rollingDuration keeps a fixed-size window of durations and averages over
// however many have been recorded so far.
type rollingDuration struct {
	data   []time.Duration
	pos    int
	filled int
}

func newRollingDuration(numSamples int) *rollingDuration {
	return &rollingDuration{data: make([]time.Duration, numSamples)}
}

func (r *rollingDuration) add(d time.Duration) {
	r.data[r.pos] = d
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
	}
	if r.filled < len(r.data) {
		r.filled++
	}
}

func (r *rollingDuration) average() time.Duration {
	if r == nil || r.filled == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range r.data[:r.filled] {
		sum += d
	}
	return sum / time.Duration(r.filled)
}
