package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkShapeFormed BookmarkType = "shape_formed"
	BookmarkDisrupted   BookmarkType = "disrupted"
	BookmarkSettled     BookmarkType = "settled"
	BookmarkFrameSpike  BookmarkType = "frame_spike"
)

// Formation thresholds on FrameStats.ArrivedFrac.
const (
	formedFrac    = 0.9
	disruptedFrac = 0.5
)

// settleSpeed is the p90 speed below which a window counts as still.
const settleSpeed = 1.0

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int          `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in a swarm's life.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameStats
	historySize int
	historyIdx  int
	historyFull bool

	formed       bool // last window met the formed threshold
	stillWindows int  // consecutive windows under settleSpeed
	settled      bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]FrameStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFormation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFrameSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FrameStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FrameStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFormation(stats FrameStats) *Bookmark {
	if stats.Targets == 0 {
		bd.formed = false
		return nil
	}

	switch {
	case !bd.formed && stats.ArrivedFrac >= formedFrac:
		bd.formed = true
		return &Bookmark{
			Type:        BookmarkShapeFormed,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%.0f%% of %d particles on target", stats.ArrivedFrac*100, stats.Targets),
		}
	case bd.formed && stats.ArrivedFrac < disruptedFrac:
		bd.formed = false
		return &Bookmark{
			Type:        BookmarkDisrupted,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("on-target fraction fell to %.0f%%", stats.ArrivedFrac*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats FrameStats) *Bookmark {
	if stats.Particles == 0 || stats.SpeedP90 >= settleSpeed {
		bd.stillWindows = 0
		bd.settled = false
		return nil
	}

	bd.stillWindows++
	if bd.settled || bd.stillWindows < 3 {
		return nil
	}
	bd.settled = true
	return &Bookmark{
		Type:        BookmarkSettled,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("p90 speed %.2f for %d windows", stats.SpeedP90, bd.stillWindows),
	}
}

func (bd *BookmarkDetector) checkFrameSpike(stats FrameStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.FrameMeanMS == 0 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.FrameMeanMS
	}
	avg := total / float64(len(history))
	if avg == 0 || stats.FrameMeanMS <= avg*2 {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkFrameSpike,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("frame time %.1fms vs %.1fms average with %d particles", stats.FrameMeanMS, avg, stats.Particles),
	}
}
