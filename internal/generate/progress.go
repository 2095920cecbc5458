package generate

import "time"

// Phase identifies where in the pipeline a progress event was emitted.
type Phase string

const (
	PhaseDetectingLanguage    Phase = "detecting_language"
	PhasePlanningStructure    Phase = "planning_structure"
	PhaseGeneratingChapter    Phase = "generating_chapter"
	PhaseGeneratingSubsection Phase = "generating_subsection"
	PhaseFinalizing           Phase = "finalizing"
	PhaseReady                Phase = "ready"
	PhaseFailed               Phase = "failed"
)

// Event is one ordered progress update. Chapter and Subsection are 1-based
// and zero when the phase has no positional context. Fraction is completed
// subsections over total, in [0,1].
type Event struct {
	Phase      Phase     `json:"phase"`
	Message    string    `json:"message"`
	Fraction   float64   `json:"fraction"`
	Chapter    int       `json:"chapter,omitempty"`
	Subsection int       `json:"subsection,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reporter receives the ordered event stream. Events are display-only; the
// pipeline never reads them back.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }
