package triage

import (
	"fmt"
	"strings"

	"github.com/rodeoai/ingest/internal/models"
)

// Thresholds map a score in [0,1] to an action. They are a configuration
// surface so the gate can be tuned without a code change.
type Thresholds struct {
	Process float64
	Review  float64
}

// DefaultThresholds returns the standard policy: >=0.7 process,
// >=0.4 review, below that reject.
func DefaultThresholds() Thresholds {
	return Thresholds{Process: 0.7, Review: 0.4}
}

// Action applies the fixed threshold policy to a score.
func (t Thresholds) Action(score float64) models.Action {
	switch {
	case score >= t.Process:
		return models.ActionProcess
	case score >= t.Review:
		return models.ActionReview
	default:
		return models.ActionReject
	}
}

// Domain vocabulary used by the cheap pre-extraction relevance gate.
var relevanceVocabulary = []string{
	"rodeo", "event", "rider", "bull", "bronc", "bareback", "barrel",
	"roping", "steer", "score", "prediction", "result", "odds",
	"placement", "win", "nfr", "pbr",
}

// How many content bytes the relevance gate samples. Relevance must stay
// cheap; it runs before any extraction cost is paid.
const relevanceSampleSize = 2048

// Engine scores relevance of raw input and quality of extracted output.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// AssessFileRelevance scores a submission before extraction using
// filename, declared type and a bounded content sample.
func (e *Engine) AssessFileRelevance(filename string, content []byte, declaredType string) models.Assessment {
	sample := content
	if len(sample) > relevanceSampleSize {
		sample = sample[:relevanceSampleSize]
	}
	haystack := strings.ToLower(filename + " " + declaredType + " " + string(sample))

	var matched []string
	for _, term := range relevanceVocabulary {
		if strings.Contains(haystack, term) {
			matched = append(matched, term)
		}
	}

	score := clamp(0.2 + 0.2*float64(len(matched)))
	action := e.thresholds.Action(score)

	var reasons []string
	if len(matched) == 0 {
		reasons = append(reasons, "no rodeo vocabulary detected in filename, type or content")
	} else {
		reasons = append(reasons, fmt.Sprintf("matched vocabulary: %s", strings.Join(matched, ", ")))
	}

	return models.Assessment{
		Verdict: relevanceVerdict(action),
		Score:   score,
		Reasons: reasons,
		Action:  action,
	}
}

// AssessDataQuality scores an extracted record set on completeness and
// internal consistency, penalizing sets that need manual mapping or
// carry unverified structure.
func (e *Engine) AssessDataQuality(rs *models.RecordSet, filename string) models.Assessment {
	completeness, nulls := completenessScore(rs)
	consistency, orphans := consistencyScore(rs)

	score := 0.7*completeness + 0.3*consistency

	var reasons []string
	if nulls > 0 {
		reasons = append(reasons, fmt.Sprintf("%d required fields missing", nulls))
	}
	if orphans > 0 {
		reasons = append(reasons, fmt.Sprintf("%d results reference unknown events or riders", orphans))
	}
	if rs.NeedsManualMapping {
		score -= 0.2
		reasons = append(reasons, "column structure could not be classified; needs manual mapping")
	}
	if rs.NeedsReview {
		score -= 0.2
		reasons = append(reasons, "extraction structure unverified; flagged for review")
	}
	score = clamp(score)

	action := e.thresholds.Action(score)
	if len(reasons) == 0 {
		reasons = append(reasons, "all required fields present and consistent")
	}

	return models.Assessment{
		Verdict: qualityVerdict(action),
		Score:   score,
		Reasons: reasons,
		Action:  action,
	}
}

// completenessScore returns the filled-ratio over required fields and the
// count of missing ones. Dates are excluded: the date coercion fallback
// means they are never null. When a set carries results or predictions,
// the synthesized per-row event and rider entries are not double-counted.
func completenessScore(rs *models.RecordSet) (float64, int) {
	filled, total := 0, 0
	mark := func(ok bool) {
		total++
		if ok {
			filled++
		}
	}

	for _, res := range rs.Results {
		mark(res.EventName != "" && res.EventName != "Unknown Event")
		mark(res.RiderName != "" && res.RiderName != "Unknown")
		mark(res.ActualValue != "Unknown" && res.ActualValue != "" || res.Score != nil || res.Placement != nil)
	}
	for _, p := range rs.Predictions {
		mark(p.Rider.Name != "" && p.Rider.Name != "Unknown")
		mark(p.PredictedValue != "" && p.PredictedValue != "Unknown")
		mark(p.Confidence != nil)
	}
	if len(rs.Results) == 0 && len(rs.Predictions) == 0 {
		for _, ev := range rs.Events {
			mark(ev.Name != "" && ev.Name != "Unknown Event" && ev.Name != "Unknown")
			mark(ev.Location != "" && ev.Location != "Unknown")
		}
		for _, r := range rs.Riders {
			mark(r.Name != "" && r.Name != "Unknown")
		}
	}

	if total == 0 {
		// Nothing countable (free text or raw records): neutral.
		return 0.5, 0
	}
	return float64(filled) / float64(total), total - filled
}

// consistencyScore checks that every result references an event and a
// rider present in the same set.
func consistencyScore(rs *models.RecordSet) (float64, int) {
	if len(rs.Results) == 0 {
		return 1.0, 0
	}

	events := make(map[string]struct{}, len(rs.Events))
	for _, ev := range rs.Events {
		events[ev.Name] = struct{}{}
	}
	riders := make(map[string]struct{}, len(rs.Riders))
	for _, r := range rs.Riders {
		riders[r.Name] = struct{}{}
	}

	consistent := 0
	for _, res := range rs.Results {
		_, evOK := events[res.EventName]
		_, riderOK := riders[res.RiderName]
		if evOK && riderOK {
			consistent++
		}
	}
	return float64(consistent) / float64(len(rs.Results)), len(rs.Results) - consistent
}

func relevanceVerdict(action models.Action) models.Verdict {
	switch action {
	case models.ActionProcess:
		return models.VerdictRelevant
	case models.ActionReview:
		return models.VerdictAmbiguous
	default:
		return models.VerdictIrrelevant
	}
}

func qualityVerdict(action models.Action) models.Verdict {
	switch action {
	case models.ActionProcess:
		return models.VerdictGood
	case models.ActionReview:
		return models.VerdictMarginal
	default:
		return models.VerdictPoor
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
