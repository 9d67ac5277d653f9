package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rodeoai/ingest/internal/models"
)

// Namespaces keep file-level and data-level fingerprints in distinct
// registries.
const (
	NamespaceFile = "file"
	NamespaceData = "data"
)

// Store is the fingerprint registry behind the engine. CheckAndRegister
// must perform the membership test and the insert as a single atomic
// operation; two concurrent checks of the same fingerprint must not both
// observe "not seen".
type Store interface {
	CheckAndRegister(ctx context.Context, namespace, fingerprint string) (seen bool, err error)
	Close() error
}

// Check is the outcome of a dedup lookup.
type Check struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Hash        string `json:"hash"`
}

// Engine detects exact file-level duplicates and semantic data-level
// duplicates against previously seen submissions. Every check registers
// the fingerprint as a side effect, so call each check only once per
// physical submission.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// CheckFile fingerprints the raw bytes and tests membership against the
// file registry.
func (e *Engine) CheckFile(ctx context.Context, content []byte, filename string) (Check, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	seen, err := e.store.CheckAndRegister(ctx, NamespaceFile, hash)
	if err != nil {
		return Check{}, fmt.Errorf("file dedup check for %s: %w", filename, err)
	}
	return Check{IsDuplicate: seen, Hash: hash}, nil
}

// CheckData fingerprints the normalized identity projection of the record
// set and tests membership against the data registry. Source filename,
// record order and timestamps do not influence the digest.
func (e *Engine) CheckData(ctx context.Context, rs *models.RecordSet, filename string) (Check, error) {
	hash := dataFingerprint(rs)

	seen, err := e.store.CheckAndRegister(ctx, NamespaceData, hash)
	if err != nil {
		return Check{}, fmt.Errorf("data dedup check for %s: %w", filename, err)
	}
	return Check{IsDuplicate: seen, Hash: hash}, nil
}

// dataFingerprint digests sorted identity tuples. Structured sets use
// event, rider and result identities; sets with no identities at all,
// free-text extractions and unclassified tables, fall back to their
// detected tokens, raw rows and text so distinct unstructured
// submissions never share a digest. Record dates are excluded:
// unparseable dates fall back to ingestion time, which would make
// byte-identical resubmissions look distinct.
func dataFingerprint(rs *models.RecordSet) string {
	tuples := make([]string, 0, len(rs.Events)+len(rs.Riders)+len(rs.Results))
	for _, ev := range rs.Events {
		tuples = append(tuples, strings.Join([]string{"event", ev.Name, ev.Location, ev.EventType}, "|"))
	}
	for _, r := range rs.Riders {
		tuples = append(tuples, strings.Join([]string{"rider", r.Name}, "|"))
	}
	for _, res := range rs.Results {
		tuples = append(tuples, strings.Join([]string{"result", res.EventName, res.RiderName, res.ActualValue}, "|"))
	}
	if len(tuples) == 0 {
		tuples = fallbackTuples(rs)
	}
	sort.Strings(tuples)

	h := sha256.New()
	for _, t := range tuples {
		h.Write([]byte(t))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fallbackTuples projects record sets that carry no identity records.
func fallbackTuples(rs *models.RecordSet) []string {
	tuples := make([]string, 0, len(rs.DetectedDates)+len(rs.DetectedScores)+len(rs.RawRecords)+1)
	for _, d := range rs.DetectedDates {
		tuples = append(tuples, "date|"+d)
	}
	for _, s := range rs.DetectedScores {
		tuples = append(tuples, "score|"+s)
	}
	for _, rec := range rs.RawRecords {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys)+1)
		parts = append(parts, "raw")
		for _, k := range keys {
			parts = append(parts, k+"="+rec[k])
		}
		tuples = append(tuples, strings.Join(parts, "|"))
	}
	if rs.ExtractedText != "" {
		tuples = append(tuples, "text|"+rs.ExtractedText)
	}
	return tuples
}
