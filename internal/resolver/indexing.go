package resolver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/kaidence/cc-statusline/internal/util"
)

// IndexingState enumerates the project-indexing health outcomes.
type IndexingState int

const (
	// IndexingUnavailable means the service could not be consulted; the
	// formatter omits the segment entirely.
	IndexingUnavailable IndexingState = iota
	// IndexingIdle means the service answered but has indexed nothing
	// anywhere.
	IndexingIdle
	// IndexingNotIndexed means other projects are indexed, this one is not.
	IndexingNotIndexed
	// IndexingIndexed means the project (or an ancestor) has a collection.
	IndexingIndexed
	// IndexingInProgress means an insertion is running, with an estimate.
	IndexingInProgress
)

// IndexingStatus is the resolved health of the current project's index.
type IndexingStatus struct {
	State   IndexingState
	Name    string
	Percent int
}

// DefaultCollectionPrefix matches collections named by the indexer.
const DefaultCollectionPrefix = "codeindex"

// DefaultChunksPerFile is the empirical chunks-per-file ratio behind the
// progress estimate. Overridable; nobody has calibrated it.
const DefaultChunksPerFile = 100

// DefaultMinDepth stops the walk-up once fewer path segments remain.
const DefaultMinDepth = 3

// DefaultBoundaryDirs are conventional home-root names that end the
// walk-up.
var DefaultBoundaryDirs = []string{"Users", "home", "root"}

var (
	trackingRe = regexp.MustCompile(`tracking (\d+) files`)
	completeRe = regexp.MustCompile(`indexed (\d+) files?.*?(\d+) chunks`)
)

// IndexingResolver matches the working directory against the collection
// catalog and, when logs are available, estimates insertion progress.
type IndexingResolver struct {
	Prefix        string
	BoundaryDirs  []string
	MinDepth      int
	ChunksPerFile int
}

// NewIndexingResolver returns a resolver with the stock boundaries.
func NewIndexingResolver() *IndexingResolver {
	return &IndexingResolver{
		Prefix:        DefaultCollectionPrefix,
		BoundaryDirs:  DefaultBoundaryDirs,
		MinDepth:      DefaultMinDepth,
		ChunksPerFile: DefaultChunksPerFile,
	}
}

// Resolve derives the indexing status. The catalog is mandatory: a
// catalog failure (or unknown cwd) makes the whole resolver unavailable.
// The log tail is best-effort and only feeds the progress estimate.
func (r *IndexingResolver) Resolve(cwd string, collections []string, catalogErr error, logs []string, logsErr error) IndexingStatus {
	if cwd == "" || catalogErr != nil {
		return IndexingStatus{State: IndexingUnavailable}
	}

	name, collection, matched := r.matchCollection(cwd, collections)
	if !matched {
		leaf := util.LastSegment(cwd)
		if leaf == "" {
			return IndexingStatus{State: IndexingUnavailable}
		}
		prefix := strings.ToLower(r.Prefix) + "-"
		hasAny := lo.SomeBy(collections, func(c string) bool {
			return strings.HasPrefix(strings.ToLower(c), prefix)
		})
		if !hasAny {
			return IndexingStatus{State: IndexingIdle}
		}
		return IndexingStatus{State: IndexingNotIndexed, Name: leaf}
	}

	if logsErr != nil || len(logs) == 0 {
		return IndexingStatus{State: IndexingIndexed, Name: name}
	}

	if percent, inserting := r.estimateProgress(collection, logs); inserting {
		return IndexingStatus{State: IndexingInProgress, Name: name, Percent: percent}
	}
	return IndexingStatus{State: IndexingIndexed, Name: name}
}

// matchCollection walks from the leaf directory toward the root, testing
// "<prefix>-<normalized-dir>" against the catalog case-insensitively.
// The first matching ancestor wins, so a sub-directory of an indexed
// project reports the parent project. A boundary directory or falling
// below MinDepth stops the walk; an unmatched walk gets one legacy retry
// with the un-normalized leaf name.
func (r *IndexingResolver) matchCollection(cwd string, collections []string) (string, string, bool) {
	parts := util.SplitPath(cwd)

	for i := len(parts); i >= 1; i-- {
		dirName := parts[i-1]
		candidate := fmt.Sprintf("%s-%s", r.Prefix, util.NormalizeDirName(dirName))
		if containsFold(collections, candidate) {
			return dirName, candidate, true
		}
		if r.isBoundary(dirName) || i < r.MinDepth {
			break
		}
	}

	if leaf := util.LastSegment(cwd); leaf != "" {
		candidate := fmt.Sprintf("%s-%s", r.Prefix, leaf)
		if containsFold(collections, candidate) {
			return leaf, candidate, true
		}
	}
	return "", "", false
}

func (r *IndexingResolver) isBoundary(dirName string) bool {
	for _, b := range r.BoundaryDirs {
		if dirName == b {
			return true
		}
	}
	return false
}

// estimateProgress infers an in-flight insertion from log lines
// mentioning the matched collection, then estimates completion from the
// newest "tracking N files" marker and the newest completion marker's
// chunk count, assuming ChunksPerFile chunks per file.
func (r *IndexingResolver) estimateProgress(collection string, logs []string) (int, bool) {
	inserting := false
	files := 0
	chunks := 0

	collectionLower := strings.ToLower(collection)
	for _, line := range logs {
		lower := strings.ToLower(line)
		if strings.Contains(lower, collectionLower) && strings.Contains(lower, "insert") {
			inserting = true
		}
		if m := trackingRe.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				files = n
			}
		}
		if m := completeRe.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil {
				chunks = n
			}
		}
	}

	// An insertion with unknown counts still renders as plain Indexed;
	// a made-up percentage is worse than none.
	if !inserting || files <= 0 || chunks <= 0 {
		return 0, false
	}

	perFile := r.ChunksPerFile
	if perFile <= 0 {
		perFile = DefaultChunksPerFile
	}
	percent := math.Round(float64(chunks) / float64(files*perFile) * 100)
	return int(math.Min(100, percent)), true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
