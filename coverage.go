package blocksci

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// A coverage fragment is the partial coverage data emitted by one test
// pass (doctests or tests) of one matrix leg.  Fragments from all the
// passes of a run are merged into a single CoverageReport before upload.
type CoverageFragment struct {
	Pass      string           `json:"pass"`
	Precision string           `json:"precision,omitempty"`

	// covered line numbers keyed by source file path
	Files map[string][]int `json:"files"`
}

type CoverageReport struct {
	RunId     string           `json:"run-id"`
	Precision string           `json:"precision,omitempty"`
	Passes    []string         `json:"passes"`
	Files     map[string][]int `json:"files"`
	Totals    CoverageTotals   `json:"totals"`
}

type CoverageTotals struct {
	Files        int `json:"files"`
	CoveredLines int `json:"covered-lines"`
}

func ParseCoverageFragment(r io.Reader) (*CoverageFragment, error) {

	fragment := &CoverageFragment{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(fragment); err != nil {
		return nil, fmt.Errorf("Error decoding coverage fragment: %v", err)
	}

	if fragment.Files == nil {
		return nil, fmt.Errorf("Coverage fragment has no files section")
	}

	return fragment, nil

}

// Merge fragments into a single report.  Covered lines are unioned per
// file, and the totals are recomputed from the merged result.  At least
// one fragment is required -- a run that produced no fragments has
// nothing to report and that is an error, not an empty upload.
func MergeCoverageFragments(runId string, fragments []*CoverageFragment) (*CoverageReport, error) {

	if len(fragments) == 0 {
		return nil, fmt.Errorf("No coverage fragments to merge for run: %v", runId)
	}

	merged := map[string]map[int]struct{}{}
	passes := []string{}
	precision := ""

	for _, fragment := range fragments {
		passes = append(passes, fragment.Pass)
		if fragment.Precision != "" {
			precision = fragment.Precision
		}
		for file, lines := range fragment.Files {
			lineSet, ok := merged[file]
			if !ok {
				lineSet = map[int]struct{}{}
				merged[file] = lineSet
			}
			for _, line := range lines {
				lineSet[line] = struct{}{}
			}
		}
	}

	report := &CoverageReport{
		RunId:     runId,
		Precision: precision,
		Passes:    passes,
		Files:     map[string][]int{},
	}

	for file, lineSet := range merged {
		lines := make([]int, 0, len(lineSet))
		for line := range lineSet {
			lines = append(lines, line)
		}
		sort.Ints(lines)
		report.Files[file] = lines
		report.Totals.CoveredLines += len(lines)
	}
	report.Totals.Files = len(report.Files)

	return report, nil

}
