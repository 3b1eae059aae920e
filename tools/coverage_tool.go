package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"
	"github.com/couchbaselabs/logg"
	bc "github.com/cosmoharrigan/blocks"
)

/*
Tool for working with run artifacts offline: merging the per-pass
coverage fragments a run left behind, and inspecting converted dataset
files.
*/

var (
	app = kingpin.New("blocks-tool", "A command-line tool for inspecting run artifacts.")

	merge       = app.Command("merge-coverage", "Merge per-pass coverage fragments into one report")
	fragmentDir = merge.Flag("fragmentDir", "Directory holding .coverage.*.json fragments").String()
	runId       = merge.Flag("runId", "Run id to stamp into the report").String()
	out         = merge.Flag("out", "Path to write the merged report to").String()

	inspect     = app.Command("inspect-dataset", "Print the sections of a converted dataset file")
	datasetFile = inspect.Flag("file", "Path to the dataset file").String()
)

func init() {
	logg.LogKeys["TOOL"] = true
}

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case "merge-coverage":
		doMergeCoverage(*fragmentDir, *runId, *out)
	case "inspect-dataset":
		doInspectDataset(*datasetFile)
	default:
		kingpin.FatalUsage("Invalid / missing command")
	}
}

func doMergeCoverage(fragmentDir, runId, out string) {

	pattern := filepath.Join(fragmentDir, ".coverage.*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		logg.LogFatal("Error globbing fragments: %v", err)
		return
	}

	fragments := []*bc.CoverageFragment{}
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			logg.LogFatal("Error opening fragment %v: %v", path, err)
			return
		}
		fragment, err := bc.ParseCoverageFragment(file)
		file.Close()
		if err != nil {
			logg.LogFatal("Error parsing fragment %v: %v", path, err)
			return
		}
		fragments = append(fragments, fragment)
		logg.LogTo("TOOL", "Read fragment: %v (pass: %v)", path, fragment.Pass)
	}

	report, err := bc.MergeCoverageFragments(runId, fragments)
	if err != nil {
		logg.LogFatal("Error merging fragments: %v", err)
		return
	}

	reportBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logg.LogFatal("Error encoding report: %v", err)
		return
	}

	if out == "" {
		os.Stdout.Write(reportBytes)
		os.Stdout.Write([]byte("\n"))
		return
	}

	if err := os.WriteFile(out, reportBytes, 0644); err != nil {
		logg.LogFatal("Error writing report: %v", err)
		return
	}
	logg.LogTo("TOOL", "Wrote merged report: %v (%v files)", out, report.Totals.Files)

}

func doInspectDataset(path string) {

	sections, err := bc.DescribePackedDataset(path)
	if err != nil {
		logg.LogFatal("Error reading dataset: %v", err)
		return
	}

	for role, dims := range sections {
		logg.LogTo("TOOL", "%v: dims %v", role, dims)
	}

}
