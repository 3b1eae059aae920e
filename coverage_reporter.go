package blocksci

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/couchbaselabs/logg"
)

// Final pipeline step: merge the coverage fragments produced by the
// test passes into one report, store the merged report as an artifact,
// and upload it to the external coverage service.  The merge always
// happens before the upload.
type CoverageReporter struct{}

func (c CoverageReporter) Name() string {
	return STEP_REPORT_COVERAGE
}

func (c CoverageReporter) Run(ctx *StepContext) (StepStatus, error) {

	fragments, err := c.collectFragments(ctx.WorkDir)
	if err != nil {
		return StepFailed, err
	}

	report, err := MergeCoverageFragments(ctx.Run.Id, fragments)
	if err != nil {
		return StepFailed, err
	}

	logg.LogTo("COVERAGE", "Merged %v fragments: %v files, %v covered lines",
		len(fragments), report.Totals.Files, report.Totals.CoveredLines)

	reportBytes, err := json.Marshal(report)
	if err != nil {
		return StepFailed, fmt.Errorf("Error encoding coverage report: %v", err)
	}

	destPath := path.Join(ctx.Run.Id, COVERAGE_REPORT)
	options := BlobPutOptions{ContentType: "application/json"}
	if err := ctx.BlobStore.Put("", destPath, bytes.NewReader(reportBytes), options); err != nil {
		return StepFailed, fmt.Errorf("Error writing %v to blob store: %v", destPath, err)
	}
	ctx.CoverageReportUrl = blobUri(destPath)

	if err := c.upload(ctx, reportBytes); err != nil {
		return StepFailed, err
	}

	return StepCompleted, nil

}

func (c CoverageReporter) collectFragments(workDir string) ([]*CoverageFragment, error) {

	pattern := filepath.Join(workDir, fmt.Sprintf(COVERAGE_FRAGMENT_FMT, "*"))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	fragments := []*CoverageFragment{}
	for _, fragmentPath := range paths {

		f, err := os.Open(fragmentPath)
		if err != nil {
			return nil, err
		}

		fragment, err := ParseCoverageFragment(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("Error parsing %v: %v", fragmentPath, err)
		}

		fragments = append(fragments, fragment)

	}

	return fragments, nil

}

// Upload the merged report.  An empty service url means storage-only
// mode (local runner boxes), which is logged rather than treated as a
// failure.
func (c CoverageReporter) upload(ctx *StepContext, reportBytes []byte) error {

	serviceUrl := ctx.Configuration.CoverageServiceUrl
	if serviceUrl == "" {
		logg.LogTo("COVERAGE", "No coverage service configured, skipping upload")
		return nil
	}

	payload := map[string]interface{}{
		"repo_token": ctx.Configuration.CoverageRepoToken,
		"run_id":     ctx.Run.Id,
		"report":     json.RawMessage(reportBytes),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(serviceUrl, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Error uploading coverage report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return fmt.Errorf("%v response uploading coverage report to: %v", resp.StatusCode, serviceUrl)
	}

	logg.LogTo("COVERAGE", "Uploaded coverage report for run: %v", ctx.Run.Id)

	return nil

}
