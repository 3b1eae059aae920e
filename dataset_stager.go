package blocksci

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/couchbaselabs/logg"
)

// Third pipeline step: make sure the converted benchmark dataset is
// present under the data path before any test runs.  When the file is
// already there (warm cache) the whole step is skipped.  Otherwise the
// raw archives are downloaded, digest checked, converted into a single
// packed file, and the raw downloads are cleared afterward.
type DatasetStager struct{}

func (s DatasetStager) Name() string {
	return STEP_STAGE_DATASET
}

func (s DatasetStager) Run(ctx *StepContext) (StepStatus, error) {

	datasetPath := filepath.Join(ctx.Configuration.DataPath, DATASET_FILENAME)

	if datasetPresent(datasetPath) {
		logg.LogTo("DATASET_STAGER", "Dataset already staged: %v", datasetPath)
		datasetCacheHits.Inc()
		return StepSkipped, nil
	}
	datasetCacheMisses.Inc()

	lock := NewStagingLock(ctx.Configuration)

	acquired, err := lock.Acquire(func() bool {
		return datasetPresent(datasetPath)
	})
	if err != nil {
		return StepFailed, err
	}
	if !acquired {
		// another worker staged the dataset while we waited
		logg.LogTo("DATASET_STAGER", "Dataset staged by another worker: %v", datasetPath)
		return StepSkipped, nil
	}
	defer lock.Release()

	// could have been staged between our existence check and winning
	// the lock
	if datasetPresent(datasetPath) {
		logg.LogTo("DATASET_STAGER", "Dataset already staged: %v", datasetPath)
		return StepSkipped, nil
	}

	if err := s.downloadAndConvert(ctx, datasetPath); err != nil {
		return StepFailed, err
	}

	return StepCompleted, nil

}

func (s DatasetStager) downloadAndConvert(ctx *StepContext, datasetPath string) error {

	rawDir := filepath.Join(ctx.WorkDir, "raw-dataset")
	if err := Mkdir(rawDir); err != nil {
		return fmt.Errorf("Error creating raw dataset dir: %v", err)
	}

	// clear the raw downloads whether conversion worked or not
	defer func() {
		if err := os.RemoveAll(rawDir); err != nil {
			logg.LogTo("DATASET_STAGER", "Error removing raw downloads: %v", err)
		}
	}()

	sections := map[string]*idxData{}
	roleOrder := []string{}

	for _, source := range ctx.Spec.Dataset.Sources {

		rawPath := filepath.Join(rawDir, source.Filename)
		url := fmt.Sprintf("%v/%v", ctx.Configuration.DatasetMirrorUrl, source.Filename)

		if err := downloadAndVerify(url, rawPath, source.Sha256); err != nil {
			return err
		}

		idx, err := readIdxGzFile(rawPath)
		if err != nil {
			return fmt.Errorf("Error decoding %v: %v", source.Filename, err)
		}

		sections[source.Role] = idx
		roleOrder = append(roleOrder, source.Role)

	}

	// write to a temp path and rename so a failed conversion never
	// leaves a partial dataset behind
	tmpPath := datasetPath + ".partial"
	if err := writePackedDataset(tmpPath, sections, roleOrder); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Error converting dataset: %v", err)
	}

	if err := os.Rename(tmpPath, datasetPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Error moving dataset into place: %v", err)
	}

	logg.LogTo("DATASET_STAGER", "Staged dataset: %v", datasetPath)

	return nil

}

func datasetPresent(datasetPath string) bool {
	_, err := os.Stat(datasetPath)
	return err == nil
}

// Download url to destPath, checking the sha256 digest of the bytes as
// they stream through.  A digest mismatch removes the download.
func downloadAndVerify(url, destPath, expectedSha256 string) error {

	logg.LogTo("DATASET_STAGER", "Downloading: %v", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("Error doing GET on: %v.  %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("%v response to GET on: %v", resp.StatusCode, url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	hash := sha256.New()
	_, err = io.Copy(out, io.TeeReader(resp.Body, hash))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("Error downloading %v: %v", url, err)
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	if actual != expectedSha256 {
		os.Remove(destPath)
		return fmt.Errorf("Digest mismatch for %v: expected %v got %v", url, expectedSha256, actual)
	}

	return nil

}

func readIdxGzFile(path string) (*idxData, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gzipReader, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gzipReader.Close()

	return readIdx(gzipReader)

}
