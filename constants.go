package blocksci

const (
	// Environment variables exported to every child process of a pipeline run.
	ENV_DATA_PATH      = "FUEL_DATA_PATH"
	ENV_FLOATX         = "FUEL_FLOATX"
	ENV_THEANO_FLAGS   = "THEANO_FLAGS"
	ENV_BLOCKS_PROFILE = "BLOCKS_PROFILE"
	ENV_TESTS          = "TESTS"
	ENV_COVERAGE_FILE  = "COVERAGE_FILE"

	// Matrix axis values for the precision leg.
	PRECISION_FLOAT32 = "float32"
	PRECISION_FLOAT64 = "float64"

	// Test passes run by the test executor, in order.
	TEST_PASS_DOCTESTS = "doctests"
	TEST_PASS_TESTS    = "tests"

	// Converted dataset filename expected under the data path.
	DATASET_FILENAME = "mnist.hdf5"

	// Artifact names stored in the blob store under <run-id>/
	ARTIFACT_BUNDLE       = "artifacts.tar.gz"
	COVERAGE_REPORT       = "coverage.json"
	COVERAGE_FRAGMENT_FMT = ".coverage.%v.json"
	CHECKPOINT_FILENAME   = "checkpoint.json"

	BLOB_URI_PREFIX = "blobstore://"
)
