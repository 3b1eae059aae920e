package blocksci

const (
	DOC_TYPE_USER          = "user"
	DOC_TYPE_PIPELINE_SPEC = "pipeline-spec"
	DOC_TYPE_PIPELINE_RUN  = "pipeline-run"
)

// Fields common to every document stored in the sync gateway db.
// Embedded in all of the concrete document types.
type BlocksCiDoc struct {
	Revision string `json:"_rev"`
	Id       string `json:"_id"`
	Type     string `json:"type"`
}
