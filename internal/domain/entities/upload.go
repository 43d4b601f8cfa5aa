package entities

// StagedFile is a local file owned by a single ingestion run.
type StagedFile struct {
	Path string
	Size int64
}
