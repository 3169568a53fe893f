package interfaces

// ResultStoreInterface is the save/load contract towards the persistence
// collaborator. Save upserts the current result registry keyed by file hash
// (same hash overwrites the prior analysis); Load restores it.
type ResultStoreInterface interface {
	Save() error
	Load() error
	Close() error
}
