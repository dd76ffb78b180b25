package repo

import (
	"github.com/odvcencio/surveyor/pkg/object"
)

// GC packs loose objects into a new pack file with index.
func (r *Repo) GC() (*object.GCSummary, error) {
	return r.Store.GC()
}

// Verify checks loose and packed object integrity.
func (r *Repo) Verify() (*object.VerifySummary, error) {
	return r.Store.Verify()
}
