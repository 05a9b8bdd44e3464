package core

import (
	"context"

	"ledgerbook/internal/docstore"
)

// Snapshot is a full database export keyed by collection name. Documents
// keep their identifiers so a restore reproduces the exported state exactly.
type Snapshot map[string][]docstore.Document

// BackupService exports and restores whole-database snapshots. Restores
// bypass the ledger engine entirely: documents are written as-is and no
// stock effects are recomputed, so a snapshot is trusted to be internally
// consistent.
type BackupService interface {
	// Export captures every document of every collection.
	Export(ctx context.Context) (Snapshot, error)

	// Import replaces each collection present in the snapshot with the
	// snapshot's documents. Collections absent from the snapshot are left
	// untouched; unknown collection names are skipped.
	Import(ctx context.Context, snapshot Snapshot) error
}

type backupService struct {
	store docstore.Store
}

func NewBackupService(store docstore.Store) BackupService {
	return &backupService{store: store}
}

func (s *backupService) Export(ctx context.Context) (Snapshot, error) {
	snapshot := Snapshot{}
	for _, collection := range docstore.AllCollections {
		docs, err := s.store.Find(ctx, collection, docstore.Query{})
		if err != nil {
			return nil, classify("backup export", err)
		}
		if docs == nil {
			docs = []docstore.Document{}
		}
		snapshot[collection] = docs
	}
	return snapshot, nil
}

func (s *backupService) Import(ctx context.Context, snapshot Snapshot) error {
	for _, collection := range docstore.AllCollections {
		docs, ok := snapshot[collection]
		if !ok {
			continue
		}
		if err := s.store.ReplaceAll(ctx, collection, docs); err != nil {
			return classify("backup import", err)
		}
	}
	return nil
}
