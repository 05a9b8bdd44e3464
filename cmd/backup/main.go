// backup exports the database to a JSON snapshot file or restores one.
//
// Usage:
//
//	go run ./cmd/backup export [file]   write snapshot (default backup_<timestamp>.json)
//	go run ./cmd/backup import <file>   replace database contents from snapshot
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ledgerbook/internal/core"
	"ledgerbook/internal/db"
	"ledgerbook/internal/docstore"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: backup export [file] | backup import <file>")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	store := docstore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	backup := core.NewBackupService(store)

	switch os.Args[1] {
	case "export":
		path := "backup_" + time.Now().Format("2006-01-02_150405") + ".json"
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		exportSnapshot(ctx, backup, path)
	case "import":
		if len(os.Args) < 3 {
			log.Fatal("usage: backup import <file>")
		}
		importSnapshot(ctx, backup, os.Args[2])
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func exportSnapshot(ctx context.Context, backup core.BackupService, path string) {
	snapshot, err := backup.Export(ctx)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	log.Printf("snapshot written to %s", path)
}

func importSnapshot(ctx context.Context, backup core.BackupService, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var snapshot core.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Fatalf("decode %s: %v", path, err)
	}
	if err := backup.Import(ctx, snapshot); err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Printf("snapshot %s restored", path)
}
