package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const JSONContentType = "application/json"

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader кладёт объекты во внешнее хранилище (архивы турниров).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ArchiveObjectKey builds a unique object key for a tournament snapshot.
func ArchiveObjectKey(tournamentID int, id uuid.UUID) string {
	return fmt.Sprintf("archives/tournament-%d/%s.json", tournamentID, id)
}
