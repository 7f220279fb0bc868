package repository

import (
	"context"

	"post-radar/domain/model"
)

// IRawArchive stores the verbatim provider payloads for display/replay.
// Archiving is best effort and never gates the ingest path.
type IRawArchive interface {
	ArchiveRaw(ctx context.Context, posts []model.Post) error
}
