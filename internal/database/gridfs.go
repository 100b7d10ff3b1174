package repository

import (
	"Concierge/entity"
	"Concierge/internal/lib/sl"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"io"
	"log/slog"
)

const archiveBucket = "knowledge"

func (m *MongoDB) bucket() (*gridfs.Bucket, func(), error) {
	connection, err := m.connect()
	if err != nil {
		return nil, nil, err
	}
	release := func() { m.disconnect(connection) }

	bucket, err := gridfs.NewBucket(connection.Database(m.database), options.GridFSBucket().SetName(archiveBucket))
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return bucket, release, nil
}

// ArchiveFile keeps a copy of an uploaded knowledge file for download. It
// returns the archive id and size.
func (m *MongoDB) ArchiveFile(filename string, reader io.Reader, meta entity.FileMetadata) (string, int64, error) {
	bucket, release, err := m.bucket()
	if err != nil {
		return "", 0, err
	}
	defer release()

	upload, err := bucket.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return "", 0, fmt.Errorf("gridfs open upload: %w", err)
	}

	size, err := io.Copy(upload, reader)
	if err != nil {
		_ = upload.Abort()
		return "", 0, fmt.Errorf("gridfs copy: %w", err)
	}
	if err = upload.Close(); err != nil {
		return "", 0, fmt.Errorf("gridfs close upload: %w", err)
	}

	fileId, ok := upload.FileID.(primitive.ObjectID)
	if !ok {
		return "", size, fmt.Errorf("gridfs unexpected file id %v", upload.FileID)
	}
	m.log.With(
		slog.String("archive_id", fileId.Hex()),
		slog.String("name", filename),
		slog.Int64("size", size),
	).Debug("file archived")
	return fileId.Hex(), size, nil
}

// archiveReader releases the connection together with the stream.
type archiveReader struct {
	*gridfs.DownloadStream
	release func()
}

func (r *archiveReader) Close() error {
	err := r.DownloadStream.Close()
	r.release()
	return err
}

// ArchivedFile opens an archived copy by id. The caller must close the reader.
func (m *MongoDB) ArchivedFile(id string) (string, entity.FileMetadata, io.ReadCloser, error) {
	var meta entity.FileMetadata

	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", meta, nil, fmt.Errorf("invalid archive id: %w", err)
	}

	bucket, release, err := m.bucket()
	if err != nil {
		return "", meta, nil, err
	}

	stream, err := bucket.OpenDownloadStream(objectId)
	if err != nil {
		release()
		return "", meta, nil, fmt.Errorf("gridfs open download: %w", err)
	}

	file := stream.GetFile()
	if len(file.Metadata) > 0 {
		if err = bson.Unmarshal(file.Metadata, &meta); err != nil {
			m.log.With(slog.String("archive_id", id)).Warn("archived file metadata", sl.Err(err))
		}
	}
	return file.Name, meta, &archiveReader{DownloadStream: stream, release: release}, nil
}
