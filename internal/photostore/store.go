// Package photostore reads event photos from an S3 compatible object store.
// Events are top level folders in the bucket; see layout.go for the shapes.
package photostore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/eventfoto/face-indexer/internal/config"
)

// Store wraps a MinIO client scoped to one bucket.
type Store struct {
	client *minio.Client
	bucket string
}

func NewStore(cfg *config.StorageConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// listFolders returns the names of the immediate subfolders under prefix.
func (s *Store) listFolders(ctx context.Context, prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var folders []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %q: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
			if name != "" {
				folders = append(folders, name)
			}
		}
	}
	return folders, nil
}

// ListEvents returns the event folder names at the bucket root.
func (s *Store) ListEvents(ctx context.Context) ([]string, error) {
	events, err := s.listFolders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// ListPhotos returns the photo objects directly under folderPath.
func (s *Store) ListPhotos(ctx context.Context, folderPath string) ([]PhotoDescriptor, error) {
	prefix := strings.TrimSuffix(folderPath, "/") + "/"

	var photos []PhotoDescriptor
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing photos under %q: %w", folderPath, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") || !IsPhoto(obj.Key) {
			continue
		}
		photos = append(photos, PhotoDescriptor{
			Key:  obj.Key,
			Name: path.Base(obj.Key),
			Path: strings.TrimSuffix(folderPath, "/"),
			Size: obj.Size,
		})
	}
	return photos, nil
}

// ListCollections returns the photo collections of an event, or of one day of
// a multi-day event when day is non-empty. Each collection carries a photo
// count and a presigned cover URL.
func (s *Store) ListCollections(ctx context.Context, eventID, day string) ([]Collection, error) {
	base := eventID
	if day != "" {
		base = eventID + "/" + day
	}

	names, err := s.listFolders(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("listing collections for %q: %w", base, err)
	}

	collections := make([]Collection, 0, len(names))
	for _, name := range names {
		photos, err := s.ListPhotos(ctx, base+"/"+name)
		if err != nil {
			return nil, err
		}
		col := Collection{Name: name, PhotoCount: len(photos)}
		if len(photos) > 0 {
			cover, err := s.PresignGet(ctx, photos[0].Key, 2*time.Hour)
			if err == nil {
				col.CoverURL = cover
			}
		}
		collections = append(collections, col)
	}
	return collections, nil
}

// EventStructure inspects the first folder level of an event and reports
// whether it is a multi-day event.
func (s *Store) EventStructure(ctx context.Context, eventID string) (*Structure, error) {
	folders, err := s.listFolders(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("inspecting event %q: %w", eventID, err)
	}

	st := &Structure{EventID: eventID}
	for _, name := range folders {
		if IsDayFolder(name) {
			st.Days = append(st.Days, name)
		}
	}
	st.MultiDay = len(st.Days) > 0
	return st, nil
}

// EnumerateEvent walks the whole event hierarchy and returns a flat photo
// list. Multi-day events are walked day by day; single-day events walk the
// collections directly.
func (s *Store) EnumerateEvent(ctx context.Context, eventID string) ([]PhotoDescriptor, error) {
	st, err := s.EventStructure(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var bases []string
	if st.MultiDay {
		for _, day := range st.Days {
			bases = append(bases, eventID+"/"+day)
		}
	} else {
		bases = append(bases, eventID)
	}

	var all []PhotoDescriptor
	for _, base := range bases {
		collections, err := s.listFolders(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("enumerating %q: %w", base, err)
		}
		for _, col := range collections {
			photos, err := s.ListPhotos(ctx, base+"/"+col)
			if err != nil {
				return nil, err
			}
			all = append(all, photos...)
		}
	}
	return all, nil
}

// Fetch downloads one object and returns its content.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}

// PresignGet returns a presigned download URL for one object.
func (s *Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presigning %q: %w", key, err)
	}
	return u.String(), nil
}
