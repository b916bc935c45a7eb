// Package recognition talks to the face recognition index service. The
// FaceIndex interface is what the pipeline consumes; the AWS Rekognition
// implementation lives in rekognition.go.
package recognition

import (
	"context"
)

// Match is one hit from a search by image.
type Match struct {
	ExternalImageID string  `json:"external_image_id"`
	Similarity      float32 `json:"similarity"`
	FaceID          string  `json:"face_id"`
}

// IndexResult is the outcome of submitting one photo to the collection.
type IndexResult struct {
	// FaceCount is the number of faces indexed. Zero is a valid outcome.
	FaceCount int

	// FaceID identifies the first indexed face, empty when none was found.
	FaceID string
}

// FaceIndex is the remote face collection.
type FaceIndex interface {
	// EnsureCollection creates the collection if it does not exist yet.
	EnsureCollection(ctx context.Context, collectionID string) error

	// IndexFaces submits a photo under the given external image id.
	IndexFaces(ctx context.Context, collectionID string, image []byte, externalImageID string) (IndexResult, error)

	// ListExternalIDs returns the distinct external image ids present in
	// the collection, following pagination to the end.
	ListExternalIDs(ctx context.Context, collectionID string) ([]string, error)

	// SearchByImage finds faces similar to the largest face in the image.
	SearchByImage(ctx context.Context, collectionID string, image []byte, maxMatches int) ([]Match, error)
}
