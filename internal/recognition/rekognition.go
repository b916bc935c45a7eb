package recognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/eventfoto/face-indexer/internal/config"
	"github.com/eventfoto/face-indexer/internal/constants"
)

// Rekognition implements FaceIndex on top of AWS Rekognition collections.
type Rekognition struct {
	client        *rekognition.Client
	maxFaces      int32
	qualityFilter types.QualityFilter
}

func NewRekognition(ctx context.Context, cfg *config.RecognitionConfig, face *config.FaceConfig) (*Rekognition, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	// static credentials when configured, otherwise the default chain
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	maxFaces := int32(face.MaxFacesPerPhoto)
	if maxFaces <= 0 {
		maxFaces = 10
	}
	quality := types.QualityFilterAuto
	if face.QualityFilter != "" {
		quality = types.QualityFilter(face.QualityFilter)
	}

	return &Rekognition{
		client:        rekognition.NewFromConfig(awsCfg),
		maxFaces:      maxFaces,
		qualityFilter: quality,
	}, nil
}

// EnsureCollection creates the collection, treating "already exists" as
// success so repeated runs are idempotent.
func (r *Rekognition) EnsureCollection(ctx context.Context, collectionID string) error {
	_, err := r.client.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("creating collection %q: %w", collectionID, err)
	}
	return nil
}

func (r *Rekognition) IndexFaces(ctx context.Context, collectionID string, image []byte, externalImageID string) (IndexResult, error) {
	out, err := r.client.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:    aws.String(collectionID),
		ExternalImageId: aws.String(externalImageID),
		Image:           &types.Image{Bytes: image},
		MaxFaces:        aws.Int32(r.maxFaces),
		QualityFilter:   r.qualityFilter,
	})
	if err != nil {
		return IndexResult{}, fmt.Errorf("indexing %q into %q: %w", externalImageID, collectionID, err)
	}

	result := IndexResult{FaceCount: len(out.FaceRecords)}
	for _, record := range out.FaceRecords {
		if record.Face != nil && record.Face.FaceId != nil {
			result.FaceID = *record.Face.FaceId
			break
		}
	}
	return result, nil
}

// ListExternalIDs pages through the whole collection. One external id can
// back several faces, so results are deduplicated.
func (r *Rekognition) ListExternalIDs(ctx context.Context, collectionID string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	var nextToken *string

	for {
		out, err := r.client.ListFaces(ctx, &rekognition.ListFacesInput{
			CollectionId: aws.String(collectionID),
			MaxResults:   aws.Int32(constants.FaceListPageSize),
			NextToken:    nextToken,
		})
		if err != nil {
			var notFound *types.ResourceNotFoundException
			if errors.As(err, &notFound) {
				// collection not created yet means an empty remote set
				return nil, nil
			}
			return nil, fmt.Errorf("listing faces in %q: %w", collectionID, err)
		}

		for _, face := range out.Faces {
			if face.ExternalImageId == nil {
				continue
			}
			id := *face.ExternalImageId
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		if out.NextToken == nil {
			return ids, nil
		}
		nextToken = out.NextToken
	}
}

func (r *Rekognition) SearchByImage(ctx context.Context, collectionID string, image []byte, maxMatches int) ([]Match, error) {
	if maxMatches <= 0 {
		maxMatches = 100
	}
	out, err := r.client.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(collectionID),
		Image:              &types.Image{Bytes: image},
		MaxFaces:           aws.Int32(int32(maxMatches)),
		FaceMatchThreshold: aws.Float32(80),
	})
	if err != nil {
		return nil, fmt.Errorf("searching collection %q: %w", collectionID, err)
	}

	matches := make([]Match, 0, len(out.FaceMatches))
	for _, m := range out.FaceMatches {
		if m.Face == nil || m.Face.ExternalImageId == nil {
			continue
		}
		match := Match{ExternalImageID: *m.Face.ExternalImageId}
		if m.Similarity != nil {
			match.Similarity = *m.Similarity
		}
		if m.Face.FaceId != nil {
			match.FaceID = *m.Face.FaceId
		}
		matches = append(matches, match)
	}
	return matches, nil
}
