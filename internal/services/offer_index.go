package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// OfferVectorStore keeps one point per offer, keyed by the offer id.
type OfferVectorStore interface {
	InitCollection(ctx context.Context) error
	UpsertOffer(ctx context.Context, offerID uint, embedding []float32, payload map[string]any) error
	SearchOffers(ctx context.Context, queryEmbedding []float32, limit int) ([]OfferHit, error)
	DeleteOffer(ctx context.Context, offerID uint) error
}

type OfferHit struct {
	OfferID uint
	Score   float32
}

type qdrantOfferStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantOfferStore(urlStr, apiKey, collectionName string) (OfferVectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantOfferStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

func (q *qdrantOfferStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertOffer replaces the point of the offer, if any.
func (q *qdrantOfferStore) UpsertOffer(ctx context.Context, offerID uint, embedding []float32, payload map[string]any) error {
	values := map[string]any{"offer_id": int64(offerID)}
	for k, v := range payload {
		values[k] = v
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(offerID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(values),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert offer %d: %w", offerID, err)
	}

	return nil
}

func (q *qdrantOfferStore) SearchOffers(ctx context.Context, queryEmbedding []float32, limit int) ([]OfferHit, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search offers: %w", err)
	}

	hits := make([]OfferHit, 0, len(points))
	for _, point := range points {
		value, ok := point.Payload["offer_id"]
		if !ok {
			continue
		}
		id, ok := value.GetKind().(*qdrant.Value_IntegerValue)
		if !ok || id.IntegerValue <= 0 {
			continue
		}
		hits = append(hits, OfferHit{OfferID: uint(id.IntegerValue), Score: point.Score})
	}

	return hits, nil
}

func (q *qdrantOfferStore) DeleteOffer(ctx context.Context, offerID uint) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewIDNum(uint64(offerID))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete offer %d: %w", offerID, err)
	}

	return nil
}
