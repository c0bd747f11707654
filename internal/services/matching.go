package services

import (
	"context"
	"sort"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

const (
	matchChunkSize   = 2000
	matchChunkLimit  = 3
	defaultMatchSize = 10
)

type MatchingService interface {
	SuggestOffers(ctx context.Context, candidate *models.User, documentID uint, limit int) ([]models.OfferMatch, error)
}

type matchingService struct {
	documents repositories.DocumentRepository
	offers    repositories.OfferRepository
	embedder  Embedder
	vectors   OfferVectorStore
	chunker   TextChunker
	cooldown  *CooldownTracker
}

func NewMatchingService(
	documents repositories.DocumentRepository,
	offers repositories.OfferRepository,
	embedder Embedder,
	vectors OfferVectorStore,
	chunker TextChunker,
	cooldown *CooldownTracker,
) MatchingService {
	return &matchingService{
		documents: documents,
		offers:    offers,
		embedder:  embedder,
		vectors:   vectors,
		chunker:   chunker,
		cooldown:  cooldown,
	}
}

// SuggestOffers embeds the first chunks of the document text and keeps the
// best score per offer. Only offers the document could be sent to right now
// are returned.
func (s *matchingService) SuggestOffers(ctx context.Context, candidate *models.User, documentID uint, limit int) ([]models.OfferMatch, error) {
	if err := requireCandidate(candidate); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = defaultMatchSize
	}

	doc, err := s.documents.FindOwned(ctx, documentID, candidate.ID)
	if err != nil {
		return nil, notFoundOr(err, "document not found")
	}
	if doc.ExtractedText == "" {
		return nil, apperror.Validation("document has no readable text", map[string]string{
			"cv": "only PDF documents with text can be matched",
		})
	}

	chunks := s.chunker.ChunkText(doc.ExtractedText, matchChunkSize, 200)
	if len(chunks) > matchChunkLimit {
		chunks = chunks[:matchChunkLimit]
	}

	best := map[uint]float32{}
	for _, chunk := range chunks {
		embedding, err := s.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return nil, apperror.New(apperror.CodeUnavailable, "matching is temporarily unavailable", err)
		}
		hits, err := s.vectors.SearchOffers(ctx, embedding, limit*2)
		if err != nil {
			return nil, apperror.New(apperror.CodeUnavailable, "matching is temporarily unavailable", err)
		}
		for _, hit := range hits {
			if score, ok := best[hit.OfferID]; !ok || hit.Score > score {
				best[hit.OfferID] = hit.Score
			}
		}
	}

	ids := make([]uint, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	open, err := s.offers.FindEligibleByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	matches := make([]models.OfferMatch, 0, len(open))
	for i := range open {
		offer := &open[i]
		refusal, err := s.cooldown.Check(ctx, nil, doc, offer)
		if err != nil {
			return nil, err
		}
		if refusal != nil {
			continue
		}
		matches = append(matches, models.OfferMatch{
			OfferID:     offer.ID,
			Title:       offer.Title,
			CompanyName: offer.Company.Name,
			City:        offer.City,
			Score:       best[offer.ID],
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].OfferID < matches[j].OfferID
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
