package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

// OfferIndexer keeps the vector index in sync with offers. Jobs come from
// EnqueueOffer and from a poller that picks up offers changed since their
// last indexing.
type OfferIndexer interface {
	Start(ctx context.Context)
	Stop()
	EnqueueOffer(offerID uint)
	IndexOffer(ctx context.Context, offerID uint) error
}

type offerIndexer struct {
	offers       repositories.OfferRepository
	embedder     Embedder
	vectors      OfferVectorStore
	clock        Clock
	jobQueue     chan uint
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewOfferIndexer(
	offers repositories.OfferRepository,
	embedder Embedder,
	vectors OfferVectorStore,
	clock Clock,
	concurrency int,
	pollInterval time.Duration,
) OfferIndexer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &offerIndexer{
		offers:       offers,
		embedder:     embedder,
		vectors:      vectors,
		clock:        clock,
		jobQueue:     make(chan uint, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

func (w *offerIndexer) Start(ctx context.Context) {
	log.Printf("🚀 Starting offer indexer with %d workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollStaleOffers(ctx)

	log.Println("✅ Offer indexer started successfully")
}

func (w *offerIndexer) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping offer indexer...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Offer indexer stopped")
	})
}

// EnqueueOffer never blocks the caller; a dropped job is picked up by the poller.
func (w *offerIndexer) EnqueueOffer(offerID uint) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Indexer stopped, cannot enqueue offer %d\n", offerID)
	case w.jobQueue <- offerID:
		log.Printf("📥 Offer %d enqueued for indexing\n", offerID)
	default:
		log.Printf("⚠️  Index queue full, offer %d left to the poller\n", offerID)
	}
}

func (w *offerIndexer) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Indexer #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case offerID := <-w.jobQueue:
			if err := w.IndexOffer(ctx, offerID); err != nil {
				log.Printf("❌ Indexer #%d failed on offer %d: %v\n", workerID, offerID, err)
			} else {
				log.Printf("✅ Indexer #%d indexed offer %d\n", workerID, offerID)
			}
		}
	}
}

// IndexOffer pushes open offers to the vector store and removes the others.
func (w *offerIndexer) IndexOffer(ctx context.Context, offerID uint) error {
	offer, err := w.offers.FindByID(ctx, offerID)
	if err != nil {
		return err
	}

	if offer.Published && !offer.Archived {
		embedding, err := w.embedder.GenerateEmbedding(ctx, OfferText(offer))
		if err != nil {
			return err
		}
		payload := map[string]any{
			"title":   offer.Title,
			"company": offer.Company.Name,
			"city":    offer.City,
			"domain":  offer.Domain,
		}
		if err := w.vectors.UpsertOffer(ctx, offer.ID, embedding, payload); err != nil {
			return err
		}
	} else if err := w.vectors.DeleteOffer(ctx, offer.ID); err != nil {
		return err
	}

	return w.offers.MarkIndexed(ctx, offer.ID, w.clock.Now())
}

func (w *offerIndexer) pollStaleOffers(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting stale offers poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Stale offers poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			stale, err := w.offers.FindStaleIndex(ctx, 10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch offers to index: %v\n", err)
				continue
			}

			if len(stale) > 0 {
				log.Printf("📋 Found %d offers to index\n", len(stale))
			}

			for _, offer := range stale {
				w.EnqueueOffer(offer.ID)
			}
		}
	}
}

// OfferText is the text embedded for an offer.
func OfferText(offer *models.Offer) string {
	var b strings.Builder
	line := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	line("Title", offer.Title)
	line("Position", offer.Position)
	line("Company", offer.Company.Name)
	line("Domain", offer.Domain)
	line("Specialty", offer.Specialty)
	line("Level", offer.Level)
	line("Contract", offer.ContractType)
	line("Work mode", offer.WorkMode)
	line("Location", strings.Trim(offer.City+", "+offer.Country, ", "))

	var tags []string
	if len(offer.Tags) > 0 && json.Unmarshal(offer.Tags, &tags) == nil && len(tags) > 0 {
		line("Tags", strings.Join(tags, ", "))
	}
	if offer.Description != "" {
		b.WriteString("\n")
		b.WriteString(offer.Description)
	}

	return b.String()
}
