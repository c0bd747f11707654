package main

import (
	"context"
	"log"
	"os"
	"strings"

	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/repositories"
	"talentbridge/recruiting-api/internal/services"
)

// Pushes every offer changed since its last indexing to the vector store.
func main() {
	log.Println("🚀 Starting offer indexing...")

	cfg := config.Load()
	if !cfg.MatchingEnabled() {
		log.Fatal("❌ GEMINI_API_KEY is required to index offers")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	ctx := context.Background()

	embedder, err := services.NewGeminiEmbedder(ctx, cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	vectors, err := services.NewQdrantOfferStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := vectors.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	offerRepo := repositories.NewOfferRepository(db)
	indexer := services.NewOfferIndexer(offerRepo, embedder, vectors, services.NewSystemClock(), 1, 0)

	attempted := map[uint]bool{}
	successCount := 0
	failCount := 0

	for {
		batch, err := offerRepo.FindStaleIndex(ctx, 50)
		if err != nil {
			log.Fatalf("❌ Failed to list offers: %v", err)
		}

		progressed := false
		for _, offer := range batch {
			if attempted[offer.ID] {
				continue
			}
			attempted[offer.ID] = true
			progressed = true

			log.Printf("📄 Offer %d: %s", offer.ID, offer.Title)
			if err := indexer.IndexOffer(ctx, offer.ID); err != nil {
				log.Printf("   ❌ Failed: %v", err)
				failCount++
				continue
			}
			successCount++
		}

		// Failed offers stay stale; stop once a batch holds nothing new.
		if !progressed {
			break
		}
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Indexing Summary:")
	log.Printf("   ✅ Indexed: %d offers", successCount)
	log.Printf("   ❌ Failed: %d offers", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some offers failed to index. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All offers indexed successfully!")
}
