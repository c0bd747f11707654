package services

import "talentbridge/recruiting-api/internal/models"

// BuildSnapshot copies the offer and company fields an application keeps
// even if the offer changes later.
func BuildSnapshot(offer *models.Offer) models.Snapshot {
	return models.Snapshot{
		CompanyName:  offer.Company.Name,
		OfferTitle:   offer.Title,
		OfferDomain:  offer.Domain,
		OfferCity:    offer.City,
		OfferCountry: offer.Country,
	}
}
