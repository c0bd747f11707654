package services

import (
	"sync"
	"testing"
	"time"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
)

func TestApplyStoresSnapshot(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if application.Status != models.StatusSent {
		t.Fatalf("expected status %s, got %s", models.StatusSent, application.Status)
	}
	if !application.CreatedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected creation time from clock, got %v", application.CreatedAt)
	}
	want := models.Snapshot{
		CompanyName:  "Acme",
		OfferTitle:   "Backend Engineer",
		OfferDomain:  "Engineering",
		OfferCity:    "Dakar",
		OfferCountry: "Senegal",
	}
	if application.Snapshot != want {
		t.Fatalf("unexpected snapshot: %+v", application.Snapshot)
	}
}

func TestSnapshotSurvivesOfferAndStatusChanges(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	offer.Title = "Staff Engineer"
	offer.City = "Paris"
	if err := f.offers.Save(f.ctx, offer); err != nil {
		t.Fatalf("save offer: %v", err)
	}
	f.company.Name = "Acme Renamed"
	if err := f.companies.Save(f.ctx, f.company); err != nil {
		t.Fatalf("save company: %v", err)
	}
	if _, err := f.service.SetStatus(f.ctx, f.companyUser, application.ID, models.StatusPending); err != nil {
		t.Fatalf("set status: %v", err)
	}

	stored, err := f.applications.FindByID(f.ctx, application.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Snapshot.OfferTitle != "Backend Engineer" || stored.Snapshot.OfferCity != "Dakar" {
		t.Fatalf("snapshot changed: %+v", stored.Snapshot)
	}
	if stored.Snapshot.CompanyName != "Acme" {
		t.Fatalf("company name changed in snapshot: %q", stored.Snapshot.CompanyName)
	}
	if stored.Status != models.StatusPending {
		t.Fatalf("expected status %s, got %s", models.StatusPending, stored.Status)
	}
}

func TestApplyRejectsNonCandidates(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	_, err := f.service.Apply(f.ctx, f.companyUser, f.document.ID, offer.ID)
	if !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestApplyNotFound(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	if _, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, 9999); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("expected offer not found, got %v", err)
	}

	bob := f.user(t, "bob", models.RoleCandidate)
	if _, err := f.service.Apply(f.ctx, bob, f.document.ID, offer.ID); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("expected document not found for another candidate, got %v", err)
	}
}

func TestApplyRefusedWhenCompanyClosed(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	f.company.AcceptingApplications = false
	if err := f.companies.Save(f.ctx, f.company); err != nil {
		t.Fatalf("save company: %v", err)
	}

	_, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	refusal, ok := AsRefusal(err)
	if !ok || refusal.Reason != ReasonCompanyClosed {
		t.Fatalf("expected %s, got %v", ReasonCompanyClosed, err)
	}
	if n := f.countApplications(t, f.document.ID, offer.ID); n != 0 {
		t.Fatalf("expected no application, got %d", n)
	}
}

func TestConcurrentAppliesCreateOneApplication(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		refused int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
				return
			}
			if refusal, ok := AsRefusal(err); ok && refusal.Reason == ReasonCooldownActive {
				refused++
				return
			}
			t.Errorf("unexpected error: %v", err)
		}()
	}
	wg.Wait()

	if created != 1 || refused != attempts-1 {
		t.Fatalf("expected 1 created and %d refused, got %d and %d", attempts-1, created, refused)
	}
	if n := f.countApplications(t, f.document.ID, offer.ID); n != 1 {
		t.Fatalf("expected exactly one stored application, got %d", n)
	}
}

func TestSubmitBulkReportsEveryOffer(t *testing.T) {
	f := newFixture(t)
	o1 := f.openOffer(t, "Backend Engineer", nil)

	closedOwner := f.user(t, "closedco", models.RoleCompany)
	closed := f.newCompany(t, closedOwner, "Closed Co", false)
	o2 := f.openOffer(t, "Frontend Engineer", func(o *models.Offer) { o.CompanyID = closed.ID })

	result, err := f.service.SubmitBulk(f.ctx, f.candidate, f.document.ID, []uint{o1.ID, o2.ID})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}

	if !result.Success() || len(result.Created) != 1 || result.Created[0].OfferID != o1.ID {
		t.Fatalf("expected one application for o1, got %+v", result.Created)
	}
	if result.OffersTotal != 2 {
		t.Fatalf("expected offres_total 2, got %d", result.OffersTotal)
	}
	if len(result.Refused) != 1 || result.Refused[0].OfferID != o2.ID || result.Refused[0].Refusal.Reason != ReasonCompanyClosed {
		t.Fatalf("expected o2 refused for closed company, got %+v", result.Refused)
	}

	// Resubmitting within the cooldown creates nothing.
	f.clock.Advance(time.Hour)
	again, err := f.service.SubmitBulk(f.ctx, f.candidate, f.document.ID, []uint{o1.ID, o2.ID})
	if err != nil {
		t.Fatalf("second bulk: %v", err)
	}
	if again.Success() || len(again.Created) != 0 {
		t.Fatalf("expected nothing created, got %+v", again.Created)
	}
	if len(again.Refused) != 2 {
		t.Fatalf("expected both offers refused, got %+v", again.Refused)
	}
	reasons := map[uint]Reason{}
	for _, item := range again.Refused {
		reasons[item.OfferID] = item.Refusal.Reason
	}
	if reasons[o1.ID] != ReasonCooldownActive || reasons[o2.ID] != ReasonCompanyClosed {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
	if n := f.countApplications(t, f.document.ID, o1.ID); n != 1 {
		t.Fatalf("expected one application for o1, got %d", n)
	}
}

func TestSubmitBulkDeduplicatesAndKeepsOrder(t *testing.T) {
	f := newFixture(t)
	o1 := f.openOffer(t, "First", nil)
	o2 := f.openOffer(t, "Second", nil)
	o3 := f.openOffer(t, "Third", nil)

	result, err := f.service.SubmitBulk(f.ctx, f.candidate, f.document.ID, []uint{o3.ID, o1.ID, o3.ID, o2.ID, o1.ID})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if result.OffersTotal != 3 {
		t.Fatalf("expected 3 unique offers, got %d", result.OffersTotal)
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(result.Created))
	}
	want := []uint{o3.ID, o1.ID, o2.ID}
	for i, application := range result.Created {
		if application.OfferID != want[i] {
			t.Fatalf("position %d: expected offer %d, got %d", i, want[i], application.OfferID)
		}
	}
}

func TestSubmitBulkWithoutEligibleOffers(t *testing.T) {
	f := newFixture(t)
	archived := f.openOffer(t, "Old", func(o *models.Offer) { o.Archived = true })

	result, err := f.service.SubmitBulk(f.ctx, f.candidate, f.document.ID, []uint{archived.ID, 4242})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if result.Success() {
		t.Fatal("expected success=false")
	}
	if result.Message != "no valid offer in selection" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(result.Refused) != 2 {
		t.Fatalf("expected 2 refusals, got %+v", result.Refused)
	}
	if result.Refused[0].Refusal.Reason != ReasonOfferArchived || result.Refused[1].Refusal.Reason != ReasonOfferNotFound {
		t.Fatalf("unexpected reasons: %s, %s", result.Refused[0].Refusal.Reason, result.Refused[1].Refusal.Reason)
	}
}

func TestSubmitBulkValidation(t *testing.T) {
	f := newFixture(t)

	tooMany := make([]uint, 0, 101)
	for i := 1; i <= 101; i++ {
		tooMany = append(tooMany, uint(i))
	}

	tests := []struct {
		name string
		ids  []uint
	}{
		{name: "empty", ids: nil},
		{name: "only zero", ids: []uint{0, 0}},
		{name: "over limit", ids: tooMany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.SubmitBulk(f.ctx, f.candidate, f.document.ID, tt.ids)
			if !apperror.Is(err, apperror.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := f.service.SubmitBulk(f.ctx, f.companyUser, f.document.ID, []uint{1}); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden for company account, got %v", err)
	}
}

func TestSetStatusOnlyByOwningCompany(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)
	application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	otherOwner := f.user(t, "globex", models.RoleCompany)
	f.newCompany(t, otherOwner, "Globex", true)

	statuses := []models.ApplicationStatus{
		models.StatusSent, models.StatusPending, models.StatusAccepted, models.StatusRejected, "bogus",
	}
	for _, actor := range []*models.User{otherOwner, f.candidate} {
		for _, status := range statuses {
			if _, err := f.service.SetStatus(f.ctx, actor, application.ID, status); !apperror.Is(err, apperror.CodeForbidden) {
				t.Fatalf("%s setting %q: expected forbidden, got %v", actor.Username, status, err)
			}
		}
	}

	stored, err := f.applications.FindByID(f.ctx, application.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusSent {
		t.Fatalf("status changed to %s", stored.Status)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)
	application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := f.service.SetStatus(f.ctx, f.companyUser, application.ID, models.StatusSent); !apperror.Is(err, apperror.CodeValidation) {
		t.Fatalf("expected validation error for sent target, got %v", err)
	}

	steps := []models.ApplicationStatus{models.StatusPending, models.StatusPending, models.StatusAccepted}
	for _, status := range steps {
		updated, err := f.service.SetStatus(f.ctx, f.companyUser, application.ID, status)
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}

	if _, err := f.service.SetStatus(f.ctx, f.companyUser, application.ID, models.StatusRejected); !apperror.Is(err, apperror.CodeValidation) {
		t.Fatalf("expected final status to be locked, got %v", err)
	}
	if _, err := f.service.SetStatus(f.ctx, f.companyUser, 9999, models.StatusPending); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListComputesStats(t *testing.T) {
	f := newFixture(t)
	o1 := f.openOffer(t, "One", nil)
	o2 := f.openOffer(t, "Two", nil)
	o3 := f.openOffer(t, "Three", nil)

	var ids []uint
	for _, offer := range []*models.Offer{o1, o2, o3} {
		application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		ids = append(ids, application.ID)
	}
	if _, err := f.service.SetStatus(f.ctx, f.companyUser, ids[0], models.StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.service.SetStatus(f.ctx, f.companyUser, ids[1], models.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	for _, actor := range []*models.User{f.candidate, f.companyUser} {
		applications, stats, err := f.service.List(f.ctx, actor)
		if err != nil {
			t.Fatalf("list as %s: %v", actor.Username, err)
		}
		if len(applications) != 3 {
			t.Fatalf("expected 3 applications, got %d", len(applications))
		}
		want := models.ApplicationStats{Total: 3, Sent: 1, Accepted: 1, Rejected: 1}
		if stats != want {
			t.Fatalf("unexpected stats %+v", stats)
		}
	}

	guest := f.user(t, "guest", models.RoleGuest)
	if _, _, err := f.service.List(f.ctx, guest); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden for guest, got %v", err)
	}
}

func TestDeleteApplication(t *testing.T) {
	f := newFixture(t)
	offer := f.openOffer(t, "Backend Engineer", nil)
	application, err := f.service.Apply(f.ctx, f.candidate, f.document.ID, offer.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	stranger := f.user(t, "mallory", models.RoleCandidate)
	if err := f.service.Delete(f.ctx, stranger, application.ID); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.service.Delete(f.ctx, f.candidate, application.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.service.Get(f.ctx, f.candidate, application.ID); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
