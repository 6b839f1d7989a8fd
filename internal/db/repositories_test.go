package db

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/models"
)

func openSeededDatabaseForTest(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := Open(Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "glowlog.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(database)
	})
	return database
}

func createUserForTest(t *testing.T, repos *Repositories, email string) models.User {
	t.Helper()

	user := models.User{Email: email, PasswordHash: "hash", Concerns: []string{}, CreatedAt: time.Now().UTC()}
	if err := repos.Users.Create(&user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestOpenSeedsCatalogOnce(t *testing.T) {
	database := openSeededDatabaseForTest(t)
	repos := NewRepositories(database)

	procedures, err := repos.Procedures.List()
	if err != nil {
		t.Fatalf("list procedures: %v", err)
	}
	if len(procedures) != len(catalogProcedures) {
		t.Fatalf("expected %d seeded procedures, got %d", len(catalogProcedures), len(procedures))
	}

	if err := SeedCatalog(database); err != nil {
		t.Fatalf("reseed catalog: %v", err)
	}
	challenges, err := repos.Challenges.ListChallenges()
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != len(catalogChallenges) {
		t.Fatalf("expected reseeding to be a no-op, got %d challenges", len(challenges))
	}
}

func TestUserEmailIsUniqueCaseInsensitively(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	createUserForTest(t, repos, "QA-Test2@Glowlog.Local")

	duplicate := models.User{Email: "qa-test2@glowlog.local", PasswordHash: "hash-2", CreatedAt: time.Now().UTC()}
	if err := repos.Users.Create(&duplicate); err == nil {
		t.Fatal("expected duplicate normalized email insert to fail")
	}

	exists, err := repos.Users.ExistsByNormalizedEmail("qa-test2@glowlog.local")
	if err != nil || !exists {
		t.Fatalf("expected normalized lookup to find the user, got %v (%v)", exists, err)
	}
}

func TestUserConcernsRoundTrip(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	user := createUserForTest(t, repos, "mina@example.com")

	if err := repos.Users.UpdateConcerns(user.ID, []string{"acne", "redness"}); err != nil {
		t.Fatalf("update concerns: %v", err)
	}
	loaded, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if len(loaded.Concerns) != 2 || loaded.Concerns[1] != "redness" {
		t.Fatalf("unexpected concerns %v", loaded.Concerns)
	}
}

func TestScheduledProcedureRangesAndOwnership(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	owner := createUserForTest(t, repos, "owner@example.com")
	other := createUserForTest(t, repos, "other@example.com")

	procedures, err := repos.Procedures.List()
	if err != nil || len(procedures) == 0 {
		t.Fatalf("list procedures: %v", err)
	}
	seoul := time.FixedZone("KST", 9*60*60)
	override := 4
	entries := []models.ScheduledProcedure{
		{UserID: owner.ID, ProcedureID: procedures[0].ID, ScheduledAt: time.Date(2025, time.January, 15, 9, 0, 0, 0, seoul), DowntimeDays: &override},
		{UserID: owner.ID, ProcedureID: procedures[0].ID, ScheduledAt: time.Date(2025, time.January, 20, 9, 0, 0, 0, seoul)},
		{UserID: other.ID, ProcedureID: procedures[0].ID, ScheduledAt: time.Date(2025, time.January, 16, 9, 0, 0, 0, seoul)},
	}
	for index := range entries {
		if err := repos.ScheduledProcedures.Create(&entries[index]); err != nil {
			t.Fatalf("create scheduled procedure %d: %v", index, err)
		}
	}

	from := time.Date(2025, time.January, 15, 0, 0, 0, 0, seoul)
	to := time.Date(2025, time.January, 16, 0, 0, 0, 0, seoul)
	dayEntries, err := repos.ScheduledProcedures.ListByUserRange(owner.ID, from, to)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(dayEntries) != 1 || dayEntries[0].ID != entries[0].ID {
		t.Fatalf("expected only the Jan 15 procedure, got %+v", dayEntries)
	}
	if dayEntries[0].Procedure.Name == "" || dayEntries[0].DowntimeDays == nil || *dayEntries[0].DowntimeDays != 4 {
		t.Fatalf("expected preloaded procedure and override, got %+v", dayEntries[0])
	}

	recent, err := repos.ScheduledProcedures.ListByUserBefore(owner.ID, from.AddDate(0, -1, 0), from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("list before: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != entries[1].ID {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	if _, found, err := repos.ScheduledProcedures.FindByIDForUser(other.ID, entries[0].ID); err != nil || found {
		t.Fatalf("expected foreign lookup to miss, got found=%v err=%v", found, err)
	}
	deleted, err := repos.ScheduledProcedures.DeleteByIDForUser(other.ID, entries[0].ID)
	if err != nil || deleted {
		t.Fatalf("expected foreign delete to be a no-op, got deleted=%v err=%v", deleted, err)
	}
	deleted, err = repos.ScheduledProcedures.DeleteByIDForUser(owner.ID, entries[0].ID)
	if err != nil || !deleted {
		t.Fatalf("expected owner delete, got deleted=%v err=%v", deleted, err)
	}
}

func TestChallengeRepositoryLifecycle(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	user := createUserForTest(t, repos, "mina@example.com")

	challenges, err := repos.Challenges.ListChallenges()
	if err != nil || len(challenges) == 0 {
		t.Fatalf("list challenges: %v", err)
	}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	participation := models.UserChallenge{
		UserID:      user.ID,
		ChallengeID: challenges[0].ID,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, challenges[0].DurationDays-1),
		Status:      models.ChallengeStatusActive,
	}
	if err := repos.Challenges.CreateParticipation(&participation); err != nil {
		t.Fatalf("create participation: %v", err)
	}

	active, err := repos.Challenges.HasActiveParticipation(user.ID, challenges[0].ID)
	if err != nil || !active {
		t.Fatalf("expected active participation, got %v (%v)", active, err)
	}

	for _, day := range []time.Time{start, start.AddDate(0, 0, 1)} {
		if err := repos.Challenges.CreateCheckIn(&models.ChallengeCheckIn{UserChallengeID: participation.ID, UserID: user.ID, Date: day}); err != nil {
			t.Fatalf("create check-in: %v", err)
		}
	}
	if err := repos.Challenges.CreateCheckIn(&models.ChallengeCheckIn{UserChallengeID: participation.ID, UserID: user.ID, Date: start}); err == nil {
		t.Fatal("expected duplicate check-in on the same day to violate the unique index")
	}

	checked, err := repos.Challenges.HasCheckIn(participation.ID, start.AddDate(0, 0, 1))
	if err != nil || !checked {
		t.Fatalf("expected check-in lookup to hit, got %v (%v)", checked, err)
	}
	count, err := repos.Challenges.CountCheckInsByUserAndDay(user.ID, start)
	if err != nil || count != 1 {
		t.Fatalf("expected one check-in on day one, got %d (%v)", count, err)
	}
	days, err := repos.Challenges.ListCheckInDays(participation.ID)
	if err != nil || len(days) != 2 || !days[0].Equal(start) {
		t.Fatalf("unexpected check-in days %v (%v)", days, err)
	}

	expired, err := repos.Challenges.ListExpiredActive(participation.EndDate)
	if err != nil || len(expired) != 0 {
		t.Fatalf("expected nothing expired on the end date, got %d (%v)", len(expired), err)
	}
	expired, err = repos.Challenges.ListExpiredActive(participation.EndDate.AddDate(0, 0, 1))
	if err != nil || len(expired) != 1 || expired[0].Challenge.Title == "" {
		t.Fatalf("expected one expired participation with its challenge, got %+v (%v)", expired, err)
	}

	if err := repos.Challenges.UpdateParticipationStatus(participation.ID, models.ChallengeStatusFailed, time.Now()); err != nil {
		t.Fatalf("update status: %v", err)
	}
	activeCount, err := repos.Challenges.CountActiveByUser(user.ID)
	if err != nil || activeCount != 0 {
		t.Fatalf("expected no active participations, got %d (%v)", activeCount, err)
	}
}

func TestRecommendationBatchesKeepLatest(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	user := createUserForTest(t, repos, "mina@example.com")

	empty, err := repos.Recommendations.LatestBatch(user.ID)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no recommendations yet, got %v (%v)", empty, err)
	}

	for _, batch := range []string{"b1", "b2", "b3", "b4"} {
		items := []models.Recommendation{
			{UserID: user.ID, BatchID: batch, Title: batch + "-first"},
			{UserID: user.ID, BatchID: batch, Title: batch + "-second"},
		}
		if err := repos.Recommendations.SaveBatch(items); err != nil {
			t.Fatalf("save batch %s: %v", batch, err)
		}
	}

	latest, err := repos.Recommendations.LatestBatch(user.ID)
	if err != nil {
		t.Fatalf("latest batch: %v", err)
	}
	if len(latest) != 2 || latest[0].Title != "b4-first" {
		t.Fatalf("unexpected latest batch %+v", latest)
	}

	var remaining int64
	if err := repos.Recommendations.database.Model(&models.Recommendation{}).Where("batch_id = ?", "b1").Count(&remaining).Error; err != nil {
		t.Fatalf("count stale batch: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected the oldest batch to be pruned, got %d rows", remaining)
	}
}

func TestDeleteAccountRemovesRelatedData(t *testing.T) {
	repos := NewRepositories(openSeededDatabaseForTest(t))
	user := createUserForTest(t, repos, "mina@example.com")

	procedures, err := repos.Procedures.List()
	if err != nil {
		t.Fatalf("list procedures: %v", err)
	}
	entry := models.ScheduledProcedure{UserID: user.ID, ProcedureID: procedures[0].ID, ScheduledAt: time.Now()}
	if err := repos.ScheduledProcedures.Create(&entry); err != nil {
		t.Fatalf("create scheduled procedure: %v", err)
	}

	if err := repos.Users.DeleteAccountAndRelatedData(user.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := repos.Users.FindByID(user.ID); err == nil {
		t.Fatal("expected the user to be gone")
	}
	if _, found, err := repos.ScheduledProcedures.FindByIDForUser(user.ID, entry.ID); err != nil || found {
		t.Fatalf("expected scheduled procedures to be gone, got found=%v err=%v", found, err)
	}
}
