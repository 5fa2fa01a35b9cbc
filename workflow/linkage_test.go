package workflow

import (
	"testing"
	"time"

	"bitbucket.org/sofidex/tracing_backend/models"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestScoreLinkageCandidate(t *testing.T) {
	cases := []struct {
		name         string
		contestation models.CaseRecord
		candidate    models.CaseRecord
		want         int
	}{
		{
			name:         "surname only",
			contestation: models.CaseRecord{Surname: "Martin"},
			candidate:    models.CaseRecord{Surname: "MARTIN"},
			want:         10,
		},
		{
			name:         "accents folded",
			contestation: models.CaseRecord{Surname: "Métayer"},
			candidate:    models.CaseRecord{Surname: "METAYER"},
			want:         10,
		},
		{
			name:         "different surname scores zero regardless",
			contestation: models.CaseRecord{Surname: "Martin", GivenName: "Jean", BirthDate: datePtr(1970, 3, 5)},
			candidate:    models.CaseRecord{Surname: "Durand", GivenName: "Jean", BirthDate: datePtr(1970, 3, 5)},
			want:         0,
		},
		{
			name:         "empty surname scores zero",
			contestation: models.CaseRecord{GivenName: "Jean"},
			candidate:    models.CaseRecord{GivenName: "Jean"},
			want:         0,
		},
		{
			name:         "exact given name",
			contestation: models.CaseRecord{Surname: "Martin", GivenName: "Jean"},
			candidate:    models.CaseRecord{Surname: "Martin", GivenName: "JEAN"},
			want:         20,
		},
		{
			name:         "given name substring",
			contestation: models.CaseRecord{Surname: "Martin", GivenName: "Jean"},
			candidate:    models.CaseRecord{Surname: "Martin", GivenName: "Jean-Pierre"},
			want:         15,
		},
		{
			name:         "full identity",
			contestation: models.CaseRecord{Surname: "Martin", GivenName: "Jean", BirthDate: datePtr(1970, 3, 5)},
			candidate:    models.CaseRecord{Surname: "Martin", GivenName: "Jean", BirthDate: datePtr(1970, 3, 5)},
			want:         30,
		},
		{
			name:         "birth date mismatch adds nothing",
			contestation: models.CaseRecord{Surname: "Martin", BirthDate: datePtr(1970, 3, 5)},
			candidate:    models.CaseRecord{Surname: "Martin", BirthDate: datePtr(1971, 3, 5)},
			want:         10,
		},
	}
	for _, c := range cases {
		if got := ScoreLinkageCandidate(&c.contestation, &c.candidate); got != c.want {
			t.Fatalf("%s: score = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestBestFuzzyMatchThreshold(t *testing.T) {
	contestation := models.CaseRecord{Surname: "Martin", GivenName: "Jean"}

	// no candidate reaches the threshold
	best, _ := BestFuzzyMatch(&contestation, []models.CaseRecord{
		{ID: 1, Surname: "Durand", GivenName: "Jean"},
	})
	if best != nil {
		t.Fatalf("below-threshold candidate matched: %+v", best)
	}

	candidates := []models.CaseRecord{
		{ID: 1, Surname: "Martin"},                      // 10
		{ID: 2, Surname: "Martin", GivenName: "Jean"},   // 20
		{ID: 3, Surname: "Martin", GivenName: "Jeanne"}, // 15 (substring)
	}
	best, score := BestFuzzyMatch(&contestation, candidates)
	if best == nil || best.ID != 2 {
		t.Fatalf("best = %+v, want id 2", best)
	}
	if score != 20 {
		t.Fatalf("score = %d, want 20", score)
	}
}

// Equal scores resolve to the lowest case id: candidates arrive in ascending
// id order and only a strictly greater score displaces the current best.
func TestBestFuzzyMatchTieKeepsOldestCase(t *testing.T) {
	contestation := models.CaseRecord{Surname: "Martin", GivenName: "Jean"}
	candidates := []models.CaseRecord{
		{ID: 4, Surname: "Martin", GivenName: "Jean"},
		{ID: 9, Surname: "Martin", GivenName: "Jean"},
	}
	best, _ := BestFuzzyMatch(&contestation, candidates)
	if best == nil || best.ID != 4 {
		t.Fatalf("best = %+v, want id 4", best)
	}
}
