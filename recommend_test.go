package main

import (
	"math"
	"testing"
)

func testRecipe(title string, mutate func(*recipe)) recipe {
	r := recipe{Title: title, Tags: []string{}, Ingredients: []string{}}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

/* ─── Recipe eligibility ─────────────────────────────────────────────── */

// TestRecipeEligible_AllergySubstring verifies the allergy match is a
// case-insensitive substring over ingredient names: "nut" must exclude
// "Peanut butter".
func TestRecipeEligible_AllergySubstring(t *testing.T) {
	p := profile{Allergies: []string{"nut"}}
	r := testRecipe("Satay", func(r *recipe) {
		r.Ingredients = []string{"Chicken", "Peanut butter"}
	})
	if recipeEligible(p, r) {
		t.Error("expected allergy 'nut' to exclude recipe containing 'Peanut butter'")
	}
}

func TestRecipeEligible_DietaryTagSubstring(t *testing.T) {
	p := profile{DietaryTags: []string{"pork"}}
	excluded := testRecipe("Carbonara", func(r *recipe) {
		r.Tags = []string{"Contains Pork", "pasta"}
	})
	if recipeEligible(p, excluded) {
		t.Error("expected dietary restriction to exclude a matching tag")
	}

	kept := testRecipe("Margherita", func(r *recipe) {
		r.Tags = []string{"vegetarian"}
	})
	if !recipeEligible(p, kept) {
		t.Error("expected recipe without matching tags to stay eligible")
	}
}

// TestRecipeEligible_CuisinePreference verifies the second-pass cuisine
// filter: with preferences set, only exact (case-insensitive) matches pass;
// with none set, every cuisine passes.
func TestRecipeEligible_CuisinePreference(t *testing.T) {
	italian := testRecipe("Lasagna", func(r *recipe) { r.CuisineType = sptr("Italian") })
	thai := testRecipe("Pad Thai", func(r *recipe) { r.CuisineType = sptr("thai") })
	untagged := testRecipe("Stew", nil)

	picky := profile{CuisinePrefs: []string{"THAI"}}
	if recipeEligible(picky, italian) {
		t.Error("expected non-preferred cuisine to be excluded")
	}
	if !recipeEligible(picky, thai) {
		t.Error("expected case-insensitive cuisine match to pass")
	}
	if recipeEligible(picky, untagged) {
		t.Error("expected untagged cuisine to be excluded when preferences exist")
	}

	open := profile{}
	if !recipeEligible(open, italian) || !recipeEligible(open, untagged) {
		t.Error("expected all cuisines eligible without preferences")
	}
}

/* ─── Plan eligibility ───────────────────────────────────────────────── */

func TestPlanEligible(t *testing.T) {
	cases := []struct {
		name string
		p    profile
		plan workoutPlan
		want bool
	}{
		{
			"beginner excluded from advanced",
			profile{Experience: sptr("beginner")},
			workoutPlan{Difficulty: sptr("advanced")},
			false,
		},
		{
			"intermediate allowed advanced",
			profile{Experience: sptr("intermediate")},
			workoutPlan{Difficulty: sptr("advanced")},
			true,
		},
		{
			"duration gap over 30 excluded",
			profile{WorkoutDuration: iptr(30)},
			workoutPlan{Duration: iptr(75)},
			false,
		},
		{
			"duration gap of exactly 30 allowed",
			profile{WorkoutDuration: iptr(30)},
			workoutPlan{Duration: iptr(60)},
			true,
		},
		{
			"missing fields never exclude",
			profile{},
			workoutPlan{Difficulty: sptr("advanced"), Duration: iptr(120)},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := planEligible(tc.p, tc.plan); got != tc.want {
				t.Errorf("planEligible = %v, want %v", got, tc.want)
			}
		})
	}
}

/* ─── Scoring ────────────────────────────────────────────────────────── */

// TestScoreRecipe_Components builds the score up one component at a time.
func TestScoreRecipe_Components(t *testing.T) {
	p := profile{Experience: sptr("easy"), CuisinePrefs: []string{"thai"}}

	base := testRecipe("Base", func(r *recipe) { r.RatingAverage = 4.0 })
	if got := scoreRecipe(profile{}, base); got != 80 {
		t.Errorf("rating-only score = %.1f, want 80", got)
	}

	capped := testRecipe("Capped", func(r *recipe) {
		r.MadeCount = 1000 // 100 uncapped, must clamp to 15
		r.SaveCount = 1000 // 200 uncapped, must clamp to 10
	})
	if got := scoreRecipe(profile{}, capped); got != 25 {
		t.Errorf("capped popularity score = %.1f, want 25", got)
	}

	matched := testRecipe("Matched", func(r *recipe) {
		r.Difficulty = sptr("Easy")
		r.CuisineType = sptr("Thai")
	})
	if got := scoreRecipe(p, matched); got != 25 {
		t.Errorf("experience+cuisine bonus = %.1f, want 25", got)
	}

	slow := testRecipe("Slow", func(r *recipe) {
		r.PrepTime = iptr(30)
		r.CookTime = iptr(31)
	})
	if got := scoreRecipe(profile{}, slow); got != -5 {
		t.Errorf("over-an-hour penalty = %.1f, want -5", got)
	}
}

// TestScorePlan_DurationDecay verifies the linear duration-fit term:
// max(0, 10 − delta/10).
func TestScorePlan_DurationDecay(t *testing.T) {
	p := profile{WorkoutDuration: iptr(45)}

	exact := workoutPlan{Duration: iptr(45)}
	if got := scorePlan(p, exact); got != 10 {
		t.Errorf("exact duration score = %.1f, want 10", got)
	}

	off := workoutPlan{Duration: iptr(65)}
	if got := scorePlan(p, off); math.Abs(got-8) > 1e-9 {
		t.Errorf("20-min-off score = %.1f, want 8", got)
	}

	farOff := workoutPlan{Duration: iptr(200)}
	if got := scorePlan(profile{WorkoutDuration: iptr(195)}, farOff); got != 9.5 {
		t.Errorf("score = %.1f, want 9.5", got)
	}
}

// TestScorePlan_GoalTagMatches verifies 5 points per fitness goal that
// substring-matches any plan tag.
func TestScorePlan_GoalTagMatches(t *testing.T) {
	p := profile{FitnessGoals: []string{"weight_loss", "endurance", "flexibility"}}
	plan := workoutPlan{Tags: []string{"Weight_Loss burner", "endurance builder"}}
	if got := scorePlan(p, plan); got != 10 {
		t.Errorf("two matched goals = %.1f, want 10", got)
	}
}

// TestRankRecipes_DeterministicOrder verifies filtering plus descending
// stable ordering: equal scores keep candidate order across calls.
func TestRankRecipes_DeterministicOrder(t *testing.T) {
	p := profile{Allergies: []string{"shrimp"}}
	candidates := []recipe{
		testRecipe("Low", func(r *recipe) { r.RatingAverage = 2 }),
		testRecipe("TieA", func(r *recipe) { r.RatingAverage = 4 }),
		testRecipe("Excluded", func(r *recipe) {
			r.RatingAverage = 5
			r.Ingredients = []string{"Shrimp paste"}
		}),
		testRecipe("TieB", func(r *recipe) { r.RatingAverage = 4 }),
	}

	for i := 0; i < 3; i++ {
		ranked := rankRecipes(p, candidates)
		if len(ranked) != 3 {
			t.Fatalf("len(ranked) = %d, want 3", len(ranked))
		}
		wantedTitles := []string{"TieA", "TieB", "Low"}
		for j, want := range wantedTitles {
			if ranked[j].Title != want {
				t.Fatalf("run %d: ranked[%d] = %q, want %q", i, j, ranked[j].Title, want)
			}
		}
	}
}

/* ─── Rating aggregates ──────────────────────────────────────────────── */

// TestUpdatedRatingAverage verifies the fold: ratings [4, 5] give 4.5 at
// count 2, and out-of-range ratings fail without a value.
func TestUpdatedRatingAverage(t *testing.T) {
	avg, err := updatedRatingAverage(0, 0, 4)
	if err != nil || avg != 4 {
		t.Fatalf("first rating: avg = %.2f err = %v, want 4, nil", avg, err)
	}
	avg, err = updatedRatingAverage(avg, 1, 5)
	if err != nil || avg != 4.5 {
		t.Fatalf("second rating: avg = %.2f err = %v, want 4.5, nil", avg, err)
	}

	for _, bad := range []float64{0.99, 5.01, -1, 0, 6} {
		if _, err := updatedRatingAverage(4.5, 2, bad); err == nil {
			t.Errorf("rating %.2f: expected an error", bad)
		}
	}

	// Boundaries are inclusive.
	for _, edge := range []float64{1.0, 5.0} {
		if _, err := updatedRatingAverage(4.5, 2, edge); err != nil {
			t.Errorf("rating %.1f: unexpected error %v", edge, err)
		}
	}
}

func TestHistogramBucket(t *testing.T) {
	cases := []struct {
		rating float64
		want   string
	}{
		{1.0, "1"}, {3.4, "3"}, {3.5, "4"}, {4.9, "5"}, {5.0, "5"},
	}
	for _, tc := range cases {
		if got := histogramBucket(tc.rating); got != tc.want {
			t.Errorf("histogramBucket(%.1f) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

/* ─── Popularity ─────────────────────────────────────────────────────── */

func TestRankPopularRecipes(t *testing.T) {
	a := testRecipe("HighRating", func(r *recipe) { r.RatingAverage = 5 })       // 3.0
	b := testRecipe("MuchMade", func(r *recipe) { r.MadeCount = 20 })            // 6.0
	c := testRecipe("Saved", func(r *recipe) { r.SaveCount = 10 })               // 1.0
	ranked := rankPopularRecipes([]recipe{a, b, c}, 2)
	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2", len(ranked))
	}
	if ranked[0].Title != "MuchMade" || ranked[1].Title != "HighRating" {
		t.Errorf("order = [%s, %s], want [MuchMade, HighRating]", ranked[0].Title, ranked[1].Title)
	}
}
