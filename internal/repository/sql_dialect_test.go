package repository

import "testing"

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite want LIKE got %s", got)
	}
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("nil db should fall back to LIKE, got %s", got)
	}
}

func TestBuildLikePatternEscapesWildcards(t *testing.T) {
	got := buildLikePattern(" 50%_off ")
	want := `%50\%\_off%`
	if got != want {
		t.Fatalf("pattern want %s got %s", want, got)
	}
}
