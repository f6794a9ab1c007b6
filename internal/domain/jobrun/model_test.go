package jobrun

import (
	"testing"
	"time"
)

func TestRunID(t *testing.T) {
	day := time.Date(2023, 10, 2, 18, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	if got, want := RunID("award", day), "award-20231002"; got != want {
		t.Fatalf("run id: got=%q want=%q", got, want)
	}
}
