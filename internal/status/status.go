// Package status derives the display labels shown next to records: glucose
// and blood pressure categories, past/upcoming dates, reminder priority and
// low stock warnings. Every function is pure.
package status

import (
	"strings"
	"time"
)

// Glucose categories, fasting mg/dL.
const (
	Hypoglycemia = "Hypoglycemia"
	Normal       = "Normal"
	PreDiabetes  = "Pre-diabetes"
	Diabetes     = "Diabetes"
)

// Blood pressure categories.
const (
	Elevated           = "Elevated"
	HypertensionStage1 = "Hypertension Stage 1"
	HypertensionStage2 = "Hypertension Stage 2"
	HypertensiveCrisis = "Hypertensive Crisis"
)

// Glucose classifies a glucose reading in mg/dL. The ranges are closed on
// whole numbers, so a fractional reading between two ranges (99.5) falls
// through to Diabetes.
func Glucose(mgdl float64) string {
	switch {
	case mgdl < 70:
		return Hypoglycemia
	case mgdl >= 70 && mgdl <= 99:
		return Normal
	case mgdl >= 100 && mgdl <= 125:
		return PreDiabetes
	default:
		return Diabetes
	}
}

// BloodPressure classifies a systolic/diastolic pair in mmHg. The checks run
// in order and the first match wins. HypertensiveCrisis is the fallback for
// pairs none of the ranges cover; its clinical boundary is not defined here.
func BloodPressure(systolic, diastolic int64) string {
	switch {
	case systolic < 120 && diastolic < 80:
		return Normal
	case systolic >= 120 && systolic <= 129 && diastolic < 80:
		return Elevated
	case (systolic >= 130 && systolic <= 139) || (diastolic >= 80 && diastolic <= 89):
		return HypertensionStage1
	case systolic >= 140 || diastolic >= 90:
		return HypertensionStage2
	default:
		return HypertensiveCrisis
	}
}

// Past reports whether date (YYYY-MM-DD) at clock (HH:MM, optional) is
// strictly earlier than now, in now's location. A date without a clock
// means midnight. Unparseable dates are never past.
func Past(date, clock string, now time.Time) bool {
	at, ok := When(date, clock, now.Location())
	if !ok {
		return false
	}
	return at.Before(now)
}

// When parses a date and optional clock into a point in time.
func When(date, clock string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, false
	}
	if clock == "" {
		t, err := time.ParseInLocation("2006-01-02", date, loc)
		return t, err == nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	return t, err == nil
}

// Schedule labels a dated record as done or upcoming.
func Schedule(date, clock string, now time.Time) string {
	if Past(date, clock, now) {
		return "past"
	}
	return "upcoming"
}

// Reminder priorities.
const (
	High   = "high"
	Medium = "medium"
	Low    = "low"
)

// Priority normalizes a reminder priority; anything unknown counts as low.
// The Portuguese names used by older data are accepted too.
func Priority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case High, "alta":
		return High
	case Medium, "media", "média":
		return Medium
	default:
		return Low
	}
}

// LowStockThreshold is the largest quantity still flagged as low stock.
const LowStockThreshold = 10

// Stock returns "low" for quantities at or below LowStockThreshold and "ok"
// otherwise.
func Stock(quantity int64) string {
	if quantity <= LowStockThreshold {
		return "low"
	}
	return "ok"
}
