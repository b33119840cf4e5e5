package measurement

import (
	"reflect"
	"testing"
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

func TestClassify(t *testing.T) {
	s := Schema()
	labels := s.Classify(Fixtures()[1], time.Now())
	if labels["glucose"] != "Pre-diabetes" || labels["pressure"] != "Hypertension Stage 1" {
		t.Errorf("labels = %v", labels)
	}
}

func TestClassify_FractionalGlucose(t *testing.T) {
	rec := resource.NewRecord(9, map[string]any{
		"glucose": 99.7, "systolic": float64(118), "diastolic": float64(76),
	})
	labels := Schema().Classify(rec, time.Now())
	if labels["glucose"] != "Diabetes" {
		t.Errorf("glucose label = %q, want Diabetes", labels["glucose"])
	}
	if labels["pressure"] != "Normal" {
		t.Errorf("pressure label = %q, want Normal", labels["pressure"])
	}
}

func TestSeries_SortsWithoutMutating(t *testing.T) {
	recs := []resource.Record{
		resource.NewRecord(1, map[string]any{"date": "2023-06-03", "time": "08:15", "glucose": int64(90)}),
		resource.NewRecord(2, map[string]any{"date": "2023-06-01", "time": "18:00", "glucose": int64(95)}),
		resource.NewRecord(3, map[string]any{"date": "2023-06-01", "time": "08:00", "glucose": int64(101)}),
	}
	before := make([]resource.Record, len(recs))
	for i, r := range recs {
		before[i] = r.Clone()
	}

	pts := Series(recs)
	ids := []int64{pts[0].ID, pts[1].ID, pts[2].ID}
	if !reflect.DeepEqual(ids, []int64{3, 2, 1}) {
		t.Errorf("order = %v, want [3 2 1]", ids)
	}
	if pts[0].Label != "01/06/2023" || pts[0].Glucose != 101 {
		t.Errorf("first point = %+v", pts[0])
	}
	if !reflect.DeepEqual(recs, before) {
		t.Error("Series reordered its input")
	}
}

func TestSchema_RequiresVitals(t *testing.T) {
	s := Schema()
	_, err := s.Validate(resource.Draft{"date": "2024-01-01", "time": "08:00", "glucose": "90"})
	ve, ok := err.(*resource.ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("missing = %v", ve.Fields)
	}
}
