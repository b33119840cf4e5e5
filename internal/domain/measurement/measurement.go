// Package measurement defines the glucose and blood pressure readings page
// and the chart series derived from it.
package measurement

import (
	"sort"
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/status"
)

// Schema returns the measurements page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "measurements",
		Singular: "measurement",
		Path:     "/measurements",
		Fields: []resource.Field{
			{Name: "date", Label: "Date", Kind: resource.Date, Required: true, Searchable: true},
			{Name: "time", Label: "Time", Kind: resource.Time, Required: true},
			{Name: "glucose", Label: "Glucose (mg/dL)", Kind: resource.Integer, Required: true},
			{Name: "systolic", Label: "Systolic pressure", Kind: resource.Integer, Required: true},
			{Name: "diastolic", Label: "Diastolic pressure", Kind: resource.Integer, Required: true},
			{Name: "notes", Label: "Notes", Searchable: true},
		},
		Classify: classify,
		Format: func(r resource.Record) map[string]string {
			return map[string]string{"date": format.Date(r.String("date"))}
		},
	}
}

func classify(r resource.Record, _ time.Time) map[string]string {
	g, _ := r.Float("glucose")
	sys, _ := r.Int("systolic")
	dia, _ := r.Int("diastolic")
	return map[string]string{
		"glucose":  status.Glucose(g),
		"pressure": status.BloodPressure(sys, dia),
	}
}

// Point is one reading on the chart.
type Point struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Label     string  `json:"label"`
	Glucose   float64 `json:"glucose"`
	Systolic  int64   `json:"systolic"`
	Diastolic int64   `json:"diastolic"`
}

// Series returns the readings ordered by date and time, oldest first. The
// records slice is left as it is.
func Series(records []resource.Record) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		p := Point{
			ID:    r.ID,
			Date:  r.String("date"),
			Time:  r.String("time"),
			Label: format.Date(r.String("date")),
		}
		p.Glucose, _ = r.Float("glucose")
		p.Systolic, _ = r.Int("systolic")
		p.Diastolic, _ = r.Int("diastolic")
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Time < points[j].Time
	})
	return points
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"date": "2023-06-01", "time": "08:00",
			"glucose": int64(95), "systolic": int64(120), "diastolic": int64(80),
			"notes": "Em jejum",
		}),
		resource.NewRecord(2, map[string]any{
			"date": "2023-06-02", "time": "18:30",
			"glucose": int64(110), "systolic": int64(130), "diastolic": int64(85),
			"notes": "Após jantar",
		}),
		resource.NewRecord(3, map[string]any{
			"date": "2023-06-03", "time": "08:15",
			"glucose": int64(90), "systolic": int64(125), "diastolic": int64(82),
			"notes": "Em jejum",
		}),
	}
}
