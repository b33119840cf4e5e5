package inventory

import (
	"testing"
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

func TestClassify_LowStock(t *testing.T) {
	s := Schema()
	now := time.Now()
	low := resource.NewRecord(3, map[string]any{"quantity": int64(10)})
	ok := resource.NewRecord(4, map[string]any{"quantity": int64(11)})
	if got := s.Classify(low, now)["stock"]; got != "low" {
		t.Errorf("quantity 10: stock = %q", got)
	}
	if got := s.Classify(ok, now)["stock"]; got != "ok" {
		t.Errorf("quantity 11: stock = %q", got)
	}
}

func TestFormat_Price(t *testing.T) {
	s := Schema()
	if got := s.Format(Fixtures()[0])["price"]; got != "R$ 12,90" {
		t.Errorf("price = %q", got)
	}
	if got := s.Format(resource.NewRecord(5, nil))["price"]; got != "-" {
		t.Errorf("missing price = %q", got)
	}
}

func TestSchema_ParsesQuantityAndPrice(t *testing.T) {
	s := Schema()
	d := s.DraftFrom(Fixtures()[1])
	d["quantity"] = "8"
	d["price"] = "9,99"
	out, err := s.Validate(d)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if out["quantity"] != int64(8) || out["price"] != 9.99 {
		t.Errorf("parsed values = %#v, %#v", out["quantity"], out["price"])
	}
}
