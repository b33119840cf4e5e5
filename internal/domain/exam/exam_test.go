package exam

import "testing"

func TestSchema_ResultIsOptional(t *testing.T) {
	s := Schema()
	d := s.DraftFrom(Fixtures()[0])
	d["result"] = ""
	if _, err := s.Validate(d); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	out, err := s.ParsePartial(map[string]string{"result": "Normal"})
	if err != nil || out["result"] != "Normal" {
		t.Errorf("ParsePartial() = %v, %v", out, err)
	}
}
