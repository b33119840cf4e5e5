package resource

import "time"

// Row is one table line of a page: the raw record plus derived labels.
type Row struct {
	Record  Record            `json:"record"`
	Status  map[string]string `json:"status,omitempty"`
	Display map[string]string `json:"display,omitempty"`
}

// View is a render snapshot of a page.
type View struct {
	Resource  string `json:"resource"`
	State     State  `json:"state"`
	EditingID *int64 `json:"editing_id,omitempty"`
	Draft     Draft  `json:"draft"`
	Error     string `json:"error,omitempty"`
	Term      string `json:"term,omitempty"`
	Total     int    `json:"total"`
	Rows      []Row  `json:"rows"`
}

// View filters the collection by term and classifies every matching
// record against now.
func (c *Controller) View(term string, now time.Time) View {
	c.mu.Lock()
	v := View{
		Resource: c.schema.Name,
		State:    c.state,
		Draft:    c.draft.Clone(),
		Term:     term,
		Total:    len(c.records),
	}
	if c.state == Editing {
		id := c.target
		v.EditingID = &id
	}
	if c.lastErr != nil {
		v.Error = c.lastErr.Error()
	}
	matched := Filter(c.records, c.schema.Searchable(), term)
	c.mu.Unlock()

	v.Rows = make([]Row, 0, len(matched))
	for _, r := range matched {
		row := Row{Record: r}
		if c.schema.Classify != nil {
			row.Status = c.schema.Classify(r, now)
		}
		if c.schema.Format != nil {
			row.Display = c.schema.Format(r)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
