package apprenticeship

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Openings is an ordered working set of openings that filters narrow down.
type Openings struct {
	Items []*Opening
}

// NewOpenings copies the given openings into a working set. The source slice
// is never modified by operations on the set.
func NewOpenings(items []Opening) *Openings {
	set := &Openings{Items: make([]*Opening, 0, len(items))}
	for i := range items {
		o := items[i]
		set.Items = append(set.Items, &o)
	}
	return set
}

func (o *Openings) Len() int {
	return len(o.Items)
}

// Values returns copies of the remaining openings in their current order.
func (o *Openings) Values() []Opening {
	values := make([]Opening, 0, len(o.Items))
	for _, item := range o.Items {
		values = append(values, *item)
	}
	return values
}

func (o *Openings) IDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (o *Openings) FindByID(id string) *Opening {
	for _, item := range o.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Keep drops every opening for which keep returns false and returns the ids
// of the dropped openings. Order of the remaining openings is preserved.
func (o *Openings) Keep(keep func(*Opening) bool) []string {
	var dropped []string
	kept := o.Items[:0]
	for _, item := range o.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item.ID)
	}
	// Clear the tail so dropped openings can be collected.
	for i := len(kept); i < len(o.Items); i++ {
		o.Items[i] = nil
	}
	o.Items = kept
	return dropped
}

// Exclude removes openings whose id is in ids.
func (o *Openings) Exclude(ids map[string]struct{}) []string {
	if len(ids) == 0 {
		return nil
	}
	return o.Keep(func(item *Opening) bool {
		_, found := ids[item.ID]
		return !found
	})
}

// ReportByCompany groups remaining openings by company for quick review.
func (o *Openings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range o.Items {
		report[item.CompanyID] = append(report[item.CompanyID], map[string]string{
			"id":              item.ID,
			"specialization":  item.Specialization,
			"location":        item.Location,
			"stipend":         fmt.Sprintf("%d", item.Stipend),
			"required_skills": strings.Join(item.RequiredSkills, ", "),
		})
	}
	return report
}

// Companies returns the distinct company ids in sorted order.
func (o *Openings) Companies() []string {
	seen := make(map[string]struct{})
	for _, item := range o.Items {
		seen[item.CompanyID] = struct{}{}
	}
	companies := make([]string, 0, len(seen))
	for id := range seen {
		companies = append(companies, id)
	}
	sort.Strings(companies)
	return companies
}

func (o *Openings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "openings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return "", err
	}
	return file.Name(), nil
}
