// Package refdata holds the closed reference lists the service
// validates against: the drug formulary and the doctor specialities.
// Both ship with built-in defaults and can be overridden from JSON
// files at startup.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultSearchLimit caps how many names a search returns.
const DefaultSearchLimit = 7

// defaultDrugs is the built-in formulary.
var defaultDrugs = []string{
	"Acyclovir",
	"Ambroxol",
	"Amoxicillin",
	"Atenolol",
	"Atorvastatin",
	"Bisoprolol",
	"Chloramphenicol",
	"Ciprofloxacin",
	"Clarithromycin",
	"Diclofenac",
	"Doxycycline",
	"Enalapril",
	"Fluconazole",
	"Gabapentin",
	"Hydrochlorothiazide",
	"Ibuprofen",
	"Lisinopril",
	"Loperamide",
	"Metformin",
	"Nifedipine",
	"Omeprazole",
	"Paracetamol",
	"Ramipril",
	"Simvastatin",
	"Valsartan",
}

// defaultSpecialities is the built-in speciality list.
var defaultSpecialities = []string{
	"Allergist",
	"Cardiologist",
	"Dermatologist",
	"Endocrinologist",
	"Gastroenterologist",
	"General Practitioner",
	"Neurologist",
	"Oncologist",
	"Ophthalmologist",
	"Otolaryngologist",
	"Pediatrician",
	"Psychiatrist",
	"Pulmonologist",
	"Rheumatologist",
	"Surgeon",
	"Therapist",
	"Traumatologist",
	"Urologist",
}

// List is an immutable, case-insensitive name list.
type List struct {
	names []string
	index map[string]string // lowercased name -> canonical name
}

// NewList builds a List from names, deduplicating case-insensitively
// and sorting the canonical names.
func NewList(names []string) *List {
	index := make(map[string]string, len(names))
	var canonical []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = name
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)
	return &List{names: canonical, index: index}
}

// Contains reports whether name is in the list, ignoring case.
func (l *List) Contains(name string) bool {
	_, ok := l.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Canonical returns the list's spelling of name and whether it exists.
func (l *List) Canonical(name string) (string, bool) {
	canonical, ok := l.index[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// All returns every name in sorted order.
func (l *List) All() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Search returns up to limit names containing the query as a
// case-insensitive substring. A non-positive limit uses
// DefaultSearchLimit. An empty query returns the first names in order.
func (l *List) Search(query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]string, 0, limit)
	for _, name := range l.names {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		matches = append(matches, name)
		if len(matches) == limit {
			break
		}
	}
	return matches
}

// Registry bundles the drug and speciality lists.
type Registry struct {
	Drugs        *List
	Specialities *List
}

// NewRegistry returns a registry backed by the built-in lists.
func NewRegistry() *Registry {
	return &Registry{
		Drugs:        NewList(defaultDrugs),
		Specialities: NewList(defaultSpecialities),
	}
}

// Load returns a registry with either list replaced by names read from
// a JSON file (an array of strings). Empty paths keep the defaults.
func Load(drugFile, specialityFile string) (*Registry, error) {
	reg := NewRegistry()

	if drugFile != "" {
		names, err := loadNames(drugFile)
		if err != nil {
			return nil, fmt.Errorf("load drug list: %w", err)
		}
		reg.Drugs = NewList(names)
	}
	if specialityFile != "" {
		names, err := loadNames(specialityFile)
		if err != nil {
			return nil, fmt.Errorf("load speciality list: %w", err)
		}
		reg.Specialities = NewList(names)
	}
	return reg, nil
}

func loadNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s contains no names", path)
	}
	return names, nil
}
