package gazetteer

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

//go:embed data/localities.csv
var dataFS embed.FS

// Locality is a single entry of the bundled locality dataset. Entries are
// immutable after load.
type Locality struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Type      string  `json:"type"`
	District  string  `json:"district"`
	Commune   string  `json:"commune"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Suggestion is the projection of a Locality returned to callers. Label is
// "<name>, <region>".
type Suggestion struct {
	Label     string  `json:"label"`
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Type      string  `json:"type"`
	District  string  `json:"district"`
	Commune   string  `json:"commune"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Suggest projects a Locality into a Suggestion. It never fails.
func Suggest(l Locality) Suggestion {
	return Suggestion{
		Label:     fmt.Sprintf("%s, %s", l.Name, l.Region),
		Name:      l.Name,
		Region:    l.Region,
		Type:      l.Type,
		District:  l.District,
		Commune:   l.Commune,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}

// MinFragmentLen is the minimum trimmed fragment length accepted by
// FindByNameContains. Shorter fragments match most of the dataset and are
// rejected up front.
const MinFragmentLen = 2

// Gazetteer holds the locality dataset together with a lower-cased name
// index for substring search. Read-only after New; safe for concurrent use.
type Gazetteer struct {
	localities   []Locality
	loweredNames []string
}

// New builds a Gazetteer over the given localities, preserving their order.
func New(localities []Locality) *Gazetteer {
	lowered := make([]string, len(localities))
	for i, l := range localities {
		lowered[i] = strings.ToLower(l.Name)
	}
	return &Gazetteer{localities: localities, loweredNames: lowered}
}

// Load parses the bundled CSV dataset and returns a ready Gazetteer.
func Load() (*Gazetteer, error) {
	f, err := dataFS.Open("data/localities.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to open locality dataset: %w", err)
	}
	defer f.Close()

	localities, err := parseCSV(f)
	if err != nil {
		return nil, err
	}
	return New(localities), nil
}

func parseCSV(r io.Reader) ([]Locality, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	// header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	var localities []Locality
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", err)
		}

		lat, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q for %q: %w", record[5], record[0], err)
		}
		lon, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q for %q: %w", record[6], record[0], err)
		}

		localities = append(localities, Locality{
			Name:      record[0],
			Region:    record[1],
			Type:      record[2],
			District:  record[3],
			Commune:   record[4],
			Latitude:  lat,
			Longitude: lon,
		})
	}

	return localities, nil
}

// Len returns the number of localities in the dataset.
func (g *Gazetteer) Len() int {
	return len(g.localities)
}

// FindByNameContains returns up to limit localities whose name contains the
// given fragment, case-insensitively, in dataset order. Fragments shorter
// than MinFragmentLen after trimming yield an empty result.
func (g *Gazetteer) FindByNameContains(fragment string, limit int) []Locality {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if len([]rune(fragment)) < MinFragmentLen {
		return nil
	}

	var matches []Locality
	for i, lowered := range g.loweredNames {
		if strings.Contains(lowered, fragment) {
			matches = append(matches, g.localities[i])
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// FindNearest returns the locality closest to the given point, measured as
// planar Euclidean distance in degree-space. This is a coarse nearest-name
// lookup, not a geodesic computation. Ties go to the first entry
// encountered. Returns false when the dataset is empty.
func (g *Gazetteer) FindNearest(lat, lon float64) (Locality, bool) {
	if len(g.localities) == 0 {
		return Locality{}, false
	}

	best := 0
	bestDist := math.Inf(1)
	for i, l := range g.localities {
		dLat := l.Latitude - lat
		dLon := l.Longitude - lon
		dist := math.Sqrt(dLat*dLat + dLon*dLon)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return g.localities[best], true
}
