package view

import (
	"bytes"
	"html/template"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/lake"
)

// Status of the dataset as shown on the page.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Marker is one lake on the map, keyed by the lake id.
type Marker struct {
	ID       lake.ID       `json:"id"`
	Position lake.Location `json:"position"`
	Name     string        `json:"name"`
	Species  []string      `json:"species"`
	Popup    template.HTML `json:"popup"`
}

// MapView is everything the page needs to draw the map for one query.
type MapView struct {
	Center      [2]float64 `json:"center"`
	Zoom        int        `json:"zoom"`
	TileURL     string     `json:"tiles"`
	Attribution string     `json:"attribution"`
	Height      string     `json:"height"`
	Width       string     `json:"width"`

	Query   string   `json:"query"`
	Status  Status   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Total   int      `json:"total"`
	Skipped int      `json:"skipped,omitempty"`
	Markers []Marker `json:"markers"`
}

var popupTemplate = template.Must(template.New("popup").Parse(
	`<h2>{{.Name}}</h2><ul>{{range .Species}}<li>{{.}}</li>{{end}}</ul>`,
))

// MapDisplay renders the filtered lakes of a catalog onto the configured map.
type MapDisplay struct {
	Catalog *catalog.Catalog
	Map     config.Map
}

// Render derives the map view for query from the catalog's current state.
func (d MapDisplay) Render(query string) MapView {
	v := MapView{
		Zoom:        d.Map.Zoom,
		TileURL:     d.Map.TileURL,
		Attribution: d.Map.Attribution,
		Height:      d.Map.Height,
		Width:       d.Map.Width,
		Query:       query,
		Markers:     []Marker{},
	}
	if len(d.Map.Center) == 2 {
		v.Center = [2]float64{d.Map.Center[0], d.Map.Center[1]}
	}

	switch st := d.Catalog.State().(type) {
	case catalog.NotLoaded:
		v.Status = StatusLoading
		return v

	case catalog.LoadError:
		v.Status = StatusError
		v.Error = st.Reason.Error()
		return v

	case catalog.Loaded:
		v.Status = StatusReady
		v.Total = len(st.Dataset.Lakes)
		if skipped := st.Dataset.Skipped(); skipped > 0 {
			v.Status = StatusPartial
			v.Skipped = skipped
		}

		filtered := lake.Filter(st.Dataset.Lakes, query)
		v.Markers = make([]Marker, 0, len(filtered))
		for _, l := range filtered {
			v.Markers = append(v.Markers, NewMarker(l))
		}
	}

	return v
}

// NewMarker builds the marker and popup markup for a lake.
func NewMarker(l lake.Lake) Marker {
	species := l.Species
	if species == nil {
		species = []string{}
	}

	return Marker{
		ID:       l.ID,
		Position: l.Location,
		Name:     l.Name,
		Species:  species,
		Popup:    Popup(l),
	}
}

// Popup renders the lake name as a heading followed by a species list.
func Popup(l lake.Lake) template.HTML {
	var buf bytes.Buffer
	// Execute only fails on writer errors, which bytes.Buffer never returns.
	_ = popupTemplate.Execute(&buf, l)
	return template.HTML(buf.String())
}
