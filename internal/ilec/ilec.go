// Package ilec parses listing and lake pages of the ILEC World Lake Database
// into lake records.
package ilec

import (
	"io"
	"regexp"
	"strings"

	"github.com/woozymasta/lakemap/internal/geo"
	"github.com/woozymasta/lakemap/internal/lake"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is the data extracted from one lake page.
type Page struct {
	Name            string            `json:"name"`
	Location        string            `json:"location,omitempty"`
	Lat             float64           `json:"latitude,omitempty"`
	Lon             float64           `json:"longitude,omitempty"`
	HasCoordinates  bool              `json:"-"`
	Dimensions      map[string]string `json:"physical_dimensions,omitempty"`
	Zooplankton     []string          `json:"zooplankton,omitempty"`
	Benthos         []string          `json:"benthos,omitempty"`
	FishSpecies     []string          `json:"fish_species"`
	AnnualFishCatch string            `json:"annual_fish_catch,omitempty"`
}

// Lake converts the page into a lake record. It reports false when the page
// has no usable name or coordinates.
func (p Page) Lake(id lake.ID) (lake.Lake, bool) {
	if p.Name == "" || !p.HasCoordinates {
		return lake.Lake{}, false
	}

	species := p.FishSpecies
	if species == nil {
		species = []string{}
	}

	return lake.Lake{
		ID:       id,
		Name:     p.Name,
		Species:  species,
		Location: lake.Location{p.Lat, p.Lon},
	}, true
}

var fishCatchRegex = regexp.MustCompile(`Annual fish catch \(estimated\):\s*([\d,.]+\s*kg)`)

// ParseListing returns the lake page links of a search result listing.
func ParseListing(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	nodes := flatten(doc)
	i := find(nodes, 0, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, "list")
	})
	if i < 0 {
		return nil, nil
	}

	var links []string
	rows := children(nodes[i], atom.Tr, true)
	for ri, row := range rows {
		// header
		if ri == 0 {
			continue
		}
		cols := children(row, atom.Td, false)
		if len(cols) < 3 {
			continue
		}
		for _, a := range children(cols[2], atom.A, true) {
			if href := strings.TrimSpace(attr(a, "href")); href != "" {
				links = append(links, href)
				break
			}
		}
	}

	return links, nil
}

// ParseLake extracts the lake data from a lake page.
func ParseLake(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, err
	}

	nodes := flatten(doc)
	p := Page{}

	if i := find(nodes, 0, isElem(atom.H2)); i >= 0 {
		p.Name = strings.TrimSpace(text(nodes[i]))
	}

	if i := find(nodes, 0, heading(atom.H3, "LOCATION")); i >= 0 {
		if br := find(nodes, i+1, isElem(atom.Br)); br >= 0 {
			p.Location = siblingText(nodes[br])
			if lat, lon, err := geo.ParseDMSRange(p.Location); err == nil {
				p.Lat, p.Lon, p.HasCoordinates = lat, lon, true
			}
		}
	}

	if i := find(nodes, 0, heading(atom.H3, "PHYSICAL DIMENSIONS")); i >= 0 {
		if t := find(nodes, i+1, isElem(atom.Table)); t >= 0 {
			p.Dimensions = tablePairs(nodes[t])
		}
	}

	parseFauna(nodes, &p)

	if i := find(nodes, 0, heading(atom.B, "F5 FISHERY PRODUCTS")); i >= 0 {
		if br := find(nodes, i+1, isElem(atom.Br)); br >= 0 {
			if m := fishCatchRegex.FindStringSubmatch(siblingText(nodes[br])); m != nil {
				p.AnnualFishCatch = m[1]
			}
		}
	}

	return p, nil
}

// parseFauna walks the "F2 FAUNA" block up to "FISHERY PRODUCTS". Each line
// follows a <br>; the fish list sits on the line after the "Fish" label.
func parseFauna(nodes []*html.Node, p *Page) {
	start := find(nodes, 0, heading(atom.B, "F2 FAUNA"))
	if start < 0 {
		return
	}

	for i := start + 1; i < len(nodes); i++ {
		n := nodes[i]
		if n.Type != html.ElementNode {
			continue
		}
		if n.DataAtom == atom.B && strings.Contains(text(n), "FISHERY PRODUCTS") {
			return
		}
		if n.DataAtom != atom.Br {
			continue
		}

		line := siblingText(n)
		switch {
		case strings.Contains(line, "Zooplankton"):
			p.Zooplankton = split(line, ";")
		case strings.Contains(line, "Benthos"):
			p.Benthos = split(line, ";")
		case strings.Contains(line, "Fish"):
			if next := find(nodes, i+1, isElem(atom.Br)); next >= 0 {
				list := strings.ReplaceAll(siblingText(nodes[next]), "\n", " ")
				if list != "" {
					p.FishSpecies = split(list, ",")
				}
				i = next
			}
		}
	}
}

func split(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func tablePairs(table *html.Node) map[string]string {
	pairs := make(map[string]string)
	for _, row := range children(table, atom.Tr, true) {
		cells := children(row, atom.Td, false)
		if len(cells) == 2 {
			pairs[strings.TrimSpace(text(cells[0]))] = strings.TrimSpace(text(cells[1]))
		}
	}
	return pairs
}
