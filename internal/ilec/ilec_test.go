package ilec

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

const listingHTML = `<html><body>
<table class="data list">
  <tr><th>No</th><th>Country</th><th>Lake</th></tr>
  <tr><td>1</td><td>USA</td><td><a href="https://wldb.ilec.or.jp/Display/html/3300"> Lake Tahoe </a></td></tr>
  <tr><td>2</td><td>USA</td><td><a href="https://wldb.ilec.or.jp/Display/html/3301">Mono Lake</a></td></tr>
  <tr><td colspan="3">footer</td></tr>
</table>
<table><tr><td>1</td><td>2</td><td><a href="/ignored">x</a></td></tr></table>
</body></html>`

const lakeHTML = `<html><body>
<h2> LAKE TAHOE </h2>
<h3>A. LOCATION</h3>
Address<br>
39:00-39:12N, 120:00-120:06W
<h3>B. PHYSICAL DIMENSIONS</h3>
<table>
  <tr><td>Surface area [km2]</td><td>499</td></tr>
  <tr><td>Volume [km3]</td><td>156</td></tr>
  <tr><td>ignored</td></tr>
</table>
<h3>F. BIOLOGICAL FEATURES</h3>
<b>F2 FAUNA</b>
<br>Zooplankton: Daphnia; Bosmina
<br>Benthos: Oligochaeta; Chironomidae
<br>Fish
<br>Lake trout, Rainbow trout,
Kokanee salmon, Tahoe sucker
<b>F5 FISHERY PRODUCTS</b>
<br>Annual fish catch (estimated): 12,000 kg
</body></html>`

func TestParseListing(t *testing.T) {
	links, err := ParseListing(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"https://wldb.ilec.or.jp/Display/html/3300",
		"https://wldb.ilec.or.jp/Display/html/3301",
	}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("Expected %v, got %v", want, links)
	}

	links, err = ParseListing(strings.NewReader("<html><body><p>none</p></body></html>"))
	if err != nil || len(links) != 0 {
		t.Errorf("page without listing should yield nothing, got %v, %v", links, err)
	}
}

func TestParseLake(t *testing.T) {
	p, err := ParseLake(strings.NewReader(lakeHTML))
	if err != nil {
		t.Fatal(err)
	}

	if p.Name != "LAKE TAHOE" {
		t.Errorf("Expected name LAKE TAHOE, got %q", p.Name)
	}
	if p.Location != "39:00-39:12N, 120:00-120:06W" {
		t.Errorf("unexpected location %q", p.Location)
	}
	if !p.HasCoordinates || math.Abs(p.Lat-39.1) > 1e-9 || math.Abs(p.Lon+120.05) > 1e-9 {
		t.Errorf("unexpected coordinates %v %v (%v)", p.Lat, p.Lon, p.HasCoordinates)
	}
	if p.Dimensions["Surface area [km2]"] != "499" || len(p.Dimensions) != 2 {
		t.Errorf("unexpected dimensions %v", p.Dimensions)
	}

	wantFish := []string{"Lake trout", "Rainbow trout", "Kokanee salmon", "Tahoe sucker"}
	if !reflect.DeepEqual(p.FishSpecies, wantFish) {
		t.Errorf("Expected fish %v, got %v", wantFish, p.FishSpecies)
	}
	if len(p.Zooplankton) != 2 || len(p.Benthos) != 2 {
		t.Errorf("unexpected fauna %v / %v", p.Zooplankton, p.Benthos)
	}
	if p.AnnualFishCatch != "12,000 kg" {
		t.Errorf("unexpected fish catch %q", p.AnnualFishCatch)
	}

	l, ok := p.Lake("7")
	if !ok {
		t.Fatal("page with coordinates should convert to a lake")
	}
	if l.ID != "7" || l.Name != "LAKE TAHOE" || len(l.Species) != 4 {
		t.Errorf("unexpected lake %+v", l)
	}
}

func TestParseLakeWithoutData(t *testing.T) {
	p, err := ParseLake(strings.NewReader("<html><body><h2>Unnamed</h2></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	if p.HasCoordinates || p.FishSpecies != nil {
		t.Errorf("unexpected data %+v", p)
	}
	if _, ok := p.Lake("1"); ok {
		t.Error("page without coordinates should not convert")
	}
}
