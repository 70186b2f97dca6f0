package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ChicagoDave/todplanner/pkg/analytics"
	"github.com/ChicagoDave/todplanner/pkg/grid"
	"github.com/ChicagoDave/todplanner/pkg/transit"
)

// Sheet names written by Workbook.
const (
	SheetSummary     = "summary"
	SheetScore       = "score"
	SheetGreen       = "green"
	SheetResidential = "residential"
	SheetCommercial  = "commercial"
	SheetWalkability = "walkability"
	SheetStations    = "stations"
)

// Workbook builds a workbook with a summary sheet, one sheet per grid layer
// and a station list. Grid sheets put the northernmost row at the top.
func Workbook(res *analytics.Result) (*xlsx.File, error) {
	f := xlsx.NewFile()

	if err := addSummary(f, res); err != nil {
		return nil, err
	}
	layers := []struct {
		name string
		g    *grid.Grid
	}{
		{SheetScore, res.Score},
		{SheetGreen, res.LandUse.Green},
		{SheetResidential, res.LandUse.Residential},
		{SheetCommercial, res.LandUse.Commercial},
		{SheetWalkability, res.Walkability},
	}
	for _, l := range layers {
		if err := addGrid(f, l.name, l.g); err != nil {
			return nil, err
		}
	}
	if err := addStations(f, res.Stations); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteXLSX saves the workbook to path.
func WriteXLSX(res *analytics.Result, path string) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

// EncodeXLSX writes the workbook to w.
func EncodeXLSX(w io.Writer, res *analytics.Result) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write")
	}
	return nil
}

func addSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %s", name)
	}
	return sheet, nil
}

func addSummary(f *xlsx.File, res *analytics.Result) error {
	sheet, err := addSheet(f, SheetSummary)
	if err != nil {
		return err
	}
	s := res.Summary
	kv := func(key string, value any) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		cell := row.AddCell()
		switch v := value.(type) {
		case float64:
			cell.SetFloat(v)
		case int:
			cell.SetInt(v)
		default:
			cell.SetString(fmt.Sprint(v))
		}
	}

	kv("run_id", res.RunID)
	kv("city", res.City)
	kv("generated_at", res.GeneratedAt.Format(time.RFC3339))
	kv("rows", s.Rows)
	kv("cols", s.Cols)
	kv("stations", s.Stations)
	kv("operational", s.Operational)
	kv("high_frequency", s.HighFrequency)
	kv("mean_score", s.MeanScore)
	kv("max_score", s.MaxScore)
	kv("high_share", s.Categories.High)
	kv("medium_share", s.Categories.Medium)
	kv("low_share", s.Categories.Low)
	kv("mean_potential", s.MeanPotential)
	kv("mean_walkability", s.MeanWalkability)
	kv("walkability_rating", s.WalkabilityRating)
	kv("green", s.LandUse.Green)
	kv("residential", s.LandUse.Residential)
	kv("commercial", s.LandUse.Commercial)
	kv("min_green_fraction", s.MinGreen)
	kv("coverage_percent", s.CoveragePercent)
	kv("coverage_rating", s.CoverageRating)

	types := make([]transit.Type, 0, len(s.StationsByType))
	for t := range s.StationsByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		kv("stations_"+t.String(), s.StationsByType[t])
	}

	if res.Impact != nil {
		env := res.Impact.Environmental
		kv("daily_ridership", env.DailyRidership)
		kv("annual_co2_saved_tons", env.AnnualCO2SavedTons)
		kv("population_served", res.Impact.Social.PopulationServed)
	}
	return nil
}

func addGrid(f *xlsx.File, name string, g *grid.Grid) error {
	sheet, err := addSheet(f, name)
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	header.AddCell().SetString("row")
	for c := 0; c < g.Cols; c++ {
		header.AddCell().SetInt(c)
	}
	for r := g.Rows - 1; r >= 0; r-- {
		row := sheet.AddRow()
		row.AddCell().SetInt(r)
		for c := 0; c < g.Cols; c++ {
			row.AddCell().SetFloat(g.At(r, c))
		}
	}
	return nil
}

func addStations(f *xlsx.File, stations []transit.Station) error {
	sheet, err := addSheet(f, SheetStations)
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range []string{"name", "type", "line", "status", "lat", "lon", "frequency"} {
		header.AddCell().SetString(h)
	}
	for _, s := range stations {
		row := sheet.AddRow()
		row.AddCell().SetString(s.Name)
		row.AddCell().SetString(s.Type.String())
		row.AddCell().SetString(s.Line)
		row.AddCell().SetString(string(s.Status))
		row.AddCell().SetFloat(s.Position.Lat)
		row.AddCell().SetFloat(s.Position.Lon)
		row.AddCell().SetInt(s.EffectiveFrequency())
	}
	return nil
}
