package kmz

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
	"github.com/palmerbayless123/kmz-optimizer/pkg/geo"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
)

// kmlPlacemark mirrors the subset of a source placemark that the
// extractor cares about. Some producers emit the placemark name in a
// nonstandard <n> element, so both spellings are read.
type kmlPlacemark struct {
	Name       string           `xml:"name"`
	ShortName  string           `xml:"n"`
	Point      kmlPoint         `xml:"Point"`
	SimpleData []kmlSimpleData  `xml:"ExtendedData>SchemaData>SimpleData"`
	Data       []kmlDataElement `xml:"ExtendedData>Data"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlDataElement struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// extension field names recognized as placemark attributes rather than
// free-form extended data.
const (
	fieldAddress    = "Address"
	fieldCity       = "City"
	fieldState      = "State"
	fieldZip        = "Zip"
	fieldYearOpened = "Year Opened"
	fieldWebLink    = "Web Link"
)

// ReadFile loads a KMZ archive from disk and extracts its placemarks.
func ReadFile(path string) ([]location.Placemark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ReadArchive(filepath.Base(path), data)
}

// ReadArchive extracts placemarks from an in-memory KMZ archive. The
// archive must contain doc.kml, or failing that at least one .kml entry;
// otherwise a ParseError wrapping ErrNoDocument is returned.
func ReadArchive(name string, data []byte) ([]location.Placemark, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewParseError("kmz", name, "not a valid zip archive", err)
	}

	entry := findDocument(zr)
	if entry == nil {
		return nil, errors.NewParseError("kmz", name, "no KML document in archive", errors.ErrNoDocument)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, errors.NewParseError("kmz", name, "cannot open "+entry.Name, err)
	}
	defer rc.Close()

	return ParseKML(name, rc)
}

// findDocument prefers the canonical doc.kml entry and falls back to the
// first entry with a .kml extension.
func findDocument(zr *zip.Reader) *zip.File {
	var fallback *zip.File
	for _, f := range zr.File {
		if f.Name == DocumentName {
			return f
		}
		if fallback == nil && strings.EqualFold(filepath.Ext(f.Name), ".kml") {
			fallback = f
		}
	}
	return fallback
}

// ParseKML decodes a KML stream and returns every placemark found,
// regardless of folder nesting. Placemarks whose coordinates are missing
// or malformed are kept with zeroed coordinates and flagged invalid;
// a malformed point never fails the document.
func ParseKML(name string, r io.Reader) ([]location.Placemark, error) {
	dec := xml.NewDecoder(r)

	var placemarks []location.Placemark
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("kml", name, "malformed XML", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}

		var raw kmlPlacemark
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return nil, errors.NewParseError("kml", name, "malformed placemark", err)
		}
		placemarks = append(placemarks, convertPlacemark(raw))
	}
	return placemarks, nil
}

func convertPlacemark(raw kmlPlacemark) location.Placemark {
	pm := location.Placemark{
		Name:       placemarkName(raw),
		Extensions: map[string]string{},
	}

	lon, lat, parsed := parseCoordinates(raw.Point.Coordinates)
	if parsed && geo.ValidCoordinate(lat, lon) {
		pm.Latitude = lat
		pm.Longitude = lon
	} else {
		pm.InvalidCoordinate = true
	}

	assign := func(name, value string) {
		value = strings.TrimSpace(value)
		switch name {
		case fieldAddress:
			pm.Address = value
		case fieldCity:
			pm.City = value
		case fieldState:
			pm.State = value
		case fieldZip:
			pm.Zip = value
		case fieldYearOpened:
			pm.YearOpened = value
		case fieldWebLink:
			pm.WebLink = value
		default:
			if name != "" {
				pm.Extensions[name] = value
			}
		}
	}
	for _, sd := range raw.SimpleData {
		assign(sd.Name, sd.Value)
	}
	for _, d := range raw.Data {
		assign(d.Name, d.Value)
	}

	pm.Proposed = location.IsProposedName(pm.Name)
	return pm
}

func placemarkName(raw kmlPlacemark) string {
	if name := strings.TrimSpace(raw.Name); name != "" {
		return name
	}
	return strings.TrimSpace(raw.ShortName)
}

// parseCoordinates reads a KML coordinate tuple, "lon,lat" with an
// optional trailing altitude. Extra tokens beyond the first two are
// ignored.
func parseCoordinates(s string) (lon, lat float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lon, lat, true
}

// Split partitions placemarks into proposed and existing sets, preserving
// document order within each.
func Split(placemarks []location.Placemark) (proposed, existing []location.Placemark) {
	for _, pm := range placemarks {
		if pm.Proposed {
			proposed = append(proposed, pm)
		} else {
			existing = append(existing, pm)
		}
	}
	return proposed, existing
}
