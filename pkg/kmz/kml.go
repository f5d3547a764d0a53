// Package kmz reads and writes KMZ archives: zip containers holding a
// single KML point-feature document. The reader side feeds the legacy
// placemark extractor; the writer side renders the per-region exports.
package kmz

import (
	"encoding/xml"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

// Namespace is the KML 2.2 XML namespace.
const Namespace = "http://www.opengis.net/kml/2.2"

// DocumentName is the canonical name of the KML document inside a KMZ.
const DocumentName = "doc.kml"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// KML is the root element of a generated document.
type KML struct {
	XMLName  xml.Name `xml:"kml"`
	Xmlns    string   `xml:"xmlns,attr"`
	Document Document `xml:"Document"`
}

// Document is the body of a generated KML file.
type Document struct {
	Name       string      `xml:"name"`
	Style      *Style      `xml:"Style,omitempty"`
	Schema     *Schema     `xml:"Schema,omitempty"`
	Placemarks []Placemark `xml:"Placemark"`
}

// Style describes the shared placemark icon.
type Style struct {
	ID       string `xml:"id,attr"`
	IconHref string `xml:"IconStyle>Icon>href"`
}

// Schema declares the extended-data fields carried by every placemark.
type Schema struct {
	Name   string        `xml:"name,attr"`
	ID     string        `xml:"id,attr"`
	Fields []SchemaField `xml:"SimpleField"`
}

// SchemaField is one declared extended-data field.
type SchemaField struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

// Placemark is one generated point feature.
type Placemark struct {
	Name        string     `xml:"name"`
	StyleURL    string     `xml:"styleUrl,omitempty"`
	SchemaData  SchemaData `xml:"ExtendedData>SchemaData"`
	Coordinates string     `xml:"Point>coordinates"`
}

// SchemaData binds a placemark's field values to the document schema.
type SchemaData struct {
	SchemaURL string       `xml:"schemaUrl,attr"`
	Values    []SimpleData `xml:"SimpleData"`
}

// SimpleData is a single named field value. Empty values are rendered
// explicitly rather than omitted; every feature carries the full field set.
type SimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// NewKML returns a document shell with the namespace set.
func NewKML(name string) *KML {
	return &KML{
		Xmlns:    Namespace,
		Document: Document{Name: name},
	}
}

// Bytes renders the document as indented XML with a declaration header.
// Rendering is deterministic for identical input.
func (k *KML) Bytes() ([]byte, error) {
	body, err := xml.MarshalIndent(k, "", "  ")
	if err != nil {
		return nil, errors.NewParseError("kml", "", "marshal failed", err)
	}
	return append([]byte(xmlHeader), body...), nil
}
