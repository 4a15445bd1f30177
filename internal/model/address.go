// Package model defines the address records a canvass run reads, enriches and writes.
package model

import "strings"

// Orientation is the predominant geographic axis of a street.
type Orientation string

const (
	EastWest   Orientation = "East-West"
	NorthSouth Orientation = "North-South"
)

// Default tags stamped onto enriched records.
const (
	DefaultLocationType = "House"
	DefaultStatus       = "Unknown"
)

// Territory labels a canvassing zone. It is resolved once per run.
type Territory struct {
	Type   string `json:"type" yaml:"type"`
	Number string `json:"number" yaml:"number"`
}

// AddressRecord is one row of a canvass address list.
type AddressRecord struct {
	// Identity fields, verbatim from input.
	HouseNumber string `csv:"HouseNumber"`
	Street      string `csv:"Street"`
	City        string `csv:"City"`
	State       string `csv:"State"`
	ZIPCode     string `csv:"ZIPCode"`

	// Street-name modifiers; empty when absent.
	PreDirectional  string `csv:"PreDirectional,omitempty"`
	StreetSuffix    string `csv:"StreetSuffix,omitempty"`
	PostDirectional string `csv:"PostDirectional,omitempty"`

	// Latitude and Longitude hold the coordinate text as written to output.
	Latitude  string `csv:"Latitude,omitempty"`
	Longitude string `csv:"Longitude,omitempty"`

	// Contact columns are passed through when the input carries them.
	LastName    string `csv:"LastName,omitempty"`
	FirstName   string `csv:"FirstName,omitempty"`
	CountyName  string `csv:"CountyName,omitempty"`
	PhoneNumber string `csv:"PhoneNumber,omitempty"`

	TerritoryType   string `csv:"-"`
	TerritoryNumber string `csv:"-"`
	LocationType    string `csv:"-"`
	Status          string `csv:"-"`
	Address         string `csv:"-"`
	Unit            string `csv:"-"`
	Floor           string `csv:"-"`
	County          string `csv:"-"`

	Orientation Orientation `csv:"-"`

	// Parsed coordinates. Only meaningful when CoordsValid is true.
	Lat         float64 `csv:"-"`
	Lng         float64 `csv:"-"`
	CoordsValid bool    `csv:"-"`

	// Index is the zero-based position of the row in the input file.
	Index int `csv:"-"`
}

// HasCoordinates reports whether both coordinate fields carry text.
func (r *AddressRecord) HasCoordinates() bool {
	return strings.TrimSpace(r.Latitude) != "" && strings.TrimSpace(r.Longitude) != ""
}

// FullAddress composes the free-text address used as a geocoding query.
func (r *AddressRecord) FullAddress() string {
	return r.HouseNumber + " " + r.Street + ", " + r.City + ", " + r.State + ", " + r.ZIPCode
}

// Stamp applies the territory labels and the default tags to the record.
func (r *AddressRecord) Stamp(t Territory) {
	r.TerritoryType = t.Type
	r.TerritoryNumber = t.Number
	r.LocationType = DefaultLocationType
	r.Status = DefaultStatus
	r.Address = strings.TrimSpace(r.FullAddress())
	r.Unit = ""
	r.Floor = ""
	r.County = ""
}
