package models

import "strings"

// Bookmaker is static metadata about a betting operator. Reliability ranks
// how seriously a book's prices should be taken; sharp books are the ones
// whose pricing tracks true probability closely enough to serve as a fair
// reference.
type Bookmaker struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Sharp       bool   `json:"sharp"`
	Reliability int    `json:"reliability"`
	ShortCode   string `json:"short_code"`
}

var knownBookmakers = map[string]Bookmaker{
	"Pinnacle":           {Name: "Pinnacle", Country: "MT", Sharp: true, Reliability: 100, ShortCode: "PIN"},
	"Betfair":            {Name: "Betfair", Country: "UK", Sharp: true, Reliability: 95, ShortCode: "BF"},
	"Matchbook":          {Name: "Matchbook", Country: "UK", Sharp: true, Reliability: 90, ShortCode: "MB"},
	"Coolbet":            {Name: "Coolbet", Country: "EE", Sharp: false, Reliability: 85, ShortCode: "COOL"},
	"Unibet":             {Name: "Unibet", Country: "MT", Sharp: false, Reliability: 80, ShortCode: "UNI"},
	"Betsson":            {Name: "Betsson", Country: "SE", Sharp: false, Reliability: 75, ShortCode: "BSS"},
	"Nordic Bet":         {Name: "Nordic Bet", Country: "SE", Sharp: false, Reliability: 75, ShortCode: "NB"},
	"888sport":           {Name: "888sport", Country: "GI", Sharp: false, Reliability: 75, ShortCode: "888"},
	"LeoVegas (SE)":      {Name: "LeoVegas (SE)", Country: "SE", Sharp: false, Reliability: 70, ShortCode: "LEO"},
	"Tipico":             {Name: "Tipico", Country: "MT", Sharp: false, Reliability: 70, ShortCode: "TIP"},
	"Betclic (FR)":       {Name: "Betclic (FR)", Country: "FR", Sharp: false, Reliability: 60, ShortCode: "BCL"},
	"Winamax (FR)":       {Name: "Winamax (FR)", Country: "FR", Sharp: false, Reliability: 60, ShortCode: "WFR"},
	"Winamax (DE)":       {Name: "Winamax (DE)", Country: "DE", Sharp: false, Reliability: 60, ShortCode: "WDE"},
	"Parions Sport (FR)": {Name: "Parions Sport (FR)", Country: "FR", Sharp: false, Reliability: 55, ShortCode: "PSF"},
}

// BookmakerMeta returns metadata for a bookmaker name. Operators not in the
// table get a neutral default so they can still be persisted and compared.
func BookmakerMeta(name string) Bookmaker {
	name = strings.TrimSpace(name)
	if meta, ok := knownBookmakers[name]; ok {
		return meta
	}
	return Bookmaker{Name: name, Reliability: 70}
}
