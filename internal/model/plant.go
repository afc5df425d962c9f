// Package model defines the plant record types shared across the pipeline.
package model

// PlantRecord is a single input record: a Swedish common name paired with a
// Latin botanical name. Input records are read-only; duplicates are processed
// independently.
type PlantRecord struct {
	SwedishName string `json:"swedishName"`
	LatinName   string `json:"latinName"`
}

// Resolution is the outcome of resolving a name against World Flora Online.
// IsAccepted is always the negation of IsSynonym. HasMatch=false means the
// taxonomy service had no usable result; AcceptedName then falls back to the
// input name and the accepted/synonym flags are a degraded-success sentinel,
// not a resolved fact. Callers must check HasMatch.
type Resolution struct {
	IsAccepted   bool   `json:"isAccepted"`
	IsSynonym    bool   `json:"isSynonym"`
	AcceptedName string `json:"acceptedName"`
	WFOID        string `json:"wfoId,omitempty"`
	HasMatch     bool   `json:"hasMatch"`
}

// PhotoSet holds aggregated photo URLs for one taxon. The two lists are
// mutually exclusive after aggregation: no URL appears in both. TaxonPhotos
// is capped at aggregation time, ObservationPhotos is capped at selection time.
type PhotoSet struct {
	TaxonPhotos       []string `json:"taxonPhotos"`
	ObservationPhotos []string `json:"observationPhotos"`
}

// EnrichedPlantRecord is the output record: the input fields plus the name
// actually usable for photo lookup and the optional enrichment payloads.
// ManualPhotos is a human-curated override that, when present, replaces the
// automatic pools entirely at selection time.
type EnrichedPlantRecord struct {
	SwedishName       string      `json:"swedishName"`
	LatinName         string      `json:"latinName"`
	SearchName        string      `json:"searchName"`
	WFOData           *Resolution `json:"wfoData,omitempty"`
	TaxonPhotos       []string    `json:"taxonPhotos,omitempty"`
	ObservationPhotos []string    `json:"observationPhotos,omitempty"`
	ManualPhotos      []string    `json:"manualPhotos,omitempty"`

	// Images is populated by the quiz consumer when a display selection has
	// been computed; the pipeline itself never writes it.
	Images []string `json:"images,omitempty"`
}
