package models

import (
	"encoding/json"
	"time"
)

// DefaultPredictionType tags results that arrive without a type.
const DefaultPredictionType = "unknown"

// Record is one prediction outcome as produced by a classifier, before normalization.
// Confidence is a ratio in 0..1, ConfidencePercent the same quantity in 0..100.
type Record struct {
	Filename          string   `json:"filename,omitempty"`
	Label             string   `json:"label,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	ConfidencePercent *float64 `json:"confidence_percent,omitempty"`
	Raw               any      `json:"raw,omitempty"`
	Notes             any      `json:"notes,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
}

// UnmarshalJSON decodes a record leniently: a confidence that is not a
// number, or a filename, label or image URL that is not a string, is treated
// as absent rather than failing the whole result.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Filename          json.RawMessage `json:"filename"`
		Label             json.RawMessage `json:"label"`
		Confidence        json.RawMessage `json:"confidence"`
		ConfidencePercent json.RawMessage `json:"confidence_percent"`
		Raw               any             `json:"raw"`
		Notes             any             `json:"notes"`
		ImageURL          json.RawMessage `json:"image_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Filename:          jsonString(raw.Filename),
		Label:             jsonString(raw.Label),
		Confidence:        jsonNumber(raw.Confidence),
		ConfidencePercent: jsonNumber(raw.ConfidencePercent),
		Raw:               raw.Raw,
		Notes:             raw.Notes,
		ImageURL:          jsonString(raw.ImageURL),
	}
	return nil
}

func jsonNumber(m json.RawMessage) *float64 {
	if len(m) == 0 || string(m) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(m, &f); err != nil {
		return nil
	}
	return &f
}

func jsonString(m json.RawMessage) string {
	var s string
	if err := json.Unmarshal(m, &s); err != nil {
		return ""
	}
	return s
}

// PredictionResult is what a result page hands over for persistence: a single
// record, a list of records from an archive upload, or both.
type PredictionResult struct {
	Type   string    `json:"type"`
	Single *Record   `json:"single"`
	Zip    []*Record `json:"zip"`
}

// PersistedRecord is the document appended to users/<uid>/predictions.
// Nil pointers are stored as null so absent values never read back as zero.
type PersistedRecord struct {
	ID                string    `firestore:"-" json:"id,omitempty"`
	Type              string    `firestore:"type" json:"type"`
	Model             string    `firestore:"model" json:"model"`
	Filename          *string   `firestore:"filename" json:"filename,omitempty"`
	Label             *string   `firestore:"label" json:"label,omitempty"`
	Confidence        *float64  `firestore:"confidence" json:"confidence,omitempty"`
	ConfidencePercent *float64  `firestore:"confidence_percent" json:"confidence_percent,omitempty"`
	ImageURL          *string   `firestore:"imageUrl" json:"imageUrl,omitempty"`
	CreatedAt         time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	Raw               any       `firestore:"raw" json:"raw,omitempty"`
	Notes             any       `firestore:"notes" json:"notes,omitempty"`
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name      string    `firestore:"name" json:"name"`
	Email     string    `firestore:"email" json:"email"`
	Message   string    `firestore:"message" json:"message"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}
