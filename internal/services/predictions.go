package services

import (
	"context"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/session"
	"github.com/Lllllllleong/healthportal/internal/store"
	"github.com/google/uuid"
)

// RecorderConfig holds configuration for the prediction recorder.
type RecorderConfig struct {
	Collections Collections
	SessionWait time.Duration
}

// PredictionRecorder persists classifier results into the signed-in user's
// prediction collection. Persistence is best effort: Save never fails, it
// reports what happened.
type PredictionRecorder struct {
	docs   store.DocumentStore
	images *ImageMirror
	notes  NoteWriter
	config RecorderConfig
}

// RecorderOption customizes a PredictionRecorder.
type RecorderOption func(*PredictionRecorder)

// WithImageMirror copies each record's source image into blob storage and
// stores the resulting URL as imageUrl.
func WithImageMirror(m *ImageMirror) RecorderOption {
	return func(r *PredictionRecorder) { r.images = m }
}

// WithNoteWriter fills in notes for records that arrive without them.
func WithNoteWriter(w NoteWriter) RecorderOption {
	return func(r *PredictionRecorder) { r.notes = w }
}

// NewPredictionRecorder creates a recorder writing through docs.
func NewPredictionRecorder(docs store.DocumentStore, config RecorderConfig, opts ...RecorderOption) *PredictionRecorder {
	if config.SessionWait <= 0 {
		config.SessionWait = session.DefaultWaitTimeout
	}
	if config.Collections == (Collections{}) {
		config.Collections = DefaultCollections()
	}
	r := &PredictionRecorder{docs: docs, config: config}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SaveReport describes the outcome of one Save call.
type SaveReport struct {
	Type         string          `json:"type"`
	SessionFound bool            `json:"sessionFound"`
	UID          string          `json:"uid,omitempty"`
	Attempted    int             `json:"attempted"`
	Saved        int             `json:"saved"`
	Failed       int             `json:"failed"`
	DocumentIDs  []string        `json:"documentIds,omitempty"`
	Failures     []RecordFailure `json:"failures,omitempty"`
}

// RecordFailure identifies a record that could not be appended.
type RecordFailure struct {
	Source   string `json:"source"` // "single" or "zip"
	Index    int    `json:"index"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error"`
}

// Save waits for a signed-in session on sessions, then appends one document
// per record: the single record first, then each zip record in order.
// Without a session within the configured wait nothing is written.
func (r *PredictionRecorder) Save(ctx context.Context, sessions session.Source, result models.PredictionResult) SaveReport {
	predictionType := result.Type
	if predictionType == "" {
		predictionType = models.DefaultPredictionType
	}
	report := SaveReport{Type: predictionType}
	logCtx := slog.With("predictionType", predictionType)

	s, ok := session.WaitForSession(ctx, sessions, r.config.SessionWait)
	if !ok {
		logCtx.Debug("No signed-in user; skipping prediction save.", "wait", r.config.SessionWait.String())
		return report
	}
	report.SessionFound = true
	report.UID = s.UID
	logCtx = logCtx.With("uid", s.UID)

	if result.Single != nil {
		r.saveItem(ctx, logCtx, s.UID, predictionType, "single", 0, *result.Single, &report)
	}
	for i, rec := range result.Zip {
		if rec == nil {
			logCtx.Error("Skipping empty prediction record.", "source", "zip", "index", i)
			report.Attempted++
			report.Failed++
			report.Failures = append(report.Failures, RecordFailure{Source: "zip", Index: i, Error: "record is null"})
			continue
		}
		r.saveItem(ctx, logCtx, s.UID, predictionType, "zip", i, *rec, &report)
	}

	if report.Attempted > 0 {
		logCtx.Info("Prediction save complete.", "attempted", report.Attempted, "saved", report.Saved, "failed", report.Failed)
	}
	return report
}

func (r *PredictionRecorder) saveItem(ctx context.Context, logCtx *slog.Logger, uid, predictionType, source string, index int, rec models.Record, report *SaveReport) {
	report.Attempted++
	doc := BuildPersistedRecord(predictionType, rec)

	if r.images != nil && rec.ImageURL != "" {
		dest := mirrorPath(r.config.Collections.PredictionsPath(uid), predictionType, rec)
		if url, ok := r.images.UploadFromURL(ctx, rec.ImageURL, dest); ok {
			doc.ImageURL = &url
		}
	}

	if r.notes != nil && doc.Notes == nil && doc.Label != nil {
		note, err := r.notes.WriteNote(ctx, predictionType, *doc.Label, doc.ConfidencePercent)
		if err != nil {
			logCtx.Warn("Could not write prediction note.", "error", err, "source", source, "index", index)
		} else {
			doc.Notes = note
		}
	}

	id, err := r.docs.AppendDocument(ctx, r.config.Collections.PredictionsPath(uid), doc)
	if err != nil {
		logCtx.Error("Failed to save prediction record.", "error", err, "source", source, "index", index, "filename", rec.Filename)
		report.Failed++
		report.Failures = append(report.Failures, RecordFailure{
			Source:   source,
			Index:    index,
			Filename: rec.Filename,
			Error:    err.Error(),
		})
		return
	}
	report.Saved++
	report.DocumentIDs = append(report.DocumentIDs, id)
	logCtx.Debug("Saved prediction record.", "documentId", id, "source", source, "index", index)
}

// BuildPersistedRecord normalizes rec into the stored document shape. Empty
// strings become absent; imageUrl starts absent.
func BuildPersistedRecord(predictionType string, rec models.Record) models.PersistedRecord {
	confidence, percent := NormalizeConfidence(rec.Confidence, rec.ConfidencePercent)
	return models.PersistedRecord{
		Type:              predictionType,
		Model:             predictionType,
		Filename:          optionalString(rec.Filename),
		Label:             optionalString(rec.Label),
		Confidence:        confidence,
		ConfidencePercent: percent,
		Raw:               rec.Raw,
		Notes:             rec.Notes,
	}
}

// NormalizeConfidence derives the missing view of a confidence value: a
// ratio in 0..1 or a percentage in 0..100. Supplied values are kept as is;
// when neither is supplied both stay absent.
func NormalizeConfidence(ratio, percent *float64) (*float64, *float64) {
	switch {
	case ratio != nil && percent != nil:
		c, p := *ratio, *percent
		return &c, &p
	case ratio != nil:
		c := *ratio
		p := c * 100
		return &c, &p
	case percent != nil:
		p := *percent
		c := p / 100
		return &c, &p
	default:
		return nil, nil
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// unsafeFileChars matches runs of characters not allowed in object names.
var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// mirrorPath places a mirrored image under the user's prediction prefix,
// e.g. users/<uid>/predictions/skin/<uuid>_scan.png.
func mirrorPath(prefix, predictionType string, rec models.Record) string {
	name := rec.Filename
	if name == "" {
		name = path.Base(strings.SplitN(rec.ImageURL, "?", 2)[0])
	}
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	if name == "" || name == "." {
		name = "image"
	}
	const maxLength = 100
	if len(name) > maxLength {
		name = name[len(name)-maxLength:]
	}
	kind := strings.Trim(unsafeFileChars.ReplaceAllString(predictionType, "_"), "_")
	if kind == "" {
		kind = models.DefaultPredictionType
	}
	return prefix + "/" + kind + "/" + uuid.NewString() + "_" + name
}
