package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Lllllllleong/healthportal/internal/blob"
	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

const reportRowsPerPage = 40

// Reports renders a user's prediction history as a PDF health record.
type Reports struct {
	history     *History
	cards       *ProfileCards
	blobs       blob.Store
	collections Collections
	now         func() time.Time
	render      func(layout []byte, w io.Writer) error
}

// NewReports creates the report service.
func NewReports(history *History, cards *ProfileCards, blobs blob.Store, collections Collections) *Reports {
	return &Reports{
		history:     history,
		cards:       cards,
		blobs:       blobs,
		collections: collections,
		now:         time.Now,
		render:      renderPDF,
	}
}

// Generate builds the report for s, stores it and returns its URL together
// with the number of records it lists.
func (r *Reports) Generate(ctx context.Context, s *models.Session) (string, int, error) {
	if s == nil || s.UID == "" {
		return "", 0, fmt.Errorf("generate report: no signed-in user")
	}
	logCtx := slog.With("uid", s.UID)

	var (
		card    models.ProfileCard
		records []models.PersistedRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		card = r.cards.For(gctx, s)
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = r.history.List(gctx, s.UID, MaxHistoryLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		logCtx.Error("Failed to load report data", "error", err)
		return "", 0, fmt.Errorf("generate report: %w", err)
	}

	generatedAt := r.now().UTC()
	layout, err := json.Marshal(reportLayout(card, records, generatedAt))
	if err != nil {
		return "", 0, fmt.Errorf("generate report: failed to marshal layout: %w", err)
	}

	var buf bytes.Buffer
	if err := r.render(layout, &buf); err != nil {
		logCtx.Error("Failed to render report PDF", "error", err)
		return "", 0, fmt.Errorf("generate report: failed to render pdf: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s/reports/%d_%s.pdf", r.collections.Users, s.UID, generatedAt.Unix(), uuid.NewString())
	if err := r.blobs.Upload(ctx, objectName, buf.Bytes(), "application/pdf"); err != nil {
		logCtx.Error("Failed to upload report", "error", err, "object", objectName)
		return "", 0, fmt.Errorf("generate report: %w", err)
	}
	url, err := r.blobs.RetrievalURL(ctx, objectName)
	if err != nil {
		return "", 0, fmt.Errorf("generate report: %w", err)
	}

	logCtx.Info("Health report generated.", "object", objectName, "recordCount", len(records))
	return url, len(records), nil
}

func renderPDF(layout []byte, w io.Writer) error {
	conf := model.NewDefaultConfiguration()
	return api.Create(nil, bytes.NewReader(layout), w, conf)
}

// pdfLayout mirrors the JSON page description understood by pdfcpu's create command.
type pdfLayout struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func reportLayout(card models.ProfileCard, records []models.PersistedRecord, generatedAt time.Time) pdfLayout {
	layout := pdfLayout{Paper: "A4P", Origin: "UpperLeft", Pages: map[string]pdfPage{}}

	header := []pdfText{
		{Value: "Health Record", Pos: [2]float64{50, 50}, Font: pdfFont{Name: "Helvetica-Bold", Size: 18}},
		{Value: card.Name, Pos: [2]float64{50, 80}, Font: pdfFont{Name: "Helvetica", Size: 12}},
		{Value: card.Email, Pos: [2]float64{50, 96}, Font: pdfFont{Name: "Helvetica", Size: 10}},
		{Value: "Generated " + generatedAt.Format(time.RFC1123), Pos: [2]float64{50, 112}, Font: pdfFont{Name: "Helvetica", Size: 10}},
	}
	if len(records) == 0 {
		header = append(header, pdfText{Value: "No saved predictions.", Pos: [2]float64{50, 150}, Font: pdfFont{Name: "Helvetica", Size: 11}})
		layout.Pages["1"] = pdfPage{Content: pdfContent{Text: header}}
		return layout
	}

	for start := 0; start < len(records); start += reportRowsPerPage {
		pageNumber := start/reportRowsPerPage + 1
		var text []pdfText
		y := 50.0
		if pageNumber == 1 {
			text = append(text, header...)
			y = 150
		}
		end := min(start+reportRowsPerPage, len(records))
		for _, rec := range records[start:end] {
			text = append(text, pdfText{Value: reportRow(rec), Pos: [2]float64{50, y}, Font: pdfFont{Name: "Courier", Size: 9}})
			y += 16
		}
		layout.Pages[strconv.Itoa(pageNumber)] = pdfPage{Content: pdfContent{Text: text}}
	}
	return layout
}

func reportRow(rec models.PersistedRecord) string {
	date := "pending"
	if !rec.CreatedAt.IsZero() {
		date = rec.CreatedAt.UTC().Format("2006-01-02 15:04")
	}
	label := "-"
	if rec.Label != nil {
		label = *rec.Label
	}
	confidence := "-"
	if rec.ConfidencePercent != nil {
		confidence = strconv.FormatFloat(*rec.ConfidencePercent, 'f', 1, 64) + "%"
	}
	filename := ""
	if rec.Filename != nil {
		filename = *rec.Filename
	}
	return fmt.Sprintf("%s  %-6s  %-40s %7s  %s", date, rec.Type, label, confidence, filename)
}
