package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// NotesSystemPrompt frames the note written for each saved prediction.
const NotesSystemPrompt = "You write short, calm, plain-language notes that accompany an automated medical image classification. You never diagnose, you always recommend confirming the result with a qualified clinician."

// NotesUserPromptTemplate is filled with the prediction type, label and confidence.
const NotesUserPromptTemplate = `A %s classifier labelled an image as "%s"%s.

Write at most two sentences for the patient's health record:
1. What the label means in everyday words.
2. A reminder that this is a screening aid and should be reviewed by a doctor.

Return only the note text.`

// VertexClient holds the generative model used for prediction notes.
type VertexClient struct {
	NotesModel *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a new client holding the notes model.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	notesModel := baseClient.GenerativeModel("gemini-1.5-flash")
	notesModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(NotesSystemPrompt)},
	}
	notesModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: genai.Ptr[int32](160),
	}

	return &VertexClient{
		NotesModel: notesModel,
		baseClient: baseClient,
	}, nil
}

// WriteNote asks the notes model for a short note about one prediction.
func (c *VertexClient) WriteNote(ctx context.Context, predictionType, label string, confidencePercent *float64) (string, error) {
	if label == "" {
		return "", fmt.Errorf("cannot write a note without a label")
	}
	confidence := ""
	if confidencePercent != nil {
		confidence = fmt.Sprintf(" with %.1f%% confidence", *confidencePercent)
	}
	prompt := fmt.Sprintf(NotesUserPromptTemplate, predictionType, label, confidence)

	resp, err := c.NotesModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate note from gemini: %w", err)
	}
	note := extractText(resp)
	if note == "" {
		return "", fmt.Errorf("gemini returned an empty note")
	}
	return note, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
