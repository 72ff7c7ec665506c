package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/healthportal/internal/auth"
	"github.com/Lllllllleong/healthportal/internal/blob"
	"github.com/Lllllllleong/healthportal/internal/gcp"
	"github.com/Lllllllleong/healthportal/internal/session"
	"github.com/Lllllllleong/healthportal/internal/store"
)

// PortalConfig holds all configuration for the portal functions.
type PortalConfig struct {
	ProjectID      string
	DatabaseID     string
	APIKey         string
	StorageBucket  string
	VertexAIRegion string
	Collections    Collections
	SessionWait    time.Duration
	MirrorImages   bool
	AnnotateNotes  bool
}

// Portal bundles the services behind the portal's entry points.
type Portal struct {
	Accounts *Accounts
	Contact  *Contact
	Recorder *PredictionRecorder
	History  *History
	Cards    *ProfileCards
	Reports  *Reports
	Tokens   TokenResolver
}

// LoadPortalConfig loads and validates all necessary environment variables.
func LoadPortalConfig() (*PortalConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	apiKey := gcp.GetEnv("FIREBASE_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY environment variable must be set")
	}
	bucket := gcp.GetEnv("STORAGE_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET environment variable must be set")
	}

	wait, err := gcp.GetEnvDuration("SESSION_WAIT_TIMEOUT", session.DefaultWaitTimeout)
	if err != nil {
		return nil, err
	}
	mirror, err := gcp.GetEnvBool("PREDICTIONS_MIRROR_IMAGES", false)
	if err != nil {
		return nil, err
	}
	annotate, err := gcp.GetEnvBool("PREDICTIONS_ANNOTATE_NOTES", false)
	if err != nil {
		return nil, err
	}

	defaults := DefaultCollections()
	return &PortalConfig{
		ProjectID:      projectID,
		DatabaseID:     gcp.GetEnv("FIRESTORE_DATABASE", ""),
		APIKey:         apiKey,
		StorageBucket:  bucket,
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		Collections: Collections{
			Users:       gcp.GetEnv("USERS_COLLECTION", defaults.Users),
			Predictions: gcp.GetEnv("PREDICTIONS_SUBCOLLECTION", defaults.Predictions),
			Contacts:    gcp.GetEnv("CONTACTS_COLLECTION", defaults.Contacts),
		},
		SessionWait:   wait,
		MirrorImages:  mirror,
		AnnotateNotes: annotate,
	}, nil
}

// NewPortal creates every client the portal needs from the environment.
func NewPortal(ctx context.Context) (*Portal, error) {
	config, err := LoadPortalConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID, config.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	identityService, err := gcp.NewIdentityService(ctx, config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}

	var opts []RecorderOption
	blobs := blob.NewGCS(storageClient, config.StorageBucket)
	if config.MirrorImages {
		opts = append(opts, WithImageMirror(NewImageMirror(nil, blobs)))
	}
	if config.AnnotateNotes {
		vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		opts = append(opts, WithNoteWriter(vertexClient))
	}

	p := Assemble(auth.NewClient(identityService), store.NewFirestore(firestoreClient), blobs, *config, opts...)
	slog.Info("Portal initialized.",
		"projectId", config.ProjectID,
		"bucket", config.StorageBucket,
		"mirrorImages", config.MirrorImages,
		"annotateNotes", config.AnnotateNotes,
	)
	return p, nil
}

// AuthClient is the auth provider used by Assemble: an Authenticator that can
// also resolve ID tokens.
type AuthClient interface {
	Authenticator
	TokenResolver
}

// Assemble wires the portal services over already-built dependencies.
func Assemble(authClient AuthClient, docs store.DocumentStore, blobs blob.Store, config PortalConfig, opts ...RecorderOption) *Portal {
	collections := config.Collections
	if collections == (Collections{}) {
		collections = DefaultCollections()
	}
	history := NewHistory(docs, collections)
	cards := NewProfileCards(docs, collections)
	return &Portal{
		Accounts: NewAccounts(authClient, docs, collections),
		Contact:  NewContact(docs, collections),
		Recorder: NewPredictionRecorder(docs, RecorderConfig{Collections: collections, SessionWait: config.SessionWait}, opts...),
		History:  history,
		Cards:    cards,
		Reports:  NewReports(history, cards, blobs, collections),
		Tokens:   authClient,
	}
}
