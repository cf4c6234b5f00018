package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK with the storage bucket
// used for client documents.
func InitFirebase(ctx context.Context, cfg *Config) (*firebase.App, error) {
	var opt option.ClientOption
	switch {
	case cfg.FirebaseCredsB64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredsB64)
		if err != nil {
			return nil, fmt.Errorf("decoding FIREBASE_CREDENTIALS_BASE64: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case cfg.FirebaseCredsFile != "":
		opt = option.WithCredentialsFile(cfg.FirebaseCredsFile)
	default:
		return nil, fmt.Errorf("firebase storage requires GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_CREDENTIALS_BASE64")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opt)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	return app, nil
}
