package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseStore keeps documents in the Firebase project's Cloud Storage
// bucket.
type FirebaseStore struct {
	bucket *storage.BucketHandle
	name   string
}

func NewFirebaseStore(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	var bucket *storage.BucketHandle
	if bucketName == "" {
		bucket, err = client.DefaultBucket()
	} else {
		bucket, err = client.Bucket(bucketName)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase storage bucket: %w", err)
	}
	return &FirebaseStore{bucket: bucket, name: bucket.BucketName()}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, key string, data []byte, contentType string) (*StoredObject, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs close %s: %w", key, err)
	}

	attrs := w.Attrs()
	obj := &StoredObject{
		Key:    key,
		URL:    fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, (&url.URL{Path: key}).EscapedPath()),
		Bucket: s.name,
	}
	if attrs != nil {
		obj.ETag = attrs.Etag
		obj.VersionID = strconv.FormatInt(attrs.Generation, 10)
	}
	return obj, nil
}

func (s *FirebaseStore) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign %s: %w", key, err)
	}
	return u, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}
