package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ja**@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "j***@example.com", MaskEmail("jo@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestOTPEmailByPurpose(t *testing.T) {
	subject, body := otpEmail("Jane", "123456", models.OTPPurposePasswordReset, 10*time.Minute)
	assert.Equal(t, "Password Reset Code", subject)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "Hello Jane")
	assert.Contains(t, body, "10 minutes")

	subject, _ = otpEmail("Jane", "123456", models.OTPPurposeEmailVerification, time.Minute)
	assert.Equal(t, "Verify Your Email", subject)

	subject, _ = otpEmail("Jane", "123456", models.OTPPurposeAdminLogin, time.Minute)
	assert.Equal(t, "Your Login Code", subject)
}

func TestMemoryOTPStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOTPStore()

	rec, err := store.Get(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Save(ctx, &models.OTPRecord{
		Identifier: "a@b.com",
		Purpose:    models.OTPPurposeAdminLogin,
		Code:       "123456",
		ExpiresAt:  time.Now().Add(time.Minute),
	}))

	n, err := store.IncrementAttempts(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	used, err := store.MarkUsed(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.True(t, used)
	used, err = store.MarkUsed(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.False(t, used)

	rec, err = store.Get(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.IsUsed)
	assert.Equal(t, 1, rec.Attempts)

	// an already expired record is not kept
	require.NoError(t, store.Save(ctx, &models.OTPRecord{
		Identifier: "a@b.com",
		Purpose:    models.OTPPurposeAdminLogin,
		ExpiresAt:  time.Now().Add(-time.Second),
	}))
	rec, err = store.Get(ctx, "a@b.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deleted []string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`), VersionId: aws.String("v1")}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newFakeS3(t *testing.T) *fakeS3 {
	t.Helper()
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials("AKID", "SECRET", ""),
	})
	require.NoError(t, err)
	return &fakeS3{S3API: s3.New(sess)}
}

func TestS3StoreUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3(t)
	store := newS3Store(fake, "docs", "us-east-1")

	obj, err := store.Upload(ctx, "clients/c/folders/f/x-report.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.s3.us-east-1.amazonaws.com/clients/c/folders/f/x-report.pdf", obj.URL)
	assert.Equal(t, "abc123", obj.ETag)
	assert.Equal(t, "v1", obj.VersionID)
	assert.Equal(t, "docs", obj.Bucket)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "application/pdf", aws.StringValue(fake.puts[0].ContentType))
	assert.Equal(t, s3.ServerSideEncryptionAes256, aws.StringValue(fake.puts[0].ServerSideEncryption))
	assert.EqualValues(t, 4, aws.Int64Value(fake.puts[0].ContentLength))

	require.NoError(t, store.Delete(ctx, obj.Key))
	assert.Equal(t, []string{obj.Key}, fake.deleted)
}

func TestS3StoreSignedURL(t *testing.T) {
	store := newS3Store(newFakeS3(t), "docs", "us-east-1")

	raw, err := store.SignedURL(context.Background(), "clients/c/report.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/clients/c/report.pdf"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

type fakeInvoiceRepo struct {
	repositories.InvoiceRepository
	overdue []models.Invoice
	err     error
	calls   int
}

func (f *fakeInvoiceRepo) MarkOverdue(_ context.Context, _ time.Time) ([]models.Invoice, error) {
	f.calls++
	return f.overdue, f.err
}

type recordedEvent struct {
	adminID   primitive.ObjectID
	eventType string
	message   string
}

type recordingNotifier struct {
	events []recordedEvent
}

func (n *recordingNotifier) Notify(adminID primitive.ObjectID, eventType, message string, _ interface{}) {
	n.events = append(n.events, recordedEvent{adminID, eventType, message})
}

func TestSchedulerMarkOverdueInvoices(t *testing.T) {
	adminA, adminB := primitive.NewObjectID(), primitive.NewObjectID()
	repo := &fakeInvoiceRepo{overdue: []models.Invoice{
		{ID: primitive.NewObjectID(), AdminID: adminA, InvoiceNumber: "INV-1"},
		{ID: primitive.NewObjectID(), AdminID: adminB, InvoiceNumber: "INV-2"},
	}}
	notifier := &recordingNotifier{}
	m := metrics.New("test")

	s := NewScheduler(repo, notifier, m, logger.Nop())
	n, err := s.MarkOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, adminA, notifier.events[0].adminID)
	assert.Equal(t, EventInvoiceOverdue, notifier.events[0].eventType)
	assert.Equal(t, "Invoice INV-2 is overdue", notifier.events[1].message)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvoicesOverdue))
}

func TestSchedulerMarkOverdueError(t *testing.T) {
	repo := &fakeInvoiceRepo{err: errors.New("db down")}
	s := NewScheduler(repo, nil, nil, logger.Nop())

	_, err := s.MarkOverdueInvoices(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestSchedulerAnnouncesPartialSweep(t *testing.T) {
	admin := primitive.NewObjectID()
	repo := &fakeInvoiceRepo{
		overdue: []models.Invoice{{ID: primitive.NewObjectID(), AdminID: admin, InvoiceNumber: "INV-7"}},
		err:     errors.New("connection reset"),
	}
	notifier := &recordingNotifier{}
	s := NewScheduler(repo, notifier, nil, logger.Nop())

	n, err := s.MarkOverdueInvoices(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, admin, notifier.events[0].adminID)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(&fakeInvoiceRepo{}, nil, nil, logger.Nop())
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
