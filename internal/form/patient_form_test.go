package form

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-dashboard/internal/apiclient"
	"patient-dashboard/internal/models"
	"patient-dashboard/internal/validation"
)

// Compile-time check to ensure mockCreator implements PatientCreator
var _ PatientCreator = (*mockCreator)(nil)

// mockCreator is a func-field fake of the patient API.
type mockCreator struct {
	CreateFunc      func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error)
	CreateCallCount int32
	lastBody        atomic.Pointer[apiclient.MultipartBody]
}

func (m *mockCreator) CreatePatient(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.lastBody.Store(body)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, body)
	}
	return models.Patient{ID: "p-1", FullName: "Ana Ruiz"}, nil
}

func (m *mockCreator) calls() int32 { return atomic.LoadInt32(&m.CreateCallCount) }

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func newTestForm(t *testing.T, creator PatientCreator, onCreated func(models.Patient), opts ...Option) *PatientForm {
	t.Helper()
	v, err := validation.New(validation.DefaultRules())
	require.NoError(t, err)
	return NewPatientForm(v, creator, onCreated, opts...)
}

func fillValid(t *testing.T, f *PatientForm) {
	t.Helper()
	require.NoError(t, f.Change(validation.FieldFullName, "Ana Ruiz"))
	require.NoError(t, f.Change(validation.FieldEmail, "ana@gmail.com"))
	require.NoError(t, f.Change(validation.FieldPhoneNumber, "+1 234 567 8900"))
	require.NoError(t, f.SetDocument(&models.DocumentFile{Filename: "scan.jpg", Size: int64(len(jpegBytes)), Content: jpegBytes}))
}

func TestNewPatientForm_StartsIdle(t *testing.T) {
	f := newTestForm(t, &mockCreator{}, nil)
	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Errors())
	assert.Equal(t, Values{}, f.Values())
}

func TestSubmit_ValidFormPostsOnceWithAllFields(t *testing.T) {
	creator := &mockCreator{}
	var created []models.Patient
	f := newTestForm(t, creator, func(p models.Patient) { created = append(created, p) })

	fillValid(t, f)
	assert.Equal(t, StateEditing, f.State())

	p, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), creator.calls())
	body := creator.lastBody.Load()
	require.NotNil(t, body)
	assert.Equal(t, []string{"fullName", "email", "phoneNumber"}, body.Fields())
	assert.Equal(t, []string{"documentFile"}, body.Files())

	assert.Equal(t, models.PatientID("p-1"), p.ID)
	require.Len(t, created, 1)
	assert.Equal(t, p, created[0])

	assert.Equal(t, StateSucceeded, f.State())
	assert.Equal(t, Values{}, f.Values(), "form resets after success")
	assert.Empty(t, f.Errors())
	assert.NoError(t, f.SubmitError())
}

func TestSubmit_WithoutDocumentOmitsFilePart(t *testing.T) {
	creator := &mockCreator{}
	f := newTestForm(t, creator, nil)
	require.NoError(t, f.Change(validation.FieldFullName, "Ana Ruiz"))
	require.NoError(t, f.Change(validation.FieldEmail, "ana@gmail.com"))
	require.NoError(t, f.Change(validation.FieldPhoneNumber, "0812345678"))

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creator.lastBody.Load().Files())
}

func TestSubmit_InvalidFieldsNeverReachNetwork(t *testing.T) {
	creator := &mockCreator{}
	called := false
	f := newTestForm(t, creator, func(models.Patient) { called = true })

	require.NoError(t, f.Change(validation.FieldFullName, "Ana Ruiz"))
	require.NoError(t, f.Change(validation.FieldEmail, "ana@example.com"))
	require.NoError(t, f.SetDocument(&models.DocumentFile{Filename: "scan.pdf", Size: 10, Content: []byte("%PDF-1.7\n")}))

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Zero(t, creator.calls())
	assert.False(t, called)

	errs := f.Errors()
	assert.Len(t, errs, 3)
	assert.Contains(t, errs, validation.FieldEmail)
	assert.Contains(t, errs, validation.FieldPhoneNumber)
	assert.Contains(t, errs, validation.FieldDocumentFile)
	assert.NotContains(t, errs, validation.FieldFullName)
	assert.Equal(t, StateEditing, f.State())
	assert.Equal(t, "Ana Ruiz", f.Values().FullName)
	assert.Nil(t, f.Values().Document, "rejected document is deselected")
}

func TestSubmit_RejectedDocumentDoesNotBlockRetryWithoutFile(t *testing.T) {
	creator := &mockCreator{}
	f := newTestForm(t, creator, nil)
	fillValid(t, f)
	require.NoError(t, f.SetDocument(&models.DocumentFile{Filename: "scan.png", Size: 8, Content: []byte("\x89PNG\r\n\x1a\n")}))

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, f.Errors(), validation.FieldDocumentFile)
	assert.Equal(t, "Ana Ruiz", f.Values().FullName)

	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), creator.calls())
}

func TestSubmit_EmptyFormFromIdle(t *testing.T) {
	creator := &mockCreator{}
	f := newTestForm(t, creator, nil)

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Zero(t, creator.calls())
	assert.Len(t, f.Errors(), 3, "document is optional by default")
}

func TestChange_ClearsOnlyThatFieldsError(t *testing.T) {
	f := newTestForm(t, &mockCreator{}, nil)
	_, err := f.Submit(context.Background())
	require.Error(t, err)
	require.Contains(t, f.Errors(), validation.FieldEmail)

	require.NoError(t, f.Change(validation.FieldEmail, "not-yet-valid"))
	errs := f.Errors()
	assert.NotContains(t, errs, validation.FieldEmail, "cleared optimistically, not re-validated")
	assert.Contains(t, errs, validation.FieldFullName)
	assert.Contains(t, errs, validation.FieldPhoneNumber)
}

func TestChange_UnknownField(t *testing.T) {
	f := newTestForm(t, &mockCreator{}, nil)
	err := f.Change("ssn", "123")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, StateIdle, f.State())
}

func TestSubmit_RequestFailureKeepsValues(t *testing.T) {
	creator := &mockCreator{
		CreateFunc: func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
			return models.Patient{}, &apiclient.HTTPError{StatusCode: 500, Status: "Internal Server Error"}
		},
	}
	called := false
	f := newTestForm(t, creator, func(models.Patient) { called = true })
	fillValid(t, f)

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	var httpErr *apiclient.HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.False(t, called)
	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, "Ana Ruiz", f.Values().FullName)
	assert.Equal(t, "ana@gmail.com", f.Values().Email)
	assert.NotNil(t, f.Values().Document)
	assert.Error(t, f.SubmitError())

	// retry succeeds with the same values
	creator.CreateFunc = nil
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, int32(2), creator.calls())
}

func TestSubmit_ChangeAfterFailureReturnsToEditing(t *testing.T) {
	creator := &mockCreator{
		CreateFunc: func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
			return models.Patient{}, &apiclient.NetworkError{Method: "POST", URL: "http://api/patients", Err: errors.New("connection refused")}
		},
	}
	f := newTestForm(t, creator, nil)
	fillValid(t, f)

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsRequestFailure(err))
	require.Equal(t, StateFailed, f.State())

	require.NoError(t, f.Change(validation.FieldPhoneNumber, "+1 234 567 8901"))
	assert.Equal(t, StateEditing, f.State())
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	creator := &mockCreator{
		CreateFunc: func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
			close(started)
			<-release
			return models.Patient{ID: "p-9"}, nil
		},
	}
	f := newTestForm(t, creator, nil)
	fillValid(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, StateSubmitting, f.State())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, f.Change(validation.FieldFullName, "Other"), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), creator.calls())
	assert.Equal(t, StateSucceeded, f.State())
}

func TestCancel_DiscardsLateResponse(t *testing.T) {
	started := make(chan struct{})
	ctxErr := make(chan error, 1)
	creator := &mockCreator{
		CreateFunc: func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
			close(started)
			<-ctx.Done()
			ctxErr <- ctx.Err()
			return models.Patient{ID: "late"}, nil
		},
	}
	called := false
	f := newTestForm(t, creator, func(models.Patient) { called = true })
	fillValid(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-started

	f.Cancel()

	assert.ErrorIs(t, <-done, ErrSubmissionDiscarded)
	assert.ErrorIs(t, <-ctxErr, context.Canceled)
	assert.False(t, called)
	assert.True(t, f.Closed())
	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, Values{}, f.Values())

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormClosed)
}

func TestSubmit_TimeoutIsRequestFailure(t *testing.T) {
	creator := &mockCreator{
		CreateFunc: func(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
			<-ctx.Done()
			return models.Patient{}, &apiclient.NetworkError{Method: "POST", URL: "/patients", Err: ctx.Err()}
		},
	}
	f := newTestForm(t, creator, nil, WithSubmitTimeout(20*time.Millisecond))
	fillValid(t, f)

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, "Ana Ruiz", f.Values().FullName)
}

func TestReset_ClearsState(t *testing.T) {
	f := newTestForm(t, &mockCreator{}, nil)
	_, _ = f.Submit(context.Background())
	require.NotEmpty(t, f.Errors())

	f.Reset()
	assert.Empty(t, f.Errors())
	assert.Equal(t, StateIdle, f.State())
	assert.False(t, f.Closed())
	assert.NoError(t, f.Change(validation.FieldFullName, "Ana"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", State(42).String())
}
