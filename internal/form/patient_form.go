// Package form implements the add-patient modal's form: field values, inline errors and
// the submit lifecycle.
package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"patient-dashboard/internal/apiclient"
	"patient-dashboard/internal/models"
	"patient-dashboard/internal/validation"
)

// DefaultSubmitTimeout bounds one submission when no timeout is configured.
const DefaultSubmitTimeout = 10 * time.Second

var (
	ErrSubmitInFlight      = errors.New("a submission is already in flight")
	ErrSubmissionDiscarded = errors.New("submission discarded: the form was closed")
	ErrFormClosed          = errors.New("form is closed")
	ErrUnknownField        = errors.New("unknown field")
)

// PatientCreator sends the add-patient payload to the patient API.
type PatientCreator interface {
	CreatePatient(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error)
}

// Values is the current content of the form.
type Values struct {
	FullName    string
	Email       string
	PhoneNumber string
	Document    *models.DocumentFile
}

// Option configures a PatientForm.
type Option func(*PatientForm)

// WithSubmitTimeout bounds each submission.
func WithSubmitTimeout(d time.Duration) Option {
	return func(f *PatientForm) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failed submissions.
func WithLogger(l zerolog.Logger) Option {
	return func(f *PatientForm) {
		f.logger = l
	}
}

// PatientForm is the state of one add-patient modal. Only one submission may be in
// flight at a time.
type PatientForm struct {
	mu         sync.Mutex
	state      State
	values     Values
	errors     map[string]string
	submitErr  error
	closed     bool
	generation uint64
	cancel     context.CancelFunc

	validator *validation.Validator
	creator   PatientCreator
	onCreated func(models.Patient)
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewPatientForm creates an idle, empty form. onCreated runs once per successful submission.
func NewPatientForm(v *validation.Validator, creator PatientCreator, onCreated func(models.Patient), opts ...Option) *PatientForm {
	f := &PatientForm{
		state:     StateIdle,
		errors:    map[string]string{},
		validator: v,
		creator:   creator,
		onCreated: onCreated,
		timeout:   DefaultSubmitTimeout,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Change updates one text field and clears its error. The field is re-validated on the
// next submit only.
func (f *PatientForm) Change(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkEditableLocked(); err != nil {
		return err
	}
	switch field {
	case validation.FieldFullName:
		f.values.FullName = value
	case validation.FieldEmail:
		f.values.Email = value
	case validation.FieldPhoneNumber:
		f.values.PhoneNumber = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(f.errors, field)
	f.state = StateEditing
	return nil
}

// SetDocument selects (or, with nil, clears) the document file.
func (f *PatientForm) SetDocument(file *models.DocumentFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkEditableLocked(); err != nil {
		return err
	}
	f.values.Document = file
	delete(f.errors, validation.FieldDocumentFile)
	f.state = StateEditing
	return nil
}

// Submit validates every field and, when all pass, posts the form as multipart. On
// validation failure it returns validation.Errors without any network call, and a rejected
// document is deselected. On request failure the values are kept so the user can retry.
func (f *PatientForm) Submit(ctx context.Context) (models.Patient, error) {
	f.mu.Lock()
	if err := f.checkEditableLocked(); err != nil {
		f.mu.Unlock()
		return models.Patient{}, err
	}

	f.state = StateValidating
	values := f.values
	if errs := f.validator.Patient(validation.PatientInput{
		FullName:    values.FullName,
		Email:       values.Email,
		PhoneNumber: values.PhoneNumber,
		Document:    values.Document,
	}); errs != nil {
		f.errors = errs.Messages()
		if _, bad := errs[validation.FieldDocumentFile]; bad {
			// a rejected file is never resent; the user picks another one or none
			f.values.Document = nil
		}
		f.submitErr = nil
		f.state = StateEditing
		f.mu.Unlock()
		return models.Patient{}, errs
	}
	f.errors = map[string]string{}

	body, err := buildPayload(values)
	if err != nil {
		f.submitErr = err
		f.state = StateFailed
		f.mu.Unlock()
		return models.Patient{}, err
	}

	f.generation++
	gen := f.generation
	subCtx, cancel := context.WithTimeout(ctx, f.timeout)
	f.cancel = cancel
	f.submitErr = nil
	f.state = StateSubmitting
	f.mu.Unlock()

	patient, err := f.creator.CreatePatient(subCtx, body)
	cancel()

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.logger.Debug().Msg("discarding response for a closed add-patient form")
		return models.Patient{}, ErrSubmissionDiscarded
	}
	f.cancel = nil

	if err != nil {
		f.submitErr = err
		f.state = StateFailed
		f.mu.Unlock()
		f.logger.Error().Err(err).
			Int("status", apiclient.StatusCode(err)).
			Msg("failed to create patient")
		return models.Patient{}, fmt.Errorf("create patient: %w", err)
	}

	f.resetLocked()
	f.state = StateSucceeded
	onCreated := f.onCreated
	f.mu.Unlock()

	f.logger.Info().Str("patient_id", patient.ID.String()).Msg("patient created")
	if onCreated != nil {
		onCreated(patient)
	}
	return patient, nil
}

// Cancel closes the form. A pending submission is cancelled and its response, if it
// still arrives, is discarded.
func (f *PatientForm) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abortLocked()
	f.resetLocked()
	f.state = StateIdle
	f.closed = true
}

// Reset clears values and errors, aborting any pending submission.
func (f *PatientForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abortLocked()
	f.resetLocked()
	f.state = StateIdle
}

// State returns the current lifecycle state.
func (f *PatientForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Values returns a copy of the current values.
func (f *PatientForm) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns a copy of the field → message map.
func (f *PatientForm) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SubmitError returns the last request failure, or nil.
func (f *PatientForm) SubmitError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

// Closed reports whether Cancel was called.
func (f *PatientForm) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *PatientForm) checkEditableLocked() error {
	if f.closed {
		return ErrFormClosed
	}
	if !f.state.acceptsInput() {
		return ErrSubmitInFlight
	}
	return nil
}

func (f *PatientForm) abortLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
}

func (f *PatientForm) resetLocked() {
	f.values = Values{}
	f.errors = map[string]string{}
	f.submitErr = nil
}

func buildPayload(v Values) (*apiclient.MultipartBody, error) {
	body := apiclient.NewMultipartBody()
	fields := []struct{ name, value string }{
		{validation.FieldFullName, strings.TrimSpace(v.FullName)},
		{validation.FieldEmail, strings.TrimSpace(v.Email)},
		{validation.FieldPhoneNumber, strings.TrimSpace(v.PhoneNumber)},
	}
	for _, field := range fields {
		if err := body.AddField(field.name, field.value); err != nil {
			return nil, err
		}
	}
	if !v.Document.Empty() {
		if err := body.AddFile(validation.FieldDocumentFile, v.Document.Filename, bytes.NewReader(v.Document.Content)); err != nil {
			return nil, err
		}
	}
	if err := body.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return body, nil
}
