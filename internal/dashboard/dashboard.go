// Package dashboard holds one viewer's patient list and the add-patient modal attached to it.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"patient-dashboard/internal/form"
	"patient-dashboard/internal/models"
)

// EmptyMessage is shown in place of the card grid when there are no patients.
const EmptyMessage = "No patients found. Please add a patient."

// ErrModalClosed is returned when the add-patient modal is not open.
var ErrModalClosed = errors.New("add-patient modal is not open")

// PatientFetcher loads the initial patient collection.
type PatientFetcher interface {
	GetPatients(ctx context.Context) ([]models.Patient, error)
}

// FormFactory builds a fresh add-patient form that reports created patients to onCreated.
type FormFactory func(onCreated func(models.Patient)) *form.PatientForm

// Dashboard is the in-memory patient list for one page session. New patients are
// appended locally without a re-fetch.
type Dashboard struct {
	loadMu sync.Mutex // serialises fetches

	mu       sync.Mutex
	patients []models.Patient
	appended []models.Patient // created in this session, survive a re-fetch
	loaded   bool
	loadErr  error
	modal    *form.PatientForm

	fetcher PatientFetcher
	newForm FormFactory
	logger  zerolog.Logger
}

// New creates an empty, unloaded dashboard.
func New(fetcher PatientFetcher, newForm FormFactory, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		patients: []models.Patient{},
		fetcher:  fetcher,
		newForm:  newForm,
		logger:   logger,
	}
}

// Load fetches the patient list the first time it is called. Later calls are no-ops
// unless the previous fetch failed. Concurrent first calls share one fetch.
func (d *Dashboard) Load(ctx context.Context) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	d.mu.Lock()
	loaded := d.loaded
	d.mu.Unlock()
	if loaded {
		return nil
	}
	return d.fetch(ctx)
}

// Reload replaces the list with a fresh fetch. On failure the current list is kept.
// Patients added in this session that the fetch does not return yet stay listed.
func (d *Dashboard) Reload(ctx context.Context) error {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()
	return d.fetch(ctx)
}

// fetch must be called with loadMu held.
func (d *Dashboard) fetch(ctx context.Context) error {
	list, err := d.fetcher.GetPatients(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.loadErr = err
		d.logger.Error().Err(err).Msg("failed to load patients")
		return err
	}
	d.patients = mergeAppended(list, d.appended)
	d.loaded = true
	d.loadErr = nil
	return nil
}

func mergeAppended(fetched, appended []models.Patient) []models.Patient {
	out := append(make([]models.Patient, 0, len(fetched)+len(appended)), fetched...)
	seen := make(map[models.PatientID]struct{}, len(fetched))
	for _, p := range fetched {
		if p.ID != "" {
			seen[p.ID] = struct{}{}
		}
	}
	for _, p := range appended {
		if _, ok := seen[p.ID]; ok && p.ID != "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// LoadError returns the last fetch failure, or nil.
func (d *Dashboard) LoadError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// Patients returns a copy of the displayed collection.
func (d *Dashboard) Patients() []models.Patient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Patient(nil), d.patients...)
}

// Count returns the number of displayed patients.
func (d *Dashboard) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.patients)
}

// IsEmpty reports whether the empty-state message should be shown.
func (d *Dashboard) IsEmpty() bool {
	return d.Count() == 0
}

// AddPatient appends a created patient to the displayed collection.
func (d *Dashboard) AddPatient(p models.Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients = append(d.patients, p)
	d.appended = append(d.appended, p)
}

// OpenAddPatient opens the modal with a fresh form. An already open modal is returned as is.
func (d *Dashboard) OpenAddPatient() *form.PatientForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.modal == nil {
		d.modal = d.newForm(d.AddPatient)
	}
	return d.modal
}

// CloseAddPatient cancels the modal's form, discarding any pending submission.
func (d *Dashboard) CloseAddPatient() {
	d.mu.Lock()
	modal := d.modal
	d.modal = nil
	d.mu.Unlock()

	if modal != nil {
		modal.Cancel()
	}
}

// ModalOpen reports whether the add-patient modal is showing.
func (d *Dashboard) ModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modal != nil
}

// Form returns the open modal's form, or nil.
func (d *Dashboard) Form() *form.PatientForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modal
}

// SubmitAddPatient submits the open form. On success the patient has been appended and the
// modal is closed. On failure the modal stays open with its values.
func (d *Dashboard) SubmitAddPatient(ctx context.Context) (models.Patient, error) {
	f := d.Form()
	if f == nil {
		return models.Patient{}, ErrModalClosed
	}

	p, err := f.Submit(ctx)
	if err != nil {
		return models.Patient{}, err
	}

	d.mu.Lock()
	if d.modal == f {
		d.modal = nil
	}
	d.mu.Unlock()
	return p, nil
}
