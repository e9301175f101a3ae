package patients

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"patient-dashboard/internal/apiclient"
	"patient-dashboard/internal/models"
)

// PatientsEndpoint is the collection resource on the patient API.
const PatientsEndpoint = "/patients"

// Service talks to the patient API. It is the dashboard's fetch collaborator and the
// add-patient form's creator.
type Service struct {
	client *apiclient.Client
}

// NewService wraps an API client.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// createPatientResponse is the POST /patients reply.
type createPatientResponse struct {
	Patient *models.Patient `json:"patient"`
}

// patientList accepts both a bare array and {"patients": [...]}.
type patientList []models.Patient

func (l *patientList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []models.Patient
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapped struct {
		Patients []models.Patient `json:"patients"`
		Data     []models.Patient `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Patients != nil {
		*l = wrapped.Patients
	} else {
		*l = wrapped.Data
	}
	return nil
}

// GetPatients fetches the initial patient collection.
func (s *Service) GetPatients(ctx context.Context) ([]models.Patient, error) {
	list, err := apiclient.Get[patientList](ctx, s.client, PatientsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("get patients: %w", err)
	}
	if list == nil {
		return []models.Patient{}, nil
	}
	return list, nil
}

// CreatePatient posts the add-patient multipart payload and returns the created record.
func (s *Service) CreatePatient(ctx context.Context, body *apiclient.MultipartBody) (models.Patient, error) {
	resp, err := apiclient.Post[createPatientResponse](ctx, s.client, PatientsEndpoint, body)
	if err != nil {
		return models.Patient{}, err
	}
	if resp.Patient == nil {
		return models.Patient{}, fmt.Errorf("create patient: response has no patient")
	}
	return *resp.Patient, nil
}
