// Package mockapi is a local stand-in for the patient REST backend.
package mockapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"patient-dashboard/internal/models"
)

// ErrNotFound is returned when a patient or document does not exist.
var ErrNotFound = errors.New("not found")

// Store persists patients and their documents.
type Store interface {
	List(ctx context.Context) ([]models.PatientRecord, error)
	Create(ctx context.Context, rec *models.PatientRecord, doc *models.PatientDocument) error
	Document(ctx context.Context, patientID string) (*models.PatientDocument, error)
}

// Compile-time checks
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)

// MemoryStore keeps patients in insertion order for the life of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []models.PatientRecord
	documents map[string]models.PatientDocument
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[string]models.PatientDocument)}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PatientRecord(nil), s.records...), nil
}

func (s *MemoryStore) Create(ctx context.Context, rec *models.PatientRecord, doc *models.PatientDocument) error {
	now := time.Now()
	rec.EnsureID()
	rec.CreatedAt, rec.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc != nil {
		doc.EnsureID()
		doc.PatientID = rec.ID
		doc.CreatedAt, doc.UpdatedAt = now, now
		s.documents[rec.ID] = *doc
		// list entries only need to know a document exists
		rec.Document = &models.PatientDocument{BaseModel: doc.BaseModel, PatientID: rec.ID, FileName: doc.FileName, FileType: doc.FileType}
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) Document(ctx context.Context, patientID string) (*models.PatientDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

// GormStore keeps patients in MySQL or Postgres through gorm.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore wraps an opened, migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) List(ctx context.Context) ([]models.PatientRecord, error) {
	var records []models.PatientRecord
	err := s.DB.WithContext(ctx).
		Preload("Document", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "patient_id", "file_name", "file_type", "created_at", "updated_at")
		}).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *GormStore) Create(ctx context.Context, rec *models.PatientRecord, doc *models.PatientDocument) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Document").Create(rec).Error; err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		doc.PatientID = rec.ID
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		rec.Document = doc
		return nil
	})
}

func (s *GormStore) Document(ctx context.Context, patientID string) (*models.PatientDocument, error) {
	var doc models.PatientDocument
	if err := s.DB.WithContext(ctx).First(&doc, "patient_id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}
