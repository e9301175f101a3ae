package mockapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"patient-dashboard/internal/models"
	"patient-dashboard/internal/utils"
)

// DefaultMaxDocumentBytes caps uploads when no limit is configured.
const DefaultMaxDocumentBytes = 5 << 20

// Handler serves the patient resource.
type Handler struct {
	Store    Store
	MaxBytes int64
	Logger   zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store Store, maxBytes int64, logger zerolog.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &Handler{Store: store, MaxBytes: maxBytes, Logger: logger}
}

// CreatePatientRequest is the multipart body of POST /patients.
type CreatePatientRequest struct {
	FullName    string `form:"fullName" binding:"required,max=255"`
	Email       string `form:"email" binding:"required,email"`
	PhoneNumber string `form:"phoneNumber" binding:"required,max=32"`
}

// ListPatients returns every stored patient.
func (h *Handler) ListPatients(c *gin.Context) {
	records, err := h.Store.List(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to list patients: "+err.Error())
		return
	}

	patients := make([]models.Patient, 0, len(records))
	for _, rec := range records {
		patients = append(patients, rec.ToPatient(h.documentURL(c, rec.ID)))
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

// CreatePatient stores a patient posted as multipart, with an optional documentFile part.
func (h *Handler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doc, status, err := h.readDocument(c)
	if err != nil {
		utils.Error(c, status, err.Error())
		return
	}

	rec := models.PatientRecord{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if err := h.Store.Create(c.Request.Context(), &rec, doc); err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	h.Logger.Info().Str("patient_id", rec.ID).Bool("document", doc != nil).Msg("patient stored")
	c.JSON(http.StatusCreated, gin.H{"patient": rec.ToPatient(h.documentURL(c, rec.ID))})
}

// GetDocument streams a patient's uploaded document.
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.Store.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.NotFound(c, "Document not found")
			return
		}
		utils.InternalServerError(c, "Failed to load document: "+err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.FileType, doc.FileData)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// readDocument returns the uploaded documentFile, nil when none was sent.
func (h *Handler) readDocument(c *gin.Context) (*models.PatientDocument, int, error) {
	header, err := c.FormFile("documentFile")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("error retrieving file from form: %w", err)
	}
	if header.Size > h.MaxBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("document exceeds %s", humanize.IBytes(uint64(h.MaxBytes)))
	}

	file, err := header.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("error reading file content: %w", err)
	}
	if int64(len(data)) > h.MaxBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("document exceeds %s", humanize.IBytes(uint64(h.MaxBytes)))
	}

	return &models.PatientDocument{
		FileName: header.Filename,
		FileType: mimetype.Detect(data).String(),
		FileData: data,
	}, 0, nil
}

func (h *Handler) documentURL(c *gin.Context, patientID string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/patients/%s/document", scheme, c.Request.Host, patientID)
}
