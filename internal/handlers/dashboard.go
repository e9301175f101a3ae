package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"patient-dashboard/internal/dashboard"
	"patient-dashboard/internal/form"
	"patient-dashboard/internal/middleware"
	"patient-dashboard/internal/models"
	"patient-dashboard/internal/utils"
	"patient-dashboard/internal/validation"
)

const (
	dashboardPath       = "/dashboard"
	removeDocumentField = "removeDocument"
	multipartOverhead   = 64 << 10
)

// DashboardHandler serves the patient list page and the add-patient modal.
type DashboardHandler struct {
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(v *validation.Validator, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{validator: v, logger: logger}
}

// dashboardView is the data handed to dashboard.tmpl.
type dashboardView struct {
	Patients     []models.Patient
	Count        int
	Empty        bool
	EmptyMessage string
	LoadError    string

	ModalOpen       bool
	Values          form.Values
	DocumentName    string
	Errors          map[string]string
	SubmitError     string
	Accept          string
	MaxDocumentSize string
}

// FieldChangeRequest is a single keystroke-level update of a modal field.
type FieldChangeRequest struct {
	Field string `form:"field" json:"field" binding:"required"`
	Value string `form:"value" json:"value"`
}

// Index redirects to the dashboard.
func (h *DashboardHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, dashboardPath)
}

// Show renders the dashboard, loading the patient list on first visit.
func (h *DashboardHandler) Show(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	_ = d.Load(c.Request.Context())
	h.render(c, http.StatusOK, d)
}

// OpenAddPatient opens the add-patient modal.
func (h *DashboardHandler) OpenAddPatient(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	_ = d.Load(c.Request.Context())
	d.OpenAddPatient()
	h.render(c, http.StatusOK, d)
}

// ChangeField applies one field change and returns the remaining inline errors.
func (h *DashboardHandler) ChangeField(c *gin.Context) {
	var req FieldChangeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	d, ok := h.dashboard(c)
	if !ok {
		return
	}

	f := d.OpenAddPatient()
	if err := f.Change(req.Field, req.Value); err != nil {
		switch {
		case errors.Is(err, form.ErrUnknownField):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, form.ErrSubmitInFlight):
			utils.Error(c, http.StatusConflict, err.Error())
		default:
			utils.Error(c, http.StatusGone, err.Error())
		}
		return
	}

	utils.Success(c, "Field updated", gin.H{
		"state":  f.State().String(),
		"errors": f.Errors(),
	})
}

// SubmitAddPatient handles the modal's multipart post.
func (h *DashboardHandler) SubmitAddPatient(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes())

	// the first load replaces the list, so it has to happen before anything is appended
	_ = d.Load(c.Request.Context())
	f := d.OpenAddPatient()

	if err := h.applyForm(c, f); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, form.ErrSubmitInFlight):
			h.render(c, http.StatusConflict, d)
		case errors.As(err, &tooLarge):
			utils.Error(c, http.StatusRequestEntityTooLarge,
				"Document file must be at most "+validation.HumanBytes(h.validator.Rules().MaxDocumentBytes))
		default:
			utils.BadRequest(c, err.Error())
		}
		return
	}

	patient, err := d.SubmitAddPatient(c.Request.Context())
	var verrs validation.Errors
	switch {
	case err == nil:
		h.logger.Info().Str("patient_id", patient.ID.String()).Msg("patient added to dashboard")
		c.Redirect(http.StatusSeeOther, dashboardPath)
	case errors.As(err, &verrs):
		h.render(c, http.StatusUnprocessableEntity, d)
	case errors.Is(err, form.ErrSubmitInFlight):
		h.render(c, http.StatusConflict, d)
	case errors.Is(err, form.ErrSubmissionDiscarded), errors.Is(err, form.ErrFormClosed), errors.Is(err, dashboard.ErrModalClosed):
		c.Redirect(http.StatusSeeOther, dashboardPath)
	default:
		_ = c.Error(err)
		h.render(c, http.StatusBadGateway, d)
	}
}

// CancelAddPatient closes the modal, discarding any pending submission.
func (h *DashboardHandler) CancelAddPatient(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	d.CloseAddPatient()
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

// ListPatients returns the session's displayed collection as JSON.
func (h *DashboardHandler) ListPatients(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	if err := d.Load(c.Request.Context()); err != nil {
		utils.Error(c, http.StatusBadGateway, "Failed to load patients: "+err.Error())
		return
	}

	patients := d.Patients()
	message := "Patients retrieved successfully"
	if len(patients) == 0 {
		message = dashboard.EmptyMessage
	}
	utils.Success(c, message, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}

// applyForm copies the posted fields and optional file into the form. The file part is
// read first so a broken upload leaves the form untouched.
func (h *DashboardHandler) applyForm(c *gin.Context, f *form.PatientForm) error {
	doc, err := h.readDocument(c)
	if err != nil {
		return err
	}

	for _, field := range []string{validation.FieldFullName, validation.FieldEmail, validation.FieldPhoneNumber} {
		if err := f.Change(field, c.PostForm(field)); err != nil {
			return err
		}
	}

	switch {
	case doc != nil:
		return f.SetDocument(doc)
	case c.PostForm(removeDocumentField) != "":
		return f.SetDocument(nil)
	}
	// nothing picked this time; a file kept from a failed attempt stays selected
	return nil
}

// readDocument returns the uploaded file, or nil when none was posted.
func (h *DashboardHandler) readDocument(c *gin.Context) (*models.DocumentFile, error) {
	header, err := c.FormFile(validation.FieldDocumentFile)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.DocumentFromHeader(header, h.validator.Rules().MaxDocumentBytes+1)
}

// maxBodyBytes caps a submit: the largest accepted document plus room for the text fields.
func (h *DashboardHandler) maxBodyBytes() int64 {
	return h.validator.Rules().MaxDocumentBytes + multipartOverhead
}

func (h *DashboardHandler) dashboard(c *gin.Context) (*dashboard.Dashboard, bool) {
	d, ok := middleware.GetDashboardFromContext(c)
	if !ok {
		utils.InternalServerError(c, "Dashboard session not found in context. Session middleware might be missing.")
		return nil, false
	}
	return d, true
}

func (h *DashboardHandler) render(c *gin.Context, status int, d *dashboard.Dashboard) {
	patients := d.Patients()
	view := dashboardView{
		Patients:        patients,
		Count:           len(patients),
		Empty:           len(patients) == 0,
		EmptyMessage:    dashboard.EmptyMessage,
		Accept:          h.validator.Accept(),
		MaxDocumentSize: validation.HumanBytes(h.validator.Rules().MaxDocumentBytes),
	}
	if err := d.LoadError(); err != nil {
		view.LoadError = err.Error()
	}
	if f := d.Form(); f != nil {
		view.ModalOpen = true
		view.Values = f.Values()
		view.Errors = f.Errors()
		if !view.Values.Document.Empty() {
			view.DocumentName = view.Values.Document.Filename
		}
		if err := f.SubmitError(); err != nil {
			view.SubmitError = err.Error()
		}
	}
	c.HTML(status, "dashboard.tmpl", view)
}
