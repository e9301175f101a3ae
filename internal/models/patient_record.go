package models

// PatientRecord is a patient as stored by the development patient API.
type PatientRecord struct {
	BaseModel
	FullName    string `gorm:"size:255;not null" json:"fullName"`
	Email       string `gorm:"size:255;not null;index" json:"email"`
	PhoneNumber string `gorm:"size:32;not null" json:"phoneNumber"`

	// Relations
	Document *PatientDocument `gorm:"foreignKey:PatientID" json:"-"`
}

// PatientDocument is the file uploaded with a patient
type PatientDocument struct {
	BaseModel
	PatientID string `json:"patientId" gorm:"not null;type:varchar(36);uniqueIndex"`
	FileName  string `json:"fileName" gorm:"not null"` // Original name of the file
	FileType  string `json:"fileType" gorm:"not null"` // Sniffed MIME type
	FileData  []byte `json:"-" gorm:"not null"`        // longblob on MySQL, bytea on Postgres
}

// ToPatient converts the stored record to its wire form. documentURL is only set when the
// record carries a document.
func (r PatientRecord) ToPatient(documentURL string) Patient {
	p := Patient{
		ID:          PatientID(r.ID),
		FullName:    r.FullName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
	if r.Document != nil {
		p.DocumentURL = documentURL
	}
	return p
}
