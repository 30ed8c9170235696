package model

import "time"

// DocumentType names an identity document accepted by the verification flow.
type DocumentType string

const (
	DocumentStudentID  DocumentType = "studentId"
	DocumentNationalID DocumentType = "nationalId"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == DocumentStudentID || t == DocumentNationalID
}

// Field returns the bson field under verification_status that stores t.
func (t DocumentType) Field() string {
	switch t {
	case DocumentStudentID:
		return "student_id"
	case DocumentNationalID:
		return "national_id"
	default:
		return ""
	}
}

// VerificationStatus starts fully unverified and only changes through the verification flow.
type VerificationStatus struct {
	StudentID        DocumentVerification `bson:"student_id"        json:"studentId"`
	NationalID       DocumentVerification `bson:"national_id"       json:"nationalId"`
	ProfessionalTest ProfessionalTest     `bson:"professional_test" json:"professionalTest"`
}

// Document returns the sub-record for t.
func (s *VerificationStatus) Document(t DocumentType) *DocumentVerification {
	switch t {
	case DocumentStudentID:
		return &s.StudentID
	case DocumentNationalID:
		return &s.NationalID
	default:
		return nil
	}
}

type DocumentVerification struct {
	Verified    bool       `bson:"verified"               json:"verified"`
	DocumentURL string     `bson:"document_url,omitempty" json:"documentUrl,omitempty"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	VerifiedAt  *time.Time `bson:"verified_at,omitempty"  json:"verifiedAt,omitempty"`
}

type ProfessionalTest struct {
	Completed   bool       `bson:"completed"              json:"completed"`
	Score       *float64   `bson:"score,omitempty"        json:"score,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
