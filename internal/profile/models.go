package profile

import "time"

// Gender is the closed set of values the portal accepts.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// PersonalDetails is the identity section of the applicant profile. The date
// of birth is stored in both calendars; DOBAD is authoritative for age.
type PersonalDetails struct {
	FullName     string `json:"full_name"`
	DOBAD        string `json:"dob_ad"`
	DOBBS        string `json:"dob_bs"`
	Gender       Gender `json:"gender"`
	Phone        string `json:"phone"`
	GuardianName string `json:"guardian_name"`
}

// Complete reports whether every field the verification office requires is
// present.
func (p PersonalDetails) Complete() bool {
	return p.FullName != "" &&
		p.DOBAD != "" &&
		p.Gender != "" &&
		p.Phone != "" &&
		p.GuardianName != ""
}

// AddressDetails is the residence section of the applicant profile.
type AddressDetails struct {
	Province         string `json:"province"`
	District         string `json:"district"`
	Municipality     string `json:"municipality"`
	Ward             int    `json:"ward"`
	PermanentAddress string `json:"permanent_address"`
}

func (a AddressDetails) Complete() bool {
	return a.Province != "" &&
		a.District != "" &&
		a.Municipality != "" &&
		a.Ward > 0 &&
		a.PermanentAddress != ""
}

// DocumentKind names one upload slot of the documents section.
type DocumentKind string

const (
	DocCitizenshipFront DocumentKind = "citizenship_front"
	DocCitizenshipBack  DocumentKind = "citizenship_back"
	DocPassportPhoto    DocumentKind = "passport_photo"
	DocSignature        DocumentKind = "signature"
	DocBirthCertificate DocumentKind = "birth_certificate"
)

func (k DocumentKind) IsValid() bool {
	switch k {
	case DocCitizenshipFront, DocCitizenshipBack, DocPassportPhoto, DocSignature, DocBirthCertificate:
		return true
	}
	return false
}

// requiredDocuments are the slots that gate section completion. The birth
// certificate is accepted but never required.
var requiredDocuments = []DocumentKind{
	DocCitizenshipFront,
	DocCitizenshipBack,
	DocPassportPhoto,
	DocSignature,
}

// Document is the stored metadata for one accepted upload.
type Document struct {
	Kind        DocumentKind `json:"kind"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	StoragePath string       `json:"storage_path"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

// DocumentSet maps upload slots to accepted documents.
type DocumentSet map[DocumentKind]Document

// Complete reports whether every required slot holds a document.
func (d DocumentSet) Complete() bool {
	for _, kind := range requiredDocuments {
		if _, ok := d[kind]; !ok {
			return false
		}
	}
	return true
}

// Profile aggregates everything an applicant has filled in so far.
type Profile struct {
	UserID    string          `json:"user_id"`
	Personal  PersonalDetails `json:"personal"`
	Address   AddressDetails  `json:"address"`
	Documents DocumentSet     `json:"documents"`
	UpdatedAt time.Time       `json:"updated_at"`
}
