package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completePersonal() PersonalDetails {
	return PersonalDetails{
		FullName:     "Hari Sharma",
		DOBAD:        "2000-01-01",
		DOBBS:        "2056-09-17",
		Gender:       GenderMale,
		Phone:        "9841234567",
		GuardianName: "Ram Sharma",
	}
}

func completeAddress() AddressDetails {
	return AddressDetails{
		Province:         "Bagmati",
		District:         "Kathmandu",
		Municipality:     "Kathmandu Metropolitan City",
		Ward:             10,
		PermanentAddress: "Baneshwor",
	}
}

func completeDocuments() DocumentSet {
	docs := DocumentSet{}
	for _, kind := range requiredDocuments {
		docs[kind] = Document{Kind: kind, FileName: string(kind) + ".jpg"}
	}
	return docs
}

func TestCompletionSteps(t *testing.T) {
	p := Profile{UserID: "u1", Documents: DocumentSet{}}
	assert.Equal(t, 0, Completion(p))

	p.Personal = completePersonal()
	assert.Equal(t, 33, Completion(p))

	p.Address = completeAddress()
	assert.Equal(t, 67, Completion(p))

	p.Documents = completeDocuments()
	assert.Equal(t, 100, Completion(p))
}

func TestPersonalSectionRequiresEveryField(t *testing.T) {
	mutations := map[string]func(*PersonalDetails){
		"full name": func(d *PersonalDetails) { d.FullName = "" },
		"dob":       func(d *PersonalDetails) { d.DOBAD = "" },
		"gender":    func(d *PersonalDetails) { d.Gender = "" },
		"phone":     func(d *PersonalDetails) { d.Phone = "" },
		"guardian":  func(d *PersonalDetails) { d.GuardianName = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := completePersonal()
			mutate(&d)
			assert.False(t, d.Complete())
		})
	}
}

func TestDocumentsSectionIgnoresBirthCertificate(t *testing.T) {
	docs := completeDocuments()
	assert.True(t, docs.Complete())

	// Adding the optional slot changes nothing.
	docs[DocBirthCertificate] = Document{Kind: DocBirthCertificate}
	assert.True(t, docs.Complete())

	// Dropping a required slot does.
	delete(docs, DocSignature)
	assert.False(t, docs.Complete())

	// The optional slot alone never completes the section.
	only := DocumentSet{DocBirthCertificate: Document{Kind: DocBirthCertificate}}
	assert.False(t, only.Complete())
}

func TestSectionsReportsPerSectionState(t *testing.T) {
	p := Profile{Personal: completePersonal(), Documents: DocumentSet{}}
	states := Sections(p)
	assert.True(t, states.Personal)
	assert.False(t, states.Address)
	assert.False(t, states.Documents)
}

func TestCheckUpload(t *testing.T) {
	assert.Empty(t, CheckUpload(DocPassportPhoto, "image/jpeg", 1024))
	assert.Empty(t, CheckUpload(DocSignature, "image/png", maxDocumentBytes))

	assert.Equal(t, RejectUnknownSlot, CheckUpload("tax_clearance", "image/png", 1024))
	assert.Equal(t, RejectUnsupportedType, CheckUpload(DocSignature, "application/pdf", 1024))
	assert.Equal(t, RejectTooLarge, CheckUpload(DocSignature, "image/png", maxDocumentBytes+1))
	assert.Equal(t, RejectTooLarge, CheckUpload(DocSignature, "image/png", 0))
}
