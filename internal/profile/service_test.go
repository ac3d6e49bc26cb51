package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	"chalak/internal/registration"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
)

var sharedMetrics = metrics.New()

type ServiceSuite struct {
	suite.Suite

	store   *MemoryStore
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = NewService(s.store, NewMemoryBlobStore(), sharedMetrics,
		WithAuditPublisher(audit.NewMemoryPublisher()))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) TestFreshAccountIsEmptyNotMissing() {
	overview, err := s.service.GetOverview(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(0, overview.Completion)
	s.False(overview.Sections.Personal)
}

func (s *ServiceSuite) TestUpdatePersonalDerivesOtherCalendar() {
	details := completePersonal()
	details.DOBBS = ""

	s.Require().NoError(s.service.UpdatePersonal(s.ctx(), "u1", details))

	p, err := s.service.Get(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal("2000-01-01", p.Personal.DOBAD)
	s.NotEmpty(p.Personal.DOBBS)
}

func (s *ServiceSuite) TestUpdatePersonalRejectsBadPhone() {
	details := completePersonal()
	details.Phone = "123456"

	err := s.service.UpdatePersonal(s.ctx(), "u1", details)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestUpdatePersonalRejectsImpossibleDOB() {
	details := completePersonal()
	details.DOBAD = "2000-02-31"

	err := s.service.UpdatePersonal(s.ctx(), "u1", details)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCompletionClimbsWithSections() {
	ctx := s.ctx()

	s.Require().NoError(s.service.UpdatePersonal(ctx, "u1", completePersonal()))
	overview, err := s.service.GetOverview(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(33, overview.Completion)

	s.Require().NoError(s.service.UpdateAddress(ctx, "u1", completeAddress()))
	overview, err = s.service.GetOverview(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(67, overview.Completion)

	for _, kind := range requiredDocuments {
		_, err := s.service.UploadDocument(ctx, "u1", Upload{
			Kind:        kind,
			FileName:    string(kind) + ".png",
			ContentType: "image/png",
			Data:        []byte("png-bytes"),
		})
		s.Require().NoError(err)
	}
	overview, err = s.service.GetOverview(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(100, overview.Completion)
}

func (s *ServiceSuite) TestUploadReplacingSlotIsIdempotent() {
	ctx := s.ctx()

	for range 2 {
		_, err := s.service.UploadDocument(ctx, "u1", Upload{
			Kind:        DocSignature,
			FileName:    "sig.png",
			ContentType: "image/png",
			Data:        []byte("png-bytes"),
		})
		s.Require().NoError(err)
	}

	p, err := s.service.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Len(p.Documents, 1)
}

func (s *ServiceSuite) TestUploadRejectsPDF() {
	_, err := s.service.UploadDocument(s.ctx(), "u1", Upload{
		Kind:        DocCitizenshipFront,
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	})
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSeedFillsPersonalSection() {
	err := s.service.Seed(s.ctx(), "u1", registration.Normalized{
		FirstName: "Hari",
		LastName:  "Sharma",
		DOBAD:     "2000-01-01",
		DOBBS:     "2056-09-17",
		Phone:     "9841234567",
	})
	s.Require().NoError(err)

	p, err := s.service.Get(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal("Hari Sharma", p.Personal.FullName)
	s.Equal("9841234567", p.Personal.Phone)
	// Gender and guardian are still missing, so the section is incomplete.
	s.False(p.Personal.Complete())
}
