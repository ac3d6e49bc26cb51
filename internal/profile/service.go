package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chalak/internal/audit"
	"chalak/internal/calendar"
	"chalak/internal/platform/metrics"
	"chalak/internal/registration"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// Store persists applicant profiles. Absent profiles are reported with
// sentinel.ErrNotFound; the service renders those as empty profiles.
type Store interface {
	Get(ctx context.Context, userID string) (Profile, error)
	UpsertPersonal(ctx context.Context, userID string, details PersonalDetails) error
	UpsertAddress(ctx context.Context, userID string, details AddressDetails) error
	PutDocument(ctx context.Context, userID string, doc Document) error
}

// BlobStore holds accepted document bytes and returns the stored object's
// path.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Service owns profile reads and section updates.
type Service struct {
	store   Store
	blobs   BlobStore
	metrics *metrics.Metrics
	auditor audit.Publisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func NewService(store Store, blobs BlobStore, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   store,
		blobs:   blobs,
		metrics: m,
		auditor: audit.NopPublisher{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview is the profile plus derived completion state.
type Overview struct {
	Profile    Profile       `json:"profile"`
	Sections   SectionStates `json:"sections"`
	Completion int           `json:"completion"`
}

// Get loads the profile, treating an absent row as an empty profile so a
// fresh account sees 0% rather than an error.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Profile{UserID: userID, Documents: DocumentSet{}}, nil
	}
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "load profile")
	}
	return p, nil
}

// GetOverview loads the profile with its completion summary.
func (s *Service) GetOverview(ctx context.Context, userID string) (Overview, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Profile: p, Sections: Sections(p), Completion: Completion(p)}, nil
}

// CompletionOf reports the aggregate completion percentage for userID.
func (s *Service) CompletionOf(ctx context.Context, userID string) (int, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return Completion(p), nil
}

// UpdatePersonal validates and saves the personal section. The date of birth
// may arrive in either calendar; the missing representation is derived before
// the section is stored.
func (s *Service) UpdatePersonal(ctx context.Context, userID string, details PersonalDetails) error {
	trimPersonal(&details)

	if details.Gender != "" && !details.Gender.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Please select a valid gender.")
	}
	if details.Phone != "" && !registration.ValidPhone(details.Phone) {
		return dErrors.New(dErrors.CodeValidation, registration.RulePhoneInvalid.Message())
	}

	switch {
	case details.DOBAD != "":
		bs, err := calendar.ConvertString(details.DOBAD, calendar.SystemAD)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, registration.RuleDOBInvalid.Message())
		}
		details.DOBBS = bs
	case details.DOBBS != "":
		ad, err := calendar.ConvertString(details.DOBBS, calendar.SystemBS)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, registration.RuleDOBInvalid.Message())
		}
		details.DOBAD = ad
	}

	if err := s.store.UpsertPersonal(ctx, userID, details); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save personal details")
	}
	s.publish(ctx, audit.KindProfileUpdated, userID, map[string]string{"section": "personal"})
	return nil
}

// UpdateAddress validates and saves the residence section.
func (s *Service) UpdateAddress(ctx context.Context, userID string, details AddressDetails) error {
	trimAddress(&details)

	if details.Ward < 0 {
		return dErrors.New(dErrors.CodeValidation, "Ward number must be a positive number.")
	}

	if err := s.store.UpsertAddress(ctx, userID, details); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save address details")
	}
	s.publish(ctx, audit.KindProfileUpdated, userID, map[string]string{"section": "address"})
	return nil
}

// Upload is one incoming document file.
type Upload struct {
	Kind        DocumentKind
	FileName    string
	ContentType string
	Data        []byte
}

// UploadDocument checks the file against the portal's limits, stores the
// bytes and records the slot as filled. Re-uploading a slot replaces it.
func (s *Service) UploadDocument(ctx context.Context, userID string, up Upload) (Document, error) {
	if reason := CheckUpload(up.Kind, up.ContentType, int64(len(up.Data))); reason != "" {
		s.metrics.DocumentsRejected.WithLabelValues(string(reason)).Inc()
		s.publish(ctx, audit.KindDocumentRejected, userID, map[string]string{
			"slot":   string(up.Kind),
			"reason": string(reason),
		})
		return Document{}, dErrors.New(dErrors.CodeValidation, rejectMessage(reason))
	}

	key := fmt.Sprintf("%s/%s", userID, up.Kind)
	path, err := s.blobs.Put(ctx, key, up.ContentType, up.Data)
	if err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "store document")
	}

	doc := Document{
		Kind:        up.Kind,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		SizeBytes:   int64(len(up.Data)),
		StoragePath: path,
		UploadedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.PutDocument(ctx, userID, doc); err != nil {
		return Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "record document")
	}
	s.publish(ctx, audit.KindDocumentUploaded, userID, map[string]string{
		"slot": string(up.Kind),
	})
	return doc, nil
}

// Seed writes the initial personal section from a validated signup so the
// applicant starts with name, date of birth and phone already present.
func (s *Service) Seed(ctx context.Context, userID string, reg registration.Normalized) error {
	fullName := strings.Join(nonEmpty(reg.FirstName, reg.MiddleName, reg.LastName), " ")
	return s.store.UpsertPersonal(ctx, userID, PersonalDetails{
		FullName: fullName,
		DOBAD:    reg.DOBAD,
		DOBBS:    reg.DOBBS,
		Phone:    reg.Phone,
	})
}

func rejectMessage(reason RejectReason) string {
	switch reason {
	case RejectUnknownSlot:
		return "Unknown document type."
	case RejectUnsupportedType:
		return "Only JPEG and PNG images are accepted."
	case RejectTooLarge:
		return "Document must be 3 MB or smaller."
	}
	return "Document was rejected."
}

func trimPersonal(d *PersonalDetails) {
	d.FullName = strings.TrimSpace(d.FullName)
	d.DOBAD = strings.TrimSpace(d.DOBAD)
	d.DOBBS = strings.TrimSpace(d.DOBBS)
	d.Phone = strings.TrimSpace(d.Phone)
	d.GuardianName = strings.TrimSpace(d.GuardianName)
}

func trimAddress(d *AddressDetails) {
	d.Province = strings.TrimSpace(d.Province)
	d.District = strings.TrimSpace(d.District)
	d.Municipality = strings.TrimSpace(d.Municipality)
	d.PermanentAddress = strings.TrimSpace(d.PermanentAddress)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) publish(ctx context.Context, kind audit.Kind, userID string, attrs map[string]string) {
	if err := s.auditor.Publish(ctx, audit.NewEvent(ctx, kind, userID, attrs)); err != nil {
		s.logger.Error(fmt.Sprintf("publish %s audit event", kind), "error", err)
	}
}
