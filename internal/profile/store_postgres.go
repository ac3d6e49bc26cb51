package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// undefinedTable is the Postgres error code raised when a relation does not
// exist yet. Callers treat it as "environment not migrated", not data loss.
const undefinedTable = "42P01"

// PostgresStore persists profiles in a single row per user, with the
// documents column held as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (Profile, error) {
	const query = `
		SELECT full_name, dob_ad, dob_bs, gender, phone, guardian_name,
		       province, district, municipality, ward, permanent_address,
		       documents, updated_at
		FROM profiles
		WHERE user_id = $1`

	p := Profile{UserID: userID, Documents: DocumentSet{}}
	var docsJSON []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.Personal.FullName, &p.Personal.DOBAD, &p.Personal.DOBBS,
		&p.Personal.Gender, &p.Personal.Phone, &p.Personal.GuardianName,
		&p.Address.Province, &p.Address.District, &p.Address.Municipality,
		&p.Address.Ward, &p.Address.PermanentAddress,
		&docsJSON, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return Profile{}, translate(err, "select profile")
	}

	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &p.Documents); err != nil {
			return Profile{}, fmt.Errorf("decode documents: %w", err)
		}
	}
	return p, nil
}

func (s *PostgresStore) UpsertPersonal(ctx context.Context, userID string, d PersonalDetails) error {
	const query = `
		INSERT INTO profiles (user_id, full_name, dob_ad, dob_bs, gender, phone, guardian_name, documents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '{}'::jsonb, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			dob_ad = EXCLUDED.dob_ad,
			dob_bs = EXCLUDED.dob_bs,
			gender = EXCLUDED.gender,
			phone = EXCLUDED.phone,
			guardian_name = EXCLUDED.guardian_name,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID,
		d.FullName, d.DOBAD, d.DOBBS, d.Gender, d.Phone, d.GuardianName,
		requestcontext.Now(ctx))
	return translate(err, "upsert personal details")
}

func (s *PostgresStore) UpsertAddress(ctx context.Context, userID string, d AddressDetails) error {
	const query = `
		INSERT INTO profiles (user_id, province, district, municipality, ward, permanent_address, documents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '{}'::jsonb, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			province = EXCLUDED.province,
			district = EXCLUDED.district,
			municipality = EXCLUDED.municipality,
			ward = EXCLUDED.ward,
			permanent_address = EXCLUDED.permanent_address,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID,
		d.Province, d.District, d.Municipality, d.Ward, d.PermanentAddress,
		requestcontext.Now(ctx))
	return translate(err, "upsert address details")
}

func (s *PostgresStore) PutDocument(ctx context.Context, userID string, doc Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	const query = `
		INSERT INTO profiles (user_id, documents, updated_at)
		VALUES ($1, jsonb_build_object($2::text, $3::jsonb), $4)
		ON CONFLICT (user_id) DO UPDATE SET
			documents = profiles.documents || jsonb_build_object($2::text, $3::jsonb),
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query, userID, string(doc.Kind), docJSON,
		requestcontext.Now(ctx))
	return translate(err, "put document")
}

// translate maps driver errors onto store sentinels.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%s: %w", op, sentinel.ErrRelationNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
