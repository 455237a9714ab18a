package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
	"github.com/civisuite/vitals-ledger/pkg/export"
	"github.com/civisuite/vitals-ledger/pkg/storage"
)

type extractStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type certificateRenderer interface {
	RenderCertificate(title, authority, recordID string, fields []export.Field) ([]byte, error)
}

// ExtractConfig tunes extract generation.
type ExtractConfig struct {
	Enabled   bool
	Authority string
	ResultTTL time.Duration
}

// ExtractResult captures successful generation metadata.
type ExtractResult struct {
	RelativePath string
	Token        string
	ContentType  string
	ExpiresAt    time.Time
}

// ExtractService renders certified record extracts (certificate PDFs and
// roster CSVs), persists them, and hands out signed download tokens.
type ExtractService struct {
	eng     *ledger.Ledger
	storage extractStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     certificateRenderer
	logger  *zap.Logger
	clock   Clock
	cfg     ExtractConfig
}

// NewExtractService constructs an ExtractService.
func NewExtractService(eng *ledger.Ledger, store extractStorage, signer *storage.SignedURLSigner, cfg ExtractConfig, logger *zap.Logger, clock Clock, csv csvRenderer, pdf certificateRenderer) *ExtractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = UTCClock
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.Authority == "" {
		cfg.Authority = "Office of Vital Records"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExtractService{eng: eng, storage: store, signer: signer, cfg: cfg, logger: logger, clock: clock, csv: csv, pdf: pdf}
}

// Enabled reports whether extract generation is switched on.
func (s *ExtractService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.storage != nil && s.signer != nil
}

// Certificate renders a certificate-style PDF extract for one record and
// stores it behind a signed token. The record kind is inferred from the
// identifier prefix.
func (s *ExtractService) Certificate(ctx context.Context, source ledger.Source, recordID string) (*ExtractResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrNotSupported, "extracts are disabled")
	}

	var title string
	var fields []export.Field
	err := s.eng.View(source, func(t *ledger.Txn) error {
		switch {
		case strings.HasPrefix(recordID, ledger.KindMarriage+"_"):
			m, ok := t.Marriages().Get(recordID)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "marriage license not found")
			}
			title = "Marriage License"
			fields = marriageFields(m)
		case strings.HasPrefix(recordID, ledger.KindBirth+"_"):
			b, ok := t.Births().Get(recordID)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found")
			}
			title = "Certificate of Live Birth"
			fields = birthFields(b)
		case strings.HasPrefix(recordID, ledger.KindDeath+"_"):
			d, ok := t.Deaths().Get(recordID)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "death certificate not found")
			}
			title = "Certificate of Death"
			fields = deathFields(d)
		case strings.HasPrefix(recordID, ledger.KindLicense+"_"):
			l, ok := t.Licenses().Get(recordID)
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "driver license not found")
			}
			title = "Driver License Record"
			fields = licenseFields(l)
		default:
			return appErrors.Clone(appErrors.ErrValidation, "unrecognized record identifier")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rendered, err := s.pdf.RenderCertificate(title, s.cfg.Authority, recordID, fields)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render extract")
	}

	relPath := fmt.Sprintf("certificates/%s_%d.pdf", recordID, s.clock().UnixNano())
	return s.store(recordID, relPath, "application/pdf", rendered)
}

// Roster renders a district roster as CSV.
func (s *ExtractService) Roster(ctx context.Context, source ledger.Source, districtID string) (*ExtractResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrNotSupported, "extracts are disabled")
	}

	data := export.Dataset{Headers: []string{"account", "status", "registered_at", "birth_certificate_id"}}
	err := s.eng.View(source, func(t *ledger.Txn) error {
		if !t.Districts().Has(districtID) {
			return appErrors.Clone(appErrors.ErrNotFound, "district not found")
		}
		for _, account := range t.RosterAccounts(districtID) {
			row := map[string]string{"account": account}
			if reg, ok := t.Voters().Get(account); ok {
				row["status"] = string(reg.Status)
				row["registered_at"] = reg.RegisteredAt.UTC().Format(time.RFC3339)
				row["birth_certificate_id"] = reg.BirthCertificateID
			}
			data.Rows = append(data.Rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rendered, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render roster extract")
	}

	relPath := fmt.Sprintf("rosters/%s_%d.csv", districtID, s.clock().UnixNano())
	return s.store(districtID, relPath, "text/csv", rendered)
}

// Open resolves a signed token to a readable file handle.
func (s *ExtractService) Open(token string) (*os.File, string, error) {
	if !s.Enabled() {
		return nil, "", appErrors.Clone(appErrors.ErrNotSupported, "extracts are disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid extract token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "extract no longer available")
	}
	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(relPath, ".pdf"):
		contentType = "application/pdf"
	case strings.HasSuffix(relPath, ".csv"):
		contentType = "text/csv"
	}
	return file, contentType, nil
}

// Cleanup drops extracts older than the result TTL.
func (s *ExtractService) Cleanup() {
	if !s.Enabled() {
		return
	}
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("extract cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("extract cleanup removed files", zap.Int("count", len(deleted)))
	}
}

func (s *ExtractService) store(recordID, relPath, contentType string, rendered []byte) (*ExtractResult, error) {
	saved, err := s.storage.Save(relPath, rendered)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store extract")
	}
	token, expiresAt, err := s.signer.Generate(recordID, saved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign extract token")
	}
	return &ExtractResult{RelativePath: saved, Token: token, ContentType: contentType, ExpiresAt: expiresAt}, nil
}

func marriageFields(m *models.MarriageLicense) []export.Field {
	fields := []export.Field{
		{Label: "Partner", Value: fmt.Sprintf("%s (%s)", m.Partner1.Name, m.Partner1.Account)},
		{Label: "Partner", Value: fmt.Sprintf("%s (%s)", m.Partner2.Name, m.Partner2.Account)},
		{Label: "Jurisdiction", Value: m.Jurisdiction},
		{Label: "Filed", Value: m.RequestedAt.UTC().Format("January 2, 2006")},
		{Label: "Status", Value: string(m.Status)},
	}
	if m.IssuedAt != nil {
		fields = append(fields, export.Field{Label: "Issued", Value: m.IssuedAt.UTC().Format("January 2, 2006")})
	}
	return fields
}

func birthFields(b *models.BirthCertificate) []export.Field {
	fields := []export.Field{
		{Label: "Name", Value: b.SubjectName},
		{Label: "Date of Birth", Value: b.BirthTime.UTC().Format("January 2, 2006 15:04 MST")},
		{Label: "Place of Birth", Value: b.BirthLocation},
		{Label: "Status", Value: string(b.Status)},
	}
	if len(b.Parents) > 0 {
		fields = append(fields, export.Field{Label: "Parents", Value: strings.Join(b.Parents, ", ")})
	}
	return fields
}

func deathFields(d *models.DeathCertificate) []export.Field {
	return []export.Field{
		{Label: "Name", Value: d.SubjectName},
		{Label: "Date of Death", Value: d.DeathTime.UTC().Format("January 2, 2006 15:04 MST")},
		{Label: "Place of Death", Value: d.Location},
		{Label: "Cause", Value: d.Cause},
		{Label: "Examiner", Value: d.Examiner},
		{Label: "Status", Value: string(d.Status)},
	}
}

func licenseFields(l *models.DriverLicense) []export.Field {
	return []export.Field{
		{Label: "Holder", Value: fmt.Sprintf("%s (%s)", l.HolderName, l.HolderAccount)},
		{Label: "Class", Value: l.Class},
		{Label: "Endorsements", Value: strings.Join(l.Endorsements, ", ")},
		{Label: "Restrictions", Value: strings.Join(l.Restrictions, ", ")},
		{Label: "Issued", Value: l.IssuedAt.UTC().Format("January 2, 2006")},
		{Label: "Expires", Value: l.ExpiresAt.UTC().Format("January 2, 2006")},
		{Label: "Status", Value: string(l.Status)},
	}
}
