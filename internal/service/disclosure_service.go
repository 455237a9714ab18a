package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"

	"github.com/civisuite/vitals-ledger/internal/dto"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

const blindingInfo = "vitals-ledger/age-proof/v1"

// DisclosureService builds selective disclosure attestations over birth
// certificates. An attestation carries the boolean predicate, a blinded
// commitment to the birth timestamp, and an HMAC proof binding the two to
// the request parameters. The construction is deterministic for identical
// inputs and reveals nothing about the timestamp beyond the predicate: the
// commitment is keyed with a per-certificate key derived from the service
// secret, so it cannot be brute-forced against candidate timestamps without
// that secret.
type DisclosureService struct {
	eng       *ledger.Ledger
	cache     *CacheService
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	secret    []byte
	cacheTTL  time.Duration
}

// NewDisclosureService constructs the disclosure service.
func NewDisclosureService(eng *ledger.Ledger, cache *CacheService, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, secret string, cacheTTL time.Duration) *DisclosureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DisclosureService{
		eng:       eng,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		secret:    []byte(secret),
		cacheTTL:  cacheTTL,
	}
}

// ProveAgeAtLeast attests whether the subject of a birth certificate was at
// least thresholdYears old at the given instant. Fails when the certificate
// does not exist or is not issued.
func (s *DisclosureService) ProveAgeAtLeast(ctx context.Context, actor models.Actor, req dto.AgeProofRequest) (*dto.AgeProof, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid age proof payload")
	}

	cacheKey := proofCacheKey(req.BirthCertificateID, req.ThresholdYears, req.AsOf)
	var cached dto.AgeProof
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	var birth *models.BirthCertificate
	err := s.eng.View(ledger.SourceProduction, func(t *ledger.Txn) error {
		b, ok := t.Births().Get(req.BirthCertificateID)
		if !ok || !b.Resolvable() {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found or not issued")
		}
		birth = b
		return nil
	})
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	proof, err := s.buildProof(birth, req.ThresholdYears, req.AsOf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "proof construction failed")
	}

	_ = s.cache.Set(ctx, cacheKey, proof, s.cacheTTL)
	emitAudit(ctx, s.audit, s.logger, &models.AuditLog{
		Actor:      optionalString(actor.Account),
		Action:     models.AuditActionDisclosure,
		Resource:   "birth_certificate",
		ResourceID: &req.BirthCertificateID,
		Outcome:    "success",
	})
	return proof, nil
}

// Verify recomputes the attestation from the current certificate and checks
// the artifact in constant time.
func (s *DisclosureService) Verify(ctx context.Context, req dto.VerifyAgeProofRequest) (*dto.VerifyAgeProofResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	var birth *models.BirthCertificate
	err := s.eng.View(ledger.SourceProduction, func(t *ledger.Txn) error {
		b, ok := t.Births().Get(req.Proof.BirthCertificateID)
		if !ok || !b.Resolvable() {
			return appErrors.Clone(appErrors.ErrNotFound, "birth certificate not found or not issued")
		}
		birth = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	expected, err := s.buildProof(birth, req.Proof.ThresholdYears, req.Proof.AsOf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "proof construction failed")
	}

	valid := expected.Satisfied == req.Proof.Satisfied &&
		hmac.Equal([]byte(expected.Commitment), []byte(req.Proof.Commitment)) &&
		hmac.Equal([]byte(expected.Proof), []byte(req.Proof.Proof))
	return &dto.VerifyAgeProofResult{Valid: valid}, nil
}

// InvalidateCertificate drops cached proofs for one certificate. Called
// after an amendment changes the underlying content.
func (s *DisclosureService) InvalidateCertificate(ctx context.Context, birthCertificateID string) error {
	return s.cache.Invalidate(ctx, "disclosure:proof:"+birthCertificateID+":*")
}

func (s *DisclosureService) buildProof(birth *models.BirthCertificate, thresholdYears int, asOf time.Time) (*dto.AgeProof, error) {
	key, err := s.blindingKey(birth.ID)
	if err != nil {
		return nil, err
	}

	commitMac := hmac.New(sha256.New, key)
	commitMac.Write([]byte(birth.BirthTime.UTC().Format(time.RFC3339Nano)))
	commitment := hex.EncodeToString(commitMac.Sum(nil))

	satisfied := birth.AgeAt(asOf.UTC()) >= thresholdYears

	proofMac := hmac.New(sha256.New, key)
	proofMac.Write([]byte(birth.ID))
	proofMac.Write([]byte{0})
	proofMac.Write([]byte(strconv.Itoa(thresholdYears)))
	proofMac.Write([]byte{0})
	proofMac.Write([]byte(asOf.UTC().Format(time.RFC3339Nano)))
	proofMac.Write([]byte{0})
	proofMac.Write([]byte(strconv.FormatBool(satisfied)))
	proofMac.Write([]byte{0})
	proofMac.Write([]byte(commitment))

	return &dto.AgeProof{
		BirthCertificateID: birth.ID,
		ThresholdYears:     thresholdYears,
		AsOf:               asOf.UTC(),
		Satisfied:          satisfied,
		Commitment:         commitment,
		Proof:              hex.EncodeToString(proofMac.Sum(nil)),
	}, nil
}

// blindingKey derives a per-certificate 32-byte key from the service secret.
func (s *DisclosureService) blindingKey(birthCertificateID string) ([]byte, error) {
	reader := hkdf.New(sha256.New, s.secret, []byte(birthCertificateID), []byte(blindingInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive blinding key: %w", err)
	}
	return key, nil
}

func proofCacheKey(id string, threshold int, asOf time.Time) string {
	return fmt.Sprintf("disclosure:proof:%s:%d:%d", id, threshold, asOf.UTC().Unix())
}
