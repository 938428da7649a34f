package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/biometric"
	"golang.org/x/crypto/bcrypt"
)

// Directory is read-only access to employee records. Lookups that find
// nothing return ErrEmployeeNotFound.
type Directory interface {
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	FindByRFIDCard(ctx context.Context, cardID string) (*Employee, error)
	ListActiveWithFaceEncoding(ctx context.Context) ([]*Employee, error)
	ListActiveWithFingerprint(ctx context.Context) ([]*Employee, error)
	ListActive(ctx context.Context, department string) ([]*Employee, error)
}

type Config struct {
	FaceMatchThreshold        float64
	FingerprintMatchThreshold float64
	MinTemplateLength         int
}

type Service struct {
	directory   Directory
	face        biometric.Matcher[[]float64]
	fingerprint biometric.Matcher[[]byte]
	cfg         Config
	logger      *slog.Logger
}

func NewService(directory Directory, face biometric.Matcher[[]float64], fingerprint biometric.Matcher[[]byte], cfg Config, logger *slog.Logger) *Service {
	return &Service{
		directory:   directory,
		face:        face,
		fingerprint: fingerprint,
		cfg:         cfg,
		logger:      logger,
	}
}

// Verify resolves a credential to exactly one active employee.
func (s *Service) Verify(ctx context.Context, cred Credential) (*VerifiedEmployee, error) {
	if cred == nil {
		return nil, internal.NewValidationError("credential is required", internal.ErrCodeMissingCredentialField)
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	var (
		emp *Employee
		err error
	)
	switch c := cred.(type) {
	case RFIDCredential:
		emp, err = s.verifyRFID(ctx, c)
	case PINCredential:
		emp, err = s.verifyPIN(ctx, c)
	case FaceCredential:
		emp, err = s.verifyFace(ctx, c)
	case FingerprintCredential:
		emp, err = s.verifyFingerprint(ctx, c)
	default:
		return nil, internal.NewValidationError(fmt.Sprintf("unsupported authentication method %q", cred.Method()), internal.ErrCodeValidationFailed)
	}
	if err != nil {
		return nil, err
	}

	if !emp.IsActive() {
		s.logger.Warn("verification rejected for inactive account",
			"method", cred.Method(),
			"employee_id", emp.EmployeeID,
			"status", emp.Status)
		return nil, internal.NewAccountNotActiveError(string(emp.Status))
	}

	s.logger.Info("employee verified", "method", cred.Method(), "employee_id", emp.EmployeeID)
	return emp.Verified(), nil
}

func (s *Service) verifyRFID(ctx context.Context, c RFIDCredential) (*Employee, error) {
	emp, err := s.directory.FindByRFIDCard(ctx, c.CardID)
	if errors.Is(err, ErrEmployeeNotFound) {
		return nil, s.notRecognized(MethodRFID, "RFID card not recognized")
	}
	if err != nil {
		s.logger.Error("failed to look up rfid card", "error", err)
		return nil, internal.NewInternalError("failed to verify credential", err)
	}
	return emp, nil
}

func (s *Service) verifyPIN(ctx context.Context, c PINCredential) (*Employee, error) {
	emp, err := s.directory.FindByEmployeeID(ctx, c.EmployeeID)
	if errors.Is(err, ErrEmployeeNotFound) {
		s.logger.Warn("verification failed", "method", MethodPIN, "reason", "unknown employee id")
		return nil, internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	}
	if err != nil {
		s.logger.Error("failed to look up employee", "error", err, "employee_id", c.EmployeeID)
		return nil, internal.NewInternalError("failed to verify credential", err)
	}

	if emp.PINHash == nil || *emp.PINHash == "" {
		s.logger.Warn("verification failed", "method", MethodPIN, "reason", "no pin enrolled", "employee_id", emp.EmployeeID)
		return nil, internal.NewAuthenticationError("Invalid PIN code", internal.ErrCodeInvalidCredential)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PINHash), []byte(c.PIN)); err != nil {
		s.logger.Warn("verification failed", "method", MethodPIN, "reason", "pin mismatch", "employee_id", emp.EmployeeID)
		return nil, internal.NewAuthenticationError("Invalid PIN code", internal.ErrCodeInvalidCredential)
	}
	return emp, nil
}

func (s *Service) verifyFace(ctx context.Context, c FaceCredential) (*Employee, error) {
	employees, err := s.directory.ListActiveWithFaceEncoding(ctx)
	if err != nil {
		s.logger.Error("failed to list enrolled faces", "error", err)
		return nil, internal.NewInternalError("failed to verify credential", err)
	}

	byID := make(map[string]*Employee, len(employees))
	candidates := make([]biometric.Candidate[[]float64], 0, len(employees))
	for _, e := range employees {
		if len(e.FaceEncoding) == 0 {
			continue
		}
		byID[e.ID] = e
		candidates = append(candidates, biometric.Candidate[[]float64]{Key: e.ID, Template: e.FaceEncoding})
	}

	match, ok, err := s.face.BestMatch(ctx, c.Encoding, candidates, s.cfg.FaceMatchThreshold)
	if err != nil {
		return nil, internal.NewInternalError("failed to verify credential", err)
	}
	if !ok {
		return nil, s.notRecognized(MethodFacial, "Face not recognized")
	}

	s.logger.Debug("face matched", "employee_id", byID[match.Key].EmployeeID, "score", match.Score)
	return byID[match.Key], nil
}

func (s *Service) verifyFingerprint(ctx context.Context, c FingerprintCredential) (*Employee, error) {
	probe, err := biometric.DecodeTemplate(c.Template, s.cfg.MinTemplateLength)
	if err != nil {
		s.logger.Warn("verification failed", "method", MethodFingerprint, "reason", err.Error())
		return nil, s.notRecognized(MethodFingerprint, "Fingerprint not recognized")
	}

	employees, err := s.directory.ListActiveWithFingerprint(ctx)
	if err != nil {
		s.logger.Error("failed to list enrolled fingerprints", "error", err)
		return nil, internal.NewInternalError("failed to verify credential", err)
	}

	byID := make(map[string]*Employee, len(employees))
	candidates := make([]biometric.Candidate[[]byte], 0, len(employees))
	for _, e := range employees {
		if e.FingerprintTemplate == nil {
			continue
		}
		raw, err := biometric.DecodeTemplate(*e.FingerprintTemplate, 0)
		if err != nil {
			s.logger.Warn("skipping unreadable enrolled template", "employee_id", e.EmployeeID, "error", err)
			continue
		}
		byID[e.ID] = e
		candidates = append(candidates, biometric.Candidate[[]byte]{Key: e.ID, Template: raw})
	}

	match, ok, err := s.fingerprint.BestMatch(ctx, probe, candidates, s.cfg.FingerprintMatchThreshold)
	if err != nil {
		return nil, internal.NewInternalError("failed to verify credential", err)
	}
	if !ok {
		return nil, s.notRecognized(MethodFingerprint, "Fingerprint not recognized")
	}

	s.logger.Debug("fingerprint matched", "employee_id", byID[match.Key].EmployeeID, "score", match.Score)
	return byID[match.Key], nil
}

func (s *Service) notRecognized(method Method, message string) error {
	s.logger.Warn("verification failed", "method", method, "reason", "not recognized")
	return internal.NewAuthenticationError(message, internal.ErrCodeCredentialNotRecognized)
}
