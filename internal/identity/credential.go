package identity

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/core/common/validation"
)

type Method string

const (
	MethodRFID        Method = "RFID"
	MethodPIN         Method = "PIN"
	MethodFacial      Method = "FACIAL"
	MethodFingerprint Method = "FINGERPRINT"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodRFID, MethodPIN, MethodFacial, MethodFingerprint:
		return true
	}
	return false
}

// Credential is one authentication payload. The set of implementations is
// closed; Verifier switches over all of them.
type Credential interface {
	Method() Method
	Validate() error
	isCredential()
}

type RFIDCredential struct {
	CardID string
}

type PINCredential struct {
	EmployeeID string
	PIN        string
}

type FaceCredential struct {
	Encoding []float64
}

// FingerprintCredential carries the base64 template as sent by the reader.
type FingerprintCredential struct {
	Template string
}

func (RFIDCredential) Method() Method        { return MethodRFID }
func (PINCredential) Method() Method         { return MethodPIN }
func (FaceCredential) Method() Method        { return MethodFacial }
func (FingerprintCredential) Method() Method { return MethodFingerprint }

func (RFIDCredential) isCredential()        {}
func (PINCredential) isCredential()         {}
func (FaceCredential) isCredential()        {}
func (FingerprintCredential) isCredential() {}

func (c RFIDCredential) Validate() error {
	v := validation.NewValidator()
	v.Field("rfid_card_id", c.CardID).Required().
		WithMessage("RFID card ID is required", internal.ErrCodeMissingCredentialField)
	return asError(v.Validate())
}

func (c PINCredential) Validate() error {
	v := validation.NewValidator()
	v.Field("employee_id", c.EmployeeID).Required().
		WithMessage("Employee ID and PIN code are required", internal.ErrCodeMissingCredentialField)
	v.Field("pin_code", c.PIN).Required().
		WithMessage("Employee ID and PIN code are required", internal.ErrCodeMissingCredentialField)
	return asError(v.Validate())
}

func (c FaceCredential) Validate() error {
	v := validation.NewValidator()
	v.Field("face_encoding", c.Encoding).Required().
		WithMessage("Face encoding is required", internal.ErrCodeMissingCredentialField)
	return asError(v.Validate())
}

func (c FingerprintCredential) Validate() error {
	v := validation.NewValidator()
	v.Field("fingerprint_template", c.Template).Required().
		WithMessage("Fingerprint template is required", internal.ErrCodeMissingCredentialField)
	return asError(v.Validate())
}

// asError keeps a nil *AppError from becoming a non-nil error interface.
func asError(err *internal.AppError) error {
	if err == nil {
		return nil
	}
	return err
}

// CredentialRequest is the kiosk payload shape shared by verify, clock-in
// and clock-out requests.
type CredentialRequest struct {
	Method              Method    `json:"method"`
	RFIDCardID          string    `json:"rfid_card_id,omitempty"`
	EmployeeID          string    `json:"employee_id,omitempty"`
	PINCode             string    `json:"pin_code,omitempty"`
	FaceEncoding        []float64 `json:"face_encoding,omitempty"`
	FingerprintTemplate string    `json:"fingerprint_template,omitempty"`
}

// Credential narrows the request to the variant its method names and
// validates that variant's required fields.
func (r CredentialRequest) Credential() (Credential, error) {
	var cred Credential
	switch Method(strings.ToUpper(string(r.Method))) {
	case MethodRFID:
		cred = RFIDCredential{CardID: strings.TrimSpace(r.RFIDCardID)}
	case MethodPIN:
		cred = PINCredential{EmployeeID: strings.TrimSpace(r.EmployeeID), PIN: r.PINCode}
	case MethodFacial:
		cred = FaceCredential{Encoding: r.FaceEncoding}
	case MethodFingerprint:
		cred = FingerprintCredential{Template: strings.TrimSpace(r.FingerprintTemplate)}
	default:
		return nil, internal.NewValidationFieldError("method",
			fmt.Sprintf("unsupported authentication method %q", r.Method), internal.ErrCodeValidationFailed)
	}

	if err := cred.Validate(); err != nil {
		return nil, err
	}
	return cred, nil
}
