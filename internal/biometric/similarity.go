package biometric

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/bits"
)

var (
	ErrTemplateTooShort = errors.New("fingerprint template too short")
	ErrTemplateEncoding = errors.New("fingerprint template is not valid base64")
)

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length, empty vectors and zero-magnitude vectors
// yield 0 rather than an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	// clamp float drift so identical vectors never exceed 1
	return math.Max(-1, math.Min(1, sim))
}

// TemplateBitSimilarity compares two fingerprint templates bit by bit and
// returns the share of identical bits as a percentage rounded to 2 decimals.
// Buffers of different length are compared over the shorter one.
func TemplateBitSimilarity(a, b []byte) float64 {
	if len(a) > 0 && bytes.Equal(a, b) {
		return 100
	}

	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	matching := 0
	for i := 0; i < n; i++ {
		matching += 8 - bits.OnesCount8(a[i]^b[i])
	}

	pct := float64(matching) / float64(n*8) * 100
	return math.Round(pct*100) / 100
}

// Matches is the inclusive threshold test used by the fingerprint path.
func Matches(score, threshold float64) bool {
	return score >= threshold
}

// Exceeds is the strict threshold test used by the face path.
func Exceeds(score, threshold float64) bool {
	return score > threshold
}

// DecodeTemplate turns a device payload into raw template bytes.
// Payloads shorter than minEncodedLen characters are rejected before decoding.
func DecodeTemplate(encoded string, minEncodedLen int) ([]byte, error) {
	if len(encoded) < minEncodedLen {
		return nil, fmt.Errorf("%w: %d < %d characters", ErrTemplateTooShort, len(encoded), minEncodedLen)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateEncoding, err)
	}
	return raw, nil
}
