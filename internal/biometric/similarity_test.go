package biometric_test

import (
	"encoding/base64"
	"strings"

	"github.com/frahmantamala/attendance-engine/internal/biometric"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Similarity", func() {
	Describe("CosineSimilarity", func() {
		It("should return 1 for identical vectors", func() {
			v := []float64{0.12, -0.5, 0.33, 0.9}
			Expect(biometric.CosineSimilarity(v, v)).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("should be symmetric", func() {
			a := []float64{1, 2, 3}
			b := []float64{-2, 0.5, 4}
			Expect(biometric.CosineSimilarity(a, b)).To(BeNumerically("~", biometric.CosineSimilarity(b, a), 1e-12))
		})

		It("should return -1 for opposite vectors", func() {
			Expect(biometric.CosineSimilarity([]float64{1, 0}, []float64{-1, 0})).To(BeNumerically("~", -1.0, 1e-9))
		})

		It("should return 0 for orthogonal vectors", func() {
			Expect(biometric.CosineSimilarity([]float64{1, 0}, []float64{0, 1})).To(BeNumerically("~", 0, 1e-12))
		})

		It("should return 0 when lengths differ", func() {
			Expect(biometric.CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})).To(Equal(0.0))
		})

		It("should return 0 when a vector has zero magnitude", func() {
			Expect(biometric.CosineSimilarity([]float64{0, 0}, []float64{1, 1})).To(Equal(0.0))
			Expect(biometric.CosineSimilarity(nil, nil)).To(Equal(0.0))
		})
	})

	Describe("TemplateBitSimilarity", func() {
		It("should return 100 for identical templates", func() {
			t := []byte{0xAB, 0x01, 0xFF, 0x00}
			Expect(biometric.TemplateBitSimilarity(t, t)).To(Equal(100.0))
		})

		It("should return 0 for complementary templates", func() {
			Expect(biometric.TemplateBitSimilarity([]byte{0x00, 0xFF}, []byte{0xFF, 0x00})).To(Equal(0.0))
		})

		It("should count matching bits and round to 2 decimals", func() {
			// one differing bit out of 24
			a := []byte{0x00, 0x00, 0x00}
			b := []byte{0x00, 0x01, 0x00}
			Expect(biometric.TemplateBitSimilarity(a, b)).To(Equal(95.83))
		})

		It("should be symmetric", func() {
			a := []byte{0x13, 0x37, 0xC0, 0xDE}
			b := []byte{0x12, 0x34, 0x56, 0x78}
			Expect(biometric.TemplateBitSimilarity(a, b)).To(Equal(biometric.TemplateBitSimilarity(b, a)))
		})

		It("should compare only the overlapping range when lengths differ", func() {
			a := []byte{0xAA, 0xBB}
			b := []byte{0xAA, 0xBB, 0xCC, 0xDD}
			Expect(biometric.TemplateBitSimilarity(a, b)).To(Equal(100.0))
		})

		It("should return 0 when either template is empty", func() {
			Expect(biometric.TemplateBitSimilarity(nil, []byte{0x01})).To(Equal(0.0))
			Expect(biometric.TemplateBitSimilarity(nil, nil)).To(Equal(0.0))
		})
	})

	Describe("threshold tests", func() {
		It("Matches should include the threshold", func() {
			Expect(biometric.Matches(65, 65)).To(BeTrue())
			Expect(biometric.Matches(64.99, 65)).To(BeFalse())
		})

		It("Exceeds should exclude the threshold", func() {
			Expect(biometric.Exceeds(0.6, 0.6)).To(BeFalse())
			Expect(biometric.Exceeds(0.61, 0.6)).To(BeTrue())
		})
	})

	Describe("DecodeTemplate", func() {
		It("should decode a valid payload", func() {
			raw := []byte(strings.Repeat("x", 90))
			encoded := base64.StdEncoding.EncodeToString(raw)

			decoded, err := biometric.DecodeTemplate(encoded, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(raw))
		})

		It("should reject short payloads", func() {
			_, err := biometric.DecodeTemplate("AAAA", 100)
			Expect(err).To(MatchError(biometric.ErrTemplateTooShort))
		})

		It("should reject payloads outside the base64 alphabet", func() {
			_, err := biometric.DecodeTemplate(strings.Repeat("!", 120), 100)
			Expect(err).To(MatchError(biometric.ErrTemplateEncoding))
		})
	})
})
