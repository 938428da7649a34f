package leave_test

import (
	"time"

	"github.com/frahmantamala/attendance-engine/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Leave", func() {
	l := &leave.Leave{
		StartDate: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
		Status:    leave.StatusApproved,
	}

	DescribeTable("Covers",
		func(date time.Time, expected bool) {
			Expect(l.Covers(date)).To(Equal(expected))
		},
		Entry("the first day", time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC), true),
		Entry("late on the last day", time.Date(2024, time.March, 6, 23, 30, 0, 0, time.UTC), true),
		Entry("the day before", time.Date(2024, time.March, 3, 23, 59, 0, 0, time.UTC), false),
		Entry("the day after", time.Date(2024, time.March, 7, 0, 1, 0, 0, time.UTC), false),
	)

	It("should compare dates in the caller's location", func() {
		jakarta := time.FixedZone("WIB", 7*3600)
		// 2024-03-07 01:00 in Jakarta is still March 6 in UTC.
		Expect(l.Covers(time.Date(2024, time.March, 7, 1, 0, 0, 0, jakarta))).To(BeFalse())
	})
})
