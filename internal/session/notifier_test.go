package session

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notifier", func() {
	var notifier *Notifier

	BeforeEach(func() {
		notifier = NewNotifier(time.Minute)
	})

	It("is idle until something is shown", func() {
		_, ok := notifier.Current()
		Expect(ok).To(BeFalse())
	})

	It("falls back to the default TTL", func() {
		Expect(NewNotifier(0).TTL()).To(Equal(DefaultNotificationTTL))
	})

	Describe("Show", func() {
		It("stamps the expiry time from the time source", func() {
			start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
			notifier = NewNotifierWithDeps(3*time.Second, &mockTimeSource{now: start})

			first := notifier.Show("one", KindInfo)
			Expect(first.ExpiresAt).To(Equal(start.Add(4 * time.Second)))

			second := notifier.Show("two", KindInfo)
			Expect(second.ExpiresAt).To(Equal(start.Add(5 * time.Second)))
		})

		It("makes the notification current", func() {
			shown := notifier.Show("Serials match!", KindInfo)
			current, ok := notifier.Current()
			Expect(ok).To(BeTrue())
			Expect(current).To(Equal(shown))
		})

		It("assigns increasing IDs", func() {
			first := notifier.Show("one", KindInfo)
			second := notifier.Show("two", KindError)
			Expect(second.ID).To(BeNumerically(">", first.ID))
		})

		It("replaces the previous notification", func() {
			notifier.Show("one", KindInfo)
			notifier.Show("two", KindError)
			current, _ := notifier.Current()
			Expect(current.Message).To(Equal("two"))
			Expect(current.Kind).To(Equal(KindError))
		})

		It("sets the expiry from the TTL", func() {
			before := time.Now()
			note := notifier.Show("one", KindInfo)
			Expect(note.ExpiresAt).To(BeTemporally("~", before.Add(time.Minute), time.Second))
		})
	})

	Describe("Dismiss", func() {
		It("clears the current notification", func() {
			note := notifier.Show("one", KindInfo)
			Expect(notifier.Dismiss(note.ID)).To(BeTrue())
			_, ok := notifier.Current()
			Expect(ok).To(BeFalse())
		})

		It("ignores a stale ID", func() {
			stale := notifier.Show("one", KindInfo)
			notifier.Show("two", KindInfo)

			Expect(notifier.Dismiss(stale.ID)).To(BeFalse())
			current, ok := notifier.Current()
			Expect(ok).To(BeTrue())
			Expect(current.Message).To(Equal("two"))
		})

		It("is a no-op when idle", func() {
			Expect(notifier.Dismiss(42)).To(BeFalse())
		})
	})

	When("the TTL elapses", func() {
		BeforeEach(func() {
			notifier = NewNotifier(200 * time.Millisecond)
		})

		It("returns to idle", func() {
			notifier.Show("one", KindInfo)
			Eventually(func() bool {
				_, ok := notifier.Current()
				return ok
			}).WithTimeout(2 * time.Second).WithPolling(10 * time.Millisecond).Should(BeFalse())
		})

		It("restarts the window for a newer notification", func() {
			notifier.Show("one", KindInfo)
			time.Sleep(120 * time.Millisecond)
			notifier.Show("two", KindInfo)
			time.Sleep(120 * time.Millisecond)

			current, ok := notifier.Current()
			Expect(ok).To(BeTrue())
			Expect(current.Message).To(Equal("two"))
		})
	})
})
