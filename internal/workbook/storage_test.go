package workbook

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "exports"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the export directory", func() {
		Expect(filepath.Join(tmpDir, "exports")).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			filename  string
			data      []byte
			savedName string
			err       error
		)

		BeforeEach(func() {
			filename = "scan_history_2024-01-15.xlsx"
			data = []byte("workbook content")
		})

		JustBeforeEach(func() {
			savedName, err = storage.Save(filename, data)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the file name", func() {
				Expect(savedName).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, "exports", filename)).To(BeAnExistingFile())
			})
		})

		When("a file with the same name exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, "exports", filename), []byte("old"), 0644)).To(Succeed())
			})

			It("replaces it", func() {
				got, getErr := os.ReadFile(filepath.Join(tmpDir, "exports", filename))
				Expect(getErr).NotTo(HaveOccurred())
				Expect(got).To(Equal(data))
			})
		})

		When("the name escapes the directory", func() {
			BeforeEach(func() {
				filename = "../escape.xlsx"
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("invalid file name")))
				Expect(filepath.Join(tmpDir, "escape.xlsx")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		var (
			filename string
			data     []byte
			err      error
		)

		JustBeforeEach(func() {
			data, err = storage.Get(filename)
		})

		When("the file exists", func() {
			BeforeEach(func() {
				filename = "scan_history_2024-01-15.xlsx"
				_, saveErr := storage.Save(filename, []byte("workbook content"))
				Expect(saveErr).NotTo(HaveOccurred())
			})

			It("should return the content", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("workbook content")))
			})
		})

		When("the file does not exist", func() {
			BeforeEach(func() {
				filename = "missing.xlsx"
			})

			It("returns an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		When("the name is empty", func() {
			BeforeEach(func() {
				filename = ""
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("invalid file name")))
			})
		})
	})
})
