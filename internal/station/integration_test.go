package station_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/scan-station/internal/session"
	"github.com/zombor/scan-station/internal/station"
	"github.com/zombor/scan-station/internal/workbook"
)

var _ = Describe("Integration", func() {
	var (
		exportDir string
		store     *workbook.LocalStorage
		server    *station.Server
		ghServer  *ghttp.Server
	)

	BeforeEach(func() {
		exportDir = filepath.Join(GinkgoT().TempDir(), "exports")

		var err error
		store, err = workbook.NewLocalStorage(exportDir)
		Expect(err).NotTo(HaveOccurred())

		layout := session.Layout{DateFormat: "1/2/2006", TimeFormat: "3:04:05 PM", Location: time.UTC}
		sess := session.New(session.NewNotifier(time.Minute))
		service := station.NewService(sess, workbook.NewXLSX(), store, layout)
		server = station.NewServer(service, station.BasicAuth{})

		ghServer = ghttp.NewServer()
		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
			ghServer.RouteToHandler(method, regexp.MustCompile(`.*`), server.ServeHTTP)
		}
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
	})

	post := func(path string, body interface{}) *http.Response {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.Post(ghServer.URL()+path, "application/json", bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	enter := func(field session.Field, form session.Form) *http.Response {
		return post("/api/session/enter", map[string]interface{}{"field": field, "form": form})
	}

	It("should verify scans from the keyboard and export them to a workbook", func() {
		// --- Step 1: three scans entered field by field ---
		scans := []session.Form{
			{Operator: "Alice", SensorSerial: "SN12345678XY", PackageSerial: "SN12345678ZZ"},
			{Operator: "Alice", SensorSerial: "SN87654321AA", PackageSerial: "SN87654321BB"},
			{Operator: "Alice", SensorSerial: "AAAAAAAAAA", PackageSerial: "BBBBBBBBBB"},
		}
		for _, form := range scans {
			Expect(enter(session.FieldOperator, session.Form{Operator: form.Operator}).StatusCode).To(Equal(http.StatusOK))
			Expect(enter(session.FieldSensorSerial, session.Form{Operator: form.Operator, SensorSerial: form.SensorSerial}).StatusCode).To(Equal(http.StatusOK))
			Expect(enter(session.FieldPackageSerial, form).StatusCode).To(Equal(http.StatusCreated))
		}

		resp, err := http.Get(ghServer.URL() + "/api/session")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		var current struct {
			Session session.View `json:"session"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&current)).To(Succeed())
		Expect(current.Session.Total).To(Equal(3))
		Expect(current.Session.SuccessRate).To(Equal(67))
		Expect(current.Session.LastScanned).To(Equal("BBBBBBBBBB"))

		// --- Step 2: confirmed export ---
		exportResp := post("/api/export", map[string]bool{"confirmed": true})
		Expect(exportResp.StatusCode).To(Equal(http.StatusOK))
		data, err := io.ReadAll(exportResp.Body)
		Expect(err).NotTo(HaveOccurred())

		f, err := excelize.OpenReader(bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		rows, err := f.GetRows(workbook.SheetName)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal(session.Columns))
		Expect(rows[1][2:]).To(Equal([]string{"Alice", "SN12345678XY", "SN12345678ZZ", "Yes"}))
		Expect(rows[2][2:]).To(Equal([]string{"Alice", "SN87654321AA", "SN87654321BB", "Yes"}))
		Expect(rows[3][2:]).To(Equal([]string{"Alice", "AAAAAAAAAA", "BBBBBBBBBB", "No"}))

		// --- Step 3: the archived copy matches the download ---
		archiveName := exportResp.Header.Get("X-Archive-Name")
		Expect(archiveName).To(HavePrefix("scan_history_"))
		archived, err := store.Get(archiveName)
		Expect(err).NotTo(HaveOccurred())
		Expect(archived).To(Equal(data))

		// --- Step 4: confirmed reset ---
		resetResp := post("/api/reset", map[string]bool{"confirmed": true})
		Expect(resetResp.StatusCode).To(Equal(http.StatusOK))

		emptyExport := post("/api/export", map[string]bool{"confirmed": true})
		Expect(emptyExport.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
