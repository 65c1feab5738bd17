package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pharmintake/internal/model"
	serviceMocks "pharmintake/internal/service/mocks"
)

type testFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func buildForm(t *testing.T, fields map[string]string, files ...testFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func intakeFields() map[string]string {
	return map[string]string{
		"fullName":         "Ahmed Ali",
		"phone":            "01012345678",
		"address":          "12 Nile St",
		"branch":           "مدينة السلام",
		"insuranceCompany": "شركة أكسا",
	}
}

func intakeFiles() []testFile {
	jpg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	return []testFile{
		{"prescriptionFile", "rx.jpg", "image/jpeg", jpg},
		{"cardFile", "card.png", "image/png", []byte("png")},
		{"idFrontFile", "front.jpg", "image/jpeg", jpg},
		{"idBackFile", "back.pdf", "application/pdf", []byte("%PDF-1.7")},
	}
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
		BodyLimit:    24 << 20,
	})
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("no dependency", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListReference(t *testing.T) {
	app := fiber.New()
	app.Get("/reference", ListReference())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reference", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body referenceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, model.Branches, body.Branches)
	assert.Equal(t, model.InsuranceCompanies, body.InsuranceCompanies)
}

func TestLocationLink(t *testing.T) {
	app := newApp()
	app.Get("/location", LocationLink())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantURL    string
	}{
		{name: "valid", query: "lat=30.0444&lon=31.2357", wantStatus: http.StatusOK, wantURL: "https://www.google.com/maps?q=30.0444,31.2357"},
		{name: "missing lon", query: "lat=30", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "lat=abc&lon=31", wantStatus: http.StatusBadRequest},
		{name: "out of range", query: "lat=120&lon=31", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/location?"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				var body locationResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantURL, body.LocationURL)
				return
			}
			var body errorPayload
			json.NewDecoder(resp.Body).Decode(&body)
			assert.Equal(t, "INVALID_COORDINATES", body.Error.Code)
		})
	}
}

func TestCheckAttachment(t *testing.T) {
	app := newApp()
	app.Post("/attachments/check", CheckAttachment())

	tests := []struct {
		name       string
		file       *testFile
		wantStatus int
		wantValid  bool
		wantError  string
	}{
		{
			name:       "pdf accepted",
			file:       &testFile{"file", "scan.pdf", "application/pdf", []byte("%PDF-1.7")},
			wantStatus: http.StatusOK,
			wantValid:  true,
		},
		{
			name:       "gif rejected",
			file:       &testFile{"file", "anim.gif", "image/gif", []byte("GIF89a")},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unsupported file type",
		},
		{
			name:       "oversized rejected",
			file:       &testFile{"file", "big.jpg", "image/jpeg", make([]byte, 6_000_000)},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "file too large",
		},
		{
			name:       "no file",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var files []testFile
			if tt.file != nil {
				files = append(files, *tt.file)
			}
			body, ct := buildForm(t, nil, files...)
			req := httptest.NewRequest(http.MethodPost, "/attachments/check", body)
			req.Header.Set("Content-Type", ct)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusBadRequest {
				var res errorPayload
				json.NewDecoder(resp.Body).Decode(&res)
				assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
				return
			}
			var res attachmentCheckResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantError, res.Error)
			if tt.name == "oversized rejected" {
				assert.Contains(t, res.Detail, "big.jpg")
			}
		})
	}
}

func TestSubmitIntake(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		mockSvc.On("Submit", mock.Anything, mock.MatchedBy(func(r *model.SubmissionRequest) bool {
			return r.FullName == "Ahmed Ali" &&
				r.Phone == "01012345678" &&
				r.Address == "12 Nile St" &&
				r.Branch == "مدينة السلام" &&
				r.PrescriptionFile != nil && r.PrescriptionFile.Name == "rx.jpg" &&
				r.CardFile != nil && r.CardFile.ContentType == "image/png" &&
				r.IDFrontFile != nil &&
				r.IDBackFile != nil && r.IDBackFile.Size == int64(len("%PDF-1.7"))
		})).Return(model.SubmissionResult{Success: true, SerialNumber: "MS-482913"}).Once()

		body, ct := buildForm(t, intakeFields(), intakeFiles()...)
		req := httptest.NewRequest(http.MethodPost, "/submissions", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "MS-482913", res["serialNumber"])
		assert.NotContains(t, res, "error")
		mockSvc.AssertExpectations(t)
	})

	t.Run("attachment opens from upload", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		var got []byte
		mockSvc.On("Submit", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				r := args.Get(1).(*model.SubmissionRequest)
				rc, err := r.IDBackFile.Open()
				if assert.NoError(t, err) {
					defer rc.Close()
					buf := new(bytes.Buffer)
					buf.ReadFrom(rc)
					got = buf.Bytes()
				}
			}).
			Return(model.SubmissionResult{Success: true, SerialNumber: "MS-100001"}).Once()

		body, ct := buildForm(t, intakeFields(), intakeFiles()...)
		req := httptest.NewRequest(http.MethodPost, "/submissions", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, []byte("%PDF-1.7"), got)
	})

	t.Run("validation failure", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		mockSvc.On("Submit", mock.Anything, mock.Anything).Return(model.SubmissionResult{
			Error:  "invalid phone number",
			Detail: "the phone number must be 11 digits starting with 010, 011, 012 or 015",
			Kind:   model.FailureValidation,
		}).Once()

		fields := intakeFields()
		fields["phone"] = "0101234567"
		body, ct := buildForm(t, fields, intakeFiles()...)
		req := httptest.NewRequest(http.MethodPost, "/submissions", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, false, res["success"])
		assert.Equal(t, "invalid phone number", res["error"])
		assert.NotContains(t, res, "serialNumber")
		mockSvc.AssertExpectations(t)
	})

	t.Run("transmission failure", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		mockSvc.On("Submit", mock.Anything, mock.Anything).Return(model.SubmissionResult{
			Error: "failed to send request: connection refused",
			Kind:  model.FailureTransmission,
		}).Once()

		body, ct := buildForm(t, intakeFields(), intakeFiles()...)
		req := httptest.NewRequest(http.MethodPost, "/submissions", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req, -1)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var res model.SubmissionResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.False(t, res.Success)
		assert.Equal(t, "failed to send request: connection refused", res.Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("oversized prescription rejected before pipeline", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		files := intakeFiles()
		files[0].data = make([]byte, 6_000_000)
		body, ct := buildForm(t, intakeFields(), files...)
		req := httptest.NewRequest(http.MethodPost, "/submissions", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res model.SubmissionResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "file too large", res.Error)
		assert.Contains(t, res.Detail, "rx.jpg")
		mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("not multipart", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSubmissionService)
		app := newApp()
		app.Post("/submissions", SubmitIntake(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString(`{"fullName":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FORM", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockSubmissionService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("reference registered", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reference", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestErrorHandler_PayloadTooLarge(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/big", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	var res errorPayload
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", res.Error.Code)
}
