package handler

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharmintake/internal/logger"
	"pharmintake/internal/model"
	"pharmintake/internal/service"
)

type referenceResponse struct {
	Branches           []string `json:"branches"`
	InsuranceCompanies []string `json:"insuranceCompanies"`
}

type locationResponse struct {
	LocationURL string `json:"locationUrl"`
}

type attachmentCheckResponse struct {
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// attachmentFromHeader exposes an uploaded part as a model.Attachment. The content type is
// the one declared by the client for the part.
func attachmentFromHeader(fh *multipart.FileHeader) *model.Attachment {
	return &model.Attachment{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ListReference godoc
// @Summary  Selectable branches and insurance companies
// @Tags     intake
// @Produce  json
// @Success  200  {object}  referenceResponse
// @Router   /reference [get]
func ListReference() fiber.Handler {
	body := referenceResponse{
		Branches:           model.Branches,
		InsuranceCompanies: model.InsuranceCompanies,
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(body)
	}
}

// LocationLink godoc
// @Summary      Map link for a device position
// @Tags         intake
// @Produce      json
// @Param        lat  query     number  true  "Latitude"
// @Param        lon  query     number  true  "Longitude"
// @Success      200  {object}  locationResponse
// @Failure      400  {object}  errorPayload
// @Router       /location [get]
func LocationLink() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COORDINATES", "lat and lon must be numbers")
		}
		link, err := service.MapLink(lat, lon)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COORDINATES", "coordinates out of range")
		}
		return c.JSON(locationResponse{LocationURL: link})
	}
}

// CheckAttachment godoc
// @Summary      Validate one file before it is attached
// @Tags         intake
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Candidate attachment"
// @Success      200   {object}  attachmentCheckResponse
// @Failure      400   {object}  errorPayload
// @Failure      422   {object}  attachmentCheckResponse
// @Router       /attachments/check [post]
func CheckAttachment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if err := service.ValidateAttachment(attachmentFromHeader(fh)); err != nil {
			var res attachmentCheckResponse
			res.Error, res.Detail = rejection(err)
			return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
		}
		return c.JSON(attachmentCheckResponse{Valid: true})
	}
}

// SubmitIntake godoc
// @Summary      Submit an intake request
// @Description  Validates the form, encodes the four attachments, annotates the prescription and delivers the payload once.
// @Tags         intake
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName          formData  string  true   "Customer full name"
// @Param        phone             formData  string  true   "Mobile number, 11 digits starting with 010, 011, 012 or 015"
// @Param        address           formData  string  false  "Delivery address"
// @Param        locationUrl       formData  string  false  "Map link"
// @Param        branch            formData  string  true   "Branch"
// @Param        insuranceCompany  formData  string  true   "Insurance company"
// @Param        prescriptionFile  formData  file    true   "Prescription"
// @Param        cardFile          formData  file    true   "Insurance card"
// @Param        idFrontFile       formData  file    true   "ID front"
// @Param        idBackFile        formData  file    true   "ID back"
// @Success      201  {object}  model.SubmissionResult
// @Failure      400  {object}  errorPayload
// @Failure      422  {object}  model.SubmissionResult
// @Failure      502  {object}  model.SubmissionResult
// @Router       /submissions [post]
func SubmitIntake(svc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form expected")
		}

		f := service.NewForm()
		for _, name := range service.TextFields {
			if v := form.Value[name]; len(v) > 0 {
				// name comes from TextFields, so Set cannot report ErrUnknownField.
				_ = f.Set(name, v[0])
			}
		}
		for _, name := range service.FileFields {
			fhs := form.File[name]
			if len(fhs) == 0 {
				continue
			}
			if err := f.Attach(name, attachmentFromHeader(fhs[0])); err != nil {
				logger.FromContext(c.UserContext()).Info("attachment rejected", "field", name, "error", err)
				return writeRejected(c, err)
			}
		}

		res := svc.Submit(c.UserContext(), f.Request())
		switch {
		case res.Success:
			return c.Status(fiber.StatusCreated).JSON(res)
		case res.Kind == model.FailureValidation:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
		default:
			return c.Status(fiber.StatusBadGateway).JSON(res)
		}
	}
}
