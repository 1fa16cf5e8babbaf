// Package applicanthttp exposes the applicant endpoints over Fiber.
package applicanthttp

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant/applicantsrv"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/kernel"
)

type Handler struct {
	service *applicantsrv.Service
}

func NewHandler(service *applicantsrv.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	applicants := app.Group("/api/v1/applicants")
	applicants.Post("/register", h.register)
	applicants.Post("/verify-email", h.verifyEmail)
	applicants.Get("/export", h.export)
	applicants.Get("/", h.list)
	applicants.Get("/:id", h.get)
	applicants.Post("/:id/profile", h.completeProfile)
	applicants.Patch("/:id/admission", h.updateAdmission)
}

func (h *Handler) register(c *fiber.Ctx) error {
	var in applicantsrv.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}

	a, err := h.service.Register(c.Context(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": a})
}

func (h *Handler) verifyEmail(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}
	if in.Email == "" || in.Code == "" {
		return errx.Validation("email and code are required")
	}

	a, err := h.service.VerifyEmail(c.Context(), in.Email, in.Code)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": a})
}

func (h *Handler) completeProfile(c *fiber.Ctx) error {
	var in applicant.Profile
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}

	a, err := h.service.CompleteProfile(c.Context(), kernel.NewApplicantID(c.Params("id")), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": a})
}

func (h *Handler) updateAdmission(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}

	a, err := h.service.UpdateAdmission(c.Context(), kernel.NewApplicantID(c.Params("id")), in.Status)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": a})
}

func (h *Handler) get(c *fiber.Ctx) error {
	a, err := h.service.Get(c.Context(), kernel.NewApplicantID(c.Params("id")))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": a})
}

func (h *Handler) list(c *fiber.Ctx) error {
	var filter applicant.ListFilter
	if v := c.Query("registration_status"); v != "" {
		status := applicant.RegistrationStatus(v)
		filter.RegistrationStatus = &status
	}
	if v := c.Query("admission_status"); v != "" {
		parsed, err := applicant.ParseAdmissionStatus(v)
		if err != nil {
			return err
		}
		filter.AdmissionStatus = &parsed
	}

	opts := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	result, err := h.service.List(c.Context(), filter, opts)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *Handler) export(c *fiber.Ctx) error {
	buf, err := h.service.Export(c.Context())
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("applicants-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}
