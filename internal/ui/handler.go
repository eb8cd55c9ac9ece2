package ui

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/university-api/internal/dto"
)

const pageTitle = "University API"

// Flash messages shown after form actions.
const (
	MsgCreated        = "Student created successfully!"
	MsgCreateFailed   = "Failed to create student."
	MsgDeleted        = "Student deleted successfully!"
	MsgListFailed     = "Failed to retrieve students."
	msgDeleteFailedFn = "Failed to delete student. Status code: %d"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type flash struct {
	Kind    string
	Message string
}

type indexPage struct {
	Title     string
	Flash     *flash
	Students  []dto.StudentResponse
	ListError string
}

// Handler serves the student management page.
type Handler struct {
	api    StudentAPI
	logger zerolog.Logger
}

// NewHandler constructs the page handler.
func NewHandler(api StudentAPI, logger zerolog.Logger) *Handler {
	return &Handler{
		api:    api,
		logger: logger.With().Str("component", "ui_handler").Logger(),
	}
}

// Register attaches the page routes.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/", h.index)
	router.Post("/students", h.create)
	router.Post("/students/delete", h.delete)
}

func (h *Handler) index(c *fiber.Ctx) error {
	page := indexPage{Title: pageTitle}
	if message := c.Query("message"); message != "" {
		page.Flash = &flash{Kind: c.Query("kind", "success"), Message: message}
	}

	students, err := h.api.ListStudents()
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to list students")
		page.ListError = MsgListFailed
	} else {
		page.Students = students
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("failed to render page")
		return fiber.ErrInternalServerError
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) create(c *fiber.Ctx) error {
	firstName := c.FormValue("first_name")
	lastName := c.FormValue("last_name")

	if _, err := h.api.CreateStudent(firstName, lastName); err != nil {
		h.logger.Warn().Err(err).Msg("failed to create student")
		return redirectWithFlash(c, "error", MsgCreateFailed)
	}
	return redirectWithFlash(c, "success", MsgCreated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id := c.FormValue("student_id")

	if err := h.api.DeleteStudent(id); err != nil {
		h.logger.Warn().Err(err).Str("student_id", id).Msg("failed to delete student")
		code := 0
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			code = statusErr.Code
		}
		return redirectWithFlash(c, "error", fmt.Sprintf(msgDeleteFailedFn, code))
	}
	return redirectWithFlash(c, "success", MsgDeleted)
}

func redirectWithFlash(c *fiber.Ctx, kind, message string) error {
	query := url.Values{}
	query.Set("kind", kind)
	query.Set("message", message)
	return c.Redirect("/?"+query.Encode(), fiber.StatusSeeOther)
}
