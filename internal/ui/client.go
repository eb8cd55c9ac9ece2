package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/university-api/internal/contracts"
	"github.com/noah-isme/university-api/internal/dto"
)

const defaultTimeout = 5 * time.Second

// StatusError reports an API response whose status is not a success for the call.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// StudentAPI is the subset of the university API the pages depend on.
type StudentAPI interface {
	CreateStudent(firstName, lastName string) (dto.StudentResponse, error)
	ListStudents() ([]dto.StudentResponse, error)
	DeleteStudent(id string) error
}

// Client calls the university API over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient builds an API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.With().Str("component", "api_client").Logger(),
	}
}

// CreateStudent posts a new student. Only 200 counts as success.
func (c *Client) CreateStudent(firstName, lastName string) (dto.StudentResponse, error) {
	agent := fiber.Post(c.baseURL + "/student/")
	agent.JSON(dto.StudentCreateRequest{FirstName: firstName, LastName: lastName})

	code, body, err := c.do(agent)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if code != fiber.StatusOK {
		return dto.StudentResponse{}, statusError(code, body)
	}

	var student dto.StudentResponse
	if err := json.Unmarshal(body, &student); err != nil {
		return dto.StudentResponse{}, fmt.Errorf("decode student: %w", err)
	}
	return student, nil
}

// ListStudents fetches every student. Only 200 counts as success.
func (c *Client) ListStudents() ([]dto.StudentResponse, error) {
	code, body, err := c.do(fiber.Get(c.baseURL + "/students/"))
	if err != nil {
		return nil, err
	}
	if code != fiber.StatusOK {
		return nil, statusError(code, body)
	}

	if err := contracts.Validate(contracts.StudentList, body); err != nil {
		return nil, fmt.Errorf("unexpected student list payload: %w", err)
	}

	var students []dto.StudentResponse
	if err := json.Unmarshal(body, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// DeleteStudent removes the student with the given id. 200 and 204 count as success.
func (c *Client) DeleteStudent(id string) error {
	code, body, err := c.do(fiber.Delete(c.baseURL + "/student/" + url.PathEscape(strings.TrimSpace(id))))
	if err != nil {
		return err
	}
	if code != fiber.StatusOK && code != fiber.StatusNoContent {
		return statusError(code, body)
	}
	return nil
}

func (c *Client) do(agent *fiber.Agent) (int, []byte, error) {
	agent.Timeout(c.timeout)
	if err := agent.Parse(); err != nil {
		return 0, nil, fmt.Errorf("prepare request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.logger.Error().Err(err).Msg("api request failed")
		return 0, nil, err
	}
	return code, body, nil
}

func statusError(code int, body []byte) error {
	var apiErr struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &apiErr)
	return &StatusError{Code: code, Detail: apiErr.Detail}
}
