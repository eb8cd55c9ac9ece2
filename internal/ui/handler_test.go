package ui

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-api/internal/dto"
)

type stubAPI struct {
	students  []dto.StudentResponse
	listErr   error
	createErr error
	deleteErr error

	created []dto.StudentCreateRequest
	deleted []string
}

func (s *stubAPI) CreateStudent(firstName, lastName string) (dto.StudentResponse, error) {
	s.created = append(s.created, dto.StudentCreateRequest{FirstName: firstName, LastName: lastName})
	if s.createErr != nil {
		return dto.StudentResponse{}, s.createErr
	}
	return dto.StudentResponse{ID: 1, FirstName: firstName, LastName: lastName}, nil
}

func (s *stubAPI) ListStudents() ([]dto.StudentResponse, error) {
	return s.students, s.listErr
}

func (s *stubAPI) DeleteStudent(id string) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func newPageApp(api StudentAPI) *fiber.App {
	app := fiber.New()
	NewHandler(api, zerolog.Nop()).Register(app)
	return app
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestIndexListsStudents(t *testing.T) {
	app := newPageApp(&stubAPI{students: []dto.StudentResponse{{ID: 4, FirstName: "John 42", LastName: "World 42"}}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body := readBody(t, resp)
	require.Contains(t, body, "<h1>University API</h1>")
	require.Contains(t, body, "List of Students:")
	require.Contains(t, body, "- 4: John 42 World 42")
	require.Contains(t, body, "Student ID to Delete")
}

func TestIndexShowsListFailure(t *testing.T) {
	app := newPageApp(&stubAPI{listErr: errors.New("unexpected status 400")})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Contains(t, body, MsgListFailed)
	require.NotContains(t, body, "List of Students:")
}

func TestIndexRendersFlashEscaped(t *testing.T) {
	app := newPageApp(&stubAPI{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?kind=error&message=%3Cb%3Ehi%3C%2Fb%3E", nil))
	require.NoError(t, err)

	body := readBody(t, resp)
	require.Contains(t, body, "&lt;b&gt;hi&lt;/b&gt;")
	require.Contains(t, body, `class="flash error"`)
}

func TestCreateRedirectsWithFlash(t *testing.T) {
	api := &stubAPI{}
	app := newPageApp(api)

	resp := postForm(t, app, "/students", url.Values{"first_name": {"Ada"}, "last_name": {"Lovelace"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, []dto.StudentCreateRequest{{FirstName: "Ada", LastName: "Lovelace"}}, api.created)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, MsgCreated, location.Query().Get("message"))
	require.Equal(t, "success", location.Query().Get("kind"))
}

func TestCreateFailureFlash(t *testing.T) {
	app := newPageApp(&stubAPI{createErr: &StatusError{Code: fiber.StatusUnprocessableEntity}})

	resp := postForm(t, app, "/students", url.Values{"first_name": {""}})
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, MsgCreateFailed, location.Query().Get("message"))
	require.Equal(t, "error", location.Query().Get("kind"))
}

func TestDeleteRedirects(t *testing.T) {
	api := &stubAPI{}
	app := newPageApp(api)

	resp := postForm(t, app, "/students/delete", url.Values{"student_id": {"12"}})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, []string{"12"}, api.deleted)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, MsgDeleted, location.Query().Get("message"))
}

func TestDeleteFailureReportsStatus(t *testing.T) {
	app := newPageApp(&stubAPI{deleteErr: &StatusError{Code: fiber.StatusUnprocessableEntity}})

	resp := postForm(t, app, "/students/delete", url.Values{"student_id": {"abc"}})
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Failed to delete student. Status code: 422", location.Query().Get("message"))
}
