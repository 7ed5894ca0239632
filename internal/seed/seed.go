package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "docentes/internal/errors"
	"docentes/internal/logger"
	"docentes/internal/model"
	"docentes/internal/service"
	"docentes/internal/validation"
)

// Result summarizes a seed run.
type Result struct {
	Created  int
	Existing int
	Rejected int
}

// Fetch reads a JSON array of teachers from an http(s) URL or a local file.
func Fetch(ctx context.Context, source string) ([]model.Teacher, error) {
	var body []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetchURL(ctx, source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

// Parse decodes a JSON array of teachers.
func Parse(body []byte) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := json.Unmarshal(body, &teachers); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return teachers, nil
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code: %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Apply creates every teacher whose email is not stored yet. Records that
// break the field rules or that the service rejects are logged and counted;
// any other failure aborts the run.
func Apply(ctx context.Context, svc service.TeacherService, v *validator.Validate, log *logger.Logger, teachers []model.Teacher) (Result, error) {
	var res Result

	stored, err := svc.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list existing teachers: %w", err)
	}
	known := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		known[t.Email] = struct{}{}
	}

	for i := range teachers {
		t := teachers[i]
		t.ID = 0
		if err := v.Struct(&t); err != nil {
			log.Warn("skipping invalid teacher", "email", t.Email, "errors", validation.ToDetails(err))
			res.Rejected++
			continue
		}
		if _, ok := known[t.Email]; ok {
			res.Existing++
			continue
		}

		if _, err := svc.Create(ctx, &t); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrDuplicateEmail):
				res.Existing++
			case apperrors.KindOf(err) != apperrors.KindUnexpected:
				log.Warn("skipping teacher", "email", t.Email, "error", err)
				res.Rejected++
			default:
				return res, fmt.Errorf("create teacher %s: %w", t.Email, err)
			}
			continue
		}
		known[t.Email] = struct{}{}
		res.Created++
	}
	return res, nil
}
