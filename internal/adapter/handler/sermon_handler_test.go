package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/huytrandev/sermon-scribe/internal/adapter/repository"
	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
	"github.com/huytrandev/sermon-scribe/internal/domain/repositories"
	"github.com/huytrandev/sermon-scribe/internal/infrastructure/cache"
	pkgvalidator "github.com/huytrandev/sermon-scribe/pkg/validator"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

func newHandlerFixture(t *testing.T) (*echo.Echo, *Sermon, repositories.SermonRepository) {
	t.Helper()
	repo := repository.NewSermonRepository(cache.NewMemoryStore(), "savedSermons", nil)
	return newTestEcho(), NewSermonHandler(repo, nil), repo
}

func TestSermonList(t *testing.T) {
	e, h, repo := newHandlerFixture(t)
	if err := repo.Insert(context.Background(), entities.NewSermon(time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/sermons", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Total   int               `json:"total"`
			Sermons []entities.Sermon `json:"sermons"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Total != 1 || len(resp.Data.Sermons) != 1 {
		t.Fatalf("unexpected list response: %+v", resp.Data)
	}
}

func TestSermonGet_NotFound(t *testing.T) {
	e, h, _ := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sermons/rec_0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("rec_0")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSermonUpdate_TitleAndNotes(t *testing.T) {
	e, h, repo := newHandlerFixture(t)
	sermon := entities.NewSermon(time.Now())
	if err := repo.Insert(context.Background(), sermon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"title":"Sunday Morning","notes":"great point about grace"}`
	req := httptest.NewRequest(http.MethodPatch, "/v1/sermons/"+sermon.ID, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sermon.ID)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := repo.GetByID(context.Background(), sermon.ID)
	if stored.Title != "Sunday Morning" || stored.Notes != "great point about grace" {
		t.Fatalf("update not persisted: %+v", stored)
	}
}

func TestSermonUpdate_EmptyBodyRejected(t *testing.T) {
	e, h, repo := newHandlerFixture(t)
	sermon := entities.NewSermon(time.Now())
	if err := repo.Insert(context.Background(), sermon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/v1/sermons/"+sermon.ID, strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sermon.ID)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSermonUpdate_MissingID(t *testing.T) {
	e, h, _ := newHandlerFixture(t)

	body := `{"notes":"x"}`
	req := httptest.NewRequest(http.MethodPatch, "/v1/sermons/rec_0", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("rec_0")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSermonDelete(t *testing.T) {
	e, h, repo := newHandlerFixture(t)
	sermon := entities.NewSermon(time.Now())
	if err := repo.Insert(context.Background(), sermon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/sermons/"+sermon.ID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sermon.ID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	sermons, _ := repo.GetAll(context.Background())
	if len(sermons) != 0 {
		t.Fatalf("sermon not deleted: %d remain", len(sermons))
	}
}
