package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/nthds/segyscope/internal/adapters/http"
	"github.com/nthds/segyscope/internal/adapters/memstore"
	"github.com/nthds/segyscope/internal/core/domain"
	"github.com/nthds/segyscope/internal/core/usecases"
)

// ---- Mock parser ----

type mockParser struct {
	parseFn func(ctx context.Context, r io.Reader) (*domain.TraceHeaderSet, []float64, error)
}

func (m *mockParser) Parse(ctx context.Context, r io.Reader) (*domain.TraceHeaderSet, []float64, error) {
	if m.parseFn != nil {
		return m.parseFn(ctx, r)
	}
	return &domain.TraceHeaderSet{
		Traces: []domain.TraceHeader{
			{X: 0, Y: 0, Inline: 100, Crossline: 500, Samples: 2},
			{X: 10, Y: 5, Inline: 101, Crossline: 501, Samples: 2},
		},
		ByteSize:         4096,
		SampleIntervalUS: 2000,
	}, []float64{1, -1, 2, -2}, nil
}

// ---- Test helpers ----

func setupApp(parser *mockParser) (*fiber.App, *usecases.DatasetService) {
	svc := usecases.NewDatasetService(memstore.NewDatasetRepository(), parser, nil)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})
	handler.SetupRoutes(app, &handler.Dependencies{Datasets: svc})
	return app, svc
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func uploadDataset(t *testing.T, app *fiber.App, fileName string) *domain.Dataset {
	t.Helper()
	body, contentType := multipartUpload(t, fileName, []byte("segy bytes"))
	req := httptest.NewRequest("POST", "/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	if resp.StatusCode != 201 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status = %d, body %s", resp.StatusCode, raw)
	}

	var ds domain.Dataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return &ds
}

// ---- Tests ----

func TestUploadDataset(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	ds := uploadDataset(t, app, "line42.sgy")
	if ds.ID == "" {
		t.Error("expected generated dataset ID")
	}
	if ds.FileName != "line42.sgy" {
		t.Errorf("file_name = %q, want line42.sgy", ds.FileName)
	}
	if ds.Summary.TraceCount != 2 {
		t.Errorf("trace_count = %d, want 2", ds.Summary.TraceCount)
	}
	if ds.Summary.Area != 50 {
		t.Errorf("area = %v, want 50", ds.Summary.Area)
	}
	if ds.Amplitudes == nil || ds.Amplitudes.SampleCount != 4 {
		t.Errorf("unexpected amplitudes: %+v", ds.Amplitudes)
	}
}

func TestUploadDataset_Unreadable(t *testing.T) {
	app, _ := setupApp(&mockParser{
		parseFn: func(ctx context.Context, r io.Reader) (*domain.TraceHeaderSet, []float64, error) {
			return nil, nil, fmt.Errorf("binary header: %w", domain.ErrUnreadable)
		},
	})

	body, contentType := multipartUpload(t, "broken.sgy", []byte("garbage"))
	req := httptest.NewRequest("POST", "/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Code != "unreadable_input" {
		t.Errorf("code = %q, want unreadable_input", apiErr.Code)
	}
}

func TestUploadDataset_MissingFile(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	req := httptest.NewRequest("POST", "/v1/datasets", strings.NewReader("not multipart"))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadDataset_WrongExtension(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	body, contentType := multipartUpload(t, "notes.txt", []byte("text"))
	req := httptest.NewRequest("POST", "/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadDataset_TooLarge(t *testing.T) {
	svc := usecases.NewDatasetService(memstore.NewDatasetRepository(), &mockParser{}, nil)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             1024,
		ErrorHandler:          handler.ErrorHandler,
	})
	handler.SetupRoutes(app, &handler.Dependencies{Datasets: svc})

	body, contentType := multipartUpload(t, "huge.sgy", bytes.Repeat([]byte{0x5a}, 8192))
	req := httptest.NewRequest("POST", "/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 413 {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Code != "payload_too_large" {
		t.Errorf("code = %q, want payload_too_large", apiErr.Code)
	}
}

func TestListDatasets_Pagination(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	for i := 0; i < 5; i++ {
		uploadDataset(t, app, fmt.Sprintf("line%d.sgy", i))
	}

	req := httptest.NewRequest("GET", "/v1/datasets?offset=2&limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected next and prev links, got %q", link)
	}

	var page struct {
		Data       []domain.Dataset   `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(page.Data))
	}
	if page.Pagination.Total != 5 {
		t.Errorf("total = %d, want 5", page.Pagination.Total)
	}
	if page.Data[0].FileName != "line2.sgy" {
		t.Errorf("first on page = %q, want line2.sgy", page.Data[0].FileName)
	}
}

func TestGetDataset(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got domain.Dataset
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ds.ID {
		t.Errorf("id = %q, want %q", got.ID, ds.ID)
	}
}

func TestGetDataset_NotFound(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/nope", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSummary(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID+"/summary", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var sum domain.SurveySummary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.TraceCount != 2 || sum.Area != 50 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.InlineRange == nil || sum.InlineRange.Min != 100 || sum.InlineRange.Max != 101 {
		t.Errorf("inline range = %+v, want 100-101", sum.InlineRange)
	}
}

func TestListTraces(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID+"/traces?offset=1&limit=1", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var page struct {
		Data       []domain.TraceHeader `json:"data"`
		Pagination handler.Pagination   `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.Total != 2 || len(page.Data) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Data[0].X != 10 || page.Data[0].Y != 5 {
		t.Errorf("trace = %+v, want (10, 5)", page.Data[0])
	}
}

func TestGetAmplitudes(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID+"/amplitudes?bins=4", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Stats     *domain.AmplitudeStats `json:"stats"`
		Histogram []domain.HistogramBin  `json:"histogram"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Stats == nil || body.Stats.SampleCount != 4 {
		t.Errorf("unexpected stats: %+v", body.Stats)
	}
	if len(body.Histogram) == 0 {
		t.Error("expected histogram bins")
	}
}

func TestGetAmplitudes_BadBins(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID+"/amplitudes?bins=0", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteDataset(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/datasets/"+ds.ID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status after delete = %d, want 404", resp.StatusCode)
	}
}

func TestCoverageStats(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	uploadDataset(t, app, "line1.sgy")
	uploadDataset(t, app, "line2.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stats", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report domain.CoverageReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Datasets != 2 || report.Traces != 4 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.TotalArea != 100 {
		t.Errorf("total_area = %v, want 100", report.TotalArea)
	}
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReady(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGraphQL_Coverage(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	uploadDataset(t, app, "line1.sgy")

	query := `{"query":"{ coverage { datasets traces total_area } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Coverage struct {
				Datasets  int     `json:"datasets"`
				Traces    int     `json:"traces"`
				TotalArea float64 `json:"total_area"`
			} `json:"coverage"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Coverage.Datasets != 1 || result.Data.Coverage.Traces != 2 {
		t.Errorf("unexpected coverage: %+v", result.Data.Coverage)
	}
}

func TestCachingMiddleware_KeepsHandlerHeader(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(handler.CachingMiddleware())
	app.Get("/v1/datasets/:id", func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"id": c.Params("id")})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/abc", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want handler-set no-store", got)
	}
}

func TestCachingMiddleware_DefaultApplied(t *testing.T) {
	app, _ := setupApp(&mockParser{})
	ds := uploadDataset(t, app, "line1.sgy")

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/datasets/"+ds.ID, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q, want public, max-age=3600", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app, _ := setupApp(&mockParser{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-API-Version"); got == "" {
		t.Error("expected X-API-Version header")
	}
}
