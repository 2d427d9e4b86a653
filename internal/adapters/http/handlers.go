package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nthds/segyscope/internal/core/domain"
	"github.com/nthds/segyscope/internal/pkg/metrics"
)

// UploadDatasetHandler accepts a multipart SEGY upload, runs the full
// analysis, and returns the stored dataset.
func UploadDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return errBadRequest(c, "multipart field 'file' is required")
		}

		name := fh.Filename
		if name == "" {
			name = "upload.sgy"
		}
		if !strings.HasSuffix(strings.ToLower(name), ".sgy") && !strings.HasSuffix(strings.ToLower(name), ".segy") {
			return errBadRequest(c, "expected a .sgy or .segy file")
		}

		f, err := fh.Open()
		if err != nil {
			return errInternal(c, "open upload: "+err.Error())
		}
		defer f.Close()

		start := time.Now()
		ds, err := deps.Datasets.Analyze(c.UserContext(), name, f)
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, domain.ErrUnreadable) {
				metrics.FilesAnalyzed.WithLabelValues("unreadable").Inc()
				return errUnreadable(c, err.Error())
			}
			metrics.FilesAnalyzed.WithLabelValues("error").Inc()
			return errInternal(c, err.Error())
		}

		metrics.FilesAnalyzed.WithLabelValues("ok").Inc()
		metrics.TracesScanned.Add(float64(ds.Summary.TraceCount))
		metrics.UploadBytes.Observe(float64(ds.ByteSize))
		if all, err := deps.Datasets.List(c.UserContext()); err == nil {
			metrics.DatasetsStored.Set(float64(len(all)))
		}

		LoggerFromCtx(c.UserContext()).Info("dataset analyzed",
			"dataset", ds.ID,
			"file", ds.FileName,
			"traces", ds.Summary.TraceCount,
			"bytes", ds.ByteSize,
		)

		return c.Status(201).JSON(ds)
	}
}

// ListDatasetsHandler returns stored datasets in upload order.
func ListDatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		datasets, err := deps.Datasets.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset, limit := pageParams(c, 100, 200)

		total := len(datasets)
		if offset >= total {
			datasets = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			datasets = datasets[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: datasets, Pagination: pg})
	}
}

// GetDatasetHandler returns a single dataset by ID.
func GetDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "dataset id is required")
		}
		ds, err := deps.Datasets.GetByID(c.UserContext(), id)
		if err != nil {
			return errNotFound(c, "dataset not found")
		}
		return c.JSON(ds)
	}
}

// GetSummaryHandler returns just the survey summary of a dataset.
func GetSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "dataset id is required")
		}
		ds, err := deps.Datasets.GetByID(c.UserContext(), id)
		if err != nil {
			return errNotFound(c, "dataset not found")
		}
		return c.JSON(ds.Summary)
	}
}

// ListTracesHandler returns a page of trace headers for map plotting.
func ListTracesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "dataset id is required")
		}

		offset, limit := pageParams(c, 500, 5000)

		page, total, err := deps.Datasets.TracePage(c.UserContext(), id, offset, limit)
		if err != nil {
			return errNotFound(c, "dataset not found")
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetAmplitudesHandler returns amplitude statistics plus the binned histogram.
func GetAmplitudesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "dataset id is required")
		}

		bins := c.QueryInt("bins", 100)
		if bins <= 0 || bins > 1000 {
			return errBadRequest(c, "bins must be between 1 and 1000")
		}

		ds, err := deps.Datasets.GetByID(c.UserContext(), id)
		if err != nil {
			return errNotFound(c, "dataset not found")
		}

		hist, err := deps.Datasets.Histogram(c.UserContext(), id, bins)
		if err != nil {
			if errors.Is(err, domain.ErrNoAmplitudes) {
				return errNotFound(c, "dataset has no decoded amplitude samples")
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"stats":     ds.Amplitudes,
			"histogram": hist,
		})
	}
}

// DeleteDatasetHandler removes a dataset from the store.
func DeleteDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "dataset id is required")
		}
		if err := deps.Datasets.Delete(c.UserContext(), id); err != nil {
			return errNotFound(c, "dataset not found")
		}
		if all, err := deps.Datasets.List(c.UserContext()); err == nil {
			metrics.DatasetsStored.Set(float64(len(all)))
		}
		return c.SendStatus(204)
	}
}

// CoverageHandler returns survey coverage aggregated across all datasets.
func CoverageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := deps.Datasets.Coverage(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(report)
	}
}
