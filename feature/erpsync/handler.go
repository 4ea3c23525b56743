package erpsync

import (
	"errors"
	"fmt"

	"device-manager/core/logger"
	"device-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for ERP synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleSynchronize)
	group.Get("/last", h.HandleGetLast)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/:name", h.HandleGetReport)
}

// HandleSynchronize runs a synchronization with the ERP.
//
// Unknown kinds are passed to the run and reported as validation errors in
// result.errors. When the only failed passes are those unknown kinds and at
// least one known kind ran, the response is still 200.
// @Summary Synchronize With ERP
// @Description Fetches orders, clients and products from the ERP and reconciles them into the local store. Unknown kinds are listed in result.errors with class validation.
// @Tags sync
// @Produce json
// @Param kinds query string false "Comma separated kinds (orders, clients, products); all when empty"
// @Success 200 {object} Run "Run result, possibly with unknown kinds in result.errors"
// @Failure 400 {object} map[string]interface{} "A fetch failed or no known kind was requested"
// @Router /sync [post]
func (h *Handler) HandleSynchronize(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	kinds, unknown := reconcile.ParseKinds(c.Query("kinds"))
	ranKnown := len(kinds) > 0 || len(unknown) == 0
	for _, name := range unknown {
		kinds = append(kinds, reconcile.RecordKind(name))
	}

	run := h.service.Synchronize(c.UserContext(), kinds, TriggerAPI)
	if run.Result.OverallSuccess {
		return c.JSON(run)
	}

	passErrs := run.Result.PassErrors()
	if ranKnown && onlyUnknownKinds(passErrs) {
		l.Warn("Synchronization requested unknown kinds",
			zap.String("run_id", run.ID),
			zap.Strings("unknown", unknown),
		)
		return c.JSON(run)
	}

	msg := "failed to synchronize with ERP"
	if err := errors.Join(passErrs...); err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.Warn("Synchronization failed", zap.String("run_id", run.ID), zap.String("message", msg))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": msg,
		"result":  run,
	})
}

func onlyUnknownKinds(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, reconcile.ErrUnknownKind) {
			return false
		}
	}
	return len(errs) > 0
}

// HandleGetLast returns the most recent run.
// @Summary Last Sync Run
// @Tags sync
// @Produce json
// @Success 200 {object} Run "Run result"
// @Failure 404 {object} map[string]string "No run yet"
// @Router /sync/last [get]
func (h *Handler) HandleGetLast(c *fiber.Ctx) error {
	run := h.service.Last()
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no synchronization has run yet",
		})
	}
	return c.JSON(run)
}

// HandleListReports lists archived sync reports.
// @Summary List Sync Reports
// @Tags sync
// @Produce json
// @Success 200 {array} ReportInfo
// @Failure 404 {object} map[string]string "Archive disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return archiveDisabled(c)
	}

	reports, err := archive.List(c.UserContext())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("List reports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(reports)
}

// HandleGetReport returns one archived sync report.
// @Summary Get Sync Report
// @Tags sync
// @Produce json
// @Param name path string true "Report name"
// @Success 200 {object} Run "Archived run"
// @Failure 400 {object} map[string]string "Invalid name"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sync/reports/{name} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return archiveDisabled(c)
	}

	run, err := archive.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidReportName):
			status = fiber.StatusBadRequest
		case errors.Is(err, ErrReportNotFound):
			status = fiber.StatusNotFound
		default:
			logger.WithRayID(h.service.logger, c).Error("Get report failed", zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}

func archiveDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "report archive is disabled",
	})
}
