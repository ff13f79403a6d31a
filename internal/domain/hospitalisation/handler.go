package hospitalisation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
	"github.com/ngirwi/medrecord/internal/platform/auth"
	"github.com/ngirwi/medrecord/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "secretary"))
	readGroup.GET("/hospitalisations", h.Search)
	readGroup.GET("/hospitalisations/:id", h.Get)
	readGroup.GET("/hospitalisations/:id/billing-summary", h.Summary)
	readGroup.GET("/hospitalisations/:id/billing-summary.xlsx", h.ExportSummary)
	readGroup.GET("/patients/:id/hospitalisations", h.ListByPatient)
	readGroup.GET("/patients/:id/hospitalisations/active", h.ActiveForPatient)

	writeGroup := api.Group("", auth.RequireRole("admin", "doctor", "secretary"))
	writeGroup.POST("/hospitalisations", h.Open)
	writeGroup.PUT("/hospitalisations/:id", h.Update)
	writeGroup.PATCH("/hospitalisations/:id", h.PartialUpdate)
	writeGroup.DELETE("/hospitalisations/:id", h.Delete)
	writeGroup.POST("/hospitalisations/:id/close", h.Close)
	writeGroup.POST("/hospitalisations/:id/billing-summary/finalize", h.FinalizeBilling)
}

type openRequest struct {
	Hospitalisation
	SheetIDs []uuid.UUID `json:"sheet_ids,omitempty"`
}

func (h *Handler) Open(c echo.Context) error {
	var req openRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.Open(ctx, tenancy.CallerFromContext(ctx), &req.Hospitalisation, req.SheetIDs); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, req.Hospitalisation)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	hosp, err := h.svc.Get(ctx, tenancy.CallerFromContext(ctx), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var hosp Hospitalisation
	if err := c.Bind(&hosp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hosp.ID = id
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, tenancy.CallerFromContext(ctx), &hosp); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) PartialUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	hosp, err := h.svc.PartialUpdate(ctx, tenancy.CallerFromContext(ctx), id, patch)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, tenancy.CallerFromContext(ctx), id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type closeRequest struct {
	ReleaseDate    time.Time `json:"release_date"`
	FinalDiagnosis *string   `json:"final_diagnosis,omitempty"`
	GenerateBill   bool      `json:"generate_bill"`
}

func (h *Handler) Close(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req closeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	hosp, err := h.svc.Close(ctx, tenancy.CallerFromContext(ctx), id, req.ReleaseDate, req.FinalDiagnosis, req.GenerateBill)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) Summary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	summary, err := h.svc.Summary(ctx, tenancy.CallerFromContext(ctx), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) FinalizeBilling(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	summary, err := h.svc.FinalizeBilling(ctx, tenancy.CallerFromContext(ctx), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ExportSummary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	caller := tenancy.CallerFromContext(ctx)
	hosp, err := h.svc.Get(ctx, caller, id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	summary, err := h.svc.Summary(ctx, caller, id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	f, err := SummaryWorkbook(hosp, summary)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="billing-summary-%s.xlsx"`, id))
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	hosps, err := h.svc.ListByPatient(ctx, tenancy.CallerFromContext(ctx), patientID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosps)
}

func (h *Handler) ActiveForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	hosp, err := h.svc.ActiveForPatient(ctx, tenancy.CallerFromContext(ctx), patientID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) Search(c echo.Context) error {
	filter, err := parseSearchFilter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	hosps, total, err := h.svc.Search(ctx, tenancy.CallerFromContext(ctx), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(hosps, total, pg.Limit, pg.Offset))
}

func parseSearchFilter(c echo.Context) (SearchFilter, error) {
	var filter SearchFilter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid patient_id")
		}
		filter.PatientID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			return filter, fmt.Errorf("unknown status %q", v)
		}
		filter.Status = &status
	}
	if c.QueryParam("active") == "true" {
		filter.ActiveOnly = true
	}
	if v := c.QueryParam("service"); v != "" {
		filter.ServiceName = &v
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid from date, want RFC 3339")
		}
		filter.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid to date, want RFC 3339")
		}
		filter.To = &t
	}
	return filter, nil
}
