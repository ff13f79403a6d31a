package surveillance

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
	"github.com/ngirwi/medrecord/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "secretary"))
	readGroup.GET("/surveillance-sheets/:id", h.GetSheet)
	readGroup.GET("/hospitalisations/:id/surveillance-sheets", h.ListByAdmission)

	writeGroup := api.Group("", auth.RequireRole("admin", "doctor", "secretary"))
	writeGroup.POST("/surveillance-sheets", h.CreateSheet)
	writeGroup.PUT("/surveillance-sheets/:id", h.UpdateSheet)
	writeGroup.DELETE("/surveillance-sheets/:id", h.DeleteSheet)
	writeGroup.POST("/surveillance-sheets/:id/attach/:hospitalisationId", h.Attach)
	writeGroup.POST("/surveillance-sheets/:id/medications", h.AddMedication)
	writeGroup.DELETE("/surveillance-sheets/:id/medications/:entryId", h.RemoveMedication)
	writeGroup.POST("/surveillance-sheets/:id/acts", h.AddAct)
	writeGroup.DELETE("/surveillance-sheets/:id/acts/:entryId", h.RemoveAct)
	writeGroup.POST("/surveillance-sheets/:id/mini-consultations", h.AddMiniConsultation)
	writeGroup.DELETE("/surveillance-sheets/:id/mini-consultations/:entryId", h.RemoveMiniConsultation)
}

func (h *Handler) CreateSheet(c echo.Context) error {
	var sheet Sheet
	if err := c.Bind(&sheet); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.CreateSheet(ctx, tenancy.CallerFromContext(ctx), &sheet); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sheet)
}

func (h *Handler) GetSheet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	sheet, err := h.svc.GetSheet(ctx, tenancy.CallerFromContext(ctx), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, sheet)
}

func (h *Handler) UpdateSheet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sheet Sheet
	if err := c.Bind(&sheet); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sheet.ID = id
	ctx := c.Request().Context()
	if err := h.svc.UpdateSheet(ctx, tenancy.CallerFromContext(ctx), &sheet); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, sheet)
}

func (h *Handler) DeleteSheet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteSheet(ctx, tenancy.CallerFromContext(ctx), id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByAdmission(c echo.Context) error {
	hospID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	sheets, err := h.svc.ListByAdmission(ctx, tenancy.CallerFromContext(ctx), hospID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, sheets)
}

func (h *Handler) Attach(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sheet id")
	}
	hospID, err := uuid.Parse(c.Param("hospitalisationId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospitalisation id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Attach(ctx, tenancy.CallerFromContext(ctx), sheetID, hospID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddMedication(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var entry MedicationEntry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry.SheetID = sheetID
	ctx := c.Request().Context()
	if err := h.svc.AddMedication(ctx, tenancy.CallerFromContext(ctx), &entry); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) RemoveMedication(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	ctx := c.Request().Context()
	if err := h.svc.RemoveMedication(ctx, tenancy.CallerFromContext(ctx), sheetID, entryID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddAct(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var entry ActEntry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry.SheetID = sheetID
	ctx := c.Request().Context()
	if err := h.svc.AddAct(ctx, tenancy.CallerFromContext(ctx), &entry); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) RemoveAct(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	ctx := c.Request().Context()
	if err := h.svc.RemoveAct(ctx, tenancy.CallerFromContext(ctx), sheetID, entryID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddMiniConsultation(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var entry MiniConsultation
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry.SheetID = sheetID
	ctx := c.Request().Context()
	if err := h.svc.AddMiniConsultation(ctx, tenancy.CallerFromContext(ctx), &entry); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) RemoveMiniConsultation(c echo.Context) error {
	sheetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	ctx := c.Request().Context()
	if err := h.svc.RemoveMiniConsultation(ctx, tenancy.CallerFromContext(ctx), sheetID, entryID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
