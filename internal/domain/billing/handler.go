package billing

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
	readGroup.GET("/bills/:id", h.GetBill)
	readGroup.GET("/patients/:id/bills", h.ListByPatient)

	writeGroup := api.Group("", auth.RequireRole("admin", "secretary"))
	writeGroup.POST("/bills", h.CreateBill)
	writeGroup.PUT("/bills/:id", h.UpdateBill)
	writeGroup.DELETE("/bills/:id", h.DeleteBill)
	writeGroup.POST("/bills/:id/elements", h.AddElement)
	writeGroup.DELETE("/bills/:id/elements/:elementId", h.RemoveElement)
}

func (h *Handler) CreateBill(c echo.Context) error {
	var bill Bill
	if err := c.Bind(&bill); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.CreateBill(ctx, tenancy.CallerFromContext(ctx), &bill); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, bill)
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	bill, err := h.svc.GetBill(ctx, tenancy.CallerFromContext(ctx), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) UpdateBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var bill Bill
	if err := c.Bind(&bill); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bill.ID = id
	ctx := c.Request().Context()
	if err := h.svc.UpdateBill(ctx, tenancy.CallerFromContext(ctx), &bill); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) DeleteBill(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.DeleteBill(ctx, tenancy.CallerFromContext(ctx), id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	bills, err := h.svc.ListByPatient(ctx, tenancy.CallerFromContext(ctx), patientID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, bills)
}

func (h *Handler) AddElement(c echo.Context) error {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var el BillElement
	if err := c.Bind(&el); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	el.BillID = billID
	ctx := c.Request().Context()
	bill, err := h.svc.AddElement(ctx, tenancy.CallerFromContext(ctx), &el)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, bill)
}

func (h *Handler) RemoveElement(c echo.Context) error {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	elementID, err := uuid.Parse(c.Param("elementId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid element id")
	}
	ctx := c.Request().Context()
	bill, err := h.svc.RemoveElement(ctx, tenancy.CallerFromContext(ctx), billID, elementID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, bill)
}
