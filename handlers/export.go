package handlers

import (
	"fmt"
	"net/http"
	"time"

	"asset_manager_go/db"
	"asset_manager_go/services"

	"github.com/labstack/echo/v4"
)

// ExportAssetsHandler generates and serves the Excel asset register
// GET /api/organizations/:id/assets/export
func ExportAssetsHandler(c echo.Context) error {
	organizationID := c.Param("id")

	buf, err := services.GenerateAssetExport(db.DB, organizationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate export")
	}

	filename := fmt.Sprintf("assets_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)

	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// PrintSheetHandler renders selected assets' code sheets to a printable PDF
// POST /api/assets/print-sheet
func PrintSheetHandler(c echo.Context) error {
	var req struct {
		AssetIDs []string `json:"asset_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if len(req.AssetIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "asset_ids is required"})
	}

	pdf, err := services.GeneratePrintSheetPDF(db.DB, req.AssetIDs, services.DefaultPrintSheetOptions())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate print sheet")
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=code_sheets.pdf")
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
