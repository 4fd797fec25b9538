// controllers/report_controller.go
package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/floracart/floracart_backend/models"
	"github.com/floracart/floracart_backend/services"
)

// ReportController exposes monthly report generation and retrieval to the
// operator console
type ReportController struct {
	DB        *mongo.Database
	Generator *services.ReportGenerator
}

// NewReportController creates a new report controller
func NewReportController(db *mongo.Database, generator *services.ReportGenerator) *ReportController {
	return &ReportController{DB: db, Generator: generator}
}

// GenerateReport builds the monthly snapshot for the requested period.
// Operator only. A period that already has a report returns 409; the stored
// snapshot is never recomputed.
func (rc *ReportController) GenerateReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var req models.AccrualRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	report, err := rc.Generator.GenerateMonthlyReport(ctx, req.Month, req.Year)
	if err != nil {
		if errors.Is(err, services.ErrReportExists) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: fmt.Sprintf("Report for %d/%d has already been generated", req.Month, req.Year),
			})
		}
		log.Printf("Failed to generate report %d/%d: %v", req.Month, req.Year, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate report",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Report generated successfully",
		Data:    report,
	})
}

// GetReports lists generated reports, newest period first
func (rc *ReportController) GetReports(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := rc.DB.Collection("monthly_reports").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}))
	if err != nil {
		log.Printf("Failed to list reports: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve reports",
		})
	}
	defer cursor.Close(ctx)

	reports := []models.MonthlyReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		log.Printf("Failed to decode reports: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve reports",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reports retrieved successfully",
		Data:    reports,
	})
}

// GetReport returns the report for one period, addressed as /:year/:month
func (rc *ReportController) GetReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid year",
		})
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid month",
		})
	}

	var report models.MonthlyReport
	err = rc.DB.Collection("monthly_reports").FindOne(ctx, bson.M{"month": month, "year": year}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: fmt.Sprintf("No report has been generated for %d/%d", month, year),
			})
		}
		log.Printf("Failed to load report %d/%d: %v", month, year, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve report",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Report retrieved successfully",
		Data:    report,
	})
}
