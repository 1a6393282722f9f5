package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/services"
)

type BackupController struct {
	Backup *services.BackupService
}

func NewBackupController(backup *services.BackupService) *BackupController {
	return &BackupController{Backup: backup}
}

func requireRoot(c echo.Context) *models.User {
	user := middleware.UserFromContext(c)
	if user == nil || user.Role != models.RoleRoot {
		return nil
	}
	return user
}

// Export streams a full SQL dump of the database.
func (bc *BackupController) Export(c echo.Context) error {
	if requireRoot(c) == nil {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	dump, err := bc.Backup.ExportSQL()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao gerar export"})
	}

	filename := fmt.Sprintf("iab_finance_export_%s.sql", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/sql", []byte(dump))
}

// Download streams the raw database file.
func (bc *BackupController) Download(c echo.Context) error {
	if requireRoot(c) == nil {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	data, err := bc.Backup.DatabaseBytes()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao ler banco de dados"})
	}

	filename := fmt.Sprintf("iab_finance_backup_%s.db", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}

// Test triggers one backup cycle immediately, outside the weekly schedule.
func (bc *BackupController) Test(c echo.Context) error {
	if requireRoot(c) == nil {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	go bc.Backup.RunWeeklyBackup()
	return c.JSON(http.StatusOK, models.OkResponse{OK: true})
}
