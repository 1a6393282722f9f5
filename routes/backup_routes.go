package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

// RegisterBackupRoutes sets up export, download and manual backup under
// the authenticated group. All three are root-only inside the handlers.
func RegisterBackupRoutes(g *echo.Group, backupController *controllers.BackupController) {
	g.GET("/backup/export", backupController.Export)
	g.GET("/backup/download", backupController.Download)
	g.POST("/backup/test", backupController.Test)
}
