package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
)

// RegisterDocumentRoutes sets up folder and document routes
func RegisterDocumentRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	folderController := controllers.NewFolderController(deps)
	documentController := controllers.NewDocumentController(deps)

	folders := e.Group("/api/folders", authed)
	folders.GET("", folderController.ListFolders)
	folders.POST("", folderController.CreateFolder)
	folders.PUT("/:id", folderController.UpdateFolder)
	folders.DELETE("/:id", folderController.DeleteFolder)

	documents := e.Group("/api/documents", authed)
	documents.GET("", documentController.ListDocuments)
	documents.POST("/upload", documentController.UploadDocument)
	documents.GET("/:id", documentController.GetDocument)
	documents.GET("/:id/download", documentController.DownloadDocument)
	documents.DELETE("/:id", documentController.DeleteDocument)
}
