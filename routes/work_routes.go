package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
)

// RegisterWorkRoutes sets up project, task and note routes. Role checks for
// writes happen in the controllers.
func RegisterWorkRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	projectController := controllers.NewProjectController(deps)
	taskController := controllers.NewTaskController(deps)
	noteController := controllers.NewNoteController(deps)

	projects := e.Group("/api/projects", authed)
	projects.GET("", projectController.ListProjects)
	projects.POST("", projectController.CreateProject)
	projects.GET("/:id", projectController.GetProject)
	projects.PUT("/:id", projectController.UpdateProject)
	projects.PATCH("/:id/status", projectController.UpdateProjectStatus)
	projects.DELETE("/:id", projectController.DeleteProject)

	tasks := e.Group("/api/tasks", authed)
	tasks.GET("", taskController.ListTasks)
	tasks.POST("", taskController.CreateTask)
	tasks.GET("/:id", taskController.GetTask)
	tasks.PUT("/:id", taskController.UpdateTask)
	tasks.DELETE("/:id", taskController.DeleteTask)

	notes := e.Group("/api/notes", authed)
	notes.GET("", noteController.ListNotes)
	notes.POST("", noteController.CreateNote)
	notes.PUT("/:id", noteController.UpdateNote)
	notes.DELETE("/:id", noteController.DeleteNote)
}
