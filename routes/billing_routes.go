package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
)

// RegisterBillingRoutes sets up invoice routes
func RegisterBillingRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	invoiceController := controllers.NewInvoiceController(deps)

	invoices := e.Group("/api/invoices", authed)
	invoices.GET("", invoiceController.ListInvoices)
	invoices.POST("", invoiceController.CreateInvoice)
	invoices.GET("/:id", invoiceController.GetInvoice)
	invoices.GET("/:id/qrcode", invoiceController.GetInvoiceQRCode)
	invoices.PUT("/:id", invoiceController.UpdateInvoice)
	invoices.DELETE("/:id", invoiceController.DeleteInvoice)
}

// RegisterCatalogRoutes sets up service type and task category routes
func RegisterCatalogRoutes(e *echo.Echo, deps *controllers.Deps, authed echo.MiddlewareFunc) {
	catalogController := controllers.NewCatalogController(deps)

	serviceTypes := e.Group("/api/service-types", authed)
	serviceTypes.GET("", catalogController.ListServiceTypes)
	serviceTypes.POST("", catalogController.CreateServiceType)
	serviceTypes.PUT("/:id", catalogController.UpdateServiceType)
	serviceTypes.DELETE("/:id", catalogController.DeleteServiceType)

	categories := e.Group("/api/task-categories", authed)
	categories.GET("", catalogController.ListTaskCategories)
	categories.POST("", catalogController.CreateTaskCategory)
	categories.PUT("/:id", catalogController.UpdateTaskCategory)
	categories.DELETE("/:id", catalogController.DeleteTaskCategory)
}
