package controllers

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
	"github.com/HSouheill/taxdesk_backend/utils"
)

const qrSize = 300

type InvoiceController struct {
	*Deps
}

func NewInvoiceController(d *Deps) *InvoiceController {
	return &InvoiceController{Deps: d}
}

// NewInvoiceNumber returns INV-YYYYMMDD-XXXXXX for the given day.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

func (ic *InvoiceController) ListInvoices(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	clientID, err := queryID(c, "clientId")
	if err != nil {
		return err
	}
	status := c.QueryParam("status")
	if status != "" && !models.ValidInvoiceStatus(status) {
		return apperrors.Validation("Invalid status filter")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	invoices, err := ic.Store.Invoices.List(ctx, repositories.InvoiceFilter{
		Scope:    scopeOf(user),
		ClientID: clientID,
		Status:   status,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", invoices)
}

func (ic *InvoiceController) CreateInvoice(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.InvoiceCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	if !models.ValidInvoiceStatus(status) {
		return apperrors.Validation("Invalid invoice status")
	}
	projectID, err := parseOptionalID(req.ProjectID, "projectId")
	if err != nil {
		return err
	}

	now := ic.now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	if req.DueDate.Before(issueDate) {
		return apperrors.Validation("Due date cannot be before issue date")
	}
	number := strings.TrimSpace(utils.SanitizeInput(req.InvoiceNumber))
	if number == "" {
		number = NewInvoiceNumber(now)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := ic.activeClient(ctx, user.ID, req.ClientID)
	if err != nil {
		return err
	}
	if projectID != nil {
		project, err := ic.Store.Projects.FindByID(ctx, *projectID, scopeOf(user))
		if apperrors.Is(err, apperrors.KindNotFound) {
			return apperrors.Validation("Unknown projectId")
		}
		if err != nil {
			return err
		}
		if project.ClientID != client.ID {
			return apperrors.Validation("Project belongs to a different client")
		}
	}

	invoice := &models.Invoice{
		InvoiceNumber: number,
		ClientID:      client.ID,
		AdminID:       user.ID,
		ProjectID:     projectID,
		Amount:        req.Amount,
		Description:   utils.SanitizeInput(req.Description),
		IssueDate:     issueDate,
		DueDate:       req.DueDate,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.SetStatus(status, now)

	if err := ic.Store.Invoices.Create(ctx, invoice); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Invoice created successfully", invoice)
}

func (ic *InvoiceController) GetInvoice(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "invoice")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.Store.Invoices.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", invoice)
}

func (ic *InvoiceController) UpdateInvoice(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "invoice")
	if err != nil {
		return err
	}
	var req models.InvoiceUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.Store.Invoices.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return apperrors.Validation("Amount must be greater than zero")
		}
		invoice.Amount = *req.Amount
	}
	if req.Description != nil {
		invoice.Description = utils.SanitizeInput(*req.Description)
	}
	if req.DueDate != nil {
		if req.DueDate.Before(invoice.IssueDate) {
			return apperrors.Validation("Due date cannot be before issue date")
		}
		invoice.DueDate = *req.DueDate
	}

	now := ic.now()
	statusChanged := false
	if req.Status != nil && *req.Status != invoice.Status {
		if !models.ValidInvoiceStatus(*req.Status) {
			return apperrors.Validation("Invalid invoice status")
		}
		invoice.SetStatus(*req.Status, now)
		statusChanged = true
	}

	invoice.UpdatedAt = now
	if err := ic.Store.Invoices.Update(ctx, invoice); err != nil {
		return err
	}

	if statusChanged {
		ic.notify(user.ID, services.EventInvoiceUpdated,
			fmt.Sprintf("Invoice %s is now %s", invoice.InvoiceNumber, invoice.Status), invoice)
	}
	return respond(c, http.StatusOK, "Invoice updated successfully", invoice)
}

// DeleteInvoice cancels the invoice and hides it.
func (ic *InvoiceController) DeleteInvoice(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "invoice")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.Store.Invoices.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	now := ic.now()
	invoice.SetStatus(models.InvoiceStatusCancelled, now)
	invoice.IsActive = false
	invoice.UpdatedAt = now
	if err := ic.Store.Invoices.Update(ctx, invoice); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Invoice deleted successfully", nil)
}

// GetInvoiceQRCode renders a PNG QR code carrying the invoice reference.
func (ic *InvoiceController) GetInvoiceQRCode(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "invoice")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	invoice, err := ic.Store.Invoices.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	data, err := invoiceQRCode(invoice)
	if err != nil {
		ic.Log.Error(err, "Failed to generate invoice QR code", "invoiceId", invoice.ID.Hex())
		return apperrors.New(apperrors.KindInternal, "Failed to generate QR code", err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func invoiceQRContent(invoice *models.Invoice) string {
	return fmt.Sprintf("INVOICE:%s|AMOUNT:%.2f|DUE:%s|STATUS:%s",
		invoice.InvoiceNumber, invoice.Amount, invoice.DueDate.Format("2006-01-02"), invoice.Status)
}

func invoiceQRCode(invoice *models.Invoice) ([]byte, error) {
	code, err := qr.Encode(invoiceQRContent(invoice), qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
