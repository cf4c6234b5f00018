package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
	"github.com/HSouheill/taxdesk_backend/utils"
)

type DocumentController struct {
	*Deps
}

func NewDocumentController(d *Deps) *DocumentController {
	return &DocumentController{Deps: d}
}

// ListDocuments returns one page of the caller's documents. Filters:
// clientId, folderId.
func (dc *DocumentController) ListDocuments(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	clientID, err := queryID(c, "clientId")
	if err != nil {
		return err
	}
	folderID, err := queryID(c, "folderId")
	if err != nil {
		return err
	}
	p := utils.ParsePagination(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	docs, total, err := dc.Store.Documents.List(ctx, repositories.DocumentFilter{
		Scope:    scopeOf(user),
		ClientID: clientID,
		FolderID: folderID,
	}, repositories.Page{Skip: p.Skip(), Limit: int64(p.Limit)})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", models.PaginatedData{
		Items:      docs,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

// UploadDocument stores a multipart "file" in the folder named by
// "folderId". Images also get a thumbnail.
func (dc *DocumentController) UploadDocument(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	folderID, err := parseOptionalID(c.FormValue("folderId"), "folderId")
	if err != nil {
		return err
	}
	if folderID == nil {
		return apperrors.Validation("folderId is required")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.Validation("File is required")
	}

	maxSize := dc.Config.MaxUploadBytes
	if maxSize <= 0 {
		maxSize = utils.MaxFileSize
	}
	if fh.Size > maxSize {
		return utils.ValidateFile(fh.Header.Get("Content-Type"), fh.Size, maxSize)
	}

	src, err := fh.Open()
	if err != nil {
		return apperrors.Validation("Unable to read uploaded file")
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return apperrors.Validation("Unable to read uploaded file")
	}

	contentType := utils.NormalizeContentType(fh.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = utils.NormalizeContentType(http.DetectContentType(data))
	}
	if err := utils.ValidateFile(contentType, int64(len(data)), maxSize); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	folder, err := dc.Store.Folders.FindByID(ctx, *folderID, scopeOf(user))
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if _, err := dc.activeClient(ctx, user.ID, folder.ClientID.Hex()); err != nil {
			return err
		}
	}

	key := utils.BuildObjectKey(folder.ClientID.Hex(), folder.ID.Hex(), fh.Filename)
	obj, err := dc.Objects.Upload(ctx, key, data, contentType)
	if err != nil {
		dc.Log.Error(err, "Document upload failed", "key", key)
		return apperrors.New(apperrors.KindInternal, "Failed to upload file", err)
	}

	name := strings.TrimSpace(utils.SanitizeInput(c.FormValue("name")))
	if name == "" {
		name = utils.CleanFilename(fh.Filename)
	}

	now := dc.now()
	doc := &models.Document{
		Name:         name,
		FolderID:     folder.ID,
		ClientID:     folder.ClientID,
		AdminID:      folder.AdminID,
		UploadedBy:   user.ID,
		UploaderRole: user.Role,
		Key:          obj.Key,
		URL:          obj.URL,
		Bucket:       obj.Bucket,
		ETag:         obj.ETag,
		VersionID:    obj.VersionID,
		ContentType:  contentType,
		Size:         int64(len(data)),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if utils.SupportsThumbnail(contentType) {
		doc.ThumbnailKey = dc.storeThumbnail(ctx, key, data)
	}

	if err := dc.Store.Documents.Create(ctx, doc); err != nil {
		dc.discard(doc)
		return err
	}

	if dc.Metrics != nil {
		dc.Metrics.DocumentsUploaded.Inc()
	}
	dc.notify(doc.AdminID, services.EventDocumentUploaded,
		fmt.Sprintf("Document %q uploaded", doc.Name),
		map[string]string{"documentId": doc.ID.Hex(), "clientId": doc.ClientID.Hex(), "uploaderRole": user.Role})

	return respond(c, http.StatusCreated, "Document uploaded successfully", doc)
}

func (dc *DocumentController) GetDocument(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "document")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := dc.Store.Documents.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", doc)
}

// DownloadDocument issues a signed URL and counts the download.
// ?redirect=true answers with a redirect to the URL instead of JSON.
func (dc *DocumentController) DownloadDocument(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "document")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := dc.Store.Documents.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	ttl := dc.Config.DownloadURLTTL
	url, err := dc.Objects.SignedURL(ctx, doc.Key, ttl)
	if err != nil {
		dc.Log.Error(err, "Failed to sign download URL", "documentId", doc.ID.Hex())
		return apperrors.New(apperrors.KindInternal, "Failed to generate download link", err)
	}

	doc, err = dc.Store.Documents.IncrementDownloadCount(ctx, doc.ID, dc.now())
	if err != nil {
		return err
	}

	if dc.Metrics != nil {
		dc.Metrics.DocumentDownloads.Inc()
	}
	if user.IsClient() {
		dc.notify(doc.AdminID, services.EventDocumentDownloaded,
			fmt.Sprintf("Document %q downloaded by client", doc.Name),
			map[string]string{"documentId": doc.ID.Hex(), "clientId": doc.ClientID.Hex()})
	}

	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusFound, url)
	}
	return respond(c, http.StatusOK, "", models.DownloadLink{
		URL:           url,
		ExpiresIn:     int(ttl.Seconds()),
		DownloadCount: doc.DownloadCount,
	})
}

// DeleteDocument hides the document. The stored blob is kept.
func (dc *DocumentController) DeleteDocument(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "document")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	doc, err := dc.Store.Documents.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	doc.IsActive = false
	doc.UpdatedAt = dc.now()
	if err := dc.Store.Documents.Update(ctx, doc); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Document deleted successfully", nil)
}

// storeThumbnail renders and uploads a thumbnail, returning its key. A
// failure leaves the document without one.
func (dc *DocumentController) storeThumbnail(ctx context.Context, key string, data []byte) string {
	thumb, err := utils.MakeThumbnail(data)
	if err != nil {
		dc.Log.Warn("Thumbnail skipped", "key", key, "error", err.Error())
		return ""
	}
	thumbKey := utils.ThumbnailKey(key)
	if _, err := dc.Objects.Upload(ctx, thumbKey, thumb, "image/jpeg"); err != nil {
		dc.Log.Warn("Thumbnail upload failed", "key", thumbKey, "error", err.Error())
		return ""
	}
	return thumbKey
}

// discard removes blobs of a document whose record could not be saved.
func (dc *DocumentController) discard(doc *models.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	for _, key := range []string{doc.Key, doc.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := dc.Objects.Delete(ctx, key); err != nil {
			dc.Log.Warn("Failed to remove orphaned object", "key", key, "error", err.Error())
		}
	}
}
