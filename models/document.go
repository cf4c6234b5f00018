package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder groups documents of one client.
type Folder struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	ClientID    primitive.ObjectID  `json:"clientId" bson:"clientId"`
	AdminID     primitive.ObjectID  `json:"adminId" bson:"adminId"`
	ParentID    *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`
	IsActive    bool                `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Document is the metadata record of a blob held in object storage.
type Document struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	FolderID         primitive.ObjectID `json:"folderId" bson:"folderId"`
	ClientID         primitive.ObjectID `json:"clientId" bson:"clientId"`
	AdminID          primitive.ObjectID `json:"adminId" bson:"adminId"`
	UploadedBy       primitive.ObjectID `json:"uploadedBy" bson:"uploadedBy"`
	UploaderRole     string             `json:"uploaderRole" bson:"uploaderRole"`
	Key              string             `json:"key" bson:"key"`
	URL              string             `json:"url" bson:"url"`
	Bucket           string             `json:"bucket" bson:"bucket"`
	ETag             string             `json:"etag,omitempty" bson:"etag,omitempty"`
	VersionID        string             `json:"versionId,omitempty" bson:"versionId,omitempty"`
	ContentType      string             `json:"contentType" bson:"contentType"`
	Size             int64              `json:"size" bson:"size"`
	ThumbnailKey     string             `json:"thumbnailKey,omitempty" bson:"thumbnailKey,omitempty"`
	DownloadCount    int64              `json:"downloadCount" bson:"downloadCount"`
	LastDownloadedAt *time.Time         `json:"lastDownloadedAt,omitempty" bson:"lastDownloadedAt,omitempty"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type FolderCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
}

type FolderUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DownloadLink is returned by the download endpoint.
type DownloadLink struct {
	URL           string `json:"url"`
	ExpiresIn     int    `json:"expiresIn"`
	DownloadCount int64  `json:"downloadCount"`
}
