package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaUpload stores metadata about a file uploaded by an admin (session
// videos, PDFs, lesson resources). The actual file resides in object storage.
type MediaUpload struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID   *primitive.ObjectID `bson:"sessionId,omitempty" json:"sessionId,omitempty"` // Link to the session, when session media
	UploadedBy  primitive.ObjectID  `bson:"uploadedBy" json:"uploadedBy"`
	ObjectKey   string              `bson:"objectKey" json:"-"` // The unique key in the bucket - internal use
	FileName    string              `bson:"fileName" json:"fileName"`
	ContentType string              `bson:"contentType" json:"contentType"` // e.g. "video/mp4", "application/pdf"
	Size        int64               `bson:"size" json:"size"`
	UploadedAt  time.Time           `bson:"uploadedAt" json:"uploadedAt"`
}
