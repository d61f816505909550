package notify

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/linnemanlabs/go-core/log"
)

// uploadsPrefix is the URL convention the vision system uses for images it
// stored through the upload endpoint.
const uploadsPrefix = "/uploads/"

// Resolver turns an image reference into attachment content. Any resolution
// problem yields no attachment rather than an error: the notification goes
// out without the image instead of being dropped.
type Resolver struct {
	uploadRoot string
	logger     log.Logger
}

// NewResolver creates a Resolver rooted at the local upload directory.
func NewResolver(uploadRoot string, logger log.Logger) *Resolver {
	if logger == nil {
		logger = log.Nop()
	}
	return &Resolver{
		uploadRoot: uploadRoot,
		logger:     logger,
	}
}

// Resolve maps an image reference to a readable local file and returns its
// base64-encoded content, or nil when nothing usable exists.
func (r *Resolver) Resolve(ctx context.Context, imageRef string) *Attachment {
	if imageRef == "" {
		return nil
	}

	path := r.physicalPath(imageRef)
	if path == "" {
		r.logger.Info(ctx, "image reference did not resolve, sending without attachment", "image_ref", imageRef)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn(ctx, "failed to read image, sending without attachment",
			"path", path,
			"error", err.Error(),
		)
		return nil
	}

	return &Attachment{
		Filename: filepath.Base(path),
		Content:  base64.StdEncoding.EncodeToString(data),
	}
}

// physicalPath returns a path that exists on disk, or "". A reference that
// is already a readable path wins; otherwise the uploads convention is
// rewritten against the configured root.
func (r *Resolver) physicalPath(imageRef string) string {
	if fileExists(imageRef) {
		return imageRef
	}
	if r.uploadRoot != "" && strings.HasPrefix(imageRef, uploadsPrefix) {
		p := filepath.Join(r.uploadRoot, filepath.Base(imageRef))
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
