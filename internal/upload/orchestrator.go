// Package upload turns the files of a validated intake payload into
// stored objects with retrievable URLs.
package upload

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

type Orchestrator struct {
	objects store.Objects
	now     func() time.Time
	suffix  func() string
}

func NewOrchestrator(objects store.Objects) *Orchestrator {
	return &Orchestrator{
		objects: objects,
		now:     time.Now,
		suffix: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}
}

// ObjectPath builds <re digits>/<unix millis>_<label>_<suffix><ext>.
func ObjectPath(re, label, suffix, fileName string, at time.Time) string {
	folder := intake.Digits(re)
	if folder == "" {
		folder = "sem-re"
	}
	return fmt.Sprintf("%s/%d_%s_%s%s", folder, at.UnixMilli(), SanitizeLabel(label), suffix, extension(fileName))
}

// Upload stores every file in order. The first failure aborts the batch,
// removes what was already stored and returns an upload error naming the
// slot.
func (o *Orchestrator) Upload(ctx context.Context, re string, files []intake.Attached) ([]models.Attachment, error) {
	out := make([]models.Attachment, 0, len(files))
	for _, f := range files {
		ct := f.File.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = detectContentType(f.File.Name)
		}
		path := ObjectPath(re, f.Slot.Label, o.suffix(), f.File.Name, o.now())
		if err := o.objects.Put(ctx, path, f.File.Data, ct); err != nil {
			o.Discard(ctx, out)
			return nil, errs.Upload(f.Slot.Label, err)
		}
		out = append(out, models.Attachment{
			Category: f.Slot.Category,
			Label:    f.Slot.Label,
			Name:     f.File.Name,
			URL:      o.objects.URL(path),
			Path:     path,
		})
	}
	return out, nil
}

// Discard removes stored objects best-effort.
func (o *Orchestrator) Discard(ctx context.Context, files []models.Attachment) {
	for _, a := range files {
		if a.Path == "" {
			continue
		}
		if err := o.objects.Delete(ctx, a.Path); err != nil {
			log.Printf("Warning: upload: could not remove %s: %v", a.Path, err)
		}
	}
}
