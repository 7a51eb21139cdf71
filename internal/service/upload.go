package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"partyshare/party-api/pkg/validators"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Uploader struct {
	Store Store
	Rules *validators.PhotoRules
}

func NewUploader(s Store, r *validators.PhotoRules) *Uploader {
	return &Uploader{
		Store: s,
		Rules: r,
	}
}

type staged struct {
	path string
	key  string
	mime string
	size int64
}

// Batch is a set of validated photos waiting in temp files. Nothing is
// visible to clients until Commit succeeds.
type Batch struct {
	store     Store
	items     []staged
	committed []string
}

// Stage validates every file and copies it to a temp file so the request
// body can go away before the database work starts. The returned status
// code is only meaningful together with a non nil error.
func (u *Uploader) Stage(files []*multipart.FileHeader) (*Batch, int, error) {
	b := &Batch{store: u.Store}

	if code, err := validators.PhotosValidator(files, u.Rules); err != nil {
		return nil, code, err
	}

	for _, fh := range files {
		code, f, mime, err := validators.PhotoValidator(fh, u.Rules)
		if err != nil {
			b.Close()
			return nil, code, err
		}

		item, err := stage(f, mime)
		f.Close()
		if err != nil {
			b.Close()
			return nil, http.StatusInternalServerError, err
		}

		b.items = append(b.items, *item)
	}

	return b, 0, nil
}

func stage(r io.Reader, mime string) (*staged, error) {
	id, err := gonanoid.Generate(keyCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate photo key, %w", err)
	}

	tmp, err := os.CreateTemp("", "party-photo-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file, %w", err)
	}
	defer tmp.Close()

	n, err := io.Copy(tmp, r)
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to stage photo, %w", err)
	}

	if m := mimetype.Lookup(mime); m != nil {
		id += m.Extension()
	}

	return &staged{
		path: tmp.Name(),
		key:  id,
		mime: mime,
		size: n,
	}, nil
}

// Len reports how many photos are waiting in the batch
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}

	return len(b.items)
}

// Commit moves every staged photo into the store and returns their
// references in upload order. On failure the photos stored so far are
// removed again.
func (b *Batch) Commit(ctx context.Context) ([]string, error) {
	refs := make([]string, 0, b.Len())
	if b == nil {
		return refs, nil
	}

	for _, item := range b.items {
		ref, err := b.put(ctx, item)
		if err != nil {
			b.Rollback(ctx)
			return nil, err
		}

		b.committed = append(b.committed, ref)
		refs = append(refs, ref)
	}

	return refs, nil
}

func (b *Batch) put(ctx context.Context, item staged) (string, error) {
	f, err := os.Open(item.path)
	if err != nil {
		return "", fmt.Errorf("failed to open staged photo, %w", err)
	}
	defer f.Close()

	return b.store.Put(ctx, item.key, f, item.size, item.mime)
}

// Rollback deletes the photos a Commit already stored. Used when the
// database write that was supposed to reference them fails.
func (b *Batch) Rollback(ctx context.Context) {
	if b == nil {
		return
	}

	for _, ref := range b.committed {
		if err := b.store.Delete(context.WithoutCancel(ctx), ref); err != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.String("ref", ref), zap.Error(err))
		} else {
			zap.L().Debug("Cleaned up after failed upload", zap.String("ref", ref))
		}
	}

	b.committed = nil
}

// Close removes the temp files. Safe to call more than once.
func (b *Batch) Close() {
	if b == nil {
		return
	}

	for _, item := range b.items {
		os.Remove(item.path)
	}

	b.items = nil
}

// Remove deletes photos that are no longer referenced by any party. Errors
// are logged, the database is already the source of truth at this point.
func (u *Uploader) Remove(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := u.Store.Delete(ctx, ref); err != nil {
			zap.L().Warn("Failed to remove photo", zap.String("ref", ref), zap.Error(err))
		}
	}
}
